package events

import "sync"

// Recorder записывает события в порядке публикации.
// Используется для проверки детерминизма и выдачи трассы через API.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewRecorder создаёт Recorder. limit <= 0 — без ограничения;
// иначе хранятся только первые limit событий.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Listener возвращает функцию для Bus.Subscribe.
func (r *Recorder) Listener() Listener {
	return r.Record
}

// Record добавляет событие.
func (r *Recorder) Record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.limit > 0 && len(r.events) >= r.limit {
		return
	}
	r.events = append(r.events, e)
}

// Events возвращает копию записанных событий.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := make([]Event, len(r.events))
	copy(cp, r.events)
	return cp
}

// Count возвращает количество событий типа kind.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.events {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

// Reset очищает запись.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
