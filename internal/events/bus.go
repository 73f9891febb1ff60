package events

import (
	"sort"
	"sync"
)

// Listener — обработчик событий.
type Listener func(Event)

// SubscriptionID — непрозрачный идентификатор подписки.
type SubscriptionID int

// Bus — fan-out шина событий.
//
// Порядок доставки между подписчиками не гарантируется контрактом;
// фактически подписчики вызываются в порядке подписки.
// Bus можно использовать из нескольких горутин, но слушатели
// вызываются синхронно в горутине, опубликовавшей событие.
type Bus struct {
	mu        sync.RWMutex
	listeners map[SubscriptionID]Listener
	next      SubscriptionID
}

// NewBus создаёт пустую шину.
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[SubscriptionID]Listener),
	}
}

// Subscribe регистрирует слушателя.
func (b *Bus) Subscribe(l Listener) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.listeners[id] = l
	return id
}

// Unsubscribe удаляет слушателя. Неизвестный id игнорируется.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, id)
}

// Len возвращает количество подписчиков.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Publish доставляет событие всем подписчикам.
// Nil-шина ничего не делает.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}

	// Снимок под блокировкой: слушатель может отписаться во время доставки
	b.mu.RLock()
	ids := make([]SubscriptionID, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	listeners := make([]Listener, 0, len(ids))
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		listeners = append(listeners, b.listeners[id])
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		l(e)
	}
}
