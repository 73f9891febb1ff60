package engine

import (
	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/events"
)

// Token — program counter: единица потока управления со значением.
//
// Токен создаётся на выходном терминале сработавшего узла вместе с
// соединением Pending, по которому он пойдёт в фазе перемещения.
// После перемещения токен стоит на входном терминале без Pending,
// пока его не прочитает узел.
type Token struct {
	ID      domain.TokenID
	At      domain.Terminal
	Pending *Connection
	Value   domain.Value
}

// Ref возвращает снимок токена для наблюдателей.
func (t *Token) Ref() events.TokenRef {
	return events.TokenRef{ID: t.ID, At: t.At, Value: t.Value}
}

// TokenStore — индекс живых токенов.
//
// Единственный владелец токенов. Порядок вставки сохраняется и в общем
// списке, и в списках по терминалам — от этого зависит детерминизм.
type TokenStore struct {
	order      []*Token
	byTerminal map[domain.Terminal][]*Token
	next       domain.TokenID
}

// NewTokenStore создаёт пустое хранилище.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byTerminal: make(map[domain.Terminal][]*Token),
	}
}

// NewToken создаёт токен со следующим ID. Токен не добавляется в хранилище.
func (s *TokenStore) NewToken(at domain.Terminal, pending *Connection, value domain.Value) *Token {
	t := &Token{
		ID:      s.next,
		At:      at,
		Pending: pending,
		Value:   value,
	}
	s.next++
	return t
}

// Add добавляет токен.
func (s *TokenStore) Add(t *Token) {
	s.order = append(s.order, t)
	s.byTerminal[t.At] = append(s.byTerminal[t.At], t)
}

// Remove удаляет токен. Возвращает false, если токена нет.
func (s *TokenStore) Remove(t *Token) bool {
	idx := indexOf(s.order, t)
	if idx < 0 {
		return false
	}
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	s.detach(t)
	return true
}

// AtTerminal возвращает токены на терминале в порядке вставки.
func (s *TokenStore) AtTerminal(term domain.Terminal) []*Token {
	list := s.byTerminal[term]
	cp := make([]*Token, len(list))
	copy(cp, list)
	return cp
}

// Occupied проверяет, есть ли на терминале хотя бы один токен.
func (s *TokenStore) Occupied(term domain.Terminal) bool {
	return len(s.byTerminal[term]) > 0
}

// Advance перемещает токен по соединению Pending на его вход и очищает Pending.
// Для токена без Pending (или отсутствующего в хранилище) ничего не делает
// и возвращает moved=false.
func (s *TokenStore) Advance(t *Token) (from, to domain.Terminal, moved bool) {
	if t.Pending == nil || indexOf(s.order, t) < 0 {
		return t.At, t.At, false
	}

	from = t.At
	to = t.Pending.To

	s.detach(t)
	t.At = to
	t.Pending = nil
	s.byTerminal[to] = append(s.byTerminal[to], t)

	return from, to, true
}

// Contains проверяет, что токен живой.
func (s *TokenStore) Contains(t *Token) bool {
	return indexOf(s.order, t) >= 0
}

// All возвращает снимок всех живых токенов в порядке вставки.
func (s *TokenStore) All() []*Token {
	cp := make([]*Token, len(s.order))
	copy(cp, s.order)
	return cp
}

// InFlight возвращает количество токенов, ожидающих перемещения.
func (s *TokenStore) InFlight() int {
	n := 0
	for _, t := range s.order {
		if t.Pending != nil {
			n++
		}
	}
	return n
}

// Len возвращает количество живых токенов.
func (s *TokenStore) Len() int {
	return len(s.order)
}

// detach убирает токен из индекса по терминалу.
func (s *TokenStore) detach(t *Token) {
	list := s.byTerminal[t.At]
	if idx := indexOf(list, t); idx >= 0 {
		list = append(list[:idx], list[idx+1:]...)
	}
	if len(list) == 0 {
		delete(s.byTerminal, t.At)
		return
	}
	s.byTerminal[t.At] = list
}

func indexOf(list []*Token, t *Token) int {
	for i, x := range list {
		if x == t {
			return i
		}
	}
	return -1
}
