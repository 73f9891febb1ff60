package engine

import (
	"fmt"
	"log/slog"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/events"
)

// Stage — фаза планировщика.
type Stage int

const (
	// StageEvaluate — узлы по очереди пытаются сработать.
	StageEvaluate Stage = iota
	// StageAdvance — каждый живой токен проходит один шаг по соединению.
	StageAdvance
)

// String возвращает имя фазы.
func (s Stage) String() string {
	if s == StageAdvance {
		return "advance"
	}
	return "evaluate"
}

// FiringPolicy — как узел объединяет токены на входах.
type FiringPolicy int

const (
	// PolicySingle — по одному токену с каждого входа, одно срабатывание за фазу.
	PolicySingle FiringPolicy = iota
	// PolicyCartesian — декартово произведение токенов со всех входов,
	// по срабатыванию на каждый кортеж ("overclocked").
	PolicyCartesian
)

// String возвращает "single" или "cartesian".
func (p FiringPolicy) String() string {
	if p == PolicyCartesian {
		return "cartesian"
	}
	return "single"
}

// ParsePolicy парсит имя политики. Пустая строка — PolicySingle.
func ParsePolicy(s string) (FiringPolicy, error) {
	switch s {
	case "", "single":
		return PolicySingle, nil
	case "cartesian", "overclocked":
		return PolicyCartesian, nil
	default:
		return PolicySingle, fmt.Errorf("unknown firing policy %q", s)
	}
}

// Config — настройки Evaluator.
type Config struct {
	// Policy — политика срабатывания (default: PolicySingle).
	Policy FiringPolicy

	// Bus — шина событий. Может быть nil.
	Bus *events.Bus

	// Logger — логгер для отладочных сообщений. Может быть nil.
	Logger *slog.Logger
}

// Evaluator — двухфазный планировщик.
//
// Состояния:
//
//	Evaluate(i)          — попытка запустить i-й узел, затем i++;
//	                       при i >= len(nodes) снимок всех токенов → Advance(snapshot, 0)
//	Advance(snapshot, j) — перемещение snapshot[j], затем j++;
//	                       при j >= len(snapshot) → Evaluate(0)
//
// Разделение фаз гарантирует, что в пределах фазы вычисления входы
// узлов стабильны: токены не прибывают на входы, пока узлы срабатывают.
type Evaluator struct {
	graph  *Graph
	io     IO
	tokens *TokenStore
	states map[domain.NodeID]*NodeState
	policy FiringPolicy
	bus    *events.Bus
	logger *slog.Logger

	stage        Stage
	nodeIndex    int
	counters     []*Token
	counterIndex int

	steps   int
	strides int
	firings int
}

// NewEvaluator создаёт планировщик в состоянии Evaluate(0) с пустым
// хранилищем токенов и свежим состоянием узлов.
func NewEvaluator(g *Graph, io IO, cfg Config) *Evaluator {
	return &Evaluator{
		graph:  g,
		io:     io,
		tokens: NewTokenStore(),
		states: make(map[domain.NodeID]*NodeState),
		policy: cfg.Policy,
		bus:    cfg.Bus,
		logger: cfg.Logger,
		stage:  StageEvaluate,
	}
}

// Step выполняет ровно одну попытку срабатывания узла, одно перемещение
// токена или один переход между фазами.
//
// При нарушении контракта шаг прерывается: хранилище токенов и позиция
// планировщика не меняются.
func (e *Evaluator) Step() error {
	switch e.stage {
	case StageEvaluate:
		if e.nodeIndex >= e.graph.Len() {
			e.prune()
			e.counters = e.tokens.All()
			e.counterIndex = 0
			e.stage = StageAdvance
			e.strides++
			break
		}

		if err := e.fire(e.graph.NodeAt(e.nodeIndex)); err != nil {
			return err
		}
		e.nodeIndex++

	case StageAdvance:
		if e.counterIndex >= len(e.counters) {
			e.counters = nil
			e.nodeIndex = 0
			e.stage = StageEvaluate
			e.strides++
			break
		}

		e.advance(e.counters[e.counterIndex])
		e.counterIndex++
	}

	e.steps++
	return nil
}

// Stride выполняет шаги, пока не сменится фаза, то есть ровно одну фазу.
// Stride всегда завершается: каждая фаза конечна.
func (e *Evaluator) Stride() error {
	start := e.stage
	for {
		if err := e.Step(); err != nil {
			return err
		}
		if e.stage != start {
			return nil
		}
	}
}

// emission — токен, который появится при применении срабатывания.
// ID назначается только при применении.
type emission struct {
	at      domain.Terminal
	pending *Connection
	value   domain.Value
}

// firing — одно срабатывание узла до применения к хранилищу.
type firing struct {
	consumed []*Token
	produced []emission
}

// fire пытается запустить узел.
func (e *Evaluator) fire(n *Node) error {
	// 1. Back-pressure: выход ещё не освобождён фазой перемещения
	for k := 0; k < n.NumOutputs; k++ {
		if e.tokens.Occupied(n.Output(k)) {
			return nil
		}
	}

	// 2. Готовность: на каждом входе есть хотя бы один токен
	lists := make([][]*Token, n.NumInputs)
	for i := range lists {
		lists[i] = e.tokens.AtTerminal(n.Input(i))
		if len(lists[i]) == 0 {
			return nil
		}
	}

	// 3. Кортежи входов по политике
	var combos [][]*Token
	if e.policy == PolicyCartesian {
		combos = product(lists)
	} else {
		combo := make([]*Token, len(lists))
		for i, list := range lists {
			combo[i] = list[0]
		}
		combos = [][]*Token{combo}
	}

	// 4. Вычисление без изменения хранилища
	st := e.state(n.ID)
	firings := make([]firing, 0, len(combos))
	for _, combo := range combos {
		in := make([]domain.Value, len(combo))
		for i, t := range combo {
			in[i] = t.Value
		}

		out, ok, err := Evaluate(n, st, e.io, in)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if len(out) != n.NumOutputs {
			return contractError(n, ErrOutputArity,
				"evaluation returned %d outputs, want %d", len(out), n.NumOutputs)
		}

		firings = append(firings, firing{
			consumed: combo,
			produced: e.emit(n, out),
		})
	}

	// 5. Применение: удаляем прочитанные токены, добавляем новые
	for _, f := range firings {
		for _, t := range f.consumed {
			e.tokens.Remove(t)
		}
		produced := make([]*Token, len(f.produced))
		for i, em := range f.produced {
			t := e.tokens.NewToken(em.at, em.pending, em.value)
			e.tokens.Add(t)
			produced[i] = t
		}
		e.firings++

		if e.logger != nil {
			e.logger.Debug("node fired",
				"node", n.ID,
				"kind", n.Kind,
				"consumed", len(f.consumed),
				"produced", len(produced),
			)
		}
		e.bus.Publish(events.NodeFired{
			Node:     n.ID,
			Consumed: refs(f.consumed),
			Produced: refs(produced),
		})
	}

	return nil
}

// emit создаёт токены для каждого соединения, условие которого пропускает значение.
func (e *Evaluator) emit(n *Node, out []domain.Value) []emission {
	var produced []emission
	for k, v := range out {
		from := n.Output(k)
		for _, c := range e.graph.Outgoing(from) {
			if !Matches(c.Condition, v) {
				continue
			}
			produced = append(produced, emission{at: from, pending: c, value: v})
		}
	}
	return produced
}

// advance перемещает токен из снимка фазы.
//
// Токен, стоящий на удалённом узле или идущий к нему, снимается с графа.
func (e *Evaluator) advance(t *Token) {
	if e.orphaned(t) {
		e.drop(t)
		return
	}

	from, to, moved := e.tokens.Advance(t)
	if !moved {
		return
	}

	if e.logger != nil {
		e.logger.Debug("token advanced", "token", t.ID, "from", from.String(), "to", to.String())
	}
	e.bus.Publish(events.TokenAdvanced{Token: t.ID, From: from, To: to})
}

// prune снимает токены, чьи терминалы исчезли вместе с узлами.
func (e *Evaluator) prune() {
	for _, t := range e.tokens.All() {
		if e.orphaned(t) {
			e.drop(t)
		}
	}
}

// orphaned сообщает, что токен стоит на несуществующем терминале
// или его соединение ведёт к несуществующему терминалу.
func (e *Evaluator) orphaned(t *Token) bool {
	if !e.graph.HasTerminal(t.At) {
		return true
	}
	return t.Pending != nil && !e.graph.HasTerminal(t.Pending.To)
}

func (e *Evaluator) drop(t *Token) {
	if !e.tokens.Remove(t) {
		return
	}
	if e.logger != nil {
		e.logger.Debug("token dropped", "token", t.ID, "at", t.At.String())
	}
}

// state возвращает состояние узла, создавая его при первом обращении.
func (e *Evaluator) state(id domain.NodeID) *NodeState {
	st, ok := e.states[id]
	if !ok {
		st = &NodeState{}
		e.states[id] = st
	}
	return st
}

// Stage возвращает текущую фазу.
func (e *Evaluator) Stage() Stage {
	return e.stage
}

// Policy возвращает политику срабатывания.
func (e *Evaluator) Policy() FiringPolicy {
	return e.policy
}

// Graph возвращает граф.
func (e *Evaluator) Graph() *Graph {
	return e.graph
}

// Tokens возвращает хранилище токенов (только для чтения).
func (e *Evaluator) Tokens() *TokenStore {
	return e.tokens
}

// NodeState возвращает копию состояния узла.
func (e *Evaluator) NodeState(id domain.NodeID) NodeState {
	if st, ok := e.states[id]; ok {
		return *st
	}
	return NodeState{}
}

// Steps возвращает количество выполненных шагов.
func (e *Evaluator) Steps() int {
	return e.steps
}

// Firings возвращает количество срабатываний узлов с момента создания.
func (e *Evaluator) Firings() int {
	return e.firings
}

// Strides возвращает количество завершённых фаз.
func (e *Evaluator) Strides() int {
	return e.strides
}

// product строит декартово произведение списков токенов.
// Порядок: последний список меняется быстрее всех.
func product(lists [][]*Token) [][]*Token {
	combos := [][]*Token{{}}
	for _, list := range lists {
		next := make([][]*Token, 0, len(combos)*len(list))
		for _, prefix := range combos {
			for _, t := range list {
				combo := make([]*Token, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, t))
			}
		}
		combos = next
	}
	return combos
}

func refs(tokens []*Token) []events.TokenRef {
	out := make([]events.TokenRef, len(tokens))
	for i, t := range tokens {
		out[i] = t.Ref()
	}
	return out
}
