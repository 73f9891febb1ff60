package engine

import (
	"fmt"

	"github.com/shaiso/Pulse/internal/domain"
)

// Node — узел графа.
type Node struct {
	// ID — идентификатор узла.
	ID domain.NodeID

	// Kind — тип узла; определяет арность и семантику.
	Kind domain.NodeKind

	// Settings — неизменяемые настройки (constant, input, output).
	Settings domain.NodeSettings

	// Position — координаты в редакторе. Движком не используются.
	Position domain.Position

	// NumInputs, NumOutputs — арность по типу узла.
	NumInputs  int
	NumOutputs int
}

// Input возвращает i-й входной терминал.
func (n *Node) Input(i int) domain.Terminal {
	return domain.InputOf(n.ID, i)
}

// Output возвращает i-й выходной терминал.
func (n *Node) Output(i int) domain.Terminal {
	return domain.OutputOf(n.ID, i)
}

// HasTerminal проверяет, что терминал принадлежит узлу и индекс в диапазоне.
func (n *Node) HasTerminal(t domain.Terminal) bool {
	if t.Node != n.ID || t.Index < 0 {
		return false
	}
	if t.Dir == domain.DirInput {
		return t.Index < n.NumInputs
	}
	return t.Index < n.NumOutputs
}

// Connection — направленное соединение выхода одного узла со входом другого.
type Connection struct {
	From      domain.Terminal
	To        domain.Terminal
	Condition Condition
}

// String возвращает представление вида 1.out[0]->2.in[1].
func (c *Connection) String() string {
	return fmt.Sprintf("%s->%s", c.From, c.To)
}

// Graph — модель графа.
//
// Порядок узлов — порядок добавления; в этом порядке планировщик
// пытается запускать узлы в каждой фазе вычисления. Граф может быть
// несвязным и содержать циклы.
//
// Graph не потокобезопасен: им владеет один контекст выполнения.
type Graph struct {
	nodes    []*Node
	byID     map[domain.NodeID]*Node
	conns    []*Connection
	outgoing map[domain.Terminal][]*Connection
	nextID   domain.NodeID
}

// NewGraph создаёт пустой граф.
func NewGraph() *Graph {
	return &Graph{
		byID:     make(map[domain.NodeID]*Node),
		outgoing: make(map[domain.Terminal][]*Connection),
	}
}

// AddNode добавляет узел со следующим свободным ID.
func (g *Graph) AddNode(kind domain.NodeKind, settings domain.NodeSettings) (*Node, error) {
	return g.InsertNode(g.nextID, kind, settings, domain.Position{})
}

// InsertNode добавляет узел с заданным ID.
func (g *Graph) InsertNode(id domain.NodeID, kind domain.NodeKind, settings domain.NodeSettings, pos domain.Position) (*Node, error) {
	subject := fmt.Sprintf("node %d", id)

	in, out, ok := kind.Arity()
	if !ok {
		return nil, NewValidationError(subject, "kind",
			fmt.Sprintf("unknown node kind: %s", kind), ErrUnknownNodeKind)
	}
	if _, exists := g.byID[id]; exists {
		return nil, NewValidationError(subject, "id",
			fmt.Sprintf("duplicate node ID: %d", id), ErrDuplicateNodeID)
	}
	if (kind == domain.KindInput || kind == domain.KindOutput) && settings.Channel < 0 {
		return nil, NewValidationError(subject, "settings.channel",
			fmt.Sprintf("channel must be non-negative, got %d", settings.Channel), ErrNegativeChannel)
	}

	node := &Node{
		ID:         id,
		Kind:       kind,
		Settings:   settings,
		Position:   pos,
		NumInputs:  in,
		NumOutputs: out,
	}
	g.nodes = append(g.nodes, node)
	g.byID[id] = node

	if id >= g.nextID {
		g.nextID = id + 1
	}
	return node, nil
}

// RemoveNode удаляет узел и все его соединения.
func (g *Graph) RemoveNode(id domain.NodeID) bool {
	if _, exists := g.byID[id]; !exists {
		return false
	}
	delete(g.byID, id)

	for i, n := range g.nodes {
		if n.ID == id {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			break
		}
	}

	kept := g.conns[:0]
	for _, c := range g.conns {
		if c.From.Node != id && c.To.Node != id {
			kept = append(kept, c)
		}
	}
	g.conns = kept
	g.rebuildOutgoing()
	return true
}

// Connect соединяет выходной терминал from со входным терминалом to.
func (g *Graph) Connect(from, to domain.Terminal, cond Condition) (*Connection, error) {
	subject := fmt.Sprintf("edge %s->%s", from, to)

	if from.Dir != domain.DirOutput || to.Dir != domain.DirInput {
		return nil, NewValidationError(subject, "direction",
			"connection must go from an output to an input", ErrTerminalDirection)
	}
	if err := g.checkTerminal(subject, from); err != nil {
		return nil, err
	}
	if err := g.checkTerminal(subject, to); err != nil {
		return nil, err
	}
	for i, m := range cond {
		if !m.IsValid() {
			return nil, NewValidationError(subject, "condition",
				fmt.Sprintf("matcher %d is unknown: %q", i, m), ErrUnknownMatcher)
		}
	}

	c := &Connection{
		From:      from,
		To:        to,
		Condition: append(Condition(nil), cond...),
	}
	g.conns = append(g.conns, c)
	g.outgoing[from] = append(g.outgoing[from], c)
	return c, nil
}

// checkTerminal проверяет, что терминал существует.
func (g *Graph) checkTerminal(subject string, t domain.Terminal) error {
	node, exists := g.byID[t.Node]
	if !exists {
		return NewValidationError(subject, "node",
			fmt.Sprintf("unknown node: %d", t.Node), ErrUnknownNode)
	}
	if !node.HasTerminal(t) {
		return NewValidationError(subject, "index",
			fmt.Sprintf("terminal %s out of range for %s node", t, node.Kind), ErrTerminalOutOfRange)
	}
	return nil
}

// Disconnect удаляет соединение.
func (g *Graph) Disconnect(c *Connection) bool {
	for i, existing := range g.conns {
		if existing == c {
			g.conns = append(g.conns[:i], g.conns[i+1:]...)
			g.rebuildOutgoing()
			return true
		}
	}
	return false
}

// rebuildOutgoing пересобирает индекс исходящих соединений с сохранением порядка.
func (g *Graph) rebuildOutgoing() {
	g.outgoing = make(map[domain.Terminal][]*Connection)
	for _, c := range g.conns {
		g.outgoing[c.From] = append(g.outgoing[c.From], c)
	}
}

// Len возвращает количество узлов.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// NodeAt возвращает i-й узел в порядке добавления.
func (g *Graph) NodeAt(i int) *Node {
	return g.nodes[i]
}

// Node возвращает узел по ID.
func (g *Graph) Node(id domain.NodeID) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Nodes возвращает узлы в порядке добавления.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.nodes))
	copy(nodes, g.nodes)
	return nodes
}

// Connections возвращает соединения в порядке добавления.
func (g *Graph) Connections() []*Connection {
	conns := make([]*Connection, len(g.conns))
	copy(conns, g.conns)
	return conns
}

// Outgoing возвращает соединения, выходящие из терминала, в порядке добавления.
func (g *Graph) Outgoing(t domain.Terminal) []*Connection {
	return g.outgoing[t]
}

// HasTerminal проверяет, что терминал принадлежит узлу графа.
func (g *Graph) HasTerminal(t domain.Terminal) bool {
	node, ok := g.byID[t.Node]
	return ok && node.HasTerminal(t)
}

// Spec выгружает граф в сохраняемый формат.
func (g *Graph) Spec() domain.GraphSpec {
	spec := domain.GraphSpec{
		Version: SpecVersion,
		Nodes:   make([]domain.NodeSpec, 0, len(g.nodes)),
		Edges:   make([]domain.EdgeSpec, 0, len(g.conns)),
	}
	for _, n := range g.nodes {
		spec.Nodes = append(spec.Nodes, domain.NodeSpec{
			ID:       n.ID,
			Kind:     n.Kind,
			Position: n.Position,
			Settings: n.Settings,
		})
	}
	for _, c := range g.conns {
		spec.Edges = append(spec.Edges, domain.EdgeSpec{
			From:      c.From.Node,
			FromIndex: c.From.Index,
			To:        c.To.Node,
			ToIndex:   c.To.Index,
			Condition: append([]domain.Matcher(nil), c.Condition...),
		})
	}
	return spec
}
