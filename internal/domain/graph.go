package domain

import "fmt"

// NodeKind — тип узла графа.
type NodeKind string

// Типы узлов.
const (
	KindPlus     NodeKind = "plus"
	KindMultiply NodeKind = "multiply"
	KindCombine  NodeKind = "combine"
	KindSplit    NodeKind = "split"
	KindNop      NodeKind = "nop"
	KindConstant NodeKind = "constant"
	KindInput    NodeKind = "input"
	KindOutput   NodeKind = "output"
)

// arities — количество входов и выходов для каждого типа узла.
var arities = map[NodeKind][2]int{
	KindPlus:     {2, 1},
	KindMultiply: {2, 1},
	KindCombine:  {2, 1},
	KindSplit:    {1, 2},
	KindNop:      {1, 1},
	KindConstant: {0, 1},
	KindInput:    {0, 1},
	KindOutput:   {1, 0},
}

// Arity возвращает (входы, выходы) для типа узла.
// ok=false для неизвестного типа.
func (k NodeKind) Arity() (inputs, outputs int, ok bool) {
	a, ok := arities[k]
	return a[0], a[1], ok
}

// IsValid проверяет, что тип узла известен.
func (k NodeKind) IsValid() bool {
	_, ok := arities[k]
	return ok
}

// NodeKinds возвращает все типы узлов в порядке палитры редактора.
func NodeKinds() []NodeKind {
	return []NodeKind{
		KindPlus, KindMultiply, KindCombine, KindSplit,
		KindNop, KindConstant, KindInput, KindOutput,
	}
}

// NodeID — идентификатор узла. Стабилен всё время жизни узла.
type NodeID int

// TokenID — идентификатор токена (program counter).
type TokenID int

// Direction — направление терминала.
type Direction int

const (
	// DirInput — входной терминал.
	DirInput Direction = iota
	// DirOutput — выходной терминал.
	DirOutput
)

// String возвращает "in" или "out".
func (d Direction) String() string {
	if d == DirOutput {
		return "out"
	}
	return "in"
}

// Terminal — вход или выход узла.
//
// Терминалы не хранятся отдельно: они выводятся из узла и индекса.
// Два терминала равны, если совпадают все три поля, поэтому Terminal
// можно использовать как ключ map.
type Terminal struct {
	Node  NodeID    `json:"node"`
	Dir   Direction `json:"dir"`
	Index int       `json:"index"`
}

// InputOf возвращает i-й входной терминал узла.
func InputOf(node NodeID, i int) Terminal {
	return Terminal{Node: node, Dir: DirInput, Index: i}
}

// OutputOf возвращает i-й выходной терминал узла.
func OutputOf(node NodeID, i int) Terminal {
	return Terminal{Node: node, Dir: DirOutput, Index: i}
}

// String возвращает представление вида 3.out[0].
func (t Terminal) String() string {
	return fmt.Sprintf("%d.%s[%d]", t.Node, t.Dir, t.Index)
}

// Matcher — элемент условия на соединении.
type Matcher string

// Допустимые матчеры.
const (
	// MatchWild совпадает с любым значением.
	MatchWild Matcher = "*"
	// MatchZero совпадает только с 0.
	MatchZero Matcher = "0"
	// MatchOne совпадает только с 1.
	MatchOne Matcher = "1"
)

// IsValid проверяет, что матчер известен.
func (m Matcher) IsValid() bool {
	switch m {
	case MatchWild, MatchZero, MatchOne:
		return true
	default:
		return false
	}
}

// GraphSpec — сохраняемое представление графа (формат редактора).
//
// Движок работает с engine.Graph; GraphSpec нужен только для
// сохранения, передачи по API и построения графа через engine.BuildGraph.
type GraphSpec struct {
	// Version — версия формата.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Nodes — узлы в порядке добавления. Порядок определяет порядок вычисления.
	Nodes []NodeSpec `json:"nodes" yaml:"nodes"`

	// Edges — соединения между терминалами.
	Edges []EdgeSpec `json:"edges" yaml:"edges"`
}

// NodeSpec — узел в сохранённом графе.
type NodeSpec struct {
	ID       NodeID       `json:"id" yaml:"id"`
	Kind     NodeKind     `json:"kind" yaml:"kind"`
	Position Position     `json:"position" yaml:"position"`
	Settings NodeSettings `json:"settings" yaml:"settings"`
}

// Position — координаты узла в редакторе. Движком не используются.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeSettings — неизменяемые настройки узла (зависят от типа).
type NodeSettings struct {
	// Value — литерал для constant.
	Value int64 `json:"value,omitempty" yaml:"value,omitempty"`

	// Repeat — constant срабатывает каждый раз, а не один.
	Repeat bool `json:"repeat,omitempty" yaml:"repeat,omitempty"`

	// Channel — индекс канала тестера для input/output.
	Channel int `json:"channel,omitempty" yaml:"channel,omitempty"`
}

// EdgeSpec — соединение в сохранённом графе.
type EdgeSpec struct {
	From      NodeID    `json:"from" yaml:"from"`
	FromIndex int       `json:"from_index" yaml:"from_index"`
	To        NodeID    `json:"to" yaml:"to"`
	ToIndex   int       `json:"to_index" yaml:"to_index"`
	Condition []Matcher `json:"condition,omitempty" yaml:"condition,omitempty"`
}
