package engine

import (
	"github.com/shaiso/Pulse/internal/domain"
)

// NodeState — изменяемое состояние вычисления узла.
//
// Хранится в таблице планировщика по NodeID и пересоздаётся при сбросе.
// Сейчас состояние есть только у constant.
type NodeState struct {
	// Fired — constant уже вычислялся хотя бы раз.
	Fired bool
}

// InputProvider — источник значений для узлов input.
type InputProvider interface {
	// Input возвращает следующее значение канала.
	// ok=false означает, что значения в текущем тесте закончились.
	Input(channel int) (v domain.Value, ok bool)
}

// OutputChecker — приёмник значений узлов output.
type OutputChecker interface {
	// CheckOutput сверяет значение канала с ожидаемым.
	// Неверное значение — не ошибка; ошибка означает нарушение контракта.
	CheckOutput(channel int, v domain.Value) error
}

// IO — внешний тестер: источник входов и проверка выходов.
type IO interface {
	InputProvider
	OutputChecker
}

// Evaluate вычисляет узел на кортеже входных значений.
//
// Возвращает ok=false, если узел не может сработать (constant уже
// сработал, у input закончились значения). Ошибка возвращается только
// при нарушении контракта. io может быть nil: тогда input всегда
// исчерпан, а output ничего не проверяет.
func Evaluate(n *Node, st *NodeState, io IO, in []domain.Value) ([]domain.Value, bool, error) {
	if len(in) != n.NumInputs {
		return nil, false, contractError(n, ErrInputArity,
			"got %d inputs, want %d", len(in), n.NumInputs)
	}

	switch n.Kind {
	case domain.KindPlus:
		a, b, err := operands(n, in)
		if err != nil {
			return nil, false, err
		}
		return []domain.Value{domain.Int(a + b)}, true, nil

	case domain.KindMultiply:
		a, b, err := operands(n, in)
		if err != nil {
			return nil, false, err
		}
		return []domain.Value{domain.Int(a * b)}, true, nil

	case domain.KindCombine:
		return []domain.Value{domain.Tuple(in[0], in[1])}, true, nil

	case domain.KindSplit:
		if !in[0].IsTuple() || in[0].Len() != 2 {
			return nil, false, contractError(n, ErrMalformedPair,
				"split expects a pair, got %s", in[0])
		}
		return []domain.Value{in[0].At(0), in[0].At(1)}, true, nil

	case domain.KindNop:
		return []domain.Value{in[0]}, true, nil

	case domain.KindConstant:
		fire := !st.Fired || n.Settings.Repeat
		st.Fired = true
		if !fire {
			return nil, false, nil
		}
		return []domain.Value{domain.Int(n.Settings.Value)}, true, nil

	case domain.KindInput:
		if io == nil {
			return nil, false, nil
		}
		v, ok := io.Input(n.Settings.Channel)
		if !ok {
			return nil, false, nil
		}
		return []domain.Value{v}, true, nil

	case domain.KindOutput:
		if io != nil {
			if err := io.CheckOutput(n.Settings.Channel, in[0]); err != nil {
				return nil, false, err
			}
		}
		return []domain.Value{}, true, nil

	default:
		return nil, false, contractError(n, ErrUnknownNodeKind, "unknown node kind %q", n.Kind)
	}
}

// operands извлекает два числа для plus/multiply.
func operands(n *Node, in []domain.Value) (int64, int64, error) {
	a, okA := in[0].Int()
	b, okB := in[1].Int()
	if !okA || !okB {
		return 0, 0, contractError(n, ErrNonNumericOperand,
			"operands must be numbers, got %s and %s", in[0], in[1])
	}
	return a, b, nil
}
