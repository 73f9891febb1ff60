package engine

import (
	"errors"
	"fmt"

	"github.com/shaiso/Pulse/internal/domain"
)

// Ошибки валидации графа.
var (
	// ErrUnknownNodeKind — неизвестный тип узла.
	ErrUnknownNodeKind = errors.New("unknown node kind")

	// ErrDuplicateNodeID — несколько узлов с одинаковым ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode — ссылка на несуществующий узел.
	ErrUnknownNode = errors.New("unknown node")

	// ErrTerminalOutOfRange — индекс терминала вне диапазона узла.
	ErrTerminalOutOfRange = errors.New("terminal index out of range")

	// ErrTerminalDirection — соединение должно идти из выхода во вход.
	ErrTerminalDirection = errors.New("connection must go from an output to an input")

	// ErrUnknownMatcher — неизвестный элемент условия.
	ErrUnknownMatcher = errors.New("unknown condition matcher")

	// ErrNegativeChannel — отрицательный индекс канала у input/output.
	ErrNegativeChannel = errors.New("negative channel index")

	// ErrUnsupportedVersion — неизвестная версия формата GraphSpec.
	ErrUnsupportedVersion = errors.New("unsupported graph spec version")
)

// Нарушения контракта движка. Это не ошибки пользовательского графа:
// шаг прерывается, хранилище токенов остаётся нетронутым.
var (
	// ErrContractViolation — базовая ошибка всех нарушений контракта.
	ErrContractViolation = errors.New("engine contract violation")

	// ErrNonNumericOperand — plus/multiply получили не число.
	ErrNonNumericOperand = errors.New("arithmetic operand is not a number")

	// ErrMalformedPair — split получил не пару.
	ErrMalformedPair = errors.New("split input is not a pair")

	// ErrOutputArity — вычисление вернуло неверное число выходов.
	ErrOutputArity = errors.New("output count does not match node arity")

	// ErrInputArity — вычисление получило неверное число входов.
	ErrInputArity = errors.New("input count does not match node arity")
)

// ValidationError — ошибка валидации графа с контекстом.
type ValidationError struct {
	Subject string // "node 3", "edge 1"
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Subject != "" {
		return e.Subject + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(subject, field, message string, err error) *ValidationError {
	return &ValidationError{
		Subject: subject,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// ContractError — нарушение контракта при вычислении узла.
//
// errors.Is(err, ErrContractViolation) истинно для любого ContractError,
// а errors.Is(err, ErrNonNumericOperand) и т.п. — для конкретной причины.
type ContractError struct {
	Node    domain.NodeID
	Kind    domain.NodeKind
	Message string
	Err     error
}

// Error реализует интерфейс error.
func (e *ContractError) Error() string {
	return fmt.Sprintf("node %d (%s): %s", e.Node, e.Kind, e.Message)
}

// Unwrap возвращает причину.
func (e *ContractError) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибку с ErrContractViolation.
func (e *ContractError) Is(target error) bool {
	return target == ErrContractViolation
}

func contractError(n *Node, err error, format string, args ...any) *ContractError {
	return &ContractError{
		Node:    n.ID,
		Kind:    n.Kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
