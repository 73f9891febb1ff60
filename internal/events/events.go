package events

import "github.com/shaiso/Pulse/internal/domain"

// Kind — тип события.
type Kind string

// Типы событий.
const (
	KindNodeFired             Kind = "node.fired"
	KindTokenAdvanced         Kind = "token.advanced"
	KindSimulationStart       Kind = "simulation.start"
	KindSimulationEnd         Kind = "simulation.end"
	KindTestCaseStarted       Kind = "testcase.started"
	KindInputProduced         Kind = "input.produced"
	KindExpectedOutputMatched Kind = "output.matched"
	KindUnexpectedOutput      Kind = "output.unexpected"
	KindTestCasePassed        Kind = "testcase.passed"
	KindAllTestsPassed        Kind = "tests.passed"
)

// Event — событие симуляции.
type Event interface {
	Kind() Kind
}

// TokenRef — снимок токена для наблюдателей.
// Наблюдатели никогда не получают сам токен.
type TokenRef struct {
	ID    domain.TokenID  `json:"id"`
	At    domain.Terminal `json:"at"`
	Value domain.Value    `json:"value"`
}

// NodeFired — узел сработал: прочитал входные токены и выпустил новые.
type NodeFired struct {
	Node     domain.NodeID `json:"node"`
	Consumed []TokenRef    `json:"consumed"`
	Produced []TokenRef    `json:"produced"`
}

// TokenAdvanced — токен прошёл по соединению.
type TokenAdvanced struct {
	Token domain.TokenID  `json:"token"`
	From  domain.Terminal `json:"from"`
	To    domain.Terminal `json:"to"`
}

// SimulationStart — симуляция создана или сброшена.
type SimulationStart struct{}

// SimulationEnd — симуляция остановлена.
type SimulationEnd struct{}

// TestCaseStarted — тестер перешёл к тесту Index.
type TestCaseStarted struct {
	Index int `json:"index"`
}

// InputProduced — тестер выдал значение Sequence канала Channel.
type InputProduced struct {
	Channel  int `json:"channel"`
	Sequence int `json:"sequence"`
}

// ExpectedOutputMatched — значение на выходе совпало с ожидаемым.
type ExpectedOutputMatched struct {
	Channel  int `json:"channel"`
	Sequence int `json:"sequence"`
}

// UnexpectedOutput — значение на выходе не совпало с ожидаемым.
// Expected равен nil, если ожидаемых значений в канале больше нет.
type UnexpectedOutput struct {
	Channel  int           `json:"channel"`
	Sequence int           `json:"sequence"`
	Expected *domain.Value `json:"expected,omitempty"`
	Actual   domain.Value  `json:"actual"`
}

// TestCasePassed — тест Index пройден.
type TestCasePassed struct {
	Index int `json:"index"`
}

// AllTestsPassed — пройдены все тесты уровня.
type AllTestsPassed struct{}

func (NodeFired) Kind() Kind             { return KindNodeFired }
func (TokenAdvanced) Kind() Kind         { return KindTokenAdvanced }
func (SimulationStart) Kind() Kind       { return KindSimulationStart }
func (SimulationEnd) Kind() Kind         { return KindSimulationEnd }
func (TestCaseStarted) Kind() Kind       { return KindTestCaseStarted }
func (InputProduced) Kind() Kind         { return KindInputProduced }
func (ExpectedOutputMatched) Kind() Kind { return KindExpectedOutputMatched }
func (UnexpectedOutput) Kind() Kind      { return KindUnexpectedOutput }
func (TestCasePassed) Kind() Kind        { return KindTestCasePassed }
func (AllTestsPassed) Kind() Kind        { return KindAllTestsPassed }
