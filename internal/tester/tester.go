package tester

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/engine"
	"github.com/shaiso/Pulse/internal/events"
)

// ErrInputsRemaining — все выходы теста получены, но входы прочитаны не полностью.
// Это противоречие в модели, а не ошибка графа пользователя.
var ErrInputsRemaining = fmt.Errorf("outputs complete with inputs remaining: %w", engine.ErrContractViolation)

// Tester — стенд для одного уровня.
//
// Состояние на тест: курсор по каждому входному каналу, курсор по
// каждому выходному каналу и флаг провала. Tester не потокобезопасен:
// им владеет тот же контекст, что и планировщиком.
type Tester struct {
	level  *domain.Level
	bus    *events.Bus
	logger *slog.Logger

	caseIndex    int
	inputCursor  []int
	outputCursor []int
	failed       bool
	passed       int
	done         bool
}

var _ engine.IO = (*Tester)(nil)

// New создаёт стенд. Уровень проверяется через Level.Validate.
// bus и logger могут быть nil.
func New(level *domain.Level, bus *events.Bus, logger *slog.Logger) (*Tester, error) {
	if level == nil {
		return nil, errors.New("level is nil")
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tester{
		level:  level,
		bus:    bus,
		logger: logger.With("level_id", level.ID),
	}
	t.resetCase(0)
	return t, nil
}

// Start возвращает стенд к первому тесту и публикует TestCaseStarted.
func (t *Tester) Start() {
	t.passed = 0
	t.done = false
	t.resetCase(0)
	t.bus.Publish(events.TestCaseStarted{Index: 0})
}

// Input возвращает следующее значение канала текущего теста.
// Несуществующий канал и исчерпанный канал неотличимы: ok=false.
func (t *Tester) Input(channel int) (domain.Value, bool) {
	if t.done {
		return domain.Value{}, false
	}

	tc := t.current()
	if channel < 0 || channel >= len(tc.Inputs) {
		return domain.Value{}, false
	}

	seq := t.inputCursor[channel]
	if seq >= len(tc.Inputs[channel]) {
		return domain.Value{}, false
	}

	t.inputCursor[channel]++
	t.bus.Publish(events.InputProduced{Channel: channel, Sequence: seq})
	return domain.Int(tc.Inputs[channel][seq]), true
}

// CheckOutput сверяет значение с ожидаемым.
//
// Возвращает ошибку только при ErrInputsRemaining. После прохождения
// всех тестов значения игнорируются.
func (t *Tester) CheckOutput(channel int, v domain.Value) error {
	if t.done {
		t.logger.Debug("output after all tests passed", "channel", channel, "value", v.String())
		return nil
	}

	tc := t.current()

	// Канала нет: выход всегда неожиданный
	if channel < 0 || channel >= len(tc.Outputs) {
		t.unexpected(channel, 0, nil, v)
		return nil
	}

	seq := t.outputCursor[channel]
	t.outputCursor[channel]++

	if seq >= len(tc.Outputs[channel]) {
		t.unexpected(channel, seq, nil, v)
		return nil
	}

	want := domain.Int(tc.Outputs[channel][seq])
	if !v.Equal(want) {
		t.unexpected(channel, seq, &want, v)
		return nil
	}

	t.bus.Publish(events.ExpectedOutputMatched{Channel: channel, Sequence: seq})
	return t.maybeAdvance()
}

// unexpected помечает тест проваленным.
func (t *Tester) unexpected(channel, seq int, want *domain.Value, got domain.Value) {
	t.failed = true

	attrs := []any{"case", t.caseIndex, "channel", channel, "sequence", seq, "actual", got.String()}
	if want != nil {
		attrs = append(attrs, "expected", want.String())
	}
	t.logger.Info("unexpected output", attrs...)

	t.bus.Publish(events.UnexpectedOutput{
		Channel:  channel,
		Sequence: seq,
		Expected: want,
		Actual:   got,
	})
}

// maybeAdvance переходит к следующему тесту, когда все выходы получены.
func (t *Tester) maybeAdvance() error {
	if t.failed {
		return nil
	}

	tc := t.current()
	for ch, expected := range tc.Outputs {
		if t.outputCursor[ch] < len(expected) {
			return nil
		}
	}

	for ch, inputs := range tc.Inputs {
		if t.inputCursor[ch] < len(inputs) {
			return fmt.Errorf("test case %d, channel %d: %d of %d inputs consumed: %w",
				t.caseIndex, ch, t.inputCursor[ch], len(inputs), ErrInputsRemaining)
		}
	}

	index := t.caseIndex
	t.passed++
	t.logger.Debug("test case passed", "case", index)
	t.bus.Publish(events.TestCasePassed{Index: index})

	if index+1 >= len(t.level.TestCases) {
		t.done = true
		t.logger.Info("all tests passed", "cases", t.passed)
		t.bus.Publish(events.AllTestsPassed{})
		return nil
	}

	t.resetCase(index + 1)
	t.bus.Publish(events.TestCaseStarted{Index: index + 1})
	return nil
}

// resetCase выставляет курсоры на начало теста.
func (t *Tester) resetCase(index int) {
	tc := t.level.TestCases[index]
	t.caseIndex = index
	t.inputCursor = make([]int, len(tc.Inputs))
	t.outputCursor = make([]int, len(tc.Outputs))
	t.failed = false
}

func (t *Tester) current() domain.TestCase {
	return t.level.TestCases[t.caseIndex]
}

// Level возвращает уровень.
func (t *Tester) Level() *domain.Level {
	return t.level
}

// CaseIndex возвращает индекс текущего теста.
func (t *Tester) CaseIndex() int {
	return t.caseIndex
}

// Passed возвращает количество пройденных тестов.
func (t *Tester) Passed() int {
	return t.passed
}

// Total возвращает количество тестов уровня.
func (t *Tester) Total() int {
	return len(t.level.TestCases)
}

// Failed сообщает, провален ли текущий тест.
func (t *Tester) Failed() bool {
	return t.failed
}

// Done сообщает, что все тесты пройдены.
func (t *Tester) Done() bool {
	return t.done
}
