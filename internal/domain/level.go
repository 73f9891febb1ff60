package domain

import (
	"errors"
	"fmt"
)

// Ошибки описания уровня.
var (
	// ErrNoTestCases — уровень не содержит тестов.
	ErrNoTestCases = errors.New("level has no test cases")

	// ErrChannelMismatch — тесты уровня расходятся в количестве каналов.
	ErrChannelMismatch = errors.New("test cases disagree on channel count")

	// ErrNoExpectedOutputs — тест не ожидает ни одного значения и не может
	// завершиться.
	ErrNoExpectedOutputs = errors.New("test case expects no outputs")
)

// Level — уровень: задача, которую решает граф пользователя.
//
// Каждый тест задаёт последовательности для входных каналов (их читают
// узлы input) и ожидаемые последовательности для выходных каналов
// (их проверяют узлы output). Все тесты уровня имеют одинаковое
// количество входных и выходных каналов.
type Level struct {
	// ID — короткий идентификатор (например, "addition").
	ID string `json:"id" yaml:"id"`

	// Name — название для отображения.
	Name string `json:"name" yaml:"name"`

	// Description — формулировка задачи.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// TestCases — тесты в порядке прохождения.
	TestCases []TestCase `json:"test_cases" yaml:"test_cases"`
}

// TestCase — один тест уровня.
type TestCase struct {
	// Inputs — последовательность значений для каждого входного канала.
	Inputs [][]int64 `json:"inputs" yaml:"inputs"`

	// Outputs — ожидаемая последовательность для каждого выходного канала.
	Outputs [][]int64 `json:"outputs" yaml:"outputs"`
}

// ExpectedCount возвращает число ожидаемых значений по всем каналам.
func (tc TestCase) ExpectedCount() int {
	n := 0
	for _, ch := range tc.Outputs {
		n += len(ch)
	}
	return n
}

// Validate проверяет, что уровень пригоден для тестера.
func (l *Level) Validate() error {
	if len(l.TestCases) == 0 {
		return fmt.Errorf("level %s: %w", l.ID, ErrNoTestCases)
	}

	ins, outs := l.Channels()
	for i, tc := range l.TestCases {
		if len(tc.Inputs) != ins || len(tc.Outputs) != outs {
			return fmt.Errorf("level %s: test case %d has %d/%d channels, want %d/%d: %w",
				l.ID, i, len(tc.Inputs), len(tc.Outputs), ins, outs, ErrChannelMismatch)
		}
		if tc.ExpectedCount() == 0 {
			return fmt.Errorf("level %s: test case %d: %w", l.ID, i, ErrNoExpectedOutputs)
		}
	}
	return nil
}

// Channels возвращает количество входных и выходных каналов
// (по первому тесту).
func (l *Level) Channels() (inputs, outputs int) {
	if len(l.TestCases) == 0 {
		return 0, 0
	}
	return len(l.TestCases[0].Inputs), len(l.TestCases[0].Outputs)
}
