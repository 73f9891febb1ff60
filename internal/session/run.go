package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Pulse/internal/events"
)

// Outcome — итог прогона без интерфейса.
type Outcome string

const (
	// OutcomePassed — все тесты пройдены.
	OutcomePassed Outcome = "passed"
	// OutcomeFailed — неверный выход в одном из тестов.
	OutcomeFailed Outcome = "failed"
	// OutcomeStalled — граф остановился, не пройдя тесты.
	OutcomeStalled Outcome = "stalled"
	// OutcomeTimedOut — исчерпан бюджет фаз.
	OutcomeTimedOut Outcome = "timed_out"
	// OutcomeError — нарушение контракта движка.
	OutcomeError Outcome = "error"
	// OutcomeCanceled — прогон отменён через контекст.
	OutcomeCanceled Outcome = "canceled"
)

// DefaultMaxStrides — бюджет фаз по умолчанию.
const DefaultMaxStrides = 10000

// Result — результат Run.
type Result struct {
	Outcome     Outcome `json:"outcome"`
	Strides     int     `json:"strides"`
	Steps       int     `json:"steps"`
	PassedCases int     `json:"passed_cases"`
	TotalCases  int     `json:"total_cases"`
	FailedCase  int     `json:"failed_case,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Err возвращает ошибку для неуспешного результата.
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomePassed:
		return nil
	case OutcomeError, OutcomeCanceled:
		return errors.New(r.Error)
	default:
		return fmt.Errorf("%s after %d strides (%d/%d cases passed)",
			r.Outcome, r.Strides, r.PassedCases, r.TotalCases)
	}
}

// Run прогоняет сессию фазами до прохождения всех тестов, провала,
// остановки графа, нарушения контракта, исчерпания бюджета или отмены ctx.
//
// maxStrides <= 0 означает DefaultMaxStrides. Run продолжает с текущего
// состояния; для прогона с нуля сначала вызовите Reset. В конце
// публикуется SimulationEnd.
func (s *Session) Run(ctx context.Context, maxStrides int) Result {
	if maxStrides <= 0 {
		maxStrides = DefaultMaxStrides
	}

	res := s.run(ctx, maxStrides)
	s.bus.Publish(events.SimulationEnd{})

	s.logger.Info("session run finished",
		"outcome", res.Outcome,
		"strides", res.Strides,
		"steps", res.Steps,
		"passed_cases", res.PassedCases,
		"total_cases", res.TotalCases,
	)
	return res
}

func (s *Session) run(ctx context.Context, maxStrides int) Result {
	for done := 0; ; done++ {
		if s.Passed() {
			return s.result(OutcomePassed, nil)
		}
		if _, _, failed := s.Progress(); failed {
			return s.result(OutcomeFailed, nil)
		}
		if s.isStalled() {
			return s.result(OutcomeStalled, nil)
		}
		if done >= maxStrides {
			return s.result(OutcomeTimedOut, nil)
		}

		if err := s.StrideWith(ctx, nil); err != nil {
			if ctx.Err() != nil {
				return s.result(OutcomeCanceled, err)
			}
			return s.result(OutcomeError, err)
		}
	}
}

func (s *Session) isStalled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stalled()
}

func (s *Session) result(outcome Outcome, err error) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result{
		Outcome:     outcome,
		Strides:     s.eval.Strides(),
		Steps:       s.eval.Steps(),
		PassedCases: s.tester.Passed(),
		TotalCases:  s.tester.Total(),
	}
	if outcome == OutcomeFailed {
		res.FailedCase = s.tester.CaseIndex()
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
