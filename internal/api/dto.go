package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/events"
	"github.com/shaiso/Pulse/internal/session"
)

// Level DTOs

// LevelSummary — уровень в списке (без тестов).
type LevelSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Inputs      int    `json:"inputs"`
	Outputs     int    `json:"outputs"`
	TestCases   int    `json:"test_cases"`
}

// LevelSummaryFromDomain конвертирует domain.Level в LevelSummary.
func LevelSummaryFromDomain(l *domain.Level) LevelSummary {
	ins, outs := l.Channels()
	return LevelSummary{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Inputs:      ins,
		Outputs:     outs,
		TestCases:   len(l.TestCases),
	}
}

// Solution DTOs

// CreateSolutionRequest — запрос на сохранение решения.
type CreateSolutionRequest struct {
	LevelID string           `json:"level_id" validate:"required,max=64"`
	Name    string           `json:"name,omitempty" validate:"max=200"`
	Graph   domain.GraphSpec `json:"graph"`
}

// SolutionResponse — ответ с решением.
type SolutionResponse struct {
	ID        uuid.UUID        `json:"id"`
	LevelID   string           `json:"level_id"`
	Name      string           `json:"name,omitempty"`
	Graph     domain.GraphSpec `json:"graph"`
	CreatedAt time.Time        `json:"created_at"`
}

// SolutionFromDomain конвертирует domain.Solution в SolutionResponse.
func SolutionFromDomain(s domain.Solution) SolutionResponse {
	return SolutionResponse{
		ID:        s.ID,
		LevelID:   s.LevelID,
		Name:      s.Name,
		Graph:     s.Graph,
		CreatedAt: s.CreatedAt,
	}
}

// Grade DTOs

// SubmitGradeRequest — запрос на проверку решения.
type SubmitGradeRequest struct {
	Policy         string `json:"policy,omitempty" validate:"omitempty,oneof=single cartesian overclocked"`
	IdempotencyKey string `json:"idempotency_key,omitempty" validate:"max=128"`
}

// GradeResponse — ответ с проверкой.
type GradeResponse struct {
	ID             uuid.UUID  `json:"id"`
	SolutionID     uuid.UUID  `json:"solution_id"`
	LevelID        string     `json:"level_id"`
	Policy         string     `json:"policy"`
	Status         string     `json:"status"`
	Strides        int        `json:"strides"`
	Steps          int        `json:"steps"`
	PassedCases    int        `json:"passed_cases"`
	TotalCases     int        `json:"total_cases"`
	Error          string     `json:"error,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// GradeFromDomain конвертирует domain.Grade в GradeResponse.
func GradeFromDomain(g domain.Grade) GradeResponse {
	return GradeResponse{
		ID:             g.ID,
		SolutionID:     g.SolutionID,
		LevelID:        g.LevelID,
		Policy:         g.Policy,
		Status:         string(g.Status),
		Strides:        g.Strides,
		Steps:          g.Steps,
		PassedCases:    g.PassedCases,
		TotalCases:     g.TotalCases,
		Error:          g.Error,
		IdempotencyKey: g.IdempotencyKey,
		StartedAt:      g.StartedAt,
		FinishedAt:     g.FinishedAt,
		CreatedAt:      g.CreatedAt,
	}
}

// Simulate DTOs

// SimulateRequest — запрос на синхронный прогон графа.
type SimulateRequest struct {
	LevelID    string           `json:"level_id" validate:"required,max=64"`
	Graph      domain.GraphSpec `json:"graph"`
	Policy     string           `json:"policy,omitempty" validate:"omitempty,oneof=single cartesian overclocked"`
	MaxStrides int              `json:"max_strides,omitempty" validate:"min=0"`
	Trace      bool             `json:"trace,omitempty"`
}

// TraceEvent — событие трассы с типом.
type TraceEvent struct {
	Kind  events.Kind  `json:"kind"`
	Event events.Event `json:"event"`
}

// SimulateResponse — результат прогона.
type SimulateResponse struct {
	Result session.Result `json:"result"`
	Trace  []TraceEvent   `json:"trace,omitempty"`
}

// TraceFromEvents конвертирует события в TraceEvent.
func TraceFromEvents(evs []events.Event) []TraceEvent {
	if evs == nil {
		return nil
	}
	out := make([]TraceEvent, len(evs))
	for i, e := range evs {
		out[i] = TraceEvent{Kind: e.Kind(), Event: e}
	}
	return out
}
