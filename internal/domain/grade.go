package domain

import (
	"time"

	"github.com/google/uuid"
)

// Grade — проверка решения на тестах уровня.
//
// Grade создаётся через API в статусе PENDING, затем grader
// прогоняет граф в headless-режиме и записывает итог.
type Grade struct {
	// ID — уникальный идентификатор проверки.
	ID uuid.UUID `json:"id"`

	// SolutionID — проверяемое решение.
	SolutionID uuid.UUID `json:"solution_id"`

	// LevelID — уровень решения (копия Solution.LevelID).
	LevelID string `json:"level_id"`

	// Policy — политика срабатывания узлов: "single" или "cartesian".
	Policy string `json:"policy"`

	// Status — текущий статус.
	Status GradeStatus `json:"status"`

	// Strides — сколько фаз выполнено.
	Strides int `json:"strides"`

	// Steps — сколько шагов выполнено.
	Steps int `json:"steps"`

	// PassedCases — сколько тестов пройдено.
	PassedCases int `json:"passed_cases"`

	// TotalCases — сколько тестов в уровне.
	TotalCases int `json:"total_cases"`

	// Error — причина неуспеха.
	Error string `json:"error,omitempty"`

	// IdempotencyKey — ключ идемпотентности для повторных отправок.
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	// StartedAt — время начала проверки.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность проверки.
// Возвращает 0, если проверка ещё не завершена.
func (g *Grade) Duration() time.Duration {
	if g.StartedAt == nil || g.FinishedAt == nil {
		return 0
	}
	return g.FinishedAt.Sub(*g.StartedAt)
}

// IsFinished возвращает true, если проверка завершена.
func (g *Grade) IsFinished() bool {
	return g.Status.IsTerminal()
}

// MarkRunning переводит проверку в статус RUNNING.
func (g *Grade) MarkRunning() {
	now := time.Now()
	g.Status = GradeStatusRunning
	g.StartedAt = &now
}

// MarkPassed переводит проверку в статус PASSED.
func (g *Grade) MarkPassed() {
	g.finish(GradeStatusPassed, "")
}

// MarkFailed переводит проверку в статус FAILED.
func (g *Grade) MarkFailed(reason string) {
	g.finish(GradeStatusFailed, reason)
}

// MarkTimedOut переводит проверку в статус TIMED_OUT.
func (g *Grade) MarkTimedOut(reason string) {
	g.finish(GradeStatusTimedOut, reason)
}

// MarkErrored переводит проверку в статус ERROR.
func (g *Grade) MarkErrored(reason string) {
	g.finish(GradeStatusError, reason)
}

func (g *Grade) finish(status GradeStatus, reason string) {
	now := time.Now()
	g.Status = status
	g.FinishedAt = &now
	g.Error = reason
}
