package grader

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/events"
	"github.com/shaiso/Pulse/internal/mq"
	"github.com/shaiso/Pulse/internal/repo"
	"github.com/shaiso/Pulse/internal/session"
	"github.com/shaiso/Pulse/internal/telemetry"
)

// handleGradePending обрабатывает событие о новой проверке.
func (g *Grader) handleGradePending(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.GradePendingPayload](&delivery.Message)
	if err != nil {
		g.logger.Error("failed to parse grade.pending payload", "error", err)
		return mq.Permanent(err)
	}

	g.logger.Debug("received grade.pending event", "grade_id", payload.GradeID)

	if err := g.Process(ctx, payload.GradeID); err != nil {
		if skippable(err) {
			g.logger.Debug("grade not processed", "grade_id", payload.GradeID, "reason", err)
			return nil
		}
		return err
	}
	return nil
}

// Process выполняет одну проверку.
//
// Проверка должна быть в статусе PENDING. Удалённое решение, неизвестный
// уровень и некорректный граф финализируют проверку как ERROR. При сбое
// хранилища или отмене ctx проверка возвращается в PENDING, а ошибка
// возвращается вызывающему.
func (g *Grader) Process(ctx context.Context, id uuid.UUID) error {
	// 1. Загружаем проверку
	grade, err := g.grades.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return mq.Permanent(fmt.Errorf("%w: %s", ErrGradeNotFound, id))
		}
		return fmt.Errorf("get grade: %w", err)
	}

	// 2. Проверяем статус
	if grade.Status != domain.GradeStatusPending {
		return ErrGradeNotPending
	}

	// 3. Отмечаем активной
	if err := g.acquire(id); err != nil {
		return err
	}
	defer g.release(id)

	logger := telemetry.WithLevelID(telemetry.WithGradeID(g.logger, id.String()), grade.LevelID)

	// 4. Переводим в RUNNING
	grade.MarkRunning()
	if err := g.grades.Update(ctx, grade); err != nil {
		return fmt.Errorf("update grade to running: %w", err)
	}
	logger.Info("grade started", "solution_id", grade.SolutionID, "policy", grade.Policy)

	// 5. Прогон
	res, err := g.evaluate(ctx, grade)
	switch {
	case errors.Is(err, ErrInvalidSolution):
		grade.MarkErrored(err.Error())
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return g.requeue(grade, err)
	case res.Outcome == session.OutcomeCanceled:
		return g.requeue(grade, ctx.Err())
	default:
		telemetry.ObserveRun(string(res.Outcome), res.Strides)
		applyResult(grade, res)
	}

	// 6. Финализация
	if err := g.grades.Update(context.WithoutCancel(ctx), grade); err != nil {
		return fmt.Errorf("finalize grade: %w", err)
	}
	telemetry.ObserveGrade(grade.Status.String(), grade.Duration())

	logger.Info("grade finished",
		"status", grade.Status,
		"strides", grade.Strides,
		"passed_cases", grade.PassedCases,
		"total_cases", grade.TotalCases,
		"duration", grade.Duration(),
	)

	g.notify(ctx, grade)
	return nil
}

// evaluate загружает решение и уровень и прогоняет сессию.
// Ошибка означает, что прогон не мог начаться.
func (g *Grader) evaluate(ctx context.Context, grade *domain.Grade) (session.Result, error) {
	sol, err := g.solutions.GetByID(ctx, grade.SolutionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return session.Result{}, fmt.Errorf("%w: solution %s not found", ErrInvalidSolution, grade.SolutionID)
		}
		return session.Result{}, fmt.Errorf("load solution %s: %w", grade.SolutionID, err)
	}

	level, err := g.levels.Get(grade.LevelID)
	if err != nil {
		return session.Result{}, fmt.Errorf("%w: %w", ErrInvalidSolution, err)
	}
	grade.TotalCases = len(level.TestCases)

	res, _, err := session.RunHeadless(ctx, session.Headless{
		Spec:       &sol.Graph,
		Level:      level,
		Policy:     grade.Policy,
		MaxStrides: g.maxStrides,
		Listeners:  []events.Listener{telemetry.EventCounter()},
		Logger:     g.logger,
	})
	if err != nil {
		return session.Result{}, fmt.Errorf("%w: %w", ErrInvalidSolution, err)
	}
	return res, nil
}

// applyResult переносит итог прогона в проверку.
func applyResult(grade *domain.Grade, res session.Result) {
	grade.Strides = res.Strides
	grade.Steps = res.Steps
	grade.PassedCases = res.PassedCases
	grade.TotalCases = res.TotalCases

	switch res.Outcome {
	case session.OutcomePassed:
		grade.MarkPassed()
	case session.OutcomeFailed:
		grade.MarkFailed(fmt.Sprintf("unexpected output in test case %d", res.FailedCase))
	case session.OutcomeStalled:
		grade.MarkFailed(fmt.Sprintf("graph stalled after %d strides", res.Strides))
	case session.OutcomeTimedOut:
		grade.MarkTimedOut(fmt.Sprintf("stride budget of %d exhausted", res.Strides))
	default:
		grade.MarkErrored(res.Error)
	}
}

// requeue возвращает прерванную проверку в PENDING.
func (g *Grader) requeue(grade *domain.Grade, cause error) error {
	grade.Status = domain.GradeStatusPending
	grade.StartedAt = nil
	if err := g.grades.Update(context.Background(), grade); err != nil {
		return fmt.Errorf("requeue grade: %w", err)
	}
	g.logger.Info("grade interrupted, returned to pending", "grade_id", grade.ID)
	return cause
}

// notify публикует grade.completed. Ошибка публикации не влияет на проверку.
func (g *Grader) notify(ctx context.Context, grade *domain.Grade) {
	if g.notifier == nil {
		return
	}
	err := g.notifier.PublishGradeCompleted(ctx, mq.GradeCompletedPayload{
		GradeID:     grade.ID,
		SolutionID:  grade.SolutionID,
		LevelID:     grade.LevelID,
		Status:      grade.Status.String(),
		PassedCases: grade.PassedCases,
		TotalCases:  grade.TotalCases,
		Strides:     grade.Strides,
		Error:       grade.Error,
	})
	if err != nil {
		g.logger.Warn("failed to publish grade.completed", "grade_id", grade.ID, "error", err)
	}
}
