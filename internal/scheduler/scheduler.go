package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/telemetry"
)

// Default configuration values.
const (
	defaultStaleAfter = 10 * time.Minute
	defaultBatchSize  = 100
)

// GradeStore — хранилище проверок (реализуется repo.GradeRepo).
type GradeStore interface {
	ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Grade, error)
	Update(ctx context.Context, g *domain.Grade) error
}

// Publisher публикует grade.pending (реализуется mq.Publisher).
type Publisher interface {
	PublishGradePending(ctx context.Context, gradeID uuid.UUID) error
}

// Scheduler — планировщик повторной отправки проверок.
type Scheduler struct {
	grades     GradeStore
	publisher  Publisher
	schedule   cron.Schedule
	staleAfter time.Duration
	batchSize  int
	logger     *slog.Logger

	nextDue time.Time
	now     func() time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	Grades    GradeStore
	Publisher Publisher // может быть nil: тогда проверки подхватит polling grader

	Cron       string        // расписание (default: DefaultCron)
	StaleAfter time.Duration // возраст зависшей проверки (default: 10m)
	BatchSize  int           // проверок за один проход (default: 100)

	Logger *slog.Logger
}

// New создаёт новый Scheduler. Первый проход выполняется на первом тике.
func New(cfg Config) (*Scheduler, error) {
	expr := cfg.Cron
	if expr == "" {
		expr = DefaultCron
	}
	schedule, err := ParseCron(expr)
	if err != nil {
		return nil, err
	}

	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		grades:     cfg.Grades,
		publisher:  cfg.Publisher,
		schedule:   schedule,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Tick выполняет проход, если наступило время по расписанию.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.now()
	if now.Before(s.nextDue) {
		return nil
	}
	s.nextDue = NextDue(s.schedule, now)

	n, err := s.Sweep(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("regrade sweep completed",
		"regraded", n,
		"next_due", s.nextDue,
	)
	return nil
}

// NextDue возвращает время следующего прохода.
func (s *Scheduler) NextDue() time.Time {
	return s.nextDue
}

// Sweep находит зависшие проверки и отправляет их заново.
//
// 1. Находит PENDING и RUNNING проверки старше StaleAfter
// 2. RUNNING возвращает в PENDING
// 3. Публикует grade.pending
//
// Ошибки одной проверки не блокируют обработку остальных.
// Возвращает количество отправленных проверок.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	grades, err := s.grades.ListStale(ctx, s.staleAfter, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list stale grades: %w", err)
	}
	if len(grades) == 0 {
		return 0, nil
	}

	s.logger.Debug("found stale grades", "count", len(grades))

	var regraded int
	for i := range grades {
		if err := s.regrade(ctx, &grades[i]); err != nil {
			s.logger.Error("failed to regrade",
				"grade_id", grades[i].ID,
				"status", grades[i].Status,
				"error", err,
			)
			continue
		}
		regraded++
	}
	return regraded, nil
}

// regrade возвращает проверку в очередь.
func (s *Scheduler) regrade(ctx context.Context, g *domain.Grade) error {
	if g.Status == domain.GradeStatusRunning {
		g.Status = domain.GradeStatusPending
		g.StartedAt = nil
		if err := s.grades.Update(ctx, g); err != nil {
			return fmt.Errorf("reset grade to pending: %w", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishGradePending(ctx, g.ID); err != nil {
			// Не фатально: grader заберёт проверку через polling
			s.logger.Warn("failed to publish grade.pending", "grade_id", g.ID, "error", err)
		}
	}

	telemetry.Regrades.Inc()
	s.logger.Info("grade re-queued",
		"grade_id", g.ID,
		"solution_id", g.SolutionID,
		"level_id", g.LevelID,
	)
	return nil
}
