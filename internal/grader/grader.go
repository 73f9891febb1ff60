package grader

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/mq"
	"github.com/shaiso/Pulse/internal/session"
	"github.com/shaiso/Pulse/internal/telemetry"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Second
	defaultBatchSize    = 100
	defaultPrefetch     = 4
)

// GradeStore — хранилище проверок (реализуется repo.GradeRepo).
type GradeStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Grade, error)
	Update(ctx context.Context, g *domain.Grade) error
	ListPending(ctx context.Context, limit int) ([]domain.Grade, error)
}

// SolutionStore — хранилище решений (реализуется repo.SolutionRepo).
type SolutionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Solution, error)
}

// LevelSource — каталог уровней (реализуется levels.Catalog).
type LevelSource interface {
	Get(id string) (*domain.Level, error)
}

// Notifier публикует итоги проверок (реализуется mq.Publisher).
type Notifier interface {
	PublishGradeCompleted(ctx context.Context, payload mq.GradeCompletedPayload) error
}

// Grader выполняет проверки решений.
//
// Проверка — это прогон сессии без интерфейса: граф решения
// выполняется фазами, пока тестер не примет все тесты, не найдёт
// неверный выход или не кончится бюджет фаз.
type Grader struct {
	grades    GradeStore
	solutions SolutionStore
	levels    LevelSource
	notifier  Notifier
	conn      *mq.Connection

	maxStrides int

	// Active grades — проверки в работе (gradeID → время начала)
	active map[uuid.UUID]time.Time
	mu     sync.RWMutex

	consumer *mq.Consumer

	pollInterval time.Duration
	batchSize    int
	prefetch     int

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Grader.
type Config struct {
	Grades    GradeStore
	Solutions SolutionStore
	Levels    LevelSource

	// Notifier — может быть nil: тогда grade.completed не публикуется.
	Notifier Notifier

	// Conn — соединение с RabbitMQ. Если nil, работает только polling.
	Conn *mq.Connection

	// MaxStrides — бюджет фаз на проверку (default: session.DefaultMaxStrides).
	MaxStrides int

	PollInterval time.Duration // интервал polling (default: 10s)
	BatchSize    int           // количество проверок за один poll (default: 100)
	Prefetch     int           // prefetch consumer (default: 4)

	Logger *slog.Logger
}

// New создаёт новый Grader.
func New(cfg Config) *Grader {
	maxStrides := cfg.MaxStrides
	if maxStrides <= 0 {
		maxStrides = session.DefaultMaxStrides
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Grader{
		grades:       cfg.Grades,
		solutions:    cfg.Solutions,
		levels:       cfg.Levels,
		notifier:     cfg.Notifier,
		conn:         cfg.Conn,
		maxStrides:   maxStrides,
		active:       make(map[uuid.UUID]time.Time),
		pollInterval: pollInterval,
		batchSize:    batchSize,
		prefetch:     prefetch,
		logger:       logger,
	}
}

// Start запускает Grader.
//
// Запускает:
//   - Consumer для grades.pending (если есть соединение)
//   - Polling горутину для fallback
func (g *Grader) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	g.cancelFunc = cancel

	g.logger.Info("starting grader",
		"poll_interval", g.pollInterval,
		"batch_size", g.batchSize,
		"max_strides", g.maxStrides,
	)

	if g.conn != nil {
		g.consumer = mq.NewConsumer(g.conn, g.logger, mq.ConsumerConfig{
			Queue:    string(mq.QueueGradesPending),
			Handler:  g.handleGradePending,
			Prefetch: g.prefetch,
		})

		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			if err := g.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				g.logger.Error("grade consumer error", "error", err)
			}
		}()
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.pollLoop(ctx)
	}()

	g.logger.Info("grader started")
	return nil
}

// Stop останавливает Grader и ждёт завершения текущих проверок.
func (g *Grader) Stop() {
	g.stoppedMu.Lock()
	g.stopped = true
	g.stoppedMu.Unlock()

	g.logger.Info("stopping grader...")

	if g.cancelFunc != nil {
		g.cancelFunc()
	}
	if g.consumer != nil {
		g.consumer.Stop()
	}

	g.wg.Wait()

	g.logger.Info("grader stopped", "active_grades", g.ActiveCount())
}

// IsStopped проверяет, остановлен ли Grader.
func (g *Grader) IsStopped() bool {
	g.stoppedMu.RLock()
	defer g.stoppedMu.RUnlock()
	return g.stopped
}

// pollLoop — цикл polling для fallback.
func (g *Grader) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	// Первый poll сразу: подхватываем проверки, созданные пока grader был выключен
	g.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.poll(ctx)
		}
	}
}

// poll выполняет один цикл polling.
func (g *Grader) poll(ctx context.Context) {
	grades, err := g.grades.ListPending(ctx, g.batchSize)
	if err != nil {
		g.logger.Error("failed to list pending grades", "error", err)
		return
	}
	if len(grades) == 0 {
		return
	}

	g.logger.Debug("poll found pending grades", "count", len(grades))

	for i := range grades {
		if ctx.Err() != nil {
			return
		}
		id := grades[i].ID
		if g.isActive(id) {
			continue
		}
		if err := g.Process(ctx, id); err != nil && !skippable(err) {
			g.logger.Error("failed to process grade from poll", "grade_id", id, "error", err)
		}
	}
}

// isActive проверяет, выполняется ли проверка.
func (g *Grader) isActive(id uuid.UUID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, exists := g.active[id]
	return exists
}

// acquire помечает проверку активной.
func (g *Grader) acquire(id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.active[id]; exists {
		return ErrGradeAlreadyActive
	}
	g.active[id] = time.Now()
	telemetry.ActiveGrades.Inc()
	return nil
}

// release снимает отметку активности.
func (g *Grader) release(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.active[id]; exists {
		delete(g.active, id)
		telemetry.ActiveGrades.Dec()
	}
}

// ActiveCount возвращает количество выполняемых проверок.
func (g *Grader) ActiveCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.active)
}

// skippable — ошибки, означающие, что проверку уже обработал кто-то другой.
func skippable(err error) bool {
	return errors.Is(err, ErrGradeNotPending) || errors.Is(err, ErrGradeAlreadyActive)
}
