package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/repo"
)

// SolutionStore — хранилище решений (реализуется repo.SolutionRepo).
type SolutionStore interface {
	Create(ctx context.Context, s *domain.Solution) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Solution, error)
	List(ctx context.Context, filter repo.SolutionFilter) ([]domain.Solution, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// GradeStore — хранилище проверок (реализуется repo.GradeRepo).
type GradeStore interface {
	Create(ctx context.Context, g *domain.Grade) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Grade, error)
	GetByIdempotencyKey(ctx context.Context, solutionID uuid.UUID, key string) (*domain.Grade, error)
	List(ctx context.Context, filter repo.GradeFilter) ([]domain.Grade, error)
}

// LevelSource — каталог уровней (реализуется levels.Catalog).
type LevelSource interface {
	Get(id string) (*domain.Level, error)
	List() []*domain.Level
}

// Publisher публикует grade.pending (реализуется mq.Publisher).
type Publisher interface {
	PublishGradePending(ctx context.Context, gradeID uuid.UUID) error
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	solutions SolutionStore
	grades    GradeStore
	levels    LevelSource
	publisher Publisher
	logger    *slog.Logger

	maxStrides int
}

// Config — конфигурация для создания Handler.
type Config struct {
	Solutions SolutionStore
	Grades    GradeStore
	Levels    LevelSource
	Publisher Publisher // может быть nil: grader найдёт проверки через polling
	Logger    *slog.Logger

	// MaxStrides — верхняя граница бюджета фаз для /simulate.
	MaxStrides int
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxStrides := cfg.MaxStrides
	if maxStrides <= 0 {
		maxStrides = defaultSimulateStrides
	}

	return &Handler{
		solutions:  cfg.Solutions,
		grades:     cfg.Grades,
		levels:     cfg.Levels,
		publisher:  cfg.Publisher,
		logger:     logger,
		maxStrides: maxStrides,
	}
}
