package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Pulse/internal/domain"
)

// DefaultLimit — размер страницы по умолчанию.
const DefaultLimit = 50

// gradeColumns — колонки grades в порядке scanGrade.
const gradeColumns = `
	id, solution_id, level_id, policy, status, strides, steps,
	passed_cases, total_cases, error, idempotency_key,
	started_at, finished_at, created_at
`

// GradeRepo — репозиторий для работы с grades.
type GradeRepo struct {
	pool *pgxpool.Pool
}

// NewGradeRepo создаёт новый GradeRepo.
func NewGradeRepo(pool *pgxpool.Pool) *GradeRepo {
	return &GradeRepo{pool: pool}
}

// Create создаёт новую проверку.
// Повтор ключа идемпотентности для того же решения даёт ErrAlreadyExists.
func (r *GradeRepo) Create(ctx context.Context, g *domain.Grade) error {
	query := `
		INSERT INTO grades (id, solution_id, level_id, policy, status, total_cases, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		g.ID,
		g.SolutionID,
		g.LevelID,
		g.Policy,
		g.Status,
		g.TotalCases,
		nullString(g.IdempotencyKey),
		g.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert grade: %w", err)
	}
	return nil
}

// GetByID возвращает проверку по ID.
func (r *GradeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Grade, error) {
	query := `SELECT ` + gradeColumns + ` FROM grades WHERE id = $1`
	return scanGrade(r.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey возвращает проверку по ключу идемпотентности.
func (r *GradeRepo) GetByIdempotencyKey(ctx context.Context, solutionID uuid.UUID, key string) (*domain.Grade, error) {
	query := `SELECT ` + gradeColumns + ` FROM grades WHERE solution_id = $1 AND idempotency_key = $2`
	return scanGrade(r.pool.QueryRow(ctx, query, solutionID, key))
}

// List возвращает проверки с фильтрацией, новые первыми.
func (r *GradeRepo) List(ctx context.Context, filter GradeFilter) ([]domain.Grade, error) {
	query := `SELECT ` + gradeColumns + `
		FROM grades
		WHERE ($1::uuid IS NULL OR solution_id = $1)
		  AND ($2::text IS NULL OR status = $2::grade_status)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := r.pool.Query(ctx, query,
		nullUUID(filter.SolutionID),
		nullString(string(filter.Status)),
		limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return collectGrades(rows)
}

// Update записывает статус и результат проверки.
func (r *GradeRepo) Update(ctx context.Context, g *domain.Grade) error {
	query := `
		UPDATE grades
		SET status = $2, strides = $3, steps = $4, passed_cases = $5, total_cases = $6,
		    error = $7, started_at = $8, finished_at = $9
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		g.ID,
		g.Status,
		g.Strides,
		g.Steps,
		g.PassedCases,
		g.TotalCases,
		nullString(g.Error),
		g.StartedAt,
		g.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPending возвращает проверки в статусе PENDING, старые первыми.
func (r *GradeRepo) ListPending(ctx context.Context, limit int) ([]domain.Grade, error) {
	query := `SELECT ` + gradeColumns + `
		FROM grades
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending grades: %w", err)
	}
	return collectGrades(rows)
}

// ListStale возвращает проверки, застрявшие в PENDING или RUNNING
// дольше olderThan.
func (r *GradeRepo) ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Grade, error) {
	query := `SELECT ` + gradeColumns + `
		FROM grades
		WHERE (status = 'PENDING' AND created_at < $1)
		   OR (status = 'RUNNING' AND started_at < $1)
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, time.Now().Add(-olderThan), limit)
	if err != nil {
		return nil, fmt.Errorf("list stale grades: %w", err)
	}
	return collectGrades(rows)
}

// --- Helpers ---

// GradeFilter — параметры фильтрации grades.
type GradeFilter struct {
	SolutionID *uuid.UUID
	Status     domain.GradeStatus
	Limit      int
	Offset     int
}

func collectGrades(rows pgx.Rows) ([]domain.Grade, error) {
	defer rows.Close()

	var grades []domain.Grade
	for rows.Next() {
		g, err := scanGrade(rows)
		if err != nil {
			return nil, err
		}
		grades = append(grades, *g)
	}
	return grades, rows.Err()
}

// scanGrade сканирует одну строку в Grade.
func scanGrade(row pgx.Row) (*domain.Grade, error) {
	var g domain.Grade
	var gradeError *string
	var idempotencyKey *string

	err := row.Scan(
		&g.ID,
		&g.SolutionID,
		&g.LevelID,
		&g.Policy,
		&g.Status,
		&g.Strides,
		&g.Steps,
		&g.PassedCases,
		&g.TotalCases,
		&gradeError,
		&idempotencyKey,
		&g.StartedAt,
		&g.FinishedAt,
		&g.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan grade: %w", err)
	}

	if gradeError != nil {
		g.Error = *gradeError
	}
	if idempotencyKey != nil {
		g.IdempotencyKey = *idempotencyKey
	}
	return &g, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullUUID возвращает nil для пустого UUID.
func nullUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}
