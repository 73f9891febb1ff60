package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Pulse/internal/domain"
)

// SolutionRepo — репозиторий для работы с solutions.
type SolutionRepo struct {
	pool *pgxpool.Pool
}

// NewSolutionRepo создаёт новый SolutionRepo.
func NewSolutionRepo(pool *pgxpool.Pool) *SolutionRepo {
	return &SolutionRepo{pool: pool}
}

// Create сохраняет решение.
func (r *SolutionRepo) Create(ctx context.Context, s *domain.Solution) error {
	graphJSON, err := json.Marshal(s.Graph)
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}

	query := `
		INSERT INTO solutions (id, level_id, name, graph, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.pool.Exec(ctx, query, s.ID, s.LevelID, s.Name, graphJSON, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert solution: %w", err)
	}
	return nil
}

// GetByID возвращает решение по ID.
func (r *SolutionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Solution, error) {
	query := `
		SELECT id, level_id, name, graph, created_at
		FROM solutions
		WHERE id = $1
	`
	return scanSolution(r.pool.QueryRow(ctx, query, id))
}

// List возвращает решения, новые первыми. Пустой levelID — все уровни.
func (r *SolutionRepo) List(ctx context.Context, filter SolutionFilter) ([]domain.Solution, error) {
	query := `
		SELECT id, level_id, name, graph, created_at
		FROM solutions
		WHERE ($1::text IS NULL OR level_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, nullString(filter.LevelID), filter.limit(), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list solutions: %w", err)
	}
	defer rows.Close()

	var solutions []domain.Solution
	for rows.Next() {
		s, err := scanSolution(rows)
		if err != nil {
			return nil, err
		}
		solutions = append(solutions, *s)
	}
	return solutions, rows.Err()
}

// Delete удаляет решение вместе с его проверками.
func (r *SolutionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM solutions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete solution: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SolutionFilter — параметры фильтрации solutions.
type SolutionFilter struct {
	LevelID string
	Limit   int
	Offset  int
}

func (f SolutionFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// scanSolution сканирует строку в Solution. pgx.Rows реализует pgx.Row.
func scanSolution(row pgx.Row) (*domain.Solution, error) {
	var s domain.Solution
	var graphJSON []byte

	err := row.Scan(&s.ID, &s.LevelID, &s.Name, &graphJSON, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan solution: %w", err)
	}

	if err := json.Unmarshal(graphJSON, &s.Graph); err != nil {
		return nil, fmt.Errorf("unmarshal graph: %w", err)
	}
	return &s, nil
}
