package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/engine"
	"github.com/shaiso/Pulse/internal/repo"
	"github.com/shaiso/Pulse/internal/telemetry"
)

// SubmitGrade ставит решение в очередь на проверку.
// POST /api/v1/solutions/{id}/grades
//
// С ключом идемпотентности повторный запрос возвращает уже созданную
// проверку со статусом 200.
func (h *Handler) SubmitGrade(w http.ResponseWriter, r *http.Request) {
	solutionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req SubmitGradeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	policy, err := engine.ParsePolicy(req.Policy)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	sol, err := h.solutions.GetByID(r.Context(), solutionID)
	if HandleRepoError(w, h.logger, err, "solution not found") {
		return
	}

	// Идемпотентность
	if req.IdempotencyKey != "" {
		existing, err := h.grades.GetByIdempotencyKey(r.Context(), solutionID, req.IdempotencyKey)
		if err == nil {
			Success(w, GradeFromDomain(*existing))
			return
		}
		if !errors.Is(err, repo.ErrNotFound) {
			InternalError(w, h.logger, err)
			return
		}
	}

	level, err := h.levels.Get(sol.LevelID)
	if HandleRepoError(w, h.logger, err, "level not found") {
		return
	}

	grade := &domain.Grade{
		ID:             uuid.New(),
		SolutionID:     sol.ID,
		LevelID:        sol.LevelID,
		Policy:         policy.String(),
		Status:         domain.GradeStatusPending,
		TotalCases:     len(level.TestCases),
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.grades.Create(r.Context(), grade); err != nil {
		// Гонка двух запросов с одним ключом
		if errors.Is(err, repo.ErrAlreadyExists) && req.IdempotencyKey != "" {
			existing, getErr := h.grades.GetByIdempotencyKey(r.Context(), solutionID, req.IdempotencyKey)
			if getErr == nil {
				Success(w, GradeFromDomain(*existing))
				return
			}
		}
		HandleRepoError(w, h.logger, err, "")
		return
	}

	logger := telemetry.WithGradeID(telemetry.FromContext(r.Context()), grade.ID.String())
	logger.Info("grade submitted", "solution_id", sol.ID, "policy", grade.Policy)

	if h.publisher != nil {
		if err := h.publisher.PublishGradePending(r.Context(), grade.ID); err != nil {
			// Не фатально: grader заберёт проверку через polling
			logger.Warn("failed to publish grade.pending", "error", err)
		}
	}

	Created(w, GradeFromDomain(*grade))
}

// GetGrade возвращает проверку по ID.
// GET /api/v1/grades/{id}
func (h *Handler) GetGrade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	grade, err := h.grades.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "grade not found") {
		return
	}

	Success(w, GradeFromDomain(*grade))
}

// ListSolutionGrades возвращает проверки решения.
// GET /api/v1/solutions/{id}/grades?status=...&limit=...&offset=...
func (h *Handler) ListSolutionGrades(w http.ResponseWriter, r *http.Request) {
	solutionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	h.listGrades(w, r, &solutionID)
}

// ListGrades возвращает проверки с фильтрацией.
// GET /api/v1/grades?solution_id=...&status=...&limit=...&offset=...
func (h *Handler) ListGrades(w http.ResponseWriter, r *http.Request) {
	var solutionID *uuid.UUID
	if s := r.URL.Query().Get("solution_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			BadRequest(w, "invalid solution_id")
			return
		}
		solutionID = &id
	}
	h.listGrades(w, r, solutionID)
}

func (h *Handler) listGrades(w http.ResponseWriter, r *http.Request, solutionID *uuid.UUID) {
	limit, offset, ok := page(w, r)
	if !ok {
		return
	}

	filter := repo.GradeFilter{
		SolutionID: solutionID,
		Limit:      limit,
		Offset:     offset,
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.ParseGradeStatus(s)
		if string(status) != s {
			BadRequest(w, "invalid status")
			return
		}
		filter.Status = status
	}

	grades, err := h.grades.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]GradeResponse, len(grades))
	for i, g := range grades {
		result[i] = GradeFromDomain(g)
	}

	List(w, result, len(result))
}
