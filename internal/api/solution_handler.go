package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/engine"
	"github.com/shaiso/Pulse/internal/repo"
	"github.com/shaiso/Pulse/internal/telemetry"
)

// ListSolutions возвращает решения с фильтрацией.
// GET /api/v1/solutions?level_id=...&limit=...&offset=...
func (h *Handler) ListSolutions(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := page(w, r)
	if !ok {
		return
	}

	solutions, err := h.solutions.List(r.Context(), repo.SolutionFilter{
		LevelID: r.URL.Query().Get("level_id"),
		Limit:   limit,
		Offset:  offset,
	})
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]SolutionResponse, len(solutions))
	for i, s := range solutions {
		result[i] = SolutionFromDomain(s)
	}

	List(w, result, len(result))
}

// CreateSolution сохраняет решение.
// POST /api/v1/solutions
//
// Граф проверяется построением: неизвестные типы узлов, дубликаты ID и
// терминалы вне диапазона дают 422.
func (h *Handler) CreateSolution(w http.ResponseWriter, r *http.Request) {
	var req CreateSolutionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.levels.Get(req.LevelID); HandleRepoError(w, h.logger, err, "level not found") {
		return
	}
	if err := engine.ValidateSpec(&req.Graph); err != nil {
		InvalidGraph(w, err)
		return
	}
	if req.Graph.Version == "" {
		req.Graph.Version = engine.SpecVersion
	}

	sol := &domain.Solution{
		ID:        uuid.New(),
		LevelID:   req.LevelID,
		Name:      req.Name,
		Graph:     req.Graph,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.solutions.Create(r.Context(), sol); HandleRepoError(w, h.logger, err, "") {
		return
	}

	telemetry.WithSolutionID(telemetry.FromContext(r.Context()), sol.ID.String()).Info("solution saved",
		"level_id", sol.LevelID,
		"nodes", len(sol.Graph.Nodes),
		"edges", len(sol.Graph.Edges),
	)

	Created(w, SolutionFromDomain(*sol))
}

// GetSolution возвращает решение по ID.
// GET /api/v1/solutions/{id}
func (h *Handler) GetSolution(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	sol, err := h.solutions.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "solution not found") {
		return
	}

	Success(w, SolutionFromDomain(*sol))
}

// DeleteSolution удаляет решение вместе с его проверками.
// DELETE /api/v1/solutions/{id}
func (h *Handler) DeleteSolution(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	err := h.solutions.Delete(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "solution not found") {
		return
	}

	NoContent(w)
}
