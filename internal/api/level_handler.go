package api

import (
	"net/http"
)

// ListLevels возвращает все уровни каталога.
// GET /api/v1/levels
func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	all := h.levels.List()

	result := make([]LevelSummary, len(all))
	for i, l := range all {
		result[i] = LevelSummaryFromDomain(l)
	}

	List(w, result, len(result))
}

// GetLevel возвращает уровень с тестами.
// GET /api/v1/levels/{id}
func (h *Handler) GetLevel(w http.ResponseWriter, r *http.Request) {
	level, err := h.levels.Get(r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "level not found") {
		return
	}

	Success(w, level)
}
