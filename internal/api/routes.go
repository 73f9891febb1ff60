package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
		Instrument(),
	)

	// Levels
	mux.Handle("GET /api/v1/levels", chain(http.HandlerFunc(h.ListLevels)))
	mux.Handle("GET /api/v1/levels/{id}", chain(http.HandlerFunc(h.GetLevel)))

	// Solutions
	mux.Handle("GET /api/v1/solutions", chain(http.HandlerFunc(h.ListSolutions)))
	mux.Handle("POST /api/v1/solutions", chain(http.HandlerFunc(h.CreateSolution)))
	mux.Handle("GET /api/v1/solutions/{id}", chain(http.HandlerFunc(h.GetSolution)))
	mux.Handle("DELETE /api/v1/solutions/{id}", chain(http.HandlerFunc(h.DeleteSolution)))

	// Grades
	mux.Handle("POST /api/v1/solutions/{id}/grades", chain(http.HandlerFunc(h.SubmitGrade)))
	mux.Handle("GET /api/v1/solutions/{id}/grades", chain(http.HandlerFunc(h.ListSolutionGrades)))
	mux.Handle("GET /api/v1/grades", chain(http.HandlerFunc(h.ListGrades)))
	mux.Handle("GET /api/v1/grades/{id}", chain(http.HandlerFunc(h.GetGrade)))

	// Simulate
	mux.Handle("POST /api/v1/simulate", chain(http.HandlerFunc(h.Simulate)))
}
