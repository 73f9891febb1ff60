package api

import (
	"net/http"

	"github.com/shaiso/Pulse/internal/events"
	"github.com/shaiso/Pulse/internal/session"
	"github.com/shaiso/Pulse/internal/telemetry"
)

// Значения по умолчанию для /simulate.
const (
	defaultSimulateStrides = 2000
	maxTraceEvents         = 5000
)

// Simulate прогоняет граф на тестах уровня и возвращает результат.
// POST /api/v1/simulate
//
// max_strides ограничен сверху настройкой сервера. Трасса содержит
// не более maxTraceEvents событий.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	level, err := h.levels.Get(req.LevelID)
	if HandleRepoError(w, h.logger, err, "level not found") {
		return
	}

	maxStrides := req.MaxStrides
	if maxStrides <= 0 || maxStrides > h.maxStrides {
		maxStrides = h.maxStrides
	}

	logger := telemetry.WithLevelID(telemetry.FromContext(r.Context()), level.ID)
	res, trace, err := session.RunHeadless(r.Context(), session.Headless{
		Spec:       &req.Graph,
		Level:      level,
		Policy:     req.Policy,
		MaxStrides: maxStrides,
		Trace:      req.Trace,
		TraceLimit: maxTraceEvents,
		Listeners:  []events.Listener{telemetry.EventCounter()},
		Logger:     logger,
	})
	if err != nil {
		InvalidGraph(w, err)
		return
	}
	telemetry.ObserveRun(string(res.Outcome), res.Strides)

	Success(w, SimulateResponse{
		Result: res,
		Trace:  TraceFromEvents(trace),
	})
}
