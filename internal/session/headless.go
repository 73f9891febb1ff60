package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/engine"
	"github.com/shaiso/Pulse/internal/events"
)

// Headless — параметры прогона сохранённого графа без интерфейса.
type Headless struct {
	// Spec — граф в формате редактора.
	Spec *domain.GraphSpec

	// Level — уровень с тестами.
	Level *domain.Level

	// Policy — имя политики срабатывания ("single", "cartesian").
	Policy string

	// MaxStrides — бюджет фаз (default: DefaultMaxStrides).
	MaxStrides int

	// Trace — записывать события прогона.
	Trace bool

	// TraceLimit — максимум записанных событий (0 — без ограничения).
	TraceLimit int

	// Listeners — дополнительные подписчики шины (метрики).
	Listeners []events.Listener

	Logger *slog.Logger
}

// RunHeadless строит граф из описания, создаёт сессию и прогоняет её.
//
// Ошибка возвращается только для некорректного описания графа, политики
// или уровня; исход самого прогона находится в Result. Трасса равна nil,
// если Trace не установлен.
func RunHeadless(ctx context.Context, h Headless) (Result, []events.Event, error) {
	policy, err := engine.ParsePolicy(h.Policy)
	if err != nil {
		return Result{}, nil, err
	}

	g, err := engine.BuildGraph(h.Spec)
	if err != nil {
		return Result{}, nil, fmt.Errorf("build graph: %w", err)
	}

	bus := events.NewBus()
	for _, l := range h.Listeners {
		bus.Subscribe(l)
	}

	var rec *events.Recorder
	if h.Trace {
		rec = events.NewRecorder(h.TraceLimit)
		bus.Subscribe(rec.Listener())
	}

	s, err := New(Config{
		Graph:  g,
		Level:  h.Level,
		Policy: policy,
		Bus:    bus,
		Logger: h.Logger,
	})
	if err != nil {
		return Result{}, nil, err
	}

	res := s.Run(ctx, h.MaxStrides)

	var trace []events.Event
	if rec != nil {
		trace = rec.Events()
	}
	return res, trace, nil
}
