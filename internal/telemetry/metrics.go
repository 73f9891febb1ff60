package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/Pulse/internal/events"
)

var (
	// EngineEvents — события симуляции по типу.
	EngineEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "engine",
		Name:      "events_total",
		Help:      "Simulation events published on the event bus, by kind.",
	}, []string{"kind"})

	// SessionRuns — завершённые прогоны сессий по итогу.
	SessionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "session",
		Name:      "runs_total",
		Help:      "Headless session runs, by outcome.",
	}, []string{"outcome"})

	// SessionStrides — число фаз в прогоне.
	SessionStrides = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pulse",
		Subsystem: "session",
		Name:      "strides",
		Help:      "Strides executed per headless run.",
		Buckets:   prometheus.ExponentialBuckets(4, 4, 8),
	})

	// Grades — завершённые проверки по статусу.
	Grades = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "grader",
		Name:      "grades_total",
		Help:      "Finished grades, by final status.",
	}, []string{"status"})

	// GradeDuration — длительность проверки.
	GradeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pulse",
		Subsystem: "grader",
		Name:      "grade_duration_seconds",
		Help:      "Wall time from grade start to finish.",
		Buckets:   prometheus.DefBuckets,
	})

	// ActiveGrades — проверки в работе.
	ActiveGrades = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pulse",
		Subsystem: "grader",
		Name:      "active_grades",
		Help:      "Grades currently being evaluated.",
	})

	// HTTPRequests — запросы к API по маршруту и статусу.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "HTTP requests served, by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration — длительность обработки запросов.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pulse",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	// Regrades — проверки, повторно отправленные планировщиком.
	Regrades = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "scheduler",
		Name:      "regrades_total",
		Help:      "Stale pending grades re-published by the regrade sweep.",
	})
)

// EventCounter возвращает слушателя шины, считающего события в EngineEvents.
func EventCounter() events.Listener {
	return func(e events.Event) {
		EngineEvents.WithLabelValues(string(e.Kind())).Inc()
	}
}

// ObserveRun записывает итог прогона сессии.
func ObserveRun(outcome string, strides int) {
	SessionRuns.WithLabelValues(outcome).Inc()
	SessionStrides.Observe(float64(strides))
}

// ObserveHTTP записывает обработанный запрос.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveGrade записывает итог проверки.
func ObserveGrade(status string, d time.Duration) {
	Grades.WithLabelValues(status).Inc()
	GradeDuration.Observe(d.Seconds())
}
