// Pulse Grader — выполняет проверки решений.
//
// Grader:
//   - Получает grade.pending из RabbitMQ (или находит PENDING через polling)
//   - Строит граф решения и прогоняет его на тестах уровня
//   - Записывает итог и публикует grade.completed
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Pulse/internal/grader"
	"github.com/shaiso/Pulse/internal/levels"
	"github.com/shaiso/Pulse/internal/mq"
	"github.com/shaiso/Pulse/internal/repo"
	"github.com/shaiso/Pulse/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting pulse-grader")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	cfg := grader.Config{
		Grades:    repo.NewGradeRepo(pool),
		Solutions: repo.NewSolutionRepo(pool),
		Levels:    levels.Builtin(),
		Logger:    logger,
	}
	if v := os.Getenv("GRADE_STRIDE_BUDGET"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			logger.Error("invalid GRADE_STRIDE_BUDGET", "value", v, "error", err)
			os.Exit(1)
		}
		cfg.MaxStrides = n
	}

	// RabbitMQ
	mqConn, err := mq.NewConnection(mq.URLFromEnv(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		// Создаём топологию
		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		cfg.Conn = mqConn
		cfg.Notifier = mq.NewPublisher(mqConn, logger)
	}

	g := grader.New(cfg)
	if err := g.Start(ctx); err != nil {
		logger.Error("failed to start grader", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8083"
	if v := os.Getenv("GRADER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	g.Stop()
	logger.Info("pulse-grader stopped")
}
