package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/engine"
	"github.com/shaiso/Pulse/internal/events"
	"github.com/shaiso/Pulse/internal/tester"
)

// Ошибки сессии.
var (
	// ErrStrideInProgress — операция недоступна, пока выполняется фаза.
	ErrStrideInProgress = errors.New("stride in progress")

	// ErrNoGraph — в конфигурации не указан граф.
	ErrNoGraph = errors.New("graph is required")
)

// Config — настройки Session.
type Config struct {
	// Graph — граф пользователя. Сессия не копирует граф.
	Graph *engine.Graph

	// Level — уровень, на котором проверяется граф.
	Level *domain.Level

	// Policy — политика срабатывания узлов.
	Policy engine.FiringPolicy

	// Bus — шина событий. Если nil, создаётся новая.
	Bus *events.Bus

	// Logger — логгер (default: slog.Default()).
	Logger *slog.Logger
}

// Session — одна попытка прохождения уровня.
//
// Владеет планировщиком, хранилищем токенов и тестером. Граф и шина
// передаются снаружи и переживают Reset.
type Session struct {
	graph  *engine.Graph
	level  *domain.Level
	policy engine.FiringPolicy
	bus    *events.Bus
	logger *slog.Logger

	mu     sync.Mutex
	eval   *engine.Evaluator
	tester *tester.Tester

	// inFlight — выполняется StrideWith.
	inFlight atomic.Bool

	// phaseFirings — счётчик планировщика на начало текущей фазы
	// вычисления, lastFired — срабатываний в последней завершённой.
	phaseFirings int
	lastFired    int
}

// New создаёт сессию и публикует SimulationStart и TestCaseStarted{0}.
func New(cfg Config) (*Session, error) {
	if cfg.Graph == nil {
		return nil, ErrNoGraph
	}
	if cfg.Bus == nil {
		cfg.Bus = events.NewBus()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	t, err := tester.New(cfg.Level, cfg.Bus, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("create tester: %w", err)
	}

	s := &Session{
		graph:  cfg.Graph,
		level:  cfg.Level,
		policy: cfg.Policy,
		bus:    cfg.Bus,
		logger: cfg.Logger.With("level_id", cfg.Level.ID, "policy", cfg.Policy.String()),
		tester: t,
	}
	s.start()
	return s, nil
}

// start пересоздаёт планировщик и возвращает тестер к первому тесту.
func (s *Session) start() {
	s.eval = engine.NewEvaluator(s.graph, s.tester, engine.Config{
		Policy: s.policy,
		Bus:    s.bus,
		Logger: s.logger,
	})
	s.phaseFirings = 0
	s.lastFired = -1
	s.bus.Publish(events.SimulationStart{})
	s.tester.Start()
}

// Reset сбрасывает симуляцию: токены удаляются, состояние узлов и
// курсоры тестера обнуляются. Во время StrideWith возвращает
// ErrStrideInProgress.
func (s *Session) Reset() error {
	if s.inFlight.Load() {
		return ErrStrideInProgress
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bus.Publish(events.SimulationEnd{})
	s.start()
	s.logger.Debug("session reset")
	return nil
}

// Step выполняет один шаг планировщика.
func (s *Session) Step() error {
	if s.inFlight.Load() {
		return ErrStrideInProgress
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step()
}

// Stride выполняет одну фазу целиком.
func (s *Session) Stride() error {
	return s.StrideWith(context.Background(), nil)
}

// StrideWith выполняет одну фазу, вызывая pause после каждого шага,
// который не завершил фазу.
//
// pause — точка, где хост ждёт окончания анимации. Ошибка pause или
// отмена ctx прерывает фазу между шагами; планировщик остаётся в
// согласованном состоянии, и следующий вызов продолжит фазу.
func (s *Session) StrideWith(ctx context.Context, pause func(context.Context) error) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrStrideInProgress
	}
	defer s.inFlight.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.eval.Stage()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.step(); err != nil {
			return err
		}
		if s.eval.Stage() != start {
			return nil
		}
		if pause != nil {
			if err := pause(ctx); err != nil {
				return err
			}
		}
	}
}

// step выполняет шаг под блокировкой.
func (s *Session) step() error {
	stage := s.eval.Stage()

	if err := s.eval.Step(); err != nil {
		s.logger.Error("engine contract violation",
			"error", err,
			"steps", s.eval.Steps(),
			"case", s.tester.CaseIndex(),
		)
		return err
	}

	if stage == engine.StageEvaluate && s.eval.Stage() == engine.StageAdvance {
		s.lastFired = s.eval.Firings() - s.phaseFirings
		s.phaseFirings = s.eval.Firings()
	}
	return nil
}

// stalled сообщает, что симуляция достигла неподвижной точки:
// последняя фаза вычисления ничего не запустила и ни один токен
// не ждёт перемещения. Дальнейшие фазы ничего не изменят.
func (s *Session) stalled() bool {
	return s.lastFired == 0 && s.eval.Tokens().InFlight() == 0
}

// Bus возвращает шину событий.
func (s *Session) Bus() *events.Bus {
	return s.bus
}

// Graph возвращает граф.
func (s *Session) Graph() *engine.Graph {
	return s.graph
}

// Level возвращает уровень.
func (s *Session) Level() *domain.Level {
	return s.level
}

// Stage возвращает текущую фазу планировщика.
func (s *Session) Stage() engine.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eval.Stage()
}

// Tokens возвращает снимки живых токенов в порядке создания.
func (s *Session) Tokens() []events.TokenRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.eval.Tokens().All()
	refs := make([]events.TokenRef, len(all))
	for i, t := range all {
		refs[i] = t.Ref()
	}
	return refs
}

// Progress возвращает текущий тест, число пройденных и флаг провала.
func (s *Session) Progress() (caseIndex, passed int, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tester.CaseIndex(), s.tester.Passed(), s.tester.Failed()
}

// Passed сообщает, что все тесты пройдены.
func (s *Session) Passed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tester.Done()
}
