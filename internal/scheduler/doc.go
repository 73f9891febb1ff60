// Package scheduler реализует повторную отправку зависших проверок.
//
// Scheduler по cron-расписанию находит проверки, которые слишком долго
// остаются в PENDING (событие grade.pending потеряно) или в RUNNING
// (grader упал посреди прогона), возвращает их в PENDING и заново
// публикует grade.pending.
//
// Структура:
//   - scheduler.go — основная логика Scheduler (Tick, Sweep)
//   - cron.go      — парсинг cron-выражений и вычисление следующего запуска
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Grades:     gradeRepo,
//	    Publisher:  publisher,  // опционально
//	    Cron:       "*/5 * * * *",
//	    StaleAfter: 10 * time.Minute,
//	    Logger:     logger,
//	})
//
//	// Вызывается каждый тик (обычно раз в секунду)
//	if err := sched.Tick(ctx); err != nil {
//	    logger.Error("scheduler tick failed", "error", err)
//	}
//
// Leader Election:
//
// Scheduler не реализует leader election самостоятельно.
// Это делается в main.go через pg_try_advisory_lock.
// Метод Tick() вызывается только лидером.
package scheduler
