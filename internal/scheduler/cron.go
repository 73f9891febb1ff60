package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCron — расписание по умолчанию: каждые 5 минут.
const DefaultCron = "*/5 * * * *"

// cronParser — парсер cron-выражений (5 полей, плюс дескрипторы вида @every 1m).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseCron разбирает cron-выражение.
func ParseCron(expr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// NextDue вычисляет следующее время запуска после from (в UTC).
func NextDue(schedule cron.Schedule, from time.Time) time.Time {
	return schedule.Next(from).UTC()
}
