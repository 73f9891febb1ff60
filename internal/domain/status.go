package domain

// GradeStatus — статус проверки решения.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → PASSED
//	                  ↘ FAILED     (неверный вывод)
//	                  ↘ TIMED_OUT  (исчерпан бюджет фаз)
//	                  ↘ ERROR      (нарушение контракта движка)
type GradeStatus string

const (
	// GradeStatusPending — проверка создана, но ещё не начата.
	GradeStatusPending GradeStatus = "PENDING"

	// GradeStatusRunning — граф выполняется.
	GradeStatusRunning GradeStatus = "RUNNING"

	// GradeStatusPassed — все тесты пройдены.
	GradeStatusPassed GradeStatus = "PASSED"

	// GradeStatusFailed — граф выдал неожиданное значение.
	GradeStatusFailed GradeStatus = "FAILED"

	// GradeStatusTimedOut — тесты не завершились за отведённое число фаз.
	GradeStatusTimedOut GradeStatus = "TIMED_OUT"

	// GradeStatusError — выполнение прервано нарушением контракта.
	GradeStatusError GradeStatus = "ERROR"
)

// IsTerminal возвращает true, если статус финальный.
func (s GradeStatus) IsTerminal() bool {
	switch s {
	case GradeStatusPassed, GradeStatusFailed, GradeStatusTimedOut, GradeStatusError:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление GradeStatus.
func (s GradeStatus) String() string {
	return string(s)
}

// ParseGradeStatus парсит строку в GradeStatus.
func ParseGradeStatus(s string) GradeStatus {
	switch s {
	case "RUNNING":
		return GradeStatusRunning
	case "PASSED":
		return GradeStatusPassed
	case "FAILED":
		return GradeStatusFailed
	case "TIMED_OUT":
		return GradeStatusTimedOut
	case "ERROR":
		return GradeStatusError
	default:
		return GradeStatusPending
	}
}
