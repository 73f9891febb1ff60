package grader

import "errors"

// Ошибки grader.
var (
	// ErrGradeNotFound — проверка не найдена в БД.
	ErrGradeNotFound = errors.New("grade not found")

	// ErrGradeNotPending — проверка не в статусе PENDING.
	ErrGradeNotPending = errors.New("grade is not in PENDING status")

	// ErrGradeAlreadyActive — проверка уже выполняется.
	ErrGradeAlreadyActive = errors.New("grade already being processed")

	// ErrInvalidSolution — решение нельзя запустить: удалено, ссылается
	// на неизвестный уровень или содержит некорректный граф.
	ErrInvalidSolution = errors.New("invalid solution")
)
