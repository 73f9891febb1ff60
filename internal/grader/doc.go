// Package grader проверяет решения на тестах уровней.
//
// Grader отвечает за:
//   - Получение проверок из очереди grades.pending
//   - Периодический опрос PENDING проверок в БД (polling fallback)
//   - Загрузку решения и уровня, построение графа
//   - Прогон сессии без интерфейса с политикой проверки и бюджетом фаз
//   - Финализацию проверки (PASSED/FAILED/TIMED_OUT/ERROR)
//   - Публикацию grade.completed и метрик
package grader
