// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (хранилища, каталог уровней, publisher, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery, metrics)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - validate.go         — проверка запросов через validator/v10
//   - level_handler.go    — обработчики для /levels
//   - solution_handler.go — обработчики для /solutions
//   - grade_handler.go    — обработчики для /grades
//   - simulate_handler.go — синхронный прогон графа /simulate
//
// API предоставляет REST endpoints для сохранения решений, отправки их на
// проверку и синхронного прогона графа на тестах уровня.
package api
