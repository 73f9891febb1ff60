// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - grade.pending    — проверка ожидает выполнения
//   - grade.completed  — проверка завершена
//
// Exchanges:
//   - pulse.grades     — события проверок
//   - pulse.dlq        — dead letter queue
package mq
