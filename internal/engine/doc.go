// Package engine содержит движок выполнения графа потока данных.
//
// Включает:
//   - graph.go     — модель графа: узлы, терминалы, соединения
//   - parser.go    — валидация сохранённого графа и построение Graph
//   - condition.go — условия на соединениях (Wild, Zero, One)
//   - tokens.go    — хранилище токенов (program counters)
//   - nodes.go     — семантика вычисления каждого типа узла
//   - evaluator.go — двухфазный планировщик: Step и Stride
//
// Выполнение полностью синхронно: движок не создаёт горутин и никогда
// не блокируется. Время симуляции продвигают только вызовы Step/Stride.
package engine
