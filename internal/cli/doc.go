// Package cli реализует инструмент командной строки Pulse.
//
// # Обзор
//
// CLI решает две задачи:
//   - локально: просмотр встроенных уровней и прогон графа из файла
//     на тестах уровня, без сервера (level, solve)
//   - через HTTP API: сохранение решений и отправка их на проверку
//     (solution, grade)
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Pulse API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	grades, err := client.ListGrades(cli.ListGradesOpts{SolutionID: id})
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: pulse grade list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - level: list, show
//   - solve: локальный прогон графа
//   - solution: submit, show, list, delete
//   - grade: submit, show, list
//
// Каждая группа создаётся через фабричную функцию (NewSolutionCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
//
// Граф читается из JSON или YAML файла (по расширению .yaml/.yml).
package cli
