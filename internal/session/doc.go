// Package session связывает граф, планировщик, тестер и шину событий
// в одну попытку прохождения уровня.
//
// Session — то, чем управляет хост: редактор вызывает Step/Stride по
// кнопке пользователя, grader и CLI вызывают Run для прогона без
// интерфейса. Анимация живёт снаружи: StrideWith отдаёт управление
// хосту между шагами.
package session
