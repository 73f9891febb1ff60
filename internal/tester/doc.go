// Package tester реализует тестовый стенд уровня.
//
// Tester подаёт значения на узлы input и сверяет значения узлов output
// с ожидаемыми последовательностями текущего теста. Реализует
// engine.IO и публикует события прогресса в events.Bus.
//
// Неверный выход — не ошибка: Tester помечает тест проваленным,
// публикует UnexpectedOutput и продолжает работу, чтобы пользователь
// видел полную трассу.
package tester
