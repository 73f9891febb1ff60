// Package events — шина событий симуляции.
//
// Движок (engine) и тестер (tester) публикуют события о каждом изменении
// состояния: срабатывание узла, перемещение токена, ход тестов.
// Внешние наблюдатели (анимация, панели UI, запись трассы) подписываются
// через Bus.Subscribe и получают непрозрачный идентификатор для отписки.
package events
