// Package levels содержит каталог уровней.
//
// Встроенные уровни лежат в data/*.yaml и встраиваются в бинарник.
// Порядок уровней — порядок имён файлов.
package levels
