package engine

import (
	"strings"

	"github.com/shaiso/Pulse/internal/domain"
)

// Condition — условие на соединении: упорядоченный набор матчеров.
//
// Правила:
//   - пустое условие совпадает с любым значением
//   - для скаляра условие должно иметь длину 0 или 1
//   - для кортежа длина условия равна длине кортежа, элементы
//     проверяются попарно; при несовпадении длин условие ложно
type Condition []domain.Matcher

// Wild — условие из одного Wild.
func Wild() Condition { return Condition{domain.MatchWild} }

// Zero — условие из одного Zero.
func Zero() Condition { return Condition{domain.MatchZero} }

// One — условие из одного One.
func One() Condition { return Condition{domain.MatchOne} }

// Matches проверяет, пропускает ли условие значение.
func Matches(cond Condition, v domain.Value) bool {
	if len(cond) == 0 {
		return true
	}

	if !v.IsTuple() {
		if len(cond) != 1 {
			return false
		}
		return matchOne(cond[0], v)
	}

	if len(cond) != v.Len() {
		return false
	}
	for i, m := range cond {
		if !matchOne(m, v.At(i)) {
			return false
		}
	}
	return true
}

// matchOne проверяет одно значение одним матчером.
// Zero и One сравнивают только со скаляром.
func matchOne(m domain.Matcher, v domain.Value) bool {
	switch m {
	case domain.MatchWild:
		return true
	case domain.MatchZero:
		n, ok := v.Int()
		return ok && n == 0
	case domain.MatchOne:
		n, ok := v.Int()
		return ok && n == 1
	default:
		return false
	}
}

// String возвращает представление вида [*,0].
func (c Condition) String() string {
	parts := make([]string, len(c))
	for i, m := range c {
		parts[i] = string(m)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
