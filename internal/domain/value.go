package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value — значение, которое переносит токен.
//
// Value бывает двух видов:
//   - скаляр (целое число) — результат Plus, Multiply, Constant, Input
//   - кортеж (упорядоченный набор значений) — результат Combine
//
// Нулевое значение Value — скаляр 0.
type Value struct {
	num   int64
	items []Value
	tuple bool
}

// Int создаёт скалярное значение.
func Int(n int64) Value {
	return Value{num: n}
}

// Tuple создаёт кортеж из значений. Слайс копируется.
func Tuple(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{items: cp, tuple: true}
}

// IsTuple возвращает true для кортежа.
func (v Value) IsTuple() bool {
	return v.tuple
}

// Int возвращает число и true, если значение скалярное.
func (v Value) Int() (int64, bool) {
	if v.tuple {
		return 0, false
	}
	return v.num, true
}

// Len возвращает длину кортежа (0 для скаляра).
func (v Value) Len() int {
	return len(v.items)
}

// At возвращает i-й элемент кортежа.
func (v Value) At(i int) Value {
	return v.items[i]
}

// Items возвращает копию элементов кортежа.
func (v Value) Items() []Value {
	cp := make([]Value, len(v.items))
	copy(cp, v.items)
	return cp
}

// Equal сравнивает значения структурно.
func (v Value) Equal(other Value) bool {
	if v.tuple != other.tuple {
		return false
	}
	if !v.tuple {
		return v.num == other.num
	}
	if len(v.items) != len(other.items) {
		return false
	}
	for i := range v.items {
		if !v.items[i].Equal(other.items[i]) {
			return false
		}
	}
	return true
}

// String возвращает представление вида 7 или [1,2].
func (v Value) String() string {
	if !v.tuple {
		return strconv.FormatInt(v.num, 10)
	}
	parts := make([]string, len(v.items))
	for i, item := range v.items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// MarshalJSON кодирует скаляр числом, кортеж — массивом.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.tuple {
		return []byte(strconv.FormatInt(v.num, 10)), nil
	}
	if v.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.items)
}

// UnmarshalJSON разбирает число или массив.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []Value
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*v = Tuple(items...)
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("value must be an integer or an array: %s", data)
	}
	*v = Int(n)
	return nil
}

// Ints преобразует последовательность чисел в значения.
func Ints(ns []int64) []Value {
	vals := make([]Value, len(ns))
	for i, n := range ns {
		vals[i] = Int(n)
	}
	return vals
}
