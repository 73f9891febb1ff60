package domain

import (
	"time"

	"github.com/google/uuid"
)

// Solution — сохранённый граф пользователя для конкретного уровня.
//
// Solution неизменяем: редактор сохраняет новую версию как новый Solution.
// Проверка решения выполняется через Grade.
type Solution struct {
	// ID — уникальный идентификатор решения.
	ID uuid.UUID `json:"id"`

	// LevelID — уровень, который решает граф.
	LevelID string `json:"level_id"`

	// Name — имя, данное пользователем.
	Name string `json:"name,omitempty"`

	// Graph — граф в формате редактора.
	Graph GraphSpec `json:"graph"`

	// CreatedAt — время сохранения.
	CreatedAt time.Time `json:"created_at"`
}
