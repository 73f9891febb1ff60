package engine

import (
	"fmt"

	"github.com/shaiso/Pulse/internal/domain"
)

// SpecVersion — текущая версия формата GraphSpec.
const SpecVersion = "1"

// ValidateSpec выполняет полную валидацию GraphSpec.
//
// Проверяет:
// - Версию формата
// - Корректность типов узлов
// - Уникальность ID узлов
// - Неотрицательность каналов input/output
// - Существование терминалов у соединений
// - Корректность матчеров условий
//
// Пустой граф допустим.
func ValidateSpec(spec *domain.GraphSpec) error {
	_, err := BuildGraph(spec)
	return err
}

// BuildGraph строит Graph из GraphSpec.
//
// Узлы добавляются в порядке spec.Nodes, соединения — в порядке
// spec.Edges. nil GraphSpec даёт пустой граф.
func BuildGraph(spec *domain.GraphSpec) (*Graph, error) {
	g := NewGraph()
	if spec == nil {
		return g, nil
	}

	if spec.Version != "" && spec.Version != SpecVersion {
		return nil, NewValidationError("graph", "version",
			fmt.Sprintf("unsupported version: %s", spec.Version), ErrUnsupportedVersion)
	}

	for _, ns := range spec.Nodes {
		if _, err := g.InsertNode(ns.ID, ns.Kind, ns.Settings, ns.Position); err != nil {
			return nil, err
		}
	}

	for _, es := range spec.Edges {
		from := domain.OutputOf(es.From, es.FromIndex)
		to := domain.InputOf(es.To, es.ToIndex)
		if _, err := g.Connect(from, to, Condition(es.Condition)); err != nil {
			return nil, err
		}
	}

	return g, nil
}
