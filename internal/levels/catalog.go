package levels

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Pulse/internal/domain"
)

//go:embed data/*.yaml
var builtin embed.FS

// Ошибки каталога.
var (
	// ErrLevelNotFound — уровня с таким ID нет.
	ErrLevelNotFound = errors.New("level not found")

	// ErrDuplicateLevel — два файла описывают один ID.
	ErrDuplicateLevel = errors.New("duplicate level ID")
)

// Catalog — неизменяемый набор уровней.
type Catalog struct {
	byID  map[string]*domain.Level
	order []*domain.Level
}

// Builtin загружает встроенные уровни.
// Встроенные файлы проверяются тестами, поэтому ошибка здесь — паника.
func Builtin() *Catalog {
	c, err := LoadFS(builtin, "data/*.yaml")
	if err != nil {
		panic(fmt.Sprintf("levels: builtin catalog: %v", err))
	}
	return c
}

// LoadFS загружает уровни из файлов fsys, подходящих под pattern.
// Каждый уровень проверяется через Level.Validate.
func LoadFS(fsys fs.FS, pattern string) (*Catalog, error) {
	paths, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	c := &Catalog{byID: make(map[string]*domain.Level, len(paths))}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		level, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if _, exists := c.byID[level.ID]; exists {
			return nil, fmt.Errorf("%s: %s: %w", path, level.ID, ErrDuplicateLevel)
		}

		c.byID[level.ID] = level
		c.order = append(c.order, level)
	}
	return c, nil
}

// Parse разбирает один уровень из YAML.
func Parse(data []byte) (*domain.Level, error) {
	var level domain.Level
	if err := yaml.Unmarshal(data, &level); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if level.ID == "" {
		return nil, errors.New("level has empty ID")
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}
	return &level, nil
}

// Get возвращает уровень по ID.
func (c *Catalog) Get(id string) (*domain.Level, error) {
	level, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrLevelNotFound)
	}
	return level, nil
}

// List возвращает уровни в порядке каталога.
func (c *Catalog) List() []*domain.Level {
	out := make([]*domain.Level, len(c.order))
	copy(out, c.order)
	return out
}

// Len возвращает количество уровней.
func (c *Catalog) Len() int {
	return len(c.order)
}
