package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Pulse/internal/domain"
)

// ReadGraphFile читает граф из файла. Формат определяется по расширению:
// .yaml и .yml — YAML, остальные — JSON. "-" означает stdin.
func ReadGraphFile(path string) (*domain.GraphSpec, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}

	var spec domain.GraphSpec
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &spec)
	default:
		err = json.Unmarshal(data, &spec)
	}
	if err != nil {
		return nil, fmt.Errorf("parse graph %s: %w", path, err)
	}
	return &spec, nil
}
