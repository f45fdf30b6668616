package deadline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"docs-evaluator/internal/domain"
)

// deliverablesFile is the on-disk shape of a deliverables override file:
//
//	deliverables:
//	  - tag: SRS
//	    deadline: "3/21/2026 23:59:00"
type deliverablesFile struct {
	Deliverables []struct {
		Tag      string `yaml:"tag"`
		Deadline string `yaml:"deadline"`
	} `yaml:"deliverables"`
}

// FileLoader reads deliverable deadlines from a YAML file. It applies the
// same skip rules as the sheet loader.
type FileLoader struct {
	path     string
	location *time.Location
	logger   *slog.Logger
}

var _ Loader = (*FileLoader)(nil)

// NewFileLoader creates a FileLoader for path.
func NewFileLoader(path string, loc *time.Location, logger *slog.Logger) *FileLoader {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileLoader{path: path, location: loc, logger: logger}
}

// Load reads and parses the file. A missing or unreadable file is a
// ConfigUnavailableError.
func (l *FileLoader) Load(_ context.Context) (map[string]domain.DeliverableConfig, error) {
	data, err := os.ReadFile(l.path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, domain.ErrConfigUnavailable(err, "read deliverables file %q", l.path)
	}
	var f deliverablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, domain.ErrConfigUnavailable(fmt.Errorf("parse yaml: %w", err), "read deliverables file %q", l.path)
	}

	rows := make([][]string, 0, len(f.Deliverables))
	for _, d := range f.Deliverables {
		rows = append(rows, []string{d.Tag, d.Deadline})
	}
	return ParseRows(rows, l.location, l.logger), nil
}
