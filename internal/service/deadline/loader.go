// Package deadline loads per-deliverable deadlines and classifies submissions
// as on time or late.
package deadline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"docs-evaluator/internal/domain"
)

// DefaultRange is the sheet range holding tag (A) and deadline (B) columns.
const DefaultRange = "Deliverables_Config!A2:B"

// Loader produces the tag → deadline mapping for one sync run.
type Loader interface {
	Load(ctx context.Context) (map[string]domain.DeliverableConfig, error)
}

// SheetLoader reads deliverable deadlines from a spreadsheet range.
type SheetLoader struct {
	rows     domain.RowSource
	rangeA1  string
	location *time.Location
	logger   *slog.Logger
}

var _ Loader = (*SheetLoader)(nil)

// NewSheetLoader creates a SheetLoader. Deadlines are interpreted in loc
// (time.Local when nil).
func NewSheetLoader(rows domain.RowSource, rangeA1 string, loc *time.Location, logger *slog.Logger) *SheetLoader {
	if rangeA1 == "" {
		rangeA1 = DefaultRange
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetLoader{rows: rows, rangeA1: rangeA1, location: loc, logger: logger}
}

// Load fetches the configured range. Malformed rows are skipped; only a
// failed fetch is an error.
func (l *SheetLoader) Load(ctx context.Context) (map[string]domain.DeliverableConfig, error) {
	values, err := l.rows.ReadRange(ctx, l.rangeA1)
	if err != nil {
		return nil, domain.ErrConfigUnavailable(err, "read deliverable config %q", l.rangeA1)
	}
	return parseRows(values, domain.RangeStartRow(l.rangeA1), l.location, l.logger), nil
}

// ParseRows converts (tag, deadline) rows into a config map. Rows with fewer
// than two cells, an empty tag, or an unparseable deadline are logged and
// skipped. A later row for the same tag replaces an earlier one.
func ParseRows(rows [][]string, loc *time.Location, logger *slog.Logger) map[string]domain.DeliverableConfig {
	return parseRows(rows, 1, loc, logger)
}

// parseRows is ParseRows with log row numbers starting at firstRow.
func parseRows(rows [][]string, firstRow int, loc *time.Location, logger *slog.Logger) map[string]domain.DeliverableConfig {
	configs := make(map[string]domain.DeliverableConfig, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			logger.Warn("skipping deliverable row", "row", firstRow+i, "reason", "fewer than 2 columns")
			continue
		}
		tag := strings.TrimSpace(row[0])
		raw := strings.TrimSpace(row[1])
		if tag == "" {
			logger.Warn("skipping deliverable row", "row", firstRow+i, "reason", "empty tag")
			continue
		}
		deadline, err := time.ParseInLocation(domain.SheetTimestampLayout, raw, loc)
		if err != nil {
			logger.Warn("skipping deliverable row", "row", firstRow+i, "tag", tag, "deadline", raw, "error", err)
			continue
		}
		configs[tag] = domain.DeliverableConfig{Tag: tag, Deadline: deadline}
	}
	return configs
}
