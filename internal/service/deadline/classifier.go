package deadline

import (
	"strings"
	"time"

	"docs-evaluator/internal/domain"
)

// Classify compares a submission time against the deadline configured for tag.
// Tags without a configured deadline yield VerdictUnknown.
func Classify(submittedAt time.Time, tag string, configs map[string]domain.DeliverableConfig) domain.Verdict {
	cfg, ok := configs[tag]
	if !ok {
		return domain.VerdictUnknown
	}
	if submittedAt.After(cfg.Deadline) {
		return domain.VerdictLate
	}
	return domain.VerdictOnTime
}

// ParseTimestamp parses a form response timestamp in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(domain.SheetTimestampLayout, strings.TrimSpace(raw), loc)
}
