package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SheetTimestampLayout is the layout used by the form responses sheet and the
// deliverables configuration tab, e.g. "3/21/2026 23:59:00".
const SheetTimestampLayout = "1/2/2006 15:04:05"

// DeliverableConfig holds the deadline for one deliverable tag.
type DeliverableConfig struct {
	Tag      string    `json:"tag" yaml:"tag"`
	Deadline time.Time `json:"deadline" yaml:"-"`
}

// SubmissionRow is one parsed row of the form responses sheet.
type SubmissionRow struct {
	RowNumber      int // spreadsheet row number, as shown in the sheet UI
	Timestamp      string
	StudentName    string
	Section        string
	TeamCode       string
	DeliverableTag string
	SourceURL      string
}

// RoutedFile is the output unit of a sync: one successfully routed submission.
type RoutedFile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"name"`
	MimeType    string    `json:"mimeType"`
	CreatedAt   time.Time `json:"createdTime"`
	SubmittedAt string    `json:"submittedAt"`
	ViewLink    string    `json:"webViewLink"`
	Late        bool      `json:"late"`
}

// Verdict is the outcome of comparing a submission against its deadline.
type Verdict int

const (
	// VerdictUnknown means no deadline is configured for the deliverable.
	VerdictUnknown Verdict = iota
	// VerdictOnTime means the submission was at or before the deadline.
	VerdictOnTime
	// VerdictLate means the submission was strictly after the deadline.
	VerdictLate
)

// IsLate reports whether the verdict is VerdictLate. Unknown is never late.
func (v Verdict) IsLate() bool { return v == VerdictLate }

func (v Verdict) String() string {
	switch v {
	case VerdictOnTime:
		return "on_time"
	case VerdictLate:
		return "late"
	default:
		return "unknown"
	}
}

// CanonicalName builds the deterministic name of a routed submission:
// "[LATE] " when late, followed by "[<tag>] [<team>] <student>".
func CanonicalName(tag, teamCode, studentName string, late bool) string {
	prefix := ""
	if late {
		prefix = "[LATE] "
	}
	return fmt.Sprintf("%s[%s] [%s] %s", prefix, tag, teamCode, studentName)
}

// RangeStartRow returns the spreadsheet row number of the first row of an A1
// range such as "Form Responses 1!A2:G". Whole-column ranges start at row 1.
func RangeStartRow(rangeA1 string) int {
	ref := rangeA1
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		ref = ref[i+1:]
	}
	ref, _, _ = strings.Cut(ref, ":")
	digits := strings.TrimLeftFunc(ref, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
