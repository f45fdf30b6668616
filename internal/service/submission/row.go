package submission

import (
	"strings"

	"docs-evaluator/internal/domain"
)

// Column layout of the form responses sheet. Column B holds the
// respondent's email and is not used.
const (
	colTimestamp = iota
	_
	colStudentName
	colSection
	colTeamCode
	colDeliverableTag
	colSourceURL

	// MinColumns is the number of cells a response row needs to be processed.
	MinColumns
)

// ParseRow converts one response row. It reports false when the row has
// fewer than MinColumns cells.
func ParseRow(cells []string, rowNumber int) (domain.SubmissionRow, bool) {
	if len(cells) < MinColumns {
		return domain.SubmissionRow{}, false
	}
	return domain.SubmissionRow{
		RowNumber:      rowNumber,
		Timestamp:      strings.TrimSpace(cells[colTimestamp]),
		StudentName:    strings.TrimSpace(cells[colStudentName]),
		Section:        strings.TrimSpace(cells[colSection]),
		TeamCode:       strings.TrimSpace(cells[colTeamCode]),
		DeliverableTag: strings.TrimSpace(cells[colDeliverableTag]),
		SourceURL:      strings.TrimSpace(cells[colSourceURL]),
	}, true
}
