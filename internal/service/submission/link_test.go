package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractID(t *testing.T) {
	const id = "1AbC_dEf-GhIjKlMnOpQrStUvWx"

	tests := []struct {
		name   string
		link   string
		want   string
		wantOK bool
	}{
		{"file share link", "https://drive.google.com/file/d/" + id + "/view?usp=sharing", id, true},
		{"docs edit link", "https://docs.google.com/document/d/" + id + "/edit", id, true},
		{"folder link", "https://drive.google.com/drive/folders/" + id + "?usp=drive_link", id, true},
		{"open link", "https://drive.google.com/open?id=" + id + "&authuser=0", id, true},
		{"id too short", "https://drive.google.com/file/d/abc123/view", "", false},
		{"unrelated text", "see attached pdf", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractID(tt.link)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRow(t *testing.T) {
	row, ok := ParseRow([]string{
		"3/20/2026 10:00:00", "pat@example.edu", " Pat Cruz ", "A", "T1", " SRS ", " https://x/d/abc ",
	}, 4)
	assert.True(t, ok)
	assert.Equal(t, 4, row.RowNumber)
	assert.Equal(t, "Pat Cruz", row.StudentName)
	assert.Equal(t, "SRS", row.DeliverableTag)
	assert.Equal(t, "https://x/d/abc", row.SourceURL)

	_, ok = ParseRow([]string{"3/20/2026 10:00:00", "pat@example.edu", "Pat"}, 5)
	assert.False(t, ok)
}
