package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		team    string
		student string
		late    bool
		want    string
	}{
		{"on time", "SRS", "G1", "DELA CRUZ, JUAN", false, "[SRS] [G1] DELA CRUZ, JUAN"},
		{"late prefix", "SRS", "G1", "DELA CRUZ, JUAN", true, "[LATE] [SRS] [G1] DELA CRUZ, JUAN"},
		{"empty parts kept", "", "", "", false, "[] [] "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalName(tt.tag, tt.team, tt.student, tt.late))
		})
	}
}

func TestRangeStartRow(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Form Responses 1!A2:G", 2},
		{"Deliverables_Config!A2:B", 2},
		{"Sheet1!B10:C", 10},
		{"Sheet1!A:G", 1},
		{"A5:G", 5},
		{"Odd!Name!C3:D", 3},
		{"", 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RangeStartRow(tt.in))
		})
	}
}

func TestVerdict(t *testing.T) {
	assert.False(t, VerdictUnknown.IsLate())
	assert.False(t, VerdictOnTime.IsLate())
	assert.True(t, VerdictLate.IsLate())

	assert.Equal(t, "unknown", VerdictUnknown.String())
	assert.Equal(t, "on_time", VerdictOnTime.String())
	assert.Equal(t, "late", VerdictLate.String())
}

func TestObjectMeta_IsFolder(t *testing.T) {
	assert.True(t, ObjectMeta{MimeType: FolderMimeType}.IsFolder())
	assert.False(t, ObjectMeta{MimeType: "application/pdf"}.IsFolder())
}

func TestWrappedErrors(t *testing.T) {
	cause := errors.New("googleapi: Error 503")

	t.Run("config", func(t *testing.T) {
		err := ErrConfigUnavailable(cause, "read deliverables %s", "Config!A2:B")
		assert.Equal(t, "read deliverables Config!A2:B: googleapi: Error 503", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("source", func(t *testing.T) {
		var target *SourceUnavailableError
		err := error(ErrSourceUnavailable(cause, "read responses"))
		require.ErrorAs(t, err, &target)
		assert.Equal(t, "read responses", target.Message)
	})

	t.Run("remote without cause", func(t *testing.T) {
		err := ErrRemoteUnavailable(nil, "list folder %q", "root")
		assert.Equal(t, `list folder "root"`, err.Error())
		assert.NoError(t, err.Unwrap())
	})
}

func TestNewID_Unique(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
