package submission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docs-evaluator/internal/domain"
	"docs-evaluator/internal/testutil"
)

func TestScheduler_InvalidSchedule(t *testing.T) {
	f := newFixture(t, 1)
	s := NewScheduler(f.orch, "every tuesday", testutil.DiscardLogger())

	err := s.Start(context.Background())
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestScheduler_TickRunsScheduledSync(t *testing.T) {
	f := newFixture(t, 1)
	src := f.store.AddFile("d", "a.pdf", "application/pdf", "")
	f.rows.Ranges[DefaultResponsesRange] = [][]string{
		response("3/20/2026 10:00:00", "Ana", "A", "T1", "SRS", f.store.ShareLink(src)),
	}

	s := NewScheduler(f.orch, "@every 1h", testutil.DiscardLogger())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	s.tick()
	run := f.runs.LastRun()
	require.NotNil(t, run)
	assert.Equal(t, domain.SyncTriggerScheduled, run.Trigger)
	assert.Equal(t, 1, run.RowsRouted)
}
