// Package submission reads form responses and routes each submitted file
// into the canonical folder hierarchy.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"docs-evaluator/internal/domain"
	"docs-evaluator/internal/service/deadline"
	"docs-evaluator/internal/service/routing"
)

// DefaultResponsesRange is the sheet range holding form responses.
const DefaultResponsesRange = "Form Responses 1!A2:G"

// Router places one submission. Implemented by *routing.Router.
type Router interface {
	Route(ctx context.Context, req routing.RouteRequest) (*routing.RouteResult, error)
}

// Config wires an Orchestrator.
type Config struct {
	Rows      domain.RowSource
	Deadlines deadline.Loader
	Router    Router
	Store     domain.RemoteStore

	// Runs records sync history. Optional.
	Runs domain.SyncRunRepository
	// Reports receives a report after every finished run. Optional.
	Reports ReportSink

	ResponsesRange string
	Location       *time.Location
	// Concurrency bounds how many rows are processed at once. Values below
	// one mean sequential processing.
	Concurrency int
	Logger      *slog.Logger
}

// Orchestrator runs submission syncs.
type Orchestrator struct {
	rows        domain.RowSource
	deadlines   deadline.Loader
	router      Router
	store       domain.RemoteStore
	runs        domain.SyncRunRepository
	reports     ReportSink
	rangeA1     string
	location    *time.Location
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewOrchestrator creates an Orchestrator from cfg.
func NewOrchestrator(cfg Config) *Orchestrator {
	o := &Orchestrator{
		rows:        cfg.Rows,
		deadlines:   cfg.Deadlines,
		router:      cfg.Router,
		store:       cfg.Store,
		runs:        cfg.Runs,
		reports:     cfg.Reports,
		rangeA1:     cfg.ResponsesRange,
		location:    cfg.Location,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
		now:         time.Now,
	}
	if o.rangeA1 == "" {
		o.rangeA1 = DefaultResponsesRange
	}
	if o.location == nil {
		o.location = time.Local
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.logger = o.logger.With("component", "submission-sync")
	return o
}

// Sync runs a manually triggered sync.
func (o *Orchestrator) Sync(ctx context.Context) ([]domain.RoutedFile, error) {
	return o.Run(ctx, domain.SyncTriggerManual)
}

// Run loads deadlines, reads every response row and routes each one.
// Rows fail independently: a failed row is logged and left out of the
// result. Only an unreadable deadline config or response range fails the
// call. Results follow input row order. On cancellation the files routed so
// far are returned together with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, trigger domain.SyncTrigger) ([]domain.RoutedFile, error) {
	run := o.startRun(ctx, trigger)

	configs, err := o.deadlines.Load(ctx)
	if err != nil {
		o.finishRun(context.WithoutCancel(ctx), run, nil, err)
		return nil, err
	}

	values, err := o.rows.ReadRange(ctx, o.rangeA1)
	if err != nil {
		if ctx.Err() == nil {
			err = domain.ErrSourceUnavailable(err, "read submissions %q", o.rangeA1)
		}
		o.finishRun(context.WithoutCancel(ctx), run, nil, err)
		return nil, err
	}
	run.RowsTotal = len(values)
	o.logger.Info("sync started", "run_id", run.ID, "rows", len(values), "deliverables", len(configs))

	firstRow := domain.RangeStartRow(o.rangeA1)
	slots := make([]*domain.RoutedFile, len(values))
	g := new(errgroup.Group)
	g.SetLimit(o.concurrency)
	for i, cells := range values {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			slots[i] = o.processRow(ctx, firstRow+i, cells, configs)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]domain.RoutedFile, 0, len(slots))
	for _, f := range slots {
		if f != nil {
			results = append(results, *f)
		}
	}

	err = ctx.Err()
	o.finishRun(context.WithoutCancel(ctx), run, results, err)
	return results, err
}

// processRow handles the response on sheet row n and returns nil when the
// row is skipped.
func (o *Orchestrator) processRow(ctx context.Context, n int, cells []string, configs map[string]domain.DeliverableConfig) *domain.RoutedFile {
	if ctx.Err() != nil {
		return nil
	}
	row, ok := ParseRow(cells, n)
	if !ok {
		o.logger.Debug("row skipped: too few columns", "row", n, "columns", len(cells))
		return nil
	}
	log := o.logger.With("row", n, "student", row.StudentName)

	sourceID, ok := ExtractID(row.SourceURL)
	if !ok {
		log.Warn("no file id in submission link", "url", row.SourceURL)
		return nil
	}

	late := false
	if _, configured := configs[row.DeliverableTag]; configured {
		submittedAt, err := deadline.ParseTimestamp(row.Timestamp, o.location)
		if err != nil {
			log.Warn("unparseable submission timestamp", "timestamp", row.Timestamp, "error", err)
			return nil
		}
		late = deadline.Classify(submittedAt, row.DeliverableTag, configs).IsLate()
	}

	res, err := o.router.Route(ctx, routing.RouteRequest{
		Section:        row.Section,
		TeamCode:       row.TeamCode,
		StudentName:    row.StudentName,
		DeliverableTag: row.DeliverableTag,
		SourceID:       sourceID,
		Late:           late,
	})
	if err != nil {
		o.logRowError(log, "routing failed", err)
		return nil
	}

	meta, err := o.store.GetMetadata(ctx, sourceID)
	if err != nil {
		o.logRowError(log, "read submission metadata", err)
		return nil
	}

	return &domain.RoutedFile{
		ID:          meta.ID,
		DisplayName: res.TargetName,
		MimeType:    meta.MimeType,
		CreatedAt:   meta.CreatedAt,
		SubmittedAt: row.Timestamp,
		ViewLink:    meta.ViewLink,
		Late:        late,
	}
}

func (o *Orchestrator) logRowError(log *slog.Logger, msg string, err error) {
	var denied *domain.AccessDeniedError
	switch {
	case errors.As(err, &denied):
		log.Warn("permission denied, submission link is likely view-only", "error", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Debug(msg, "error", err)
	default:
		log.Error(msg, "error", err)
	}
}

func (o *Orchestrator) startRun(ctx context.Context, trigger domain.SyncTrigger) *domain.SyncRun {
	run := &domain.SyncRun{
		ID:        domain.NewID(),
		Trigger:   trigger,
		Status:    domain.SyncRunStatusRunning,
		StartedAt: o.now().UTC(),
	}
	if o.runs == nil {
		return run
	}
	created, err := o.runs.Create(ctx, run)
	if err != nil {
		o.logger.Warn("record sync run", "run_id", run.ID, "error", err)
		return run
	}
	return created
}

func (o *Orchestrator) finishRun(ctx context.Context, run *domain.SyncRun, results []domain.RoutedFile, runErr error) {
	finished := o.now().UTC()
	run.FinishedAt = &finished
	run.RowsRouted = len(results)
	run.RowsSkipped = run.RowsTotal - len(results)
	switch {
	case runErr == nil:
		run.Status = domain.SyncRunStatusSucceeded
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		run.Status = domain.SyncRunStatusCanceled
	default:
		run.Status = domain.SyncRunStatusFailed
	}
	if runErr != nil {
		msg := runErr.Error()
		run.ErrorMessage = &msg
	}

	o.logger.Info("sync finished",
		"run_id", run.ID,
		"status", run.Status,
		"routed", run.RowsRouted,
		"skipped", run.RowsSkipped,
		"duration", finished.Sub(run.StartedAt),
	)

	if o.runs != nil {
		if err := o.runs.Finish(ctx, run); err != nil {
			o.logger.Warn("update sync run", "run_id", run.ID, "error", err)
		}
	}
	if o.reports != nil {
		report := &Report{Run: *run, Files: results}
		if err := o.reports.Publish(ctx, report); err != nil {
			o.logger.Warn("publish sync report", "run_id", run.ID, "error", err)
		}
	}
}
