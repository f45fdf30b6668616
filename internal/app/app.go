// Package app wires configuration, storage and Google clients into the
// services behind the HTTP API and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"

	"docs-evaluator/internal/api"
	"docs-evaluator/internal/config"
	"docs-evaluator/internal/db/mongostore"
	"docs-evaluator/internal/db/repository"
	"docs-evaluator/internal/domain"
	"docs-evaluator/internal/gdrive"
	"docs-evaluator/internal/gsheets"
	"docs-evaluator/internal/middleware"
	"docs-evaluator/internal/service/deadline"
	"docs-evaluator/internal/service/evaluation"
	"docs-evaluator/internal/service/files"
	"docs-evaluator/internal/service/roster"
	"docs-evaluator/internal/service/routing"
	"docs-evaluator/internal/service/submission"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger

	// GoogleOptions are appended to every Drive and Sheets client option list.
	GoogleOptions []option.ClientOption
	// TokenVerifier replaces the discovered Google OIDC verifier when set.
	TokenVerifier roster.TokenVerifier
	// OIDCIssuer overrides the discovery issuer. Defaults to roster.GoogleIssuer.
	OIDCIssuer string
}

// Services groups the wired services. Google-backed services are nil when
// SPREADSHEET_ID or DRIVE_ROOT_FOLDER_ID is unset.
type Services struct {
	Store      domain.RemoteStore
	Files      *files.Service
	Deadlines  deadline.Loader
	Sync       *submission.Orchestrator
	Roster     *roster.Service
	Evaluation *evaluation.Service
	SyncRuns   domain.SyncRunRepository
}

// App is the fully-wired application.
type App struct {
	Services  Services
	Scheduler *submission.Scheduler // nil when SYNC_SCHEDULE is unset

	logger  *slog.Logger
	closers []func(context.Context) error
}

// connectMongo is swapped in tests that have no MongoDB server.
var connectMongo = mongostore.Connect

// New wires all repositories and services from deps. Clients opened before a
// failing step are released before the error is returned.
func New(ctx context.Context, deps Deps) (*App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{logger: logger}
	if err := a.wire(ctx, deps); err != nil {
		if cerr := a.Close(context.WithoutCancel(ctx)); cerr != nil {
			logger.Warn("release partially wired clients", "error", cerr)
		}
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context, deps Deps) error {
	cfg := deps.Cfg
	logger := a.logger

	// === Repositories ===
	syncRuns := repository.NewSyncRunRepo(deps.WriteDB)
	a.Services.SyncRuns = syncRuns

	evalRepo, err := a.evaluationRepo(ctx, cfg, deps)
	if err != nil {
		return err
	}

	// === Google clients ===
	var rows domain.RowSource
	if cfg.Google.SpreadsheetID != "" {
		sheetsSvc, err := gsheets.NewService(ctx, cfg.Google.CredentialsFile, deps.GoogleOptions...)
		if err != nil {
			return err
		}
		rows = gsheets.NewSource(sheetsSvc, cfg.Google.SpreadsheetID)
	}
	var store domain.RemoteStore
	if cfg.Google.RootFolderID != "" {
		driveSvc, err := gdrive.NewService(ctx, cfg.Google.CredentialsFile, deps.GoogleOptions...)
		if err != nil {
			return err
		}
		store = gdrive.NewStore(driveSvc, cfg.Google.DriveQPS, logger.With("component", "gdrive"))
		a.Services.Store = store
		a.Services.Files = files.NewService(store, cfg.Google.RootFolderID, logger)
	}

	// === Deadlines ===
	switch {
	case cfg.Google.DeliverablesFile != "":
		a.Services.Deadlines = deadline.NewFileLoader(cfg.Google.DeliverablesFile, cfg.Sync.Location, logger)
	case rows != nil:
		a.Services.Deadlines = deadline.NewSheetLoader(rows, cfg.Google.DeliverablesRange, cfg.Sync.Location, logger)
	}

	// === Submission sync ===
	if rows != nil && store != nil {
		reports, err := a.reportSink(ctx, cfg)
		if err != nil {
			return err
		}
		a.Services.Sync = submission.NewOrchestrator(submission.Config{
			Rows:           rows,
			Deadlines:      a.Services.Deadlines,
			Router:         routing.NewRouter(store, cfg.Google.RootFolderID, logger),
			Store:          store,
			Runs:           syncRuns,
			Reports:        reports,
			ResponsesRange: cfg.Google.ResponsesRange,
			Location:       cfg.Sync.Location,
			Concurrency:    cfg.Sync.Concurrency,
			Logger:         logger,
		})
		if cfg.Sync.Schedule != "" {
			a.Scheduler = submission.NewScheduler(a.Services.Sync, cfg.Sync.Schedule, logger)
		}
	}

	// === Roster ===
	if rows != nil {
		tokens := deps.TokenVerifier
		if tokens == nil && cfg.Google.ClientID != "" {
			issuer := deps.OIDCIssuer
			if issuer == "" {
				issuer = roster.GoogleIssuer
			}
			v, err := roster.NewOIDCVerifier(ctx, issuer, cfg.Google.ClientID)
			if err != nil {
				return err
			}
			tokens = v
		}
		a.Services.Roster = roster.NewService(rows, cfg.Google.RosterRange, cfg.TeacherEmails, tokens, logger)
	}

	// === Evaluation ===
	if store != nil {
		registry, err := providerRegistry(ctx, cfg)
		if err != nil {
			return err
		}
		a.Services.Evaluation = evaluation.NewService(store, evalRepo, registry, logger)
	}

	return nil
}

func (a *App) evaluationRepo(ctx context.Context, cfg *config.Config, deps Deps) (domain.EvaluationRepository, error) {
	if cfg.EvalStore != config.EvalStoreMongo {
		return repository.NewEvaluationRepo(deps.WriteDB), nil
	}
	client, err := connectMongo(ctx, cfg.MongoURI, a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(ctx context.Context) error {
		return client.Disconnect(ctx)
	})
	return mongostore.NewEvaluationRepoFromClient(client, cfg.MongoDatabase), nil
}

func (a *App) reportSink(ctx context.Context, cfg *config.Config) (submission.ReportSink, error) {
	if cfg.Sync.ReportBucket == "" {
		return nil, nil
	}
	client, err := submission.NewGCSClient(ctx, cfg.Google.CredentialsFile)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	a.logger.Info("sync reports enabled", "bucket", cfg.Sync.ReportBucket)
	return submission.NewGCSReportSink(client, cfg.Sync.ReportBucket, cfg.Sync.ReportPrefix), nil
}

func providerRegistry(ctx context.Context, cfg *config.Config) (*evaluation.Registry, error) {
	registry, err := evaluation.NewRegistry()
	if err != nil {
		return nil, err
	}
	if cfg.AI.OpenRouterAPIKey != "" {
		p, err := evaluation.NewOpenRouterProvider(cfg.AI.OpenRouterAPIKey, cfg.AI.OpenRouterURL, cfg.AI.OpenRouterModel, cfg.AI.OpenRouterReferer)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	if cfg.AI.GeminiAPIKey != "" {
		p, err := evaluation.NewGeminiProvider(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, "")
		if err != nil {
			return nil, err
		}
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// APIServices adapts the wired services for api.NewHandler. Unconfigured
// services stay nil interfaces so their routes answer 503.
func (a *App) APIServices() api.Services {
	svc := api.Services{Runs: a.Services.SyncRuns}
	if a.Services.Files != nil {
		svc.Files = a.Services.Files
	}
	if a.Services.Sync != nil {
		svc.Syncer = a.Services.Sync
	}
	if a.Services.Evaluation != nil {
		svc.Eval = a.Services.Evaluation
	}
	if a.Services.Roster != nil {
		svc.Roster = a.Services.Roster
	}
	if a.Services.Deadlines != nil {
		svc.Deliverables = a.Services.Deadlines
	}
	return svc
}

// IdentityVerifier returns the roster when ID-token sign-in is configured.
func (a *App) IdentityVerifier(cfg *config.Config) middleware.IdentityVerifier {
	if a.Services.Roster == nil || cfg.Google.ClientID == "" {
		return nil
	}
	return a.Services.Roster
}

// Start launches background work (the sync scheduler).
func (a *App) Start(ctx context.Context) error {
	if a.Scheduler == nil {
		return nil
	}
	return a.Scheduler.Start(ctx)
}

// Close stops background work and releases external clients.
func (a *App) Close(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close app: %w", err)
	}
	return nil
}
