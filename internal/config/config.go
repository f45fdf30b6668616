// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Evaluation history backends.
const (
	EvalStoreSQLite = "sqlite"
	EvalStoreMongo  = "mongo"
)

// GoogleConfig holds the Google Workspace resources the sync reads and writes.
type GoogleConfig struct {
	CredentialsFile   string  // service-account key file; empty means application default credentials
	SpreadsheetID     string  // spreadsheet holding responses, deliverables and roster tabs
	ResponsesRange    string  // default "Form Responses 1!A2:G"
	DeliverablesRange string  // default "Deliverables_Config!A2:B"
	RosterRange       string  // default "Sheet1!A2:C"
	DeliverablesFile  string  // optional YAML file replacing the deliverables tab
	RootFolderID      string  // Drive folder that holds the section/team hierarchy
	ClientID          string  // OAuth client id for ID-token sign-in (optional)
	DriveQPS          float64 // client-side Drive request rate; 0 disables throttling
}

// MissingRequired lists the unset variables a sync cannot run without.
func (g *GoogleConfig) MissingRequired() []string {
	var missing []string
	if g.SpreadsheetID == "" {
		missing = append(missing, "SPREADSHEET_ID")
	}
	if g.RootFolderID == "" {
		missing = append(missing, "DRIVE_ROOT_FOLDER_ID")
	}
	return missing
}

// SyncConfig controls how submission syncs run.
type SyncConfig struct {
	Concurrency  int            // rows processed at once (default 4)
	Schedule     string         // cron expression for background syncs; empty disables
	Location     *time.Location // zone sheet timestamps are interpreted in
	ReportBucket string         // GCS bucket for run reports; empty disables
	ReportPrefix string         // object prefix inside ReportBucket (default "sync-reports")
}

// AIConfig holds evaluation provider credentials.
type AIConfig struct {
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterURL     string
	OpenRouterReferer string
	GeminiAPIKey      string
	GeminiModel       string
}

// Config holds the configuration for the HTTP API, the sync engine and the CLI.
type Config struct {
	Google GoogleConfig
	Sync   SyncConfig
	AI     AIConfig

	MetaDBPath string // path to SQLite metadata file (default "docs_evaluator.sqlite")
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// Evaluation history store: "sqlite" (default) or "mongo".
	EvalStore     string
	MongoURI      string
	MongoDatabase string

	// Emails granted the teacher role at sign-in.
	TeacherEmails []string

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 20)
	RateLimitBurst int     // burst capacity (default 40)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Google: GoogleConfig{
			CredentialsFile:   os.Getenv("GOOGLE_CREDENTIALS_FILE"),
			SpreadsheetID:     os.Getenv("SPREADSHEET_ID"),
			ResponsesRange:    os.Getenv("RESPONSES_RANGE"),
			DeliverablesRange: os.Getenv("DELIVERABLES_RANGE"),
			RosterRange:       os.Getenv("ROSTER_RANGE"),
			DeliverablesFile:  os.Getenv("DELIVERABLES_FILE"),
			RootFolderID:      os.Getenv("DRIVE_ROOT_FOLDER_ID"),
			ClientID:          os.Getenv("GOOGLE_CLIENT_ID"),
		},
		Sync: SyncConfig{
			Schedule:     strings.TrimSpace(os.Getenv("SYNC_SCHEDULE")),
			ReportBucket: os.Getenv("SYNC_REPORT_BUCKET"),
			ReportPrefix: os.Getenv("SYNC_REPORT_PREFIX"),
		},
		AI: AIConfig{
			OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
			OpenRouterModel:   os.Getenv("OPENROUTER_MODEL"),
			OpenRouterURL:     os.Getenv("OPENROUTER_URL"),
			OpenRouterReferer: os.Getenv("OPENROUTER_REFERER"),
			GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
			GeminiModel:       os.Getenv("GEMINI_MODEL"),
		},
		MetaDBPath:    os.Getenv("META_DB_PATH"),
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Env:           os.Getenv("ENV"),
		EvalStore:     strings.ToLower(strings.TrimSpace(os.Getenv("EVAL_STORE"))),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: os.Getenv("MONGO_DATABASE"),
		TeacherEmails: splitList(os.Getenv("TEACHER_EMAILS")),
	}

	if v := os.Getenv("DRIVE_QPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("DRIVE_QPS must be a non-negative number, got %q", v)
		}
		cfg.Google.DriveQPS = f
	}
	if v := os.Getenv("SYNC_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("SYNC_CONCURRENCY must be a positive integer, got %q", v)
		}
		cfg.Sync.Concurrency = n
	}

	loc, err := loadLocation(os.Getenv("DEADLINE_TIMEZONE"))
	if err != nil {
		return nil, err
	}
	cfg.Sync.Location = loc

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}

	// Defaults
	if cfg.Google.ResponsesRange == "" {
		cfg.Google.ResponsesRange = "Form Responses 1!A2:G"
	}
	if cfg.Google.DeliverablesRange == "" {
		cfg.Google.DeliverablesRange = "Deliverables_Config!A2:B"
	}
	if cfg.Google.RosterRange == "" {
		cfg.Google.RosterRange = "Sheet1!A2:C"
	}
	if cfg.Sync.Concurrency == 0 {
		cfg.Sync.Concurrency = 4
	}
	if cfg.Sync.ReportPrefix == "" {
		cfg.Sync.ReportPrefix = "sync-reports"
	}
	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = "docs_evaluator.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.EvalStore == "" {
		cfg.EvalStore = EvalStoreSQLite
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 20
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 40
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	switch cfg.EvalStore {
	case EvalStoreSQLite:
	case EvalStoreMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required when EVAL_STORE=mongo")
		}
	default:
		return nil, fmt.Errorf("EVAL_STORE must be %q or %q, got %q", EvalStoreSQLite, EvalStoreMongo, cfg.EvalStore)
	}

	if missing := cfg.Google.MissingRequired(); len(missing) > 0 {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s not set: submission sync is unavailable", strings.Join(missing, ", ")))
	}
	if cfg.Google.CredentialsFile == "" {
		cfg.Warnings = append(cfg.Warnings, "GOOGLE_CREDENTIALS_FILE not set: using application default credentials")
	}
	if cfg.AI.OpenRouterAPIKey == "" && cfg.AI.GeminiAPIKey == "" {
		cfg.Warnings = append(cfg.Warnings, "no AI provider configured: set OPENROUTER_API_KEY or GEMINI_API_KEY to enable evaluations")
	}
	if len(cfg.TeacherEmails) == 0 {
		cfg.Warnings = append(cfg.Warnings, "TEACHER_EMAILS is empty: nobody can sign in as teacher")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if missing := cfg.Google.MissingRequired(); len(missing) > 0 {
			return nil, fmt.Errorf("%s must be set in production (ENV=production)", strings.Join(missing, ", "))
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "Local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("DEADLINE_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
