// Package roster decides who may sign in: configured teachers by email,
// students by matching their account name against the class roster sheet.
package roster

import (
	"context"
	"log/slog"
	"strings"

	"docs-evaluator/internal/domain"
)

// DefaultRange holds student name (A), section (B) and group code (C).
const DefaultRange = "Sheet1!A2:C"

const notApplicable = "N/A"

// Service verifies users against the teacher list and the roster sheet.
type Service struct {
	rows     domain.RowSource
	rangeA1  string
	teachers map[string]bool
	tokens   TokenVerifier
	logger   *slog.Logger
}

// NewService creates a roster Service. tokens may be nil when ID-token
// sign-in is not configured.
func NewService(rows domain.RowSource, rangeA1 string, teacherEmails []string, tokens TokenVerifier, logger *slog.Logger) *Service {
	if rangeA1 == "" {
		rangeA1 = DefaultRange
	}
	if logger == nil {
		logger = slog.Default()
	}
	teachers := make(map[string]bool, len(teacherEmails))
	for _, e := range teacherEmails {
		if e = normalizeEmail(e); e != "" {
			teachers[e] = true
		}
	}
	return &Service{
		rows:     rows,
		rangeA1:  rangeA1,
		teachers: teachers,
		tokens:   tokens,
		logger:   logger.With("component", "roster"),
	}
}

// Verify returns the roster record for a signed-in user. Teachers are
// matched by email. Students match when every word of their display name
// appears in a roster name (case-insensitive, commas ignored).
func (s *Service) Verify(ctx context.Context, displayName, email string) (*domain.RosterRecord, error) {
	if s.teachers[normalizeEmail(email)] {
		return &domain.RosterRecord{
			StudentName: displayName,
			Section:     notApplicable,
			GroupCode:   notApplicable,
			Role:        domain.RoleTeacher,
		}, nil
	}

	tokens := strings.Fields(strings.ToUpper(displayName))
	if len(tokens) == 0 {
		return nil, domain.ErrValidation("display name is required")
	}

	values, err := s.rows.ReadRange(ctx, s.rangeA1)
	if err != nil {
		return nil, domain.ErrSourceUnavailable(err, "read roster %q", s.rangeA1)
	}
	for _, row := range values {
		if len(row) < 3 {
			continue
		}
		if matchesName(row[0], tokens) {
			return &domain.RosterRecord{
				StudentName: strings.TrimSpace(row[0]),
				Section:     strings.TrimSpace(row[1]),
				GroupCode:   strings.TrimSpace(row[2]),
				Role:        domain.RoleStudent,
			}, nil
		}
	}

	s.logger.Info("sign-in rejected", "name", displayName)
	return nil, domain.ErrAccessDenied("%q is not on the class allowlist", displayName)
}

// VerifyToken validates a Google ID token and verifies the identity it carries.
func (s *Service) VerifyToken(ctx context.Context, rawToken string) (*domain.RosterRecord, error) {
	if s.tokens == nil {
		return nil, domain.ErrValidation("ID-token sign-in is not configured")
	}
	id, err := s.tokens.Verify(ctx, rawToken)
	if err != nil {
		return nil, domain.ErrAccessDenied("invalid ID token: %v", err)
	}
	return s.Verify(ctx, id.Name, id.Email)
}

func matchesName(rosterName string, tokens []string) bool {
	normalized := strings.ReplaceAll(strings.ToUpper(rosterName), ",", "")
	for _, t := range tokens {
		if !strings.Contains(normalized, t) {
			return false
		}
	}
	return true
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
