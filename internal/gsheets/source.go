// Package gsheets reads cell ranges from Google Sheets.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"docs-evaluator/internal/domain"
)

// Compile-time check: Source implements domain.RowSource.
var _ domain.RowSource = (*Source)(nil)

// Source reads A1 ranges from a single spreadsheet.
type Source struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewService builds a read-only Sheets client from a service-account key file.
func NewService(ctx context.Context, credentialsFile string, extra ...option.ClientOption) (*sheets.Service, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, credentialsFile))
	}
	opts = append(opts, extra...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return svc, nil
}

// NewSource returns a Source bound to spreadsheetID.
func NewSource(svc *sheets.Service, spreadsheetID string) *Source {
	return &Source{svc: svc, spreadsheetID: spreadsheetID}
}

// ReadRange returns the formatted cell values of rangeA1. Trailing empty
// cells are omitted by the API, so rows may be ragged.
func (s *Source) ReadRange(ctx context.Context, rangeA1 string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rangeA1).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err, "read range %q", rangeA1)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func wrapError(err error, format string, args ...interface{}) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf(format+": %w", append(args, err)...)
	}
	msg := fmt.Sprintf(format, args...)

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.ErrAccessDenied("%s: %s", msg, strings.TrimSpace(gerr.Message))
		case http.StatusNotFound:
			return domain.ErrNotFound("%s: spreadsheet or range not found", msg)
		case http.StatusBadRequest:
			return domain.ErrValidation("%s: %s", msg, strings.TrimSpace(gerr.Message))
		}
	}
	return domain.ErrRemoteUnavailable(err, "%s", msg)
}
