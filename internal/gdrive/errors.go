package gdrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"docs-evaluator/internal/domain"
)

// Drive reports quota exhaustion as 403 with one of these reasons.
var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":        true,
	"userRateLimitExceeded":    true,
	"dailyLimitExceeded":       true,
	"sharingRateLimitExceeded": true,
}

// wrapError maps a Drive client error onto the domain error taxonomy.
// Context cancellation is passed through unchanged.
func wrapError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf(format+": %w", append(args, err)...)
	}
	var mapped *domain.RemoteUnavailableError
	if errors.As(err, &mapped) {
		return err
	}
	msg := fmt.Sprintf(format, args...)

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return domain.ErrRemoteUnavailable(err, "%s", msg)
	}

	switch {
	case gerr.Code == http.StatusNotFound:
		return domain.ErrNotFound("%s: %s", msg, reasonOf(gerr))
	case gerr.Code == http.StatusForbidden && isRateLimited(gerr):
		return domain.ErrRemoteUnavailable(err, "%s", msg)
	case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
		return domain.ErrAccessDenied("%s: %s", msg, reasonOf(gerr))
	case gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError:
		return domain.ErrRemoteUnavailable(err, "%s", msg)
	default:
		return domain.ErrValidation("%s: %s", msg, reasonOf(gerr))
	}
}

func isRateLimited(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		if rateLimitReasons[item.Reason] {
			return true
		}
	}
	return false
}

// reasonOf returns the first machine-readable reason, e.g.
// "insufficientFilePermissions", falling back to the message.
func reasonOf(gerr *googleapi.Error) string {
	for _, item := range gerr.Errors {
		if item.Reason != "" {
			return item.Reason
		}
	}
	if gerr.Message != "" {
		return gerr.Message
	}
	return http.StatusText(gerr.Code)
}
