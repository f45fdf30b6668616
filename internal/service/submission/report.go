package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"docs-evaluator/internal/domain"
)

// Report is the archived summary of one sync run.
type Report struct {
	Run   domain.SyncRun      `json:"run"`
	Files []domain.RoutedFile `json:"files"`
}

// ReportSink receives a Report after each finished run.
type ReportSink interface {
	Publish(ctx context.Context, report *Report) error
}

// Compile-time check: GCSReportSink implements ReportSink.
var _ ReportSink = (*GCSReportSink)(nil)

// GCSReportSink writes reports as JSON objects to a Cloud Storage bucket,
// keyed <prefix>/<yyyy>/<mm>/<dd>/<run id>.json.
type GCSReportSink struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSClient creates a Cloud Storage client from a service-account key
// file. An empty path falls back to application default credentials.
func NewGCSClient(ctx context.Context, credentialsFile string, extra ...option.ClientOption) (*storage.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, credentialsFile))
	}
	client, err := storage.NewClient(ctx, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return client, nil
}

// NewGCSReportSink creates a sink writing into bucket under prefix.
func NewGCSReportSink(client *storage.Client, bucket, prefix string) *GCSReportSink {
	return &GCSReportSink{client: client, bucket: bucket, prefix: prefix}
}

// ObjectKey returns the object name a report for run is stored under.
func (s *GCSReportSink) ObjectKey(run domain.SyncRun) string {
	return path.Join(s.prefix, run.StartedAt.UTC().Format("2006/01/02"), run.ID+".json")
}

// Publish uploads report.
func (s *GCSReportSink) Publish(ctx context.Context, report *Report) error {
	key := s.ObjectKey(report.Run)
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(report); err != nil {
		_ = w.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	if err := w.Close(); err != nil {
		return domain.ErrRemoteUnavailable(err, "upload gs://%s/%s", s.bucket, key)
	}
	return nil
}
