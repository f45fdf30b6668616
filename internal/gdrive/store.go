// Package gdrive implements domain.RemoteStore on top of the Google Drive v3 API.
package gdrive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"docs-evaluator/internal/domain"
	"docs-evaluator/internal/keylock"
)

const (
	metaFields     googleapi.Field = "id, name, mimeType, createdTime, webViewLink, trashed"
	listFields     googleapi.Field = "nextPageToken, files(id, name, mimeType, createdTime, webViewLink, trashed)"
	idOnlyFields   googleapi.Field = "nextPageToken, files(id)"
	googleDocMime                  = "application/vnd.google-apps.document"
	maxExportBytes                 = 10 << 20
)

// Compile-time check: Store implements domain.RemoteStore.
var _ domain.RemoteStore = (*Store)(nil)

// Store is the Drive-backed remote store gateway.
type Store struct {
	svc     *drive.Service
	limiter *rate.Limiter
	folders keylock.Map
	logger  *slog.Logger
}

// NewService builds a Drive client from a service-account key file.
// Extra options (endpoint, HTTP client) are appended last so they win.
func NewService(ctx context.Context, credentialsFile string, extra ...option.ClientOption) (*drive.Service, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, credentialsFile))
	}
	opts = append(opts, extra...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return svc, nil
}

// NewStore wraps svc. qps <= 0 disables client-side throttling.
func NewStore(svc *drive.Service, qps float64, logger *slog.Logger) *Store {
	limit := rate.Inf
	burst := 1
	if qps > 0 {
		limit = rate.Limit(qps)
		burst = int(qps) + 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		svc:     svc,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// ListChildren returns every non-trashed child of parentID, following pagination.
func (s *Store) ListChildren(ctx context.Context, parentID string) ([]domain.ObjectMeta, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(parentID))
	files, err := s.list(ctx, q, listFields)
	if err != nil {
		return nil, wrapError(err, "list children of %s", parentID)
	}
	return toMetas(files), nil
}

// Exists reports whether a non-trashed child named exactly name exists.
func (s *Store) Exists(ctx context.Context, parentID, name string) (bool, error) {
	q := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), escapeQuery(parentID))
	files, err := s.list(ctx, q, idOnlyFields)
	if err != nil {
		return false, wrapError(err, "check %q in %s", name, parentID)
	}
	return len(files) > 0, nil
}

// GetOrCreateFolder looks the folder up and creates it only when absent.
// Calls for the same (parentID, name) are serialized so concurrent callers
// observe the folder created by the first one.
func (s *Store) GetOrCreateFolder(ctx context.Context, parentID, name string) (string, error) {
	unlock := s.folders.Lock(keylock.Key(parentID, name))
	defer unlock()

	q := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
		escapeQuery(name), escapeQuery(parentID), domain.FolderMimeType)
	files, err := s.list(ctx, q, idOnlyFields)
	if err != nil {
		return "", wrapError(err, "look up folder %q in %s", name, parentID)
	}
	if len(files) > 0 {
		if len(files) > 1 {
			s.logger.Warn("duplicate folders found", "parent", parentID, "name", name, "count", len(files))
		}
		return files[0].Id, nil
	}

	created, err := s.createFolder(ctx, name, parentID, "id")
	if err != nil {
		return "", err
	}
	s.logger.Debug("folder created", "parent", parentID, "name", name, "id", created.Id)
	return created.Id, nil
}

// CreateFolder unconditionally creates a folder under parentID.
func (s *Store) CreateFolder(ctx context.Context, name, parentID string) (*domain.ObjectMeta, error) {
	created, err := s.createFolder(ctx, name, parentID, metaFields)
	if err != nil {
		return nil, err
	}
	meta := toMeta(created)
	return &meta, nil
}

func (s *Store) createFolder(ctx context.Context, name, parentID string, fields googleapi.Field) (*drive.File, error) {
	if err := s.wait(ctx, "create folder %q", name); err != nil {
		return nil, err
	}
	created, err := s.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: domain.FolderMimeType,
		Parents:  []string{parentID},
	}).Fields(fields).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err, "create folder %q in %s", name, parentID)
	}
	return created, nil
}

// CopyObject copies sourceID into targetParentID under newName.
func (s *Store) CopyObject(ctx context.Context, sourceID, targetParentID, newName string) (string, error) {
	if err := s.wait(ctx, "copy %s", sourceID); err != nil {
		return "", err
	}
	copied, err := s.svc.Files.Copy(sourceID, &drive.File{
		Name:    newName,
		Parents: []string{targetParentID},
	}).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", wrapError(err, "copy %s into %s", sourceID, targetParentID)
	}
	return copied.Id, nil
}

// GetMetadata fetches id, name, mime type, creation time and view link.
func (s *Store) GetMetadata(ctx context.Context, id string) (*domain.ObjectMeta, error) {
	if err := s.wait(ctx, "get metadata %s", id); err != nil {
		return nil, err
	}
	f, err := s.svc.Files.Get(id).Fields(metaFields).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err, "get metadata for %s", id)
	}
	meta := toMeta(f)
	return &meta, nil
}

// SoftDelete moves the object to the trash. Updating instead of deleting
// works for editors as well as owners.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	if err := s.wait(ctx, "trash %s", id); err != nil {
		return err
	}
	_, err := s.svc.Files.Update(id, &drive.File{Trashed: true}).
		Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return wrapError(err, "trash %s", id)
	}
	return nil
}

// Search finds non-trashed objects whose name contains query.
func (s *Store) Search(ctx context.Context, query string) ([]domain.ObjectMeta, error) {
	q := fmt.Sprintf("name contains '%s' and trashed = false", escapeQuery(query))
	files, err := s.list(ctx, q, listFields)
	if err != nil {
		return nil, wrapError(err, "search %q", query)
	}
	return toMetas(files), nil
}

// ExportText returns document text. Google Docs are exported as text/plain;
// text/* files are downloaded as-is. Other formats are rejected.
func (s *Store) ExportText(ctx context.Context, id string) (string, error) {
	meta, err := s.GetMetadata(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.wait(ctx, "export %s", id); err != nil {
		return "", err
	}

	var body io.ReadCloser
	switch {
	case meta.MimeType == googleDocMime:
		resp, err := s.svc.Files.Export(id, "text/plain").Context(ctx).Download()
		if err != nil {
			return "", wrapError(err, "export %s", id)
		}
		body = resp.Body
	case strings.HasPrefix(meta.MimeType, "text/"):
		resp, err := s.svc.Files.Get(id).SupportsAllDrives(true).Context(ctx).Download()
		if err != nil {
			return "", wrapError(err, "download %s", id)
		}
		body = resp.Body
	default:
		return "", domain.ErrValidation("cannot extract text from %q (%s)", meta.Name, meta.MimeType)
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(body, maxExportBytes))
	if err != nil {
		return "", domain.ErrRemoteUnavailable(err, "read content of %s", id)
	}
	return string(data), nil
}

func (s *Store) list(ctx context.Context, q string, fields googleapi.Field) ([]*drive.File, error) {
	var (
		out   []*drive.File
		token string
	)
	for {
		if err := s.wait(ctx, "list files"); err != nil {
			return nil, err
		}
		call := s.svc.Files.List().Q(q).Fields(fields).
			SupportsAllDrives(true).IncludeItemsFromAllDrives(true).
			PageSize(1000).Context(ctx)
		if token != "" {
			call = call.PageToken(token)
		}
		res, err := call.Do()
		if err != nil {
			return nil, err
		}
		out = append(out, res.Files...)
		if res.NextPageToken == "" {
			return out, nil
		}
		token = res.NextPageToken
	}
}

// wait blocks on the client-side limiter. A wait that cannot finish before
// the deadline is reported as RemoteUnavailable like any other throttling.
func (s *Store) wait(ctx context.Context, format string, args ...interface{}) error {
	return wrapError(s.limiter.Wait(ctx), format, args...)
}

func toMetas(files []*drive.File) []domain.ObjectMeta {
	out := make([]domain.ObjectMeta, 0, len(files))
	for _, f := range files {
		if f.Trashed {
			continue
		}
		out = append(out, toMeta(f))
	}
	return out
}

func toMeta(f *drive.File) domain.ObjectMeta {
	meta := domain.ObjectMeta{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		ViewLink: f.WebViewLink,
		Trashed:  f.Trashed,
	}
	if f.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
			meta.CreatedAt = t
		}
	}
	return meta
}

// escapeQuery escapes a literal for use inside single quotes in a Drive query.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
