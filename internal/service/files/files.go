// Package files exposes folder browsing and management over the remote store.
package files

import (
	"context"
	"log/slog"
	"strings"

	"docs-evaluator/internal/domain"
)

// RootAlias is accepted wherever a folder id is expected and resolves to the
// configured root folder.
const RootAlias = "root"

// Service provides file operations scoped to the configured root.
type Service struct {
	store  domain.RemoteStore
	rootID string
	logger *slog.Logger
}

// NewService creates a file Service.
func NewService(store domain.RemoteStore, rootID string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, rootID: rootID, logger: logger.With("component", "files")}
}

// ResolveFolder maps RootAlias and the empty string to the root folder id.
func (s *Service) ResolveFolder(id string) string {
	if id == "" || id == RootAlias {
		return s.rootID
	}
	return id
}

// ListFiles returns the non-trashed children of folderID.
func (s *Service) ListFiles(ctx context.Context, folderID string) ([]domain.ObjectMeta, error) {
	return s.store.ListChildren(ctx, s.ResolveFolder(folderID))
}

// CreateFolder creates a folder named name under parentID.
func (s *Service) CreateFolder(ctx context.Context, name, parentID string) (*domain.ObjectMeta, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrValidation("folder name is required")
	}
	folder, err := s.store.CreateFolder(ctx, name, s.ResolveFolder(parentID))
	if err != nil {
		return nil, err
	}
	s.logger.Info("folder created", "id", folder.ID, "name", name)
	return folder, nil
}

// DeleteFile moves id to the trash.
func (s *Service) DeleteFile(ctx context.Context, id string) error {
	if id == "" || id == RootAlias || id == s.rootID {
		return domain.ErrValidation("refusing to delete the root folder")
	}
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("file trashed", "id", id)
	return nil
}

// SearchFiles finds objects whose name contains query.
func (s *Service) SearchFiles(ctx context.Context, query string) ([]domain.ObjectMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrValidation("search query is required")
	}
	return s.store.Search(ctx, query)
}
