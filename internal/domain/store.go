package domain

import (
	"context"
	"time"
)

// FolderMimeType is the mime type the remote store uses for folders.
const FolderMimeType = "application/vnd.google-apps.folder"

// ObjectMeta describes one object in the remote store.
type ObjectMeta struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdTime"`
	ViewLink  string    `json:"webViewLink"`
	Trashed   bool      `json:"-"`
}

// IsFolder reports whether the object is a folder.
func (m ObjectMeta) IsFolder() bool { return m.MimeType == FolderMimeType }

// RemoteStore is the capability surface over the hierarchical file store.
// Errors are *RemoteUnavailableError, *AccessDeniedError or *NotFoundError.
type RemoteStore interface {
	// ListChildren returns the non-trashed children of parentID.
	ListChildren(ctx context.Context, parentID string) ([]ObjectMeta, error)
	// Exists reports whether a non-trashed child named exactly name exists.
	Exists(ctx context.Context, parentID, name string) (bool, error)
	// GetOrCreateFolder returns the id of the folder named name under
	// parentID, creating it when absent. Never creates duplicates.
	GetOrCreateFolder(ctx context.Context, parentID, name string) (string, error)
	// CreateFolder unconditionally creates a folder.
	CreateFolder(ctx context.Context, name, parentID string) (*ObjectMeta, error)
	// CopyObject copies sourceID into targetParentID under newName.
	CopyObject(ctx context.Context, sourceID, targetParentID, newName string) (string, error)
	GetMetadata(ctx context.Context, id string) (*ObjectMeta, error)
	// SoftDelete moves the object to the trash.
	SoftDelete(ctx context.Context, id string) error
	// Search finds non-trashed objects whose name contains query.
	Search(ctx context.Context, query string) ([]ObjectMeta, error)
	// ExportText returns the plain-text content of a document.
	ExportText(ctx context.Context, id string) (string, error)
}

// RowSource reads a rectangular range of cells from a tabular source.
// Each returned row holds the cell values in column order; trailing empty
// cells may be omitted.
type RowSource interface {
	ReadRange(ctx context.Context, rangeA1 string) ([][]string, error)
}
