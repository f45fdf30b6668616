package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"docs-evaluator/internal/domain"
	"docs-evaluator/internal/keylock"
)

// FakeStore is an in-memory domain.RemoteStore. Object ids are 28-character
// alphanumeric tokens so they survive share-link extraction.
type FakeStore struct {
	// DenyCopy makes CopyObject fail with AccessDeniedError for these source ids.
	DenyCopy map[string]bool
	// DenyRead makes GetMetadata and ListChildren fail with AccessDeniedError.
	DenyRead map[string]bool
	// BetweenCheckAndCreate runs inside GetOrCreateFolder after the lookup
	// and before the create, without the store lock held.
	BetweenCheckAndCreate func(parentID, name string)

	mu      sync.Mutex
	nextID  int
	objects map[string]*fakeObject
	locks   keylock.Map

	copies        int
	folderCreates int
}

type fakeObject struct {
	meta    domain.ObjectMeta
	parent  string
	content string
}

var _ domain.RemoteStore = (*FakeStore)(nil)

// NewFakeStore returns an empty store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		DenyCopy: map[string]bool{},
		DenyRead: map[string]bool{},
		objects:  map[string]*fakeObject{},
	}
}

// AddFolder seeds a folder and returns its id.
func (s *FakeStore) AddFolder(parentID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(parentID, name, domain.FolderMimeType, "")
}

// AddFile seeds a file and returns its id.
func (s *FakeStore) AddFile(parentID, name, mimeType, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(parentID, name, mimeType, content)
}

// ShareLink returns a share URL that embeds id.
func (s *FakeStore) ShareLink(id string) string {
	return "https://drive.google.com/file/d/" + id + "/view?usp=sharing"
}

// ChildrenNamed returns non-trashed children of parentID with the given name.
func (s *FakeStore) ChildrenNamed(parentID, name string) []domain.ObjectMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ObjectMeta
	for _, o := range s.sortedChildren(parentID) {
		if o.meta.Name == name {
			out = append(out, o.meta)
		}
	}
	return out
}

// Copies returns how many CopyObject calls succeeded.
func (s *FakeStore) Copies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copies
}

// FolderCreates returns how many folders were created through the store API.
func (s *FakeStore) FolderCreates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folderCreates
}

// ListChildren implements domain.RemoteStore.
func (s *FakeStore) ListChildren(_ context.Context, parentID string) ([]domain.ObjectMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DenyRead[parentID] {
		return nil, domain.ErrAccessDenied("insufficientFilePermissions: %s", parentID)
	}
	children := s.sortedChildren(parentID)
	out := make([]domain.ObjectMeta, 0, len(children))
	for _, o := range children {
		out = append(out, o.meta)
	}
	return out, nil
}

// Exists implements domain.RemoteStore.
func (s *FakeStore) Exists(_ context.Context, parentID, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.sortedChildren(parentID) {
		if o.meta.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// GetOrCreateFolder implements domain.RemoteStore.
func (s *FakeStore) GetOrCreateFolder(_ context.Context, parentID, name string) (string, error) {
	unlock := s.locks.Lock(keylock.Key(parentID, name))
	defer unlock()

	s.mu.Lock()
	for _, o := range s.sortedChildren(parentID) {
		if o.meta.Name == name && o.meta.IsFolder() {
			s.mu.Unlock()
			return o.meta.ID, nil
		}
	}
	s.mu.Unlock()

	if s.BetweenCheckAndCreate != nil {
		s.BetweenCheckAndCreate(parentID, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.folderCreates++
	return s.add(parentID, name, domain.FolderMimeType, ""), nil
}

// CreateFolder implements domain.RemoteStore.
func (s *FakeStore) CreateFolder(_ context.Context, name, parentID string) (*domain.ObjectMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folderCreates++
	id := s.add(parentID, name, domain.FolderMimeType, "")
	meta := s.objects[id].meta
	return &meta, nil
}

// CopyObject implements domain.RemoteStore.
func (s *FakeStore) CopyObject(_ context.Context, sourceID, targetParentID, newName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DenyCopy[sourceID] {
		return "", domain.ErrAccessDenied("insufficientFilePermissions: cannot copy %s", sourceID)
	}
	src, ok := s.objects[sourceID]
	if !ok || src.meta.Trashed {
		return "", domain.ErrNotFound("file %s not found", sourceID)
	}
	if src.meta.IsFolder() {
		return "", domain.ErrValidation("folders cannot be copied")
	}
	s.copies++
	return s.add(targetParentID, newName, src.meta.MimeType, src.content), nil
}

// GetMetadata implements domain.RemoteStore.
func (s *FakeStore) GetMetadata(_ context.Context, id string) (*domain.ObjectMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DenyRead[id] {
		return nil, domain.ErrAccessDenied("insufficientFilePermissions: %s", id)
	}
	o, ok := s.objects[id]
	if !ok {
		return nil, domain.ErrNotFound("file %s not found", id)
	}
	meta := o.meta
	return &meta, nil
}

// SoftDelete implements domain.RemoteStore.
func (s *FakeStore) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return domain.ErrNotFound("file %s not found", id)
	}
	o.meta.Trashed = true
	return nil
}

// Search implements domain.RemoteStore.
func (s *FakeStore) Search(_ context.Context, query string) ([]domain.ObjectMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ObjectMeta
	for _, o := range s.objects {
		if !o.meta.Trashed && strings.Contains(o.meta.Name, query) {
			out = append(out, o.meta)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ExportText implements domain.RemoteStore.
func (s *FakeStore) ExportText(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return "", domain.ErrNotFound("file %s not found", id)
	}
	return o.content, nil
}

func (s *FakeStore) add(parentID, name, mimeType, content string) string {
	s.nextID++
	id := fmt.Sprintf("fk%026d", s.nextID)
	s.objects[id] = &fakeObject{
		meta: domain.ObjectMeta{
			ID:        id,
			Name:      name,
			MimeType:  mimeType,
			CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.nextID) * time.Minute),
			ViewLink:  "https://drive.google.com/open?id=" + id,
		},
		parent:  parentID,
		content: content,
	}
	return id
}

// sortedChildren returns non-trashed children in creation order. Caller holds s.mu.
func (s *FakeStore) sortedChildren(parentID string) []*fakeObject {
	var out []*fakeObject
	for _, o := range s.objects {
		if o.parent == parentID && !o.meta.Trashed {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].meta.ID < out[j].meta.ID })
	return out
}
