// Package routing places submitted content into the section/team folder
// hierarchy under its canonical name.
package routing

import (
	"context"
	"fmt"
	"log/slog"

	"docs-evaluator/internal/domain"
	"docs-evaluator/internal/keylock"
)

// RouteRequest describes one submission to place.
type RouteRequest struct {
	Section        string
	TeamCode       string
	StudentName    string
	DeliverableTag string
	SourceID       string
	Late           bool
}

// RouteResult is the outcome of a Route call.
type RouteResult struct {
	// TargetID is the id of the copied file or replicated folder. Empty when Skipped.
	TargetID   string
	TargetName string
	TeamID     string
	// Skipped reports that an object with TargetName already existed.
	Skipped bool
	// CopiedChildren counts files copied for a folder submission.
	CopiedChildren int
}

// Router resolves the destination folders and replicates submissions.
type Router struct {
	store  domain.RemoteStore
	rootID string
	teams  keylock.Map
	logger *slog.Logger
}

// NewRouter creates a Router rooted at rootID.
func NewRouter(store domain.RemoteStore, rootID string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		store:  store,
		rootID: rootID,
		logger: logger.With("component", "router"),
	}
}

// Route ensures the section and team folders exist, then copies the source
// into the team folder unless an object with the canonical name is already
// there. Folder sources are replicated one level deep.
func (r *Router) Route(ctx context.Context, req RouteRequest) (*RouteResult, error) {
	if req.Section == "" || req.TeamCode == "" {
		return nil, domain.ErrValidation("section and team code are required")
	}
	if req.SourceID == "" {
		return nil, domain.ErrValidation("source id is required")
	}

	sectionID, err := r.store.GetOrCreateFolder(ctx, r.rootID, req.Section)
	if err != nil {
		return nil, fmt.Errorf("resolve section folder %q: %w", req.Section, err)
	}
	teamID, err := r.store.GetOrCreateFolder(ctx, sectionID, req.TeamCode)
	if err != nil {
		return nil, fmt.Errorf("resolve team folder %q: %w", req.TeamCode, err)
	}

	name := domain.CanonicalName(req.DeliverableTag, req.TeamCode, req.StudentName, req.Late)
	result := &RouteResult{TargetName: name, TeamID: teamID}

	// Existence check and copy must not interleave with another row
	// writing into the same team folder.
	unlock := r.teams.Lock(keylock.Key(req.Section, req.TeamCode))
	defer unlock()

	exists, err := r.store.Exists(ctx, teamID, name)
	if err != nil {
		return nil, fmt.Errorf("check existing %q: %w", name, err)
	}
	if exists {
		r.logger.Debug("already routed", "name", name, "team_folder", teamID)
		result.Skipped = true
		return result, nil
	}

	src, err := r.store.GetMetadata(ctx, req.SourceID)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", req.SourceID, err)
	}

	if !src.IsFolder() {
		id, err := r.store.CopyObject(ctx, src.ID, teamID, name)
		if err != nil {
			return nil, fmt.Errorf("copy %s: %w", src.ID, err)
		}
		result.TargetID = id
		r.logger.Info("file routed", "name", name, "target", id)
		return result, nil
	}

	folderID, err := r.store.GetOrCreateFolder(ctx, teamID, name)
	if err != nil {
		return nil, fmt.Errorf("create target folder %q: %w", name, err)
	}
	result.TargetID = folderID

	children, err := r.store.ListChildren(ctx, src.ID)
	if err != nil {
		r.discardPartial(ctx, folderID, name)
		return nil, fmt.Errorf("list submitted folder %s: %w", src.ID, err)
	}
	for _, child := range children {
		if child.IsFolder() {
			continue
		}
		if _, err := r.store.CopyObject(ctx, child.ID, folderID, child.Name); err != nil {
			r.discardPartial(ctx, folderID, name)
			return nil, fmt.Errorf("copy %q from folder %s: %w", child.Name, src.ID, err)
		}
		result.CopiedChildren++
	}
	r.logger.Info("folder routed", "name", name, "target", folderID, "files", result.CopiedChildren)
	return result, nil
}

// discardPartial trashes a replicated folder whose children were not all
// copied, so the next sync does not mistake it for a finished route.
func (r *Router) discardPartial(ctx context.Context, folderID, name string) {
	if err := r.store.SoftDelete(context.WithoutCancel(ctx), folderID); err != nil {
		r.logger.Warn("could not remove partially routed folder", "name", name, "target", folderID, "error", err)
	}
}
