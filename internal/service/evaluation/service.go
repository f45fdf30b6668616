// Package evaluation reviews submitted documents with an AI provider and
// keeps the history of reviews.
package evaluation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"docs-evaluator/internal/domain"
)

// DefaultHistoryLimit bounds History when no limit is given.
const DefaultHistoryLimit = 100

// Service runs document evaluations.
type Service struct {
	store     domain.RemoteStore
	repo      domain.EvaluationRepository
	providers *Registry
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates an evaluation Service.
func NewService(store domain.RemoteStore, repo domain.EvaluationRepository, providers *Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		repo:      repo,
		providers: providers,
		logger:    logger.With("component", "evaluation"),
		now:       time.Now,
	}
}

// Providers lists the names accepted by Analyze.
func (s *Service) Providers() []string { return s.providers.Names() }

// Analyze extracts the text of fileID, asks the named provider for a review
// and records the result.
func (s *Service) Analyze(ctx context.Context, fileID, fileName, providerName string) (*domain.Evaluation, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, domain.ErrValidation("file id is required")
	}
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return nil, err
	}

	text, err := s.store.ExportText(ctx, fileID)
	if err != nil {
		return nil, err
	}

	start := s.now()
	result, err := provider.Analyze(ctx, BuildPrompt(text))
	if err != nil {
		s.logger.Error("evaluation failed", "file_id", fileID, "provider", provider.Name(), "error", err)
		return nil, err
	}

	eval := &domain.Evaluation{
		ID:          domain.NewID(),
		FileID:      fileID,
		FileName:    fileName,
		ModelUsed:   provider.Model(),
		Result:      result,
		EvaluatedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, eval); err != nil {
		return nil, err
	}
	s.logger.Info("document evaluated",
		"file_id", fileID,
		"provider", provider.Name(),
		"model", provider.Model(),
		"duration", s.now().Sub(start),
	)
	return eval, nil
}

// History returns past evaluations, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]domain.Evaluation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.repo.ListRecent(ctx, limit)
}
