package service

import (
	"context"

	"github.com/proposalpilot/hub/internal/models"
)

// KnowledgeEntriesRepository defines the read surface for stored knowledge entries.
type KnowledgeEntriesRepository interface {
	List(ctx context.Context, filters *models.ListKnowledgeEntriesFilters) ([]models.KnowledgeEntry, error)
	Count(ctx context.Context, filters *models.ListKnowledgeEntriesFilters) (int64, error)
}

// KnowledgeEntriesService handles business logic for the stored knowledge base.
// Writes go through the ingestion pipeline only.
type KnowledgeEntriesService struct {
	repo KnowledgeEntriesRepository
}

// NewKnowledgeEntriesService creates a new knowledge entries service.
func NewKnowledgeEntriesService(repo KnowledgeEntriesRepository) *KnowledgeEntriesService {
	return &KnowledgeEntriesService{repo: repo}
}

// ListKnowledgeEntries retrieves knowledge entries with filtering and pagination.
func (s *KnowledgeEntriesService) ListKnowledgeEntries(ctx context.Context, filters *models.ListKnowledgeEntriesFilters) (*models.ListKnowledgeEntriesResponse, error) {
	// Set default limit if not provided
	if filters.Limit <= 0 {
		filters.Limit = 100
	}

	entries, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &models.ListKnowledgeEntriesResponse{
		Data:   entries,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}
