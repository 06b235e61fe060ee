package review

import (
	"github.com/proposalpilot/hub/internal/models"
)

// CategoryCompletion is the complete-vs-total breakdown for one category.
type CategoryCompletion struct {
	Category string `json:"category"`
	Complete int    `json:"complete"`
	Total    int    `json:"total"`
}

// Stats are read-side projections recomputed from current working state; they
// have no independent storage.
type Stats struct {
	Total             int                         `json:"total"`
	ByStatus          map[models.ReviewStatus]int `json:"by_status"`
	CompletionPercent float64                     `json:"completion_percent"`
	ByCategory        []CategoryCompletion        `json:"by_category"`
}

// Stats recomputes per-status counts, overall completion percentage, and the
// per-category completion breakdown. Categories appear in first-question
// order.
func (e *Engine) Stats() Stats {
	stats := Stats{
		Total: len(e.questions),
		ByStatus: map[models.ReviewStatus]int{
			models.ReviewStatusPending:       0,
			models.ReviewStatusInProgress:    0,
			models.ReviewStatusComplete:      0,
			models.ReviewStatusNeedsRevision: 0,
		},
	}

	categoryIdx := make(map[string]int)

	for _, q := range e.questions {
		status := e.StatusOf(q.ID)
		stats.ByStatus[status]++

		idx, ok := categoryIdx[q.Category]
		if !ok {
			idx = len(stats.ByCategory)
			categoryIdx[q.Category] = idx
			stats.ByCategory = append(stats.ByCategory, CategoryCompletion{Category: q.Category})
		}

		stats.ByCategory[idx].Total++
		if status == models.ReviewStatusComplete {
			stats.ByCategory[idx].Complete++
		}
	}

	if stats.Total > 0 {
		stats.CompletionPercent = float64(stats.ByStatus[models.ReviewStatusComplete]) / float64(stats.Total) * 100
	}

	return stats
}
