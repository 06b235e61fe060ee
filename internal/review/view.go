package review

import (
	"context"
	"errors"
	"sort"

	"github.com/proposalpilot/hub/internal/models"
)

// StatusFilter narrows the question list to exactly one review status, or all.
type StatusFilter string

// FilterAll shows every question regardless of status.
const FilterAll StatusFilter = "all"

// IsValid reports whether f is "all" or one of the four review statuses.
func (f StatusFilter) IsValid() bool {
	return f == FilterAll || models.ReviewStatus(f).IsValid()
}

// SortMode orders the question list.
type SortMode string

const (
	// SortOriginal keeps the document's extraction order.
	SortOriginal SortMode = "original"
	// SortCategory orders lexicographically by question category.
	SortCategory SortMode = "category"
	// SortStatus surfaces actionable items first: in-progress, needs-revision,
	// pending, complete.
	SortStatus SortMode = "status"
	// SortConfidence orders by response confidence, descending.
	SortConfidence SortMode = "confidence"
)

// IsValid reports whether m is a known sort mode.
func (m SortMode) IsValid() bool {
	switch m {
	case SortOriginal, SortCategory, SortStatus, SortConfidence:
		return true
	}

	return false
}

// statusPriority is the fixed ordering for SortStatus.
var statusPriority = map[models.ReviewStatus]int{
	models.ReviewStatusInProgress:    0,
	models.ReviewStatusNeedsRevision: 1,
	models.ReviewStatusPending:       2,
	models.ReviewStatusComplete:      3,
}

// QuestionView is one row of the filtered, sorted question list.
type QuestionView struct {
	Question     models.RFPQuestion  `json:"question"`
	Status       models.ReviewStatus `json:"status"`
	HasResponse  bool                `json:"has_response"`
	Confidence   int                 `json:"confidence"`
	EditDistance int                 `json:"edit_distance"`
	Selected     bool                `json:"selected"`
}

// Filter returns the active status filter.
func (e *Engine) Filter() StatusFilter {
	return e.filter
}

// SortBy returns the active sort mode.
func (e *Engine) SortBy() SortMode {
	return e.sortMode
}

// SetSort changes the list ordering. Sorting never affects the selection.
func (e *Engine) SetSort(mode SortMode) error {
	if !mode.IsValid() {
		return errors.New("review: invalid sort mode")
	}

	e.sortMode = mode

	return nil
}

// SetFilter applies a status filter. When the change excludes the currently
// selected question, that question is silently saved and the selection falls
// back to the first question remaining in the filtered view, or to no
// selection when the view is empty.
func (e *Engine) SetFilter(ctx context.Context, filter StatusFilter) error {
	if !filter.IsValid() {
		return errors.New("review: invalid status filter")
	}

	e.filter = filter

	if e.selected == "" {
		return nil
	}

	visible := e.Visible()
	for _, v := range visible {
		if v.Question.ID == e.selected {
			return nil
		}
	}

	e.autosave(ctx, e.selected)

	if len(visible) > 0 {
		e.selected = visible[0].Question.ID
		e.ensureFeedback(e.selected)
	} else {
		e.selected = ""
	}

	return nil
}

// Visible returns the question list under the active filter and sort mode.
func (e *Engine) Visible() []QuestionView {
	views := make([]QuestionView, 0, len(e.questions))

	for _, q := range e.questions {
		status := e.StatusOf(q.ID)
		if e.filter != FilterAll && models.ReviewStatus(e.filter) != status {
			continue
		}

		view := QuestionView{
			Question: q,
			Status:   status,
			Selected: q.ID == e.selected,
		}

		if resp, ok := e.responses[q.ID]; ok {
			view.HasResponse = true
			view.Confidence = resp.Confidence
		}

		if fb, ok := e.feedback[q.ID]; ok {
			view.EditDistance = fb.EditDistance
		}

		views = append(views, view)
	}

	switch e.sortMode {
	case SortCategory:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Question.Category < views[j].Question.Category
		})
	case SortStatus:
		sort.SliceStable(views, func(i, j int) bool {
			return statusPriority[views[i].Status] < statusPriority[views[j].Status]
		})
	case SortConfidence:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Confidence > views[j].Confidence
		})
	case SortOriginal:
		// extraction order, as built
	}

	return views
}
