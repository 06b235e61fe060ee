package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the reviewer-assigned lifecycle stage of a single question's
// response.
type ReviewStatus string

const (
	ReviewStatusPending       ReviewStatus = "pending"
	ReviewStatusInProgress    ReviewStatus = "in-progress"
	ReviewStatusComplete      ReviewStatus = "complete"
	ReviewStatusNeedsRevision ReviewStatus = "needs-revision"
)

// IsValid reports whether s is one of the four review statuses.
func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusInProgress, ReviewStatusComplete, ReviewStatusNeedsRevision:
		return true
	}

	return false
}

// ResponseFeedback is the reviewer's verdict on one response. Exactly one
// record exists per (question, session) pair; saves overwrite, never duplicate.
//
// StarRating and Helpful are tri-state: nil means unset, and the reviewer can
// explicitly clear a previously set value back to nil.
type ResponseFeedback struct {
	QuestionID       string       `json:"question_id"`
	SessionID        uuid.UUID    `json:"session_id"`
	StarRating       *int         `json:"star_rating,omitempty"`
	Helpful          *bool        `json:"helpful,omitempty"`
	FeedbackText     string       `json:"feedback_text,omitempty"`
	EditDistance     int          `json:"edit_distance"`
	OriginalResponse string       `json:"original_response,omitempty"`
	EditedResponse   string       `json:"edited_response,omitempty"`
	EditedHTML       string       `json:"edited_html,omitempty"`
	ReviewStatus     ReviewStatus `json:"review_status"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// UpdateFeedbackDraftRequest carries the reviewer's unsaved tri-state
// selections for one question. Toggling semantics live in the review engine;
// this is only the transport shape.
type UpdateFeedbackDraftRequest struct {
	QuestionID   string  `json:"question_id" validate:"required,min=1,max=255,no_null_bytes"`
	StarRating   *int    `json:"star_rating,omitempty" validate:"omitempty,min=1,max=5"`
	Helpful      *bool   `json:"helpful,omitempty"`
	FeedbackText *string `json:"feedback_text,omitempty" validate:"omitempty,no_null_bytes"`
}

// UpdateStatusRequest sets one question's review status directly.
type UpdateStatusRequest struct {
	QuestionID string       `json:"question_id" validate:"required,min=1,max=255,no_null_bytes"`
	Status     ReviewStatus `json:"status" validate:"required,review_status"`
}

// BulkStatusRequest forces every question in the session to the given status.
type BulkStatusRequest struct {
	Status ReviewStatus `json:"status" validate:"required,review_status"`
}
