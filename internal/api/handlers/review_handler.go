package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/proposalpilot/hub/internal/api/response"
	"github.com/proposalpilot/hub/internal/api/validation"
	"github.com/proposalpilot/hub/internal/apperrors"
	"github.com/proposalpilot/hub/internal/models"
	"github.com/proposalpilot/hub/internal/review"
)

// ReviewManager serializes access to the single active review engine.
type ReviewManager interface {
	With(ctx context.Context, fn func(*review.Engine) error) error
}

// ReviewHandler handles HTTP requests for the review and feedback surface.
// Every operation runs inside the manager's lock, so engine state stays
// consistent across concurrent requests.
type ReviewHandler struct {
	manager ReviewManager
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(manager ReviewManager) *ReviewHandler {
	return &ReviewHandler{manager: manager}
}

// ReviewView is the full review screen state: the filtered, sorted question
// list plus the open question's response and feedback.
type ReviewView struct {
	SessionID        uuid.UUID                 `json:"session_id"`
	Selected         string                    `json:"selected,omitempty"`
	Filter           review.StatusFilter       `json:"filter"`
	Sort             review.SortMode           `json:"sort"`
	LastSavedAt      *time.Time                `json:"last_saved_at,omitempty"`
	Questions        []review.QuestionView     `json:"questions"`
	SelectedResponse *models.GeneratedResponse `json:"selected_response,omitempty"`
}

// FeedbackDraft is the pending tri-state feedback for one question after a
// toggle.
type FeedbackDraft struct {
	QuestionID string `json:"question_id"`
	StarRating *int   `json:"star_rating,omitempty"`
	Helpful    *bool  `json:"helpful,omitempty"`
}

// buildView snapshots the engine into a ReviewView.
func buildView(e *review.Engine) *ReviewView {
	view := &ReviewView{
		SessionID: e.SessionID(),
		Selected:  e.Selected(),
		Filter:    e.Filter(),
		Sort:      e.SortBy(),
		Questions: e.Visible(),
	}

	if savedAt := e.LastSavedAt(); !savedAt.IsZero() {
		view.LastSavedAt = &savedAt
	}

	if view.Selected != "" {
		if resp, err := e.Response(view.Selected); err == nil {
			view.SelectedResponse = resp
		}
	}

	return view
}

// respondEngineError maps the review engine's recoverable conditions onto
// HTTP statuses.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		response.RespondNotFound(w, "No session exists yet")
	case errors.Is(err, review.ErrUnknownQuestion):
		response.RespondNotFound(w, "Question not found in the current session")
	case errors.Is(err, review.ErrNoSelection):
		response.RespondBadRequest(w, "No question is selected")
	case errors.Is(err, review.ErrNoResponse):
		response.RespondBadRequest(w, "Question has no generated response to save")
	default:
		response.RespondInternalServerError(w, "An unexpected error occurred")
	}
}

// Get handles GET /v1/review
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	var view *ReviewView
	err := h.manager.With(r.Context(), func(e *review.Engine) error {
		view = buildView(e)
		return nil
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, view)
}

// Select handles POST /v1/review/select
func (h *ReviewHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req models.SelectQuestionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	// Validate request
	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	var view *ReviewView
	err := h.manager.With(r.Context(), func(e *review.Engine) error {
		if err := e.Select(r.Context(), req.QuestionID); err != nil {
			return err
		}

		view = buildView(e)
		return nil
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, view)
}

// Save handles POST /v1/review/save
func (h *ReviewHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveResponseRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	// Validate request
	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	var result *review.SaveResult
	err := h.manager.With(r.Context(), func(e *review.Engine) error {
		if req.QuestionID != "" && req.QuestionID != e.Selected() {
			if err := e.Select(r.Context(), req.QuestionID); err != nil {
				return err
			}
		}

		if req.EditedContent != nil || req.EditedHTML != nil {
			target := e.Selected()
			if target == "" {
				return review.ErrNoSelection
			}

			resp, err := e.Response(target)
			if err != nil {
				return err
			}

			plain := resp.CurrentText()
			if req.EditedContent != nil {
				plain = *req.EditedContent
			}

			html := resp.EditedHTML
			if req.EditedHTML != nil {
				html = *req.EditedHTML
			}

			if err := e.SetEditedContent(target, plain, html); err != nil {
				return err
			}
		}

		saved, err := e.Save(r.Context(), review.SaveExplicit)
		if err != nil {
			return err
		}

		result = saved
		return nil
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Feedback handles POST /v1/review/feedback
func (h *ReviewHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateFeedbackDraftRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	// Validate request
	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	draft := FeedbackDraft{QuestionID: req.QuestionID}
	err := h.manager.With(r.Context(), func(e *review.Engine) error {
		if req.StarRating != nil {
			stars, err := e.ToggleStar(req.QuestionID, *req.StarRating)
			if err != nil {
				return err
			}

			draft.StarRating = stars
		}

		if req.Helpful != nil {
			helpful, err := e.ToggleHelpful(req.QuestionID, *req.Helpful)
			if err != nil {
				return err
			}

			draft.Helpful = helpful
		}

		if req.FeedbackText != nil {
			if err := e.SetFeedbackText(req.QuestionID, *req.FeedbackText); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, draft)
}

// Status handles POST /v1/review/status
func (h *ReviewHandler) Status(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	// Validate request
	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	var view *ReviewView
	err := h.manager.With(r.Context(), func(e *review.Engine) error {
		if err := e.SetStatus(r.Context(), req.QuestionID, req.Status); err != nil {
			return err
		}

		view = buildView(e)
		return nil
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, view)
}

// BulkStatus handles POST /v1/review/bulk-status
func (h *ReviewHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var req models.BulkStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	// Validate request
	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	var view *ReviewView
	err := h.manager.With(r.Context(), func(e *review.Engine) error {
		switch req.Status {
		case models.ReviewStatusComplete:
			if err := e.MarkAllComplete(r.Context()); err != nil {
				return err
			}
		case models.ReviewStatusPending:
			if err := e.ResetAll(r.Context()); err != nil {
				return err
			}
		default:
			return apperrors.NewValidationError("status", "bulk status must be complete or pending")
		}

		view = buildView(e)
		return nil
	})
	if err != nil {
		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			response.RespondBadRequest(w, validationErr.Error())
			return
		}
		respondEngineError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, view)
}

// Stats handles GET /v1/review/stats
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var stats review.Stats
	err := h.manager.With(r.Context(), func(e *review.Engine) error {
		stats = e.Stats()
		return nil
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, stats)
}

// UpdateView handles PUT /v1/review/view
func (h *ReviewHandler) UpdateView(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateViewRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	// Validate request
	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	if req.Filter != nil && !review.StatusFilter(*req.Filter).IsValid() {
		response.RespondBadRequest(w, "Filter must be one of: all, pending, in-progress, complete, needs-revision")
		return
	}

	var view *ReviewView
	err := h.manager.With(r.Context(), func(e *review.Engine) error {
		if req.Sort != nil {
			if err := e.SetSort(review.SortMode(*req.Sort)); err != nil {
				return err
			}
		}

		if req.Filter != nil {
			if err := e.SetFilter(r.Context(), review.StatusFilter(*req.Filter)); err != nil {
				return err
			}
		}

		view = buildView(e)
		return nil
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, view)
}
