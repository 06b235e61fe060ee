package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/proposalpilot/hub/internal/api/response"
	"github.com/proposalpilot/hub/internal/api/validation"
	"github.com/proposalpilot/hub/internal/apperrors"
	"github.com/proposalpilot/hub/internal/models"
)

// SessionsService defines the interface for session intake and retrieval.
type SessionsService interface {
	CreateSession(ctx context.Context, req *models.CreateSessionRequest) (*models.RFPSession, error)
}

// SessionsReader loads the most recent session for display.
type SessionsReader interface {
	GetLatest(ctx context.Context) (*models.RFPSession, error)
	GetCompanyProfile(ctx context.Context) (*models.CompanyProfile, error)
}

// SessionInvalidator is notified when a new session replaces the one under
// review.
type SessionInvalidator interface {
	Invalidate()
}

// SessionsHandler handles HTTP requests for RFP sessions.
type SessionsHandler struct {
	service     SessionsService
	reader      SessionsReader
	invalidator SessionInvalidator
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(service SessionsService, reader SessionsReader, invalidator SessionInvalidator) *SessionsHandler {
	return &SessionsHandler{service: service, reader: reader, invalidator: invalidator}
}

// Create handles POST /v1/sessions
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
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

	session, err := h.service.CreateSession(r.Context(), &req)
	if err != nil {
		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			response.RespondUnprocessableEntity(w, validationErr.Error())
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			response.RespondConflict(w, "A session with this ID already exists")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	// The new session is now the one under review
	h.invalidator.Invalidate()

	response.RespondJSON(w, http.StatusCreated, session)
}

// GetLatest handles GET /v1/sessions/latest
func (h *SessionsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	session, err := h.reader.GetLatest(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "No session exists yet")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, session)
}

// GetCompanyProfile handles GET /v1/company-profile
func (h *SessionsHandler) GetCompanyProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.reader.GetCompanyProfile(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondJSON(w, http.StatusOK, &models.CompanyProfile{})
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, profile)
}
