// Package review implements the per-session review and feedback engine: review
// status transitions, draft-vs-edited divergence, tri-state feedback capture,
// autosave-on-navigate, filtering, sorting, and bulk status operations.
package review

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/proposalpilot/hub/internal/models"
)

// Recoverable "no data" conditions. These are empty states the caller renders,
// not failures.
var (
	// ErrNoSelection is returned when an operation needs a selected question
	// and none is selected.
	ErrNoSelection = errors.New("review: no question selected")
	// ErrUnknownQuestion is returned for a question ID not in the session.
	ErrUnknownQuestion = errors.New("review: unknown question")
	// ErrNoResponse is returned when a question has no generated response yet.
	ErrNoResponse = errors.New("review: no generated response for question")
)

// SaveMode distinguishes autosave-on-navigate from a reviewer-initiated save.
type SaveMode string

const (
	// SaveSilent persists without a user-visible confirmation (autosave).
	SaveSilent SaveMode = "silent"
	// SaveExplicit persists and confirms to the reviewer.
	SaveExplicit SaveMode = "explicit"
)

// Persister is the mutation surface the engine flushes working state through.
// Implemented by service.PersistenceAdapter over the postgres repositories.
type Persister interface {
	SaveAllResponses(ctx context.Context, sessionID uuid.UUID, responses []models.GeneratedResponse) error
	SaveFeedback(ctx context.Context, fb *models.ResponseFeedback) error
	UpdateStatus(ctx context.Context, sessionID uuid.UUID, questionID string, status models.ReviewStatus) error
	BulkUpdateStatuses(ctx context.Context, sessionID uuid.UUID, questionIDs []string, status models.ReviewStatus) error
}

// draftState holds one question's unsaved reviewer input: staged content edits
// and the tri-state feedback selections. Nothing here reaches the persister
// until the next save.
type draftState struct {
	editedContent string
	editedHTML    string
	starRating    *int
	helpful       *bool
	feedbackText  string
}

// SaveResult reports what a save wrote, for display ("saved at HH:MM:SS").
type SaveResult struct {
	QuestionID   string              `json:"question_id"`
	EditDistance int                 `json:"edit_distance"`
	Status       models.ReviewStatus `json:"status"`
	SavedAt      time.Time           `json:"saved_at"`
	Mode         SaveMode            `json:"mode"`
}

// Engine holds one reviewer's working state for a single active session.
//
// It is deliberately not safe for concurrent use: the system is single-
// reviewer, single-session, and the HTTP layer serializes access. All state
// lives in memory and is flushed through the Persister on save; a failed
// flush keeps the in-memory edits so re-saving is the recovery path.
type Engine struct {
	sessionID uuid.UUID
	questions []models.RFPQuestion
	responses map[string]*models.GeneratedResponse
	feedback  map[string]*models.ResponseFeedback
	drafts    map[string]*draftState

	persister Persister
	logger    *slog.Logger
	now       func() time.Time

	// selected is the currently open question ID, "" when none. Navigation
	// passes the previous selection explicitly when deciding whether to
	// autosave, rather than relying on ambient state.
	selected    string
	filter      StatusFilter
	sortMode    SortMode
	lastSavedAt time.Time
}

// Params configures an Engine from a materialized working set.
type Params struct {
	SessionID uuid.UUID
	Questions []models.RFPQuestion
	Responses []models.GeneratedResponse
	Feedback  []models.ResponseFeedback
	Persister Persister
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewEngine builds the engine's working state from a materialized session.
func NewEngine(p Params) *Engine {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}

	e := &Engine{
		sessionID: p.SessionID,
		questions: p.Questions,
		responses: make(map[string]*models.GeneratedResponse, len(p.Responses)),
		feedback:  make(map[string]*models.ResponseFeedback, len(p.Feedback)),
		drafts:    make(map[string]*draftState),
		persister: p.Persister,
		logger:    logger,
		now:       now,
		filter:    FilterAll,
		sortMode:  SortOriginal,
	}

	for i := range p.Responses {
		resp := p.Responses[i]
		e.responses[resp.QuestionID] = &resp
	}

	for i := range p.Feedback {
		fb := p.Feedback[i]
		e.feedback[fb.QuestionID] = &fb
	}

	return e
}

// SessionID returns the active session's ID.
func (e *Engine) SessionID() uuid.UUID {
	return e.sessionID
}

// Questions returns the session's questions in original order.
func (e *Engine) Questions() []models.RFPQuestion {
	return e.questions
}

// Selected returns the currently open question ID, "" when none.
func (e *Engine) Selected() string {
	return e.selected
}

// LastSavedAt returns the timestamp of the most recent successful save, zero
// when nothing has been saved yet.
func (e *Engine) LastSavedAt() time.Time {
	return e.lastSavedAt
}

// Response returns the generated response for a question, or ErrNoResponse.
func (e *Engine) Response(questionID string) (*models.GeneratedResponse, error) {
	if !e.hasQuestion(questionID) {
		return nil, ErrUnknownQuestion
	}

	resp, ok := e.responses[questionID]
	if !ok {
		return nil, ErrNoResponse
	}

	return resp, nil
}

// StatusOf returns a question's review status; questions never saved or viewed
// default to pending.
func (e *Engine) StatusOf(questionID string) models.ReviewStatus {
	if fb, ok := e.feedback[questionID]; ok && fb.ReviewStatus != "" {
		return fb.ReviewStatus
	}

	return models.ReviewStatusPending
}

// Select opens a question, silently saving the previously open one first so
// no edits are lost on navigation. A failed autosave is logged and does not
// block navigation; the unsaved edits stay in memory.
func (e *Engine) Select(ctx context.Context, questionID string) error {
	if !e.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}

	previous := e.selected
	if previous != "" && previous != questionID {
		e.autosave(ctx, previous)
	}

	e.selected = questionID
	e.ensureFeedback(questionID)

	return nil
}

// Save persists the currently selected question's edits and feedback.
func (e *Engine) Save(ctx context.Context, mode SaveMode) (*SaveResult, error) {
	if e.selected == "" {
		return nil, ErrNoSelection
	}

	return e.saveQuestion(ctx, e.selected, mode)
}

// SetEditedContent stages the reviewer's current editor content (plain text
// and rich text) for a question. Staged edits persist on the next save.
func (e *Engine) SetEditedContent(questionID, plain, html string) error {
	if !e.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}

	draft := e.draft(questionID)
	draft.editedContent = plain
	draft.editedHTML = html

	return nil
}

// ToggleStar sets the pending star rating, clearing it back to unset when the
// reviewer clicks the already-selected value. Returns the new pending value.
func (e *Engine) ToggleStar(questionID string, stars int) (*int, error) {
	if !e.hasQuestion(questionID) {
		return nil, ErrUnknownQuestion
	}

	if stars < 1 || stars > 5 {
		return nil, errors.New("review: star rating must be between 1 and 5")
	}

	draft := e.draft(questionID)
	if draft.starRating != nil && *draft.starRating == stars {
		draft.starRating = nil
	} else {
		s := stars
		draft.starRating = &s
	}

	return draft.starRating, nil
}

// ToggleHelpful sets the pending helpful flag, clearing it back to unset when
// the reviewer re-clicks the same value. Returns the new pending value.
func (e *Engine) ToggleHelpful(questionID string, helpful bool) (*bool, error) {
	if !e.hasQuestion(questionID) {
		return nil, ErrUnknownQuestion
	}

	draft := e.draft(questionID)
	if draft.helpful != nil && *draft.helpful == helpful {
		draft.helpful = nil
	} else {
		h := helpful
		draft.helpful = &h
	}

	return draft.helpful, nil
}

// SetFeedbackText stages free-text comments for a question.
func (e *Engine) SetFeedbackText(questionID, text string) error {
	if !e.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}

	e.draft(questionID).feedbackText = text

	return nil
}

// SetStatus sets a question's review status directly to any of the four
// values. Setting complete or needs-revision triggers an implicit save first,
// so the persisted content always matches the displayed status.
func (e *Engine) SetStatus(ctx context.Context, questionID string, status models.ReviewStatus) error {
	if !e.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}

	if !status.IsValid() {
		return errors.New("review: invalid review status")
	}

	if status == models.ReviewStatusComplete || status == models.ReviewStatusNeedsRevision {
		if _, err := e.saveQuestion(ctx, questionID, SaveSilent); err != nil &&
			!errors.Is(err, ErrNoResponse) {
			return err
		}
	}

	fb := e.ensureFeedback(questionID)
	fb.ReviewStatus = status
	fb.UpdatedAt = e.now()

	if err := e.persister.UpdateStatus(ctx, e.sessionID, questionID, status); err != nil {
		return err
	}

	return nil
}

// MarkAllComplete forces every question's status to complete regardless of
// current state, without altering stored text content.
func (e *Engine) MarkAllComplete(ctx context.Context) error {
	return e.bulkStatus(ctx, models.ReviewStatusComplete)
}

// ResetAll forces every question's status back to pending regardless of
// current state, without altering stored text content.
func (e *Engine) ResetAll(ctx context.Context) error {
	return e.bulkStatus(ctx, models.ReviewStatusPending)
}

func (e *Engine) bulkStatus(ctx context.Context, status models.ReviewStatus) error {
	ids := make([]string, len(e.questions))
	for i, q := range e.questions {
		ids[i] = q.ID
	}

	for _, id := range ids {
		fb := e.ensureFeedback(id)
		fb.ReviewStatus = status
		fb.UpdatedAt = e.now()
	}

	if err := e.persister.BulkUpdateStatuses(ctx, e.sessionID, ids, status); err != nil {
		return err
	}

	return nil
}

// autosave silently saves a question during navigation. Questions without a
// response have nothing to save; persistence errors are surfaced as a log
// line only, keeping the in-memory edits for a later re-save.
func (e *Engine) autosave(ctx context.Context, questionID string) {
	_, err := e.saveQuestion(ctx, questionID, SaveSilent)
	if err != nil && !errors.Is(err, ErrNoResponse) {
		e.logger.Error("autosave failed; edits kept in memory",
			"question_id", questionID,
			"error", err,
		)
	}
}

// saveQuestion runs the full save sequence for one question: edit distance,
// response update, full-collection response persist, feedback rebuild with
// the status transition, feedback persist, save timestamp.
func (e *Engine) saveQuestion(ctx context.Context, questionID string, mode SaveMode) (*SaveResult, error) {
	resp, ok := e.responses[questionID]
	if !ok {
		return nil, ErrNoResponse
	}

	draft := e.draft(questionID)
	distance := WordSetDivergence(resp.Draft, draft.editedContent)

	resp.EditedContent = draft.editedContent
	resp.EditedHTML = draft.editedHTML
	resp.Status = models.ResponseStatusEdited
	resp.WordCount = models.CountWords(resp.CurrentText())

	if err := e.persister.SaveAllResponses(ctx, e.sessionID, e.responseList()); err != nil {
		return nil, err
	}

	fb := e.ensureFeedback(questionID)
	fb.StarRating = draft.starRating
	fb.Helpful = draft.helpful
	fb.FeedbackText = draft.feedbackText
	fb.EditDistance = distance
	fb.OriginalResponse = resp.Draft
	fb.EditedResponse = draft.editedContent
	fb.EditedHTML = draft.editedHTML
	fb.ReviewStatus = nextStatusOnSave(fb.ReviewStatus)
	fb.UpdatedAt = e.now()

	if err := e.persister.SaveFeedback(ctx, fb); err != nil {
		return nil, err
	}

	e.lastSavedAt = fb.UpdatedAt

	if mode == SaveExplicit {
		e.logger.Info("response saved",
			"question_id", questionID,
			"edit_distance", distance,
			"status", fb.ReviewStatus,
		)
	}

	return &SaveResult{
		QuestionID:   questionID,
		EditDistance: distance,
		Status:       fb.ReviewStatus,
		SavedAt:      fb.UpdatedAt,
		Mode:         mode,
	}, nil
}

// nextStatusOnSave applies the save transition: pending (or unset) moves to
// in-progress; complete and needs-revision survive edits unchanged.
func nextStatusOnSave(current models.ReviewStatus) models.ReviewStatus {
	switch current {
	case "", models.ReviewStatusPending:
		return models.ReviewStatusInProgress
	default:
		return current
	}
}

// ensureFeedback returns the question's feedback record, creating the implicit
// pending record on first touch.
func (e *Engine) ensureFeedback(questionID string) *models.ResponseFeedback {
	if fb, ok := e.feedback[questionID]; ok {
		return fb
	}

	fb := &models.ResponseFeedback{
		QuestionID:   questionID,
		SessionID:    e.sessionID,
		ReviewStatus: models.ReviewStatusPending,
		UpdatedAt:    e.now(),
	}

	if resp, ok := e.responses[questionID]; ok {
		fb.OriginalResponse = resp.Draft
	}

	e.feedback[questionID] = fb

	return fb
}

// draft returns the question's unsaved working state, seeding it from the
// stored response and feedback the first time the question is touched. The
// content seed mirrors the editor: pre-filled with the edited text when one
// exists, otherwise the generated draft, so saving an untouched question
// yields zero divergence.
func (e *Engine) draft(questionID string) *draftState {
	if d, ok := e.drafts[questionID]; ok {
		return d
	}

	d := &draftState{}

	if resp, ok := e.responses[questionID]; ok {
		d.editedContent = resp.CurrentText()
		d.editedHTML = resp.EditedHTML
	}

	if fb, ok := e.feedback[questionID]; ok {
		d.starRating = fb.StarRating
		d.helpful = fb.Helpful
		d.feedbackText = fb.FeedbackText
	}

	e.drafts[questionID] = d

	return d
}

func (e *Engine) responseList() []models.GeneratedResponse {
	list := make([]models.GeneratedResponse, 0, len(e.responses))
	for _, q := range e.questions {
		if resp, ok := e.responses[q.ID]; ok {
			list = append(list, *resp)
		}
	}

	return list
}

func (e *Engine) hasQuestion(questionID string) bool {
	for _, q := range e.questions {
		if q.ID == questionID {
			return true
		}
	}

	return false
}
