package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proposalpilot/hub/internal/apperrors"
	"github.com/proposalpilot/hub/internal/models"
	"github.com/proposalpilot/hub/internal/review"
)

func TestReviewManager_With_MaterializesOnce(t *testing.T) {
	sessions := &fakeSessionsStore{
		session: &models.RFPSession{
			ID:        uuid.New(),
			Questions: []models.RFPQuestion{{ID: "q1", Text: "Q"}},
		},
	}
	manager := NewReviewManager(newTestMaterializer(sessions, &fakeResponsesStore{}, &fakeFeedbackStore{}))
	ctx := context.Background()

	var first *review.Engine
	require.NoError(t, manager.With(ctx, func(e *review.Engine) error {
		first = e
		return e.Select(ctx, "q1")
	}))

	// The same engine instance serves later calls, so in-memory selection
	// survives across requests.
	require.NoError(t, manager.With(ctx, func(e *review.Engine) error {
		assert.Same(t, first, e)
		assert.Equal(t, "q1", e.Selected())
		return nil
	}))
}

func TestReviewManager_With_NoSession(t *testing.T) {
	sessions := &fakeSessionsStore{getErr: apperrors.NewNotFoundError("session", "no sessions exist")}
	manager := NewReviewManager(newTestMaterializer(sessions, &fakeResponsesStore{}, &fakeFeedbackStore{}))

	called := false
	err := manager.With(context.Background(), func(*review.Engine) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, called)
}

func TestReviewManager_Invalidate_RematerializesNextAccess(t *testing.T) {
	sessions := &fakeSessionsStore{
		session: &models.RFPSession{
			ID:        uuid.New(),
			Questions: []models.RFPQuestion{{ID: "q1", Text: "Q"}},
		},
	}
	manager := NewReviewManager(newTestMaterializer(sessions, &fakeResponsesStore{}, &fakeFeedbackStore{}))
	ctx := context.Background()

	var first *review.Engine
	require.NoError(t, manager.With(ctx, func(e *review.Engine) error {
		first = e
		return nil
	}))

	// A replacement session landed.
	newID := uuid.New()
	sessions.session = &models.RFPSession{
		ID:        newID,
		Questions: []models.RFPQuestion{{ID: "q1", Text: "Q"}},
	}
	manager.Invalidate()

	require.NoError(t, manager.With(ctx, func(e *review.Engine) error {
		assert.NotSame(t, first, e)
		assert.Equal(t, newID, e.SessionID())
		return nil
	}))
}
