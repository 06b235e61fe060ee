package service

import (
	"context"
	"sync"

	"github.com/proposalpilot/hub/internal/review"
)

// ReviewManager owns the process's single review engine. The engine itself is
// not safe for concurrent use, so every access goes through With, which holds
// the manager's lock for the duration of the callback.
//
// The engine is materialized lazily from the most recent session and kept
// until Invalidate is called, so edits, drafts, and the current selection
// survive across requests.
type ReviewManager struct {
	mu           sync.Mutex
	materializer *SessionMaterializer
	engine       *review.Engine
}

// NewReviewManager creates a manager that materializes engines on demand.
func NewReviewManager(materializer *SessionMaterializer) *ReviewManager {
	return &ReviewManager{materializer: materializer}
}

// With runs fn against the current engine, materializing it first if needed.
// Errors from materialization (including NotFoundError when no session
// exists) are returned without invoking fn.
func (m *ReviewManager) With(ctx context.Context, fn func(*review.Engine) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine == nil {
		engine, err := m.materializer.MaterializeLatest(ctx)
		if err != nil {
			return err
		}

		m.engine = engine
	}

	return fn(m.engine)
}

// Invalidate discards the cached engine so the next access re-materializes
// from storage. Called after a new session is created.
func (m *ReviewManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.engine = nil
}
