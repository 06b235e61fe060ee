// Package ingest implements the knowledge base ingestion pipeline: title-keyed
// deduplication, embedding generation under the provider's rate ceiling, and
// idempotent inserts into the knowledge store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/proposalpilot/hub/internal/apperrors"
	"github.com/proposalpilot/hub/internal/embeddings"
	"github.com/proposalpilot/hub/internal/models"
)

// KnowledgeStore is the subset of the knowledge entries repository the
// pipeline writes through.
type KnowledgeStore interface {
	ListTitles(ctx context.Context) ([]string, error)
	Insert(ctx context.Context, entry *models.KnowledgeEntry) error
}

// Report summarizes one ingestion run. Skipped counts candidates whose title
// was already present at the start-of-run snapshot (or hit the unique
// constraint during the run); Failed counts per-item embedding or insert
// errors, which never abort the remaining candidates.
type Report struct {
	Total              int            `json:"total"`
	Skipped            int            `json:"skipped"`
	Inserted           int            `json:"inserted"`
	Failed             int            `json:"failed"`
	InsertedByCategory map[string]int `json:"inserted_by_category"`
}

// Pipeline drives dedup + embed + insert for a fixed candidate list.
//
// The single-item mode is deliberately serialized: the embedding provider's
// rate ceiling (e.g. 3 requests/minute on the Gemini free tier) governs a
// mandatory inter-call delay, and parallel calls would trigger throttling.
// Two concurrent runs against the same store can race on the dedup snapshot;
// the store's unique title constraint backstops that case.
type Pipeline struct {
	store      KnowledgeStore
	embedder   embeddings.Client
	delay      time.Duration
	batchDelay time.Duration
	logger     *slog.Logger
}

// Params configures a Pipeline. Delay is the gap between single-item embedding
// calls; BatchDelay the much shorter gap between grouped-batch calls. Logger
// may be nil (slog.Default is used).
type Params struct {
	Store      KnowledgeStore
	Embedder   embeddings.Client
	Delay      time.Duration
	BatchDelay time.Duration
	Logger     *slog.Logger
}

// NewPipeline creates a Pipeline. Store and embedder are preconditions: a
// missing one fails here, before any per-item work begins.
func NewPipeline(p Params) (*Pipeline, error) {
	if p.Store == nil {
		return nil, apperrors.NewPreconditionError("knowledge store", "ingest: knowledge store is required")
	}

	if p.Embedder == nil {
		return nil, apperrors.NewPreconditionError("embedding client", "ingest: embedding client is required")
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		store:      p.Store,
		embedder:   p.Embedder,
		delay:      p.Delay,
		batchDelay: p.BatchDelay,
		logger:     logger,
	}, nil
}

// Run ingests candidates one at a time: embed title+"\n"+content, insert,
// wait the configured delay, next. The first call has no preceding delay.
// Per-item failures are logged with the item's position, counted, and never
// halt subsequent items.
func (p *Pipeline) Run(ctx context.Context, candidates []models.KnowledgeCandidate) (*Report, error) {
	report, unseen, err := p.dedup(ctx, candidates)
	if err != nil {
		return nil, err
	}

	// Burst 1 with a refill interval of delay: the first Wait passes
	// immediately, every later call is spaced by the full delay.
	limiter := newLimiter(p.delay)

	for _, item := range unseen {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("ingest: interrupted while rate limited: %w", err)
		}

		vector, err := p.embedder.GetEmbedding(ctx, item.candidate.EmbeddingInput())
		if err != nil {
			p.recordFailure(report, item.position, item.candidate.Title, "embedding failed", err)
			continue
		}

		p.insert(ctx, report, item, vector)
	}

	p.logger.Info("ingestion run finished",
		"total", report.Total,
		"skipped", report.Skipped,
		"inserted", report.Inserted,
		"failed", report.Failed,
	)

	return report, nil
}

// RunBatched ingests candidates in fixed-size groups, one embeddings call per
// group (vectors returned in input order), with a short fixed delay between
// groups. A failed group embedding fails only that group's items.
func (p *Pipeline) RunBatched(ctx context.Context, candidates []models.KnowledgeCandidate, batchSize int) (*Report, error) {
	if batchSize <= 0 {
		return nil, apperrors.NewValidationError("batchSize", "ingest: batch size must be positive")
	}

	report, unseen, err := p.dedup(ctx, candidates)
	if err != nil {
		return nil, err
	}

	limiter := newLimiter(p.batchDelay)

	for start := 0; start < len(unseen); start += batchSize {
		end := min(start+batchSize, len(unseen))
		group := unseen[start:end]

		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("ingest: interrupted while rate limited: %w", err)
		}

		inputs := make([]string, len(group))
		for i, item := range group {
			inputs[i] = item.candidate.EmbeddingInput()
		}

		vectors, err := p.embedder.GetEmbeddings(ctx, inputs)
		if err != nil {
			for _, item := range group {
				p.recordFailure(report, item.position, item.candidate.Title, "batch embedding failed", err)
			}
			continue
		}

		for i, item := range group {
			p.insert(ctx, report, item, vectors[i])
		}
	}

	p.logger.Info("batched ingestion run finished",
		"total", report.Total,
		"skipped", report.Skipped,
		"inserted", report.Inserted,
		"failed", report.Failed,
	)

	return report, nil
}

// positioned keeps a candidate's original list position for failure logs.
type positioned struct {
	position  int
	candidate models.KnowledgeCandidate
}

// dedup reads all existing titles in a single query and filters candidates
// down to unseen ones. The title is the sole dedup key; content changes to an
// already-seeded title are silently ignored.
func (p *Pipeline) dedup(ctx context.Context, candidates []models.KnowledgeCandidate) (*Report, []positioned, error) {
	titles, err := p.store.ListTitles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: failed to read existing titles: %w", err)
	}

	existing := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		existing[t] = struct{}{}
	}

	report := &Report{
		Total:              len(candidates),
		InsertedByCategory: make(map[string]int),
	}

	var unseen []positioned
	for i, c := range candidates {
		if _, ok := existing[c.Title]; ok {
			report.Skipped++
			continue
		}

		unseen = append(unseen, positioned{position: i, candidate: c})
	}

	p.logger.Info("ingestion dedup complete",
		"candidates", len(candidates),
		"already_present", report.Skipped,
		"to_ingest", len(unseen),
	)

	return report, unseen, nil
}

// insert writes one embedded entry. An insert conflict means another run won
// the dedup race; it counts as skipped, not failed.
func (p *Pipeline) insert(ctx context.Context, report *Report, item positioned, vector []float32) {
	entry := &models.KnowledgeEntry{
		Title:      item.candidate.Title,
		Category:   item.candidate.Category,
		Content:    item.candidate.Content,
		Tags:       item.candidate.Tags,
		Embedding:  vector,
		Confidence: item.candidate.Confidence,
	}

	if err := p.store.Insert(ctx, entry); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			p.logger.Warn("entry inserted by a concurrent run, skipping",
				"position", item.position, "title", item.candidate.Title)
			report.Skipped++
			return
		}

		p.recordFailure(report, item.position, item.candidate.Title, "insert failed", err)
		return
	}

	report.Inserted++
	report.InsertedByCategory[item.candidate.Category]++
}

func (p *Pipeline) recordFailure(report *Report, position int, title, msg string, err error) {
	report.Failed++
	p.logger.Error("ingestion item failed",
		"position", position,
		"title", title,
		"reason", msg,
		"error", err,
	)
}

// newLimiter returns a limiter that admits the first call immediately and
// spaces every later call by delay. A zero delay never blocks.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	return rate.NewLimiter(rate.Every(delay), 1)
}
