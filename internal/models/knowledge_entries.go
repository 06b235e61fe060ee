package models

import (
	"time"
)

// KnowledgeEntry represents a stored, embedded reference answer used to ground
// generated responses. The title is the natural dedup key: no two stored entries
// share a title.
type KnowledgeEntry struct {
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags,omitempty"`
	Embedding  []float32 `json:"-"`
	Confidence int       `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmbeddingInput returns the text the entry's embedding is derived from.
// It must be deterministic: the same entry always embeds the same text.
func (e *KnowledgeEntry) EmbeddingInput() string {
	return e.Title + "\n" + e.Content
}

// KnowledgeCandidate is the pre-embedding shape of a knowledge entry as it
// appears in a seed file, before the ingestion pipeline computes its vector.
type KnowledgeCandidate struct {
	Title      string   `json:"title" validate:"required,min=1,max=500,no_null_bytes"`
	Category   string   `json:"category" validate:"required,min=1,max=255,no_null_bytes"`
	Content    string   `json:"content" validate:"required,min=1,no_null_bytes"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,unique,dive,min=1,max=100"`
	Confidence int      `json:"confidence" validate:"min=0,max=100"`
}

// EmbeddingInput returns the text submitted to the embedding provider for this
// candidate: title and content joined by a single newline.
func (c *KnowledgeCandidate) EmbeddingInput() string {
	return c.Title + "\n" + c.Content
}

// ListKnowledgeEntriesFilters represents filters for listing knowledge entries.
type ListKnowledgeEntriesFilters struct {
	Category *string `form:"category" validate:"omitempty,no_null_bytes"`
	Limit    int     `form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset   int     `form:"offset" validate:"omitempty,min=0"`
}

// ListKnowledgeEntriesResponse represents the response for listing knowledge entries.
type ListKnowledgeEntriesResponse struct {
	Data   []KnowledgeEntry `json:"data"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
