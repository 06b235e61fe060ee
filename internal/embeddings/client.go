// Package embeddings provides clients for generating text embeddings.
package embeddings

import "context"

// Client defines the interface for generating text embeddings.
type Client interface {
	// GetEmbedding generates an embedding vector for the given text.
	// Returns a slice of float32 values representing the embedding.
	GetEmbedding(ctx context.Context, text string) ([]float32, error)

	// GetEmbeddings generates embedding vectors for multiple texts in a batch.
	// The result holds one vector per input, in the same order as submitted.
	GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}
