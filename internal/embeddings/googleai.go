package embeddings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"google.golang.org/genai"
)

var (
	// ErrEmptyInput is returned when an embedding is requested for empty input.
	ErrEmptyInput = errors.New("embeddings: input text is empty")
	// ErrInvalidDims is returned when dimensions is not positive.
	ErrInvalidDims = errors.New("embeddings: embedding dimensions must be positive")
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("embeddings: no embedding in response")
	// ErrDimensionMismatch is returned when a response embedding length does not match configured dimensions.
	ErrDimensionMismatch = errors.New("embeddings: embedding dimension mismatch")
	// ErrCountMismatch is returned when a batched response does not hold one vector per input.
	ErrCountMismatch = errors.New("embeddings: unexpected number of embeddings in response")
)

const (
	defaultDimension  = 1536
	defaultGeminiModel = "gemini-embedding-001"

	// Knowledge entries are embedded for later similarity retrieval, so the
	// task type tags them as documents rather than queries.
	defaultTaskType = "RETRIEVAL_DOCUMENT"
)

// GoogleAIClient calls the Gemini embeddings API via the Google Gen AI SDK.
// The Gemini free tier caps embedding requests at 3 per minute; callers are
// responsible for pacing (see internal/ingest).
type GoogleAIClient struct {
	client     *genai.Client
	model      string
	taskType   string
	dimensions int
}

// Ensure GoogleAIClient implements Client interface
var _ Client = (*GoogleAIClient)(nil)

// GoogleAIOption configures the GoogleAIClient.
type GoogleAIOption func(*GoogleAIClient)

// WithGoogleAIDimensions sets the requested embedding dimension (must match the DB column).
func WithGoogleAIDimensions(dim int) GoogleAIOption {
	return func(c *GoogleAIClient) {
		c.dimensions = dim
	}
}

// WithGoogleAIModel sets the embedding model name. Empty uses the default.
func WithGoogleAIModel(model string) GoogleAIOption {
	return func(c *GoogleAIClient) {
		c.model = model
	}
}

// WithGoogleAITaskType sets the input-purpose tag sent with each request
// (e.g. RETRIEVAL_DOCUMENT for stored entries, RETRIEVAL_QUERY for queries).
func WithGoogleAITaskType(taskType string) GoogleAIOption {
	return func(c *GoogleAIClient) {
		c.taskType = taskType
	}
}

// NewGoogleAIClient creates a Gemini embeddings client. Transient HTTP
// failures are retried by the underlying retryable client.
func NewGoogleAIClient(ctx context.Context, apiKey string, opts ...GoogleAIOption) (*GoogleAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("embeddings: Gemini API key cannot be empty")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.Logger = nil

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: retryClient.StandardClient(),
	})
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}

	client := &GoogleAIClient{
		client:     genaiClient,
		model:      defaultGeminiModel,
		taskType:   defaultTaskType,
		dimensions: defaultDimension,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// GetEmbedding returns the embedding vector for the given text.
func (c *GoogleAIClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.GetEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return vectors[0], nil
}

// GetEmbeddings returns one embedding vector per input text, in input order.
// A non-success API status surfaces the response body as diagnostic detail
// through the SDK's APIError.
func (c *GoogleAIClient) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 || c.dimensions > math.MaxInt32 {
		return nil, ErrInvalidDims
	}

	contents := make([]*genai.Content, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w (index %d)", ErrEmptyInput, i)
		}

		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	//nolint:gosec // G115: c.dimensions is bounded above by math.MaxInt32
	dimInt32 := int32(c.dimensions)

	resp, err := c.client.Models.EmbedContent(ctx, c.model, contents, &genai.EmbedContentConfig{
		TaskType:             c.taskType,
		OutputDimensionality: &dimInt32,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedding: %w", err)
	}

	if len(resp.Embeddings) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCountMismatch, len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if len(emb.Values) != c.dimensions {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb.Values), c.dimensions)
		}

		out := make([]float32, len(emb.Values))
		copy(out, emb.Values)
		vectors[i] = out
	}

	return vectors, nil
}
