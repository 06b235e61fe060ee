// seed-knowledge ingests a JSON file of knowledge candidates into the
// knowledge base: dedup by title, one embedding per new entry under the
// provider's rate ceiling, insert. Safe to re-run; already-seeded titles are
// skipped. Use -batched to trade the per-item delay for grouped embedding
// calls on providers that allow it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/proposalpilot/hub/internal/api/validation"
	"github.com/proposalpilot/hub/internal/config"
	"github.com/proposalpilot/hub/internal/embeddings"
	"github.com/proposalpilot/hub/internal/ingest"
	"github.com/proposalpilot/hub/internal/models"
	"github.com/proposalpilot/hub/internal/observability"
	"github.com/proposalpilot/hub/internal/repository"
	"github.com/proposalpilot/hub/pkg/database"
)

const (
	exitSuccess = 0
	exitFailure = 1

	embeddingCacheSize = 1024
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		file      = flag.String("file", "", "path to a JSON array of knowledge candidates (required)")
		batched   = flag.Bool("batched", false, "embed in fixed-size groups instead of one call per entry")
		batchSize = flag.Int("batch-size", 0, "entries per grouped embedding call (default from INGEST_BATCH_SIZE)")
		delay     = flag.Duration("delay", 0, "gap between single-item embedding calls (default from INGEST_DELAY_SECONDS)")
		dryRun    = flag.Bool("dry-run", false, "validate and dedup only; no embedding calls, no writes")
	)
	flag.Parse()

	// Load .env for consistency with the main API server (godotenv.Load() there).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	observability.SetupLogging(os.Getenv("LOG_LEVEL"))

	if *file == "" {
		slog.Error("-file is required")

		return exitFailure
	}

	cfg := ingestionConfig()
	if err := cfg.ValidateIngestion(); err != nil {
		slog.Error("Ingestion preconditions not met", "error", err)

		return exitFailure
	}

	candidates, err := loadCandidates(*file)
	if err != nil {
		slog.Error("Failed to load candidates", "error", err)

		return exitFailure
	}

	ctx := context.Background()

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)

		return exitFailure
	}
	defer db.Close()

	knowledgeRepo := repository.NewKnowledgeEntriesRepository(db)

	if *dryRun {
		return dryRunReport(ctx, knowledgeRepo, candidates)
	}

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		slog.Error("Failed to create embedding client", "error", err)

		return exitFailure
	}

	if *delay > 0 {
		cfg.IngestDelay = *delay
	}

	if *batchSize > 0 {
		cfg.IngestBatchSize = *batchSize
	}

	pipeline, err := ingest.NewPipeline(ingest.Params{
		Store:      knowledgeRepo,
		Embedder:   embedder,
		Delay:      cfg.IngestDelay,
		BatchDelay: cfg.IngestBatchDelay,
		Logger:     slog.Default(),
	})
	if err != nil {
		slog.Error("Failed to build ingestion pipeline", "error", err)

		return exitFailure
	}

	var report *ingest.Report
	if *batched {
		report, err = pipeline.RunBatched(ctx, candidates, cfg.IngestBatchSize)
	} else {
		report, err = pipeline.Run(ctx, candidates)
	}

	if err != nil {
		slog.Error("Ingestion run failed", "error", err)

		return exitFailure
	}

	printReport(report)

	if report.Failed > 0 {
		return exitFailure
	}

	return exitSuccess
}

// ingestionConfig reads the seeding settings straight from the environment.
// Unlike the API server, the seeder needs no API_KEY, so it does not use
// config.Load.
func ingestionConfig() *config.Config {
	return &config.Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", config.EmbeddingProviderGoogle),
		EmbeddingModel:      os.Getenv("EMBEDDING_MODEL"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
		IngestDelay:         time.Duration(getEnvAsInt("INGEST_DELAY_SECONDS", 21)) * time.Second,
		IngestBatchSize:     getEnvAsInt("INGEST_BATCH_SIZE", 20),
		IngestBatchDelay:    time.Duration(getEnvAsInt("INGEST_BATCH_DELAY_MS", 500)) * time.Millisecond,
	}
}

// loadCandidates reads and validates the seed file. A malformed or invalid
// entry aborts the run before any embedding call is made; per-item failure
// tolerance applies to embedding and insert errors, not to a bad seed file.
func loadCandidates(path string) ([]models.KnowledgeCandidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var candidates []models.KnowledgeCandidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s contains no candidates", path)
	}

	for i := range candidates {
		if err := validation.ValidateStruct(&candidates[i]); err != nil {
			return nil, fmt.Errorf("candidate %d (%q): %w", i, candidates[i].Title, err)
		}
	}

	return candidates, nil
}

// newEmbedder builds the configured provider client wrapped in the
// deduplicating cache, so identical texts never cost two API calls.
func newEmbedder(ctx context.Context, cfg *config.Config) (embeddings.Client, error) {
	var inner embeddings.Client

	switch cfg.EmbeddingProvider {
	case config.EmbeddingProviderGoogle:
		opts := []embeddings.GoogleAIOption{
			embeddings.WithGoogleAIDimensions(cfg.EmbeddingDimensions),
		}
		if cfg.EmbeddingModel != "" {
			opts = append(opts, embeddings.WithGoogleAIModel(cfg.EmbeddingModel))
		}

		client, err := embeddings.NewGoogleAIClient(ctx, cfg.GeminiAPIKey, opts...)
		if err != nil {
			return nil, err
		}

		inner = client
	case config.EmbeddingProviderOpenAI:
		inner = embeddings.NewOpenAIClient(cfg.OpenAIAPIKey)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.EmbeddingProvider)
	}

	return embeddings.NewCachedClient(inner, embeddingCacheSize)
}

// dryRunReport prints what a real run would do: per-title skip/ingest
// decisions against the current store, with no embedding calls or writes.
func dryRunReport(ctx context.Context, repo *repository.KnowledgeEntriesRepository, candidates []models.KnowledgeCandidate) int {
	titles, err := repo.ListTitles(ctx)
	if err != nil {
		slog.Error("Failed to read existing titles", "error", err)

		return exitFailure
	}

	existing := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		existing[t] = struct{}{}
	}

	var skipped, toIngest int
	for _, c := range candidates {
		if _, ok := existing[c.Title]; ok {
			skipped++
			fmt.Printf("skip    %s\n", c.Title)
		} else {
			toIngest++
			fmt.Printf("ingest  %s\n", c.Title)
		}
	}

	fmt.Printf("\nDry run: %d candidate(s), %d already present, %d would be ingested.\n",
		len(candidates), skipped, toIngest)

	return exitSuccess
}

func printReport(report *ingest.Report) {
	fmt.Printf("Ingested %d of %d candidate(s); %d skipped, %d failed.\n",
		report.Inserted, report.Total, report.Skipped, report.Failed)

	categories := make([]string, 0, len(report.InsertedByCategory))
	for category := range report.InsertedByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Printf("  %-24s %d\n", category, report.InsertedByCategory[category])
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return n
}
