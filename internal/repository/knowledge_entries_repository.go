// Package repository contains the data access layer: the knowledge store and
// the session/response/feedback persistence adapter.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/proposalpilot/hub/internal/apperrors"
	"github.com/proposalpilot/hub/internal/models"
)

// KnowledgeEntriesRepository handles data access for knowledge entries.
// Entries are written once by the ingestion pipeline and never mutated in
// place; similarity search against this table is a separate consumer.
type KnowledgeEntriesRepository struct {
	db *pgxpool.Pool
}

// NewKnowledgeEntriesRepository creates a new knowledge entries repository.
func NewKnowledgeEntriesRepository(db *pgxpool.Pool) *KnowledgeEntriesRepository {
	return &KnowledgeEntriesRepository{db: db}
}

// Insert inserts a new knowledge entry with its embedding. A duplicate title
// returns a ConflictError so callers can distinguish dedup races from other
// failures.
func (r *KnowledgeEntriesRepository) Insert(ctx context.Context, entry *models.KnowledgeEntry) error {
	query := `
		INSERT INTO knowledge_entries (title, category, content, tags, embedding, confidence)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		entry.Title, entry.Category, entry.Content, entry.Tags,
		pgvector.NewVector(entry.Embedding), entry.Confidence,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return apperrors.NewConflictError(fmt.Sprintf("knowledge entry %q already exists", entry.Title))
		}

		return fmt.Errorf("failed to insert knowledge entry: %w", err)
	}

	return nil
}

// ListTitles fetches the titles of all stored entries in a single query.
// The ingestion pipeline uses this point-in-time snapshot as its dedup set.
func (r *KnowledgeEntriesRepository) ListTitles(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT title FROM knowledge_entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge entry titles: %w", err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge entry title: %w", err)
		}
		titles = append(titles, title)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating knowledge entry titles: %w", err)
	}

	return titles, nil
}

// buildKnowledgeEntriesFilterConditions builds WHERE clause conditions and arguments from filters
func buildKnowledgeEntriesFilterConditions(filters *models.ListKnowledgeEntriesFilters) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *filters.Category)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	return whereClause, args
}

// List retrieves knowledge entries with optional filters. Embeddings are not
// loaded; they are only read by the similarity-search consumer.
func (r *KnowledgeEntriesRepository) List(ctx context.Context, filters *models.ListKnowledgeEntriesFilters) ([]models.KnowledgeEntry, error) {
	query := `
		SELECT title, category, content, tags, confidence, created_at
		FROM knowledge_entries
	`

	whereClause, args := buildKnowledgeEntriesFilterConditions(filters)
	query += whereClause
	argCount := len(args) + 1

	query += " ORDER BY created_at DESC, title"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filters.Limit)
		argCount++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge entries: %w", err)
	}
	defer rows.Close()

	entries := []models.KnowledgeEntry{} // Initialize as empty slice, not nil
	for rows.Next() {
		var entry models.KnowledgeEntry
		err := rows.Scan(
			&entry.Title, &entry.Category, &entry.Content, &entry.Tags,
			&entry.Confidence, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating knowledge entries: %w", err)
	}

	return entries, nil
}

// Count returns the total count of knowledge entries matching the filters.
func (r *KnowledgeEntriesRepository) Count(ctx context.Context, filters *models.ListKnowledgeEntriesFilters) (int64, error) {
	query := `SELECT COUNT(*) FROM knowledge_entries`

	whereClause, args := buildKnowledgeEntriesFilterConditions(filters)
	query += whereClause

	var count int64
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count knowledge entries: %w", err)
	}

	return count, nil
}
