package vecstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/studypal-ai/ragserver/internal/model"
)

// Record is one embedded chunk owned by a (session_id, tag) partition.
// Records are immutable once written.
type Record struct {
	Content   string
	ChunkID   int
	Tag       string
	Embedding []float32
	URI       string
	VideoID   string
	SessionID string
}

type Repo struct {
	db  *sqlx.DB
	dim int
}

func NewRepo(db *sqlx.DB, dim int) *Repo {
	return &Repo{db: db, dim: dim}
}

func (r *Repo) Insert(ctx context.Context, rec *Record) error {
	if r.dim > 0 && len(rec.Embedding) != r.dim {
		return fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(rec.Embedding), r.dim)
	}
	const q = `
		INSERT INTO documents (content, chunk_id, tag, embedding, uri, video_id, session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.Content, rec.ChunkID, rec.Tag, pgvector.NewVector(rec.Embedding), rec.URI, rec.VideoID, rec.SessionID)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// Search returns the limit nearest records within the partition, ordered by
// ascending vector distance. Tie order is whatever Postgres returns.
func (r *Repo) Search(ctx context.Context, embedding []float32, tag, sessionID string, limit int) ([]model.SearchResult, error) {
	const q = `
		SELECT id, content, chunk_id, tag, uri, video_id, session_id
		FROM documents
		WHERE tag = $1 AND session_id = $2
		ORDER BY embedding <-> $3
		LIMIT $4
	`
	var results []model.SearchResult
	err := r.db.SelectContext(ctx, &results, q, tag, sessionID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	return results, nil
}

// Count reports how many chunks the partition holds; zero for an unknown
// partition, never an error for absence.
func (r *Repo) Count(ctx context.Context, tag, sessionID string) (int, error) {
	const q = `SELECT COUNT(*) FROM documents WHERE session_id = $1 AND tag = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, q, sessionID, tag); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return total, nil
}
