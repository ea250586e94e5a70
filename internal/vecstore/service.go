package vecstore

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/studypal-ai/ragserver/internal/model"
)

// Embedder turns text into a vector. Backed by the embedding service in
// production, faked in tests.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type chunkRepo interface {
	Insert(ctx context.Context, rec *Record) error
	Search(ctx context.Context, embedding []float32, tag, sessionID string, limit int) ([]model.SearchResult, error)
	Count(ctx context.Context, tag, sessionID string) (int, error)
}

// Service implements the store surface: it embeds incoming text itself
// and owns all access to the documents table.
type Service struct {
	repo     chunkRepo
	embedder Embedder
}

func NewService(repo chunkRepo, embedder Embedder) *Service {
	return &Service{repo: repo, embedder: embedder}
}

// Store persists every chunk of every document in the request. The first
// failure aborts the whole call; previously written chunks are not rolled
// back, the caller is expected to retry under the same session.
func (s *Service) Store(ctx context.Context, req *model.StoreRequest) error {
	for i := range req.Documents {
		doc := &req.Documents[i]
		for _, ck := range doc.Chunks {
			emb, err := s.embedder.Embed(ctx, ck.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d of %q: %w", ck.ChunkID, doc.SourceName(), err)
			}
			rec := &Record{
				Content:   ck.Text,
				ChunkID:   ck.ChunkID,
				Tag:       req.Tag,
				Embedding: emb,
				URI:       doc.URI,
				VideoID:   doc.VideoID,
				SessionID: req.SessionID,
			}
			if err := s.repo.Insert(ctx, rec); err != nil {
				return fmt.Errorf("store chunk %d of %q: %w", ck.ChunkID, doc.SourceName(), err)
			}
		}
	}
	logutil.GetLogger(ctx).Info("stored documents",
		zap.Int("documents", len(req.Documents)),
		zap.String("tag", req.Tag), zap.String("session_id", req.SessionID))
	return nil
}

func (s *Service) Search(ctx context.Context, req *model.SearchRequest) ([]model.SearchResult, error) {
	emb, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := s.repo.Search(ctx, emb, req.Tag, req.SessionID, req.TopK)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.SearchResult{}
	}
	return results, nil
}

func (s *Service) TotalChunks(ctx context.Context, tag, sessionID string) (int, error) {
	return s.repo.Count(ctx, tag, sessionID)
}
