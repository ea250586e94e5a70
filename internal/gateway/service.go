// Package gateway implements the orchestrator: it owns no data, only the
// flows between the object store, extractor, vector store and LLM services.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/studypal-ai/ragserver/internal/model"
	"github.com/studypal-ai/ragserver/internal/retrieval"
)

// ErrNoDocuments is returned by StoreDocuments when the session prefix holds
// no objects. Handlers map it to 404.
var ErrNoDocuments = errors.New("no documents found for this session")

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 500

	presignExpiry = 15 * time.Minute
)

type ObjectStore interface {
	ListSessionURIs(ctx context.Context, sessionID string) ([]string, error)
	PresignUpload(ctx context.Context, key string, expires time.Duration) (string, error)
}

type Extractor interface {
	Process(ctx context.Context, req *model.ProcessRequest) (*model.ProcessResult, error)
}

type Store interface {
	Store(ctx context.Context, req *model.StoreRequest) error
	Search(ctx context.Context, req *model.SearchRequest) ([]model.SearchResult, error)
	TotalChunks(ctx context.Context, tag, sessionID string) (int, error)
}

type Generator interface {
	Generate(ctx context.Context, req *model.GenerateRequest) (string, error)
}

// StoreDocumentsRequest is the gateway's ingestion payload: everything under
// the session's object-store prefix plus an optional list of video ids.
type StoreDocumentsRequest struct {
	SessionID string   `json:"session_id"`
	Tag       string   `json:"tag"`
	YTList    []string `json:"yt_list"`
}

// QueryParams carries the retrieval knobs taken from /query's query string.
type QueryParams struct {
	Query       string
	Tag         string
	SessionID   string
	Temperature float32
	MaxTokens   int
}

type Service struct {
	objects   ObjectStore
	extractor Extractor
	store     Store
	llm       Generator
}

func NewService(objects ObjectStore, extractor Extractor, store Store, llm Generator) *Service {
	return &Service{objects: objects, extractor: extractor, store: store, llm: llm}
}

// CreateSession mints a fresh session identifier. Sessions have no server
// side state until documents are uploaded under the id.
func (s *Service) CreateSession() string {
	return uuid.NewString()
}

// PresignUploads returns one PUT URL per filename, all scoped under the
// session prefix, in input order.
func (s *Service) PresignUploads(ctx context.Context, sessionID string, filenames []string) ([]string, error) {
	urls := make([]string, 0, len(filenames))
	for _, name := range filenames {
		key := sessionID + "/" + name
		u, err := s.objects.PresignUpload(ctx, key, presignExpiry)
		if err != nil {
			return nil, fmt.Errorf("presign %q: %w", key, err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// StoreDocuments runs the ingestion flow: list the session's uploads, extract
// and chunk them together with any videos, then hand the chunks to the vector
// store under (session_id, tag).
func (s *Service) StoreDocuments(ctx context.Context, req *StoreDocumentsRequest) (*model.ProcessResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", req.SessionID), zap.String("tag", req.Tag))

	uris, err := s.objects.ListSessionURIs(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("list session objects: %w", err)
	}
	if len(uris) == 0 {
		return nil, ErrNoDocuments
	}
	logger.Info("starting ingestion", zap.Int("documents", len(uris)), zap.Int("videos", len(req.YTList)))

	processed, err := s.extractor.Process(ctx, &model.ProcessRequest{
		Documents:     uris,
		YoutubeVideos: req.YTList,
	})
	if err != nil {
		return nil, fmt.Errorf("extract documents: %w", err)
	}
	if len(processed.Errors) > 0 {
		logger.Warn("some items failed extraction", zap.Int("failed", len(processed.Errors)))
	}

	storeReq := &model.StoreRequest{
		Tag:       req.Tag,
		SessionID: req.SessionID,
		Documents: make([]model.Document, 0, len(processed.DocumentChunks)+len(processed.YoutubeChunks)),
	}
	for _, dc := range processed.DocumentChunks {
		storeReq.Documents = append(storeReq.Documents, model.Document{
			URI:    dc.S3URI,
			Chunks: ordinalChunks(dc.Chunks),
		})
	}
	for _, vc := range processed.YoutubeChunks {
		storeReq.Documents = append(storeReq.Documents, model.Document{
			VideoID: vc.VideoID,
			Chunks:  ordinalChunks(vc.Chunks),
		})
	}

	if len(storeReq.Documents) > 0 {
		if err := s.store.Store(ctx, storeReq); err != nil {
			return nil, fmt.Errorf("store chunks: %w", err)
		}
	}
	logger.Info("ingestion complete", zap.Int("stored_documents", len(storeReq.Documents)))
	return processed, nil
}

func ordinalChunks(texts []string) []model.Chunk {
	chunks := make([]model.Chunk, 0, len(texts))
	for idx, text := range texts {
		chunks = append(chunks, model.Chunk{ChunkID: idx, Text: text})
	}
	return chunks
}

// DatabaseQuery forwards a similarity search to the vector store unchanged.
func (s *Service) DatabaseQuery(ctx context.Context, req *model.SearchRequest) ([]model.SearchResult, error) {
	return s.store.Search(ctx, req)
}

// PromptQuery forwards a raw prompt to the LLM service unchanged.
func (s *Service) PromptQuery(ctx context.Context, req *model.GenerateRequest) (string, error) {
	return s.llm.Generate(ctx, req)
}

// Query runs the retrieval flow end to end and returns the generated answer.
func (s *Service) Query(ctx context.Context, params *QueryParams) (string, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", params.SessionID), zap.String("tag", params.Tag))

	topK := retrieval.DefaultK
	total, err := s.store.TotalChunks(ctx, params.Tag, params.SessionID)
	if err != nil {
		// Degraded, not fatal: search still runs with the default size.
		logger.Warn("total chunks lookup failed, using default top_k", zap.Error(err))
	} else {
		topK = retrieval.AdaptiveK(total, retrieval.DefaultK, retrieval.MaxK, retrieval.DefaultFraction)
	}

	var results []model.SearchResult
	if topK > 0 {
		results, err = s.store.Search(ctx, &model.SearchRequest{
			Query:     params.Query,
			Tag:       params.Tag,
			SessionID: params.SessionID,
			TopK:      topK,
		})
		if err != nil {
			return "", fmt.Errorf("similarity search: %w", err)
		}
	}

	prompt := BuildPrompt(params.Query, contextBlock(results))
	logger.Info("retrieval complete", zap.Int("top_k", topK), zap.Int("results", len(results)))

	temperature := params.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	answer, err := s.llm.Generate(ctx, &model.GenerateRequest{
		Prompt:      prompt,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

func contextBlock(results []model.SearchResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		content := strings.TrimSpace(r.Content)
		if content == "" {
			continue
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt wraps the user's query and the retrieved context with grounding
// instructions. The query is embedded verbatim.
func BuildPrompt(query, contextText string) string {
	var b strings.Builder
	b.WriteString("The user has asked: \"")
	b.WriteString(query)
	b.WriteString("\"\n\nHere is relevant information retrieved from the user's documents:\n\n")
	b.WriteString(contextText)
	b.WriteString("\n\nAnswer the user's query using only the information above. ")
	b.WriteString("If the information is not sufficient to answer, say so. ")
	b.WriteString("Respond in plain, unformatted text.")
	return b.String()
}
