package gateway

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studypal-ai/ragserver/internal/model"
)

type fakeObjects struct {
	uris []string
}

func (f *fakeObjects) ListSessionURIs(_ context.Context, _ string) ([]string, error) {
	return f.uris, nil
}

func (f *fakeObjects) PresignUpload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.example.com/" + key + "?sig=abc", nil
}

type fakeExtractor struct {
	result *model.ProcessResult
	err    error
	got    *model.ProcessRequest
}

func (f *fakeExtractor) Process(_ context.Context, req *model.ProcessRequest) (*model.ProcessResult, error) {
	f.got = req
	return f.result, f.err
}

type fakeStore struct {
	total     int
	totalErr  error
	results   []model.SearchResult
	searchErr error
	stored    *model.StoreRequest
	lastTopK  int
}

func (f *fakeStore) Store(_ context.Context, req *model.StoreRequest) error {
	f.stored = req
	return nil
}

func (f *fakeStore) Search(_ context.Context, req *model.SearchRequest) ([]model.SearchResult, error) {
	f.lastTopK = req.TopK
	return f.results, f.searchErr
}

func (f *fakeStore) TotalChunks(_ context.Context, _, _ string) (int, error) {
	return f.total, f.totalErr
}

type fakeLLM struct {
	lastReq *model.GenerateRequest
	answer  string
	err     error
}

func (f *fakeLLM) Generate(_ context.Context, req *model.GenerateRequest) (string, error) {
	f.lastReq = req
	return f.answer, f.err
}

func TestStoreDocumentsNoUploads(t *testing.T) {
	svc := NewService(&fakeObjects{}, &fakeExtractor{}, &fakeStore{}, &fakeLLM{})
	_, err := svc.StoreDocuments(context.Background(), &StoreDocumentsRequest{SessionID: "sess-1", Tag: "cs101"})
	require.ErrorIs(t, err, ErrNoDocuments)
}

func TestStoreDocumentsTransform(t *testing.T) {
	extractor := &fakeExtractor{result: &model.ProcessResult{
		DocumentChunks: []model.DocumentChunks{
			{S3URI: "s3://b/sess-1/a.pdf", Chunks: []string{"first", "second"}},
		},
		YoutubeChunks: []model.VideoChunks{
			{VideoID: "vid123", Chunks: []string{"intro"}},
		},
	}}
	store := &fakeStore{}
	svc := NewService(&fakeObjects{uris: []string{"s3://b/sess-1/a.pdf"}}, extractor, store, &fakeLLM{})

	_, err := svc.StoreDocuments(context.Background(), &StoreDocumentsRequest{
		SessionID: "sess-1", Tag: "cs101", YTList: []string{"vid123"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"s3://b/sess-1/a.pdf"}, extractor.got.Documents)
	require.Equal(t, []string{"vid123"}, extractor.got.YoutubeVideos)

	require.NotNil(t, store.stored)
	require.Equal(t, "cs101", store.stored.Tag)
	require.Equal(t, "sess-1", store.stored.SessionID)
	require.Len(t, store.stored.Documents, 2)
	require.Equal(t, "s3://b/sess-1/a.pdf", store.stored.Documents[0].URI)
	require.Equal(t, []model.Chunk{{ChunkID: 0, Text: "first"}, {ChunkID: 1, Text: "second"}}, store.stored.Documents[0].Chunks)
	require.Equal(t, "vid123", store.stored.Documents[1].VideoID)
}

func TestStoreDocumentsExtractorFailure(t *testing.T) {
	extractor := &fakeExtractor{err: fmt.Errorf("extractor down")}
	svc := NewService(&fakeObjects{uris: []string{"s3://b/sess-1/a.pdf"}}, extractor, &fakeStore{}, &fakeLLM{})
	_, err := svc.StoreDocuments(context.Background(), &StoreDocumentsRequest{SessionID: "sess-1", Tag: "cs101"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "extractor down")
}

func TestQueryAdaptiveTopK(t *testing.T) {
	store := &fakeStore{
		total:   40,
		results: []model.SearchResult{{Content: " vectors have direction "}, {Content: ""}},
	}
	llm := &fakeLLM{answer: "a vector has direction and magnitude"}
	svc := NewService(&fakeObjects{}, &fakeExtractor{}, store, llm)

	answer, err := svc.Query(context.Background(), &QueryParams{
		Query: "what is a vector", Tag: "cs101", SessionID: "sess-1",
	})
	require.NoError(t, err)
	require.Equal(t, "a vector has direction and magnitude", answer)
	// 40 chunks * 0.2 = 8
	require.Equal(t, 8, store.lastTopK)

	require.Contains(t, llm.lastReq.Prompt, `The user has asked: "what is a vector"`)
	require.Contains(t, llm.lastReq.Prompt, "vectors have direction")
	require.Contains(t, llm.lastReq.Prompt, "only the information above")
	require.InDelta(t, 0.7, llm.lastReq.Temperature, 1e-6)
	require.Equal(t, 500, llm.lastReq.MaxTokens)
}

func TestQueryCountLookupFailureFallsBack(t *testing.T) {
	store := &fakeStore{totalErr: fmt.Errorf("store unreachable")}
	llm := &fakeLLM{answer: "ok"}
	svc := NewService(&fakeObjects{}, &fakeExtractor{}, store, llm)

	_, err := svc.Query(context.Background(), &QueryParams{Query: "q", Tag: "t", SessionID: "s"})
	require.NoError(t, err)
	require.Equal(t, 5, store.lastTopK)
}

func TestQueryZeroChunksSkipsSearch(t *testing.T) {
	store := &fakeStore{total: 0, searchErr: fmt.Errorf("search should not be called")}
	llm := &fakeLLM{answer: "I don't have enough information"}
	svc := NewService(&fakeObjects{}, &fakeExtractor{}, store, llm)

	answer, err := svc.Query(context.Background(), &QueryParams{Query: "q", Tag: "t", SessionID: "s"})
	require.NoError(t, err)
	require.Equal(t, "I don't have enough information", answer)
	require.Equal(t, 0, store.lastTopK)
}

func TestQueryCustomGenerationParams(t *testing.T) {
	store := &fakeStore{total: 3}
	llm := &fakeLLM{answer: "ok"}
	svc := NewService(&fakeObjects{}, &fakeExtractor{}, store, llm)

	_, err := svc.Query(context.Background(), &QueryParams{
		Query: "q", Tag: "t", SessionID: "s", Temperature: 0.2, MaxTokens: 64,
	})
	require.NoError(t, err)
	require.InDelta(t, 0.2, llm.lastReq.Temperature, 1e-6)
	require.Equal(t, 64, llm.lastReq.MaxTokens)
}

func TestPresignUploads(t *testing.T) {
	svc := NewService(&fakeObjects{}, &fakeExtractor{}, &fakeStore{}, &fakeLLM{})
	urls, err := svc.PresignUploads(context.Background(), "sess-1", []string{"a.pdf", "b.txt"})
	require.NoError(t, err)
	require.Len(t, urls, 2)
	require.True(t, strings.HasPrefix(urls[0], "https://s3.example.com/sess-1/a.pdf"))
}

func TestCreateSessionUnique(t *testing.T) {
	svc := NewService(&fakeObjects{}, &fakeExtractor{}, &fakeStore{}, &fakeLLM{})
	a := svc.CreateSession()
	b := svc.CreateSession()
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}
