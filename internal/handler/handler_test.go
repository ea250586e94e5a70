package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/studypal-ai/ragserver/internal/ai"
	"github.com/studypal-ai/ragserver/internal/model"
	"github.com/studypal-ai/ragserver/internal/vecstore"
)

func newTestRouter(register func(*gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	register(engine.Group(""))
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return s.vec, s.err
}

func (s *stubEmbedder) ModelName() string { return "stub-model" }

type stubGenerator struct {
	text string
	err  error
	opts ai.GenerateOptions
}

func (s *stubGenerator) Generate(_ context.Context, _ string, opts ai.GenerateOptions) (string, error) {
	s.opts = opts
	return s.text, s.err
}

func TestEmbedderHandlerBareArray(t *testing.T) {
	h := NewEmbedderHandler(&stubEmbedder{vec: []float32{0.5, 1.5}})
	engine := newTestRouter(h.Register)

	rec := doJSON(t, engine, http.MethodPost, "/embed", `{"inputs":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var vec []float32
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vec))
	require.Equal(t, []float32{0.5, 1.5}, vec)
}

func TestEmbedderHandlerMissingInputs(t *testing.T) {
	h := NewEmbedderHandler(&stubEmbedder{})
	engine := newTestRouter(h.Register)

	rec := doJSON(t, engine, http.MethodPost, "/embed", `{"inputs":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "detail")
}

func TestLLMHandlerGenerate(t *testing.T) {
	gen := &stubGenerator{text: "hello there"}
	h := NewLLMHandler(gen)
	engine := newTestRouter(h.Register)

	rec := doJSON(t, engine, http.MethodPost, "/generate", `{"prompt":"say hi","temperature":0.2,"max_tokens":32}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var rsp model.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	require.Equal(t, "hello there", rsp.GeneratedText)
	require.InDelta(t, 0.2, gen.opts.Temperature, 1e-6)
	require.Equal(t, 32, gen.opts.MaxTokens)
}

func TestLLMHandlerMissingPrompt(t *testing.T) {
	h := NewLLMHandler(&stubGenerator{})
	engine := newTestRouter(h.Register)

	rec := doJSON(t, engine, http.MethodPost, "/generate", `{"prompt":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubRepo struct {
	total   int
	results []model.SearchResult
	inserts int
	err     error
}

func (s *stubRepo) Insert(_ context.Context, _ *vecstore.Record) error {
	s.inserts++
	return s.err
}

func (s *stubRepo) Search(_ context.Context, _ []float32, _, _ string, _ int) ([]model.SearchResult, error) {
	return s.results, s.err
}

func (s *stubRepo) Count(_ context.Context, _, _ string) (int, error) {
	return s.total, s.err
}

func TestStoreHandlerTotalChunks(t *testing.T) {
	svc := vecstore.NewService(&stubRepo{total: 7}, &stubEmbedder{vec: []float32{1}})
	h := NewStoreHandler(svc)
	engine := newTestRouter(h.Register)

	rec := doJSON(t, engine, http.MethodGet, "/totalChunks?tag=cs101&session_id=s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rsp model.TotalChunksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	require.Equal(t, "ok", rsp.Status)
	require.Equal(t, 7, rsp.Total)
}

func TestStoreHandlerTotalChunksMissingParams(t *testing.T) {
	svc := vecstore.NewService(&stubRepo{}, &stubEmbedder{})
	h := NewStoreHandler(svc)
	engine := newTestRouter(h.Register)

	rec := doJSON(t, engine, http.MethodGet, "/totalChunks?tag=cs101", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreHandlerStoreValidation(t *testing.T) {
	svc := vecstore.NewService(&stubRepo{}, &stubEmbedder{})
	h := NewStoreHandler(svc)
	engine := newTestRouter(h.Register)

	rec := doJSON(t, engine, http.MethodPost, "/store", `{"documents":[],"tag":"","session_id":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreHandlerStoreFailureIsDetail(t *testing.T) {
	repo := &stubRepo{err: fmt.Errorf("db down")}
	svc := vecstore.NewService(repo, &stubEmbedder{vec: []float32{1}})
	h := NewStoreHandler(svc)
	engine := newTestRouter(h.Register)

	body := `{"tag":"t","session_id":"s","documents":[{"uri":"s3://b/k","chunks":[{"chunk_id":0,"text":"x"}]}]}`
	rec := doJSON(t, engine, http.MethodPost, "/store", body)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var eb map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eb))
	require.Contains(t, eb["detail"], "db down")
}

func TestStoreHandlerSearchDefaultTopK(t *testing.T) {
	repo := &stubRepo{results: []model.SearchResult{{Content: "hit"}}}
	svc := vecstore.NewService(repo, &stubEmbedder{vec: []float32{1}})
	h := NewStoreHandler(svc)
	engine := newTestRouter(h.Register)

	rec := doJSON(t, engine, http.MethodPost, "/search", `{"query":"q","tag":"t","session_id":"s"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var rsp model.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	require.Len(t, rsp.Results, 1)
}

func TestGatewayQueryMissingParam(t *testing.T) {
	h := NewGatewayHandler(nil)
	engine := newTestRouter(h.Register)

	rec := doJSON(t, engine, http.MethodGet, "/query", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "'query' is required")
}

func TestGatewayPromptQueryMissingParam(t *testing.T) {
	h := NewGatewayHandler(nil)
	engine := newTestRouter(h.Register)

	rec := doJSON(t, engine, http.MethodGet, "/promptQuery", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "'prompt' is required")
}

func TestGatewayUploadDocsValidation(t *testing.T) {
	h := NewGatewayHandler(nil)
	engine := newTestRouter(h.Register)

	rec := doJSON(t, engine, http.MethodPost, "/uploadDocs", `{"session_id":"","filenames":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
