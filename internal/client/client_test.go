package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studypal-ai/ragserver/internal/model"
)

func TestEmbedderClientBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		var req model.EmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "hello", req.Inputs)
		_ = json.NewEncoder(w).Encode([]float32{0.1, 0.2, 0.3})
	}))
	defer srv.Close()

	cli := NewEmbedderClient(srv.URL, 0)
	vec, err := cli.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, vec, 3)
}

func TestEmbedderClientEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]float32{})
	}))
	defer srv.Close()

	cli := NewEmbedderClient(srv.URL, 0)
	_, err := cli.Embed(context.Background(), "hello")
	require.Error(t, err)
}

func TestStoreClientTotalChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/totalChunks", r.URL.Path)
		require.Equal(t, "cs101", r.URL.Query().Get("tag"))
		require.Equal(t, "sess-1", r.URL.Query().Get("session_id"))
		_ = json.NewEncoder(w).Encode(model.TotalChunksResponse{Status: "ok", Total: 42})
	}))
	defer srv.Close()

	cli := NewStoreClient(srv.URL, 0)
	total, err := cli.TotalChunks(context.Background(), "cs101", "sess-1")
	require.NoError(t, err)
	require.Equal(t, 42, total)
}

func TestErrorDetailSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "tag is required"})
	}))
	defer srv.Close()

	cli := NewStoreClient(srv.URL, 0)
	err := cli.Store(context.Background(), &model.StoreRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "tag is required")
}

func TestLLMClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req model.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "say hi", req.Prompt)
		_ = json.NewEncoder(w).Encode(model.GenerateResponse{GeneratedText: "hi"})
	}))
	defer srv.Close()

	cli := NewLLMClient(srv.URL, 0)
	text, err := cli.Generate(context.Background(), &model.GenerateRequest{Prompt: "say hi"})
	require.NoError(t, err)
	require.Equal(t, "hi", text)
}
