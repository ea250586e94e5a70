package client

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/studypal-ai/ragserver/internal/model"
)

// StoreClient talks to the vector store service.
type StoreClient struct {
	baseURL string
	cli     httpDoer
}

func NewStoreClient(baseURL string, timeout time.Duration) *StoreClient {
	return &StoreClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		cli:     newHTTPClient(timeout),
	}
}

func (c *StoreClient) Store(ctx context.Context, req *model.StoreRequest) error {
	return postJSON(ctx, c.cli, c.baseURL+"/store", req, nil)
}

func (c *StoreClient) Search(ctx context.Context, req *model.SearchRequest) ([]model.SearchResult, error) {
	var out model.SearchResponse
	if err := postJSON(ctx, c.cli, c.baseURL+"/search", req, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *StoreClient) TotalChunks(ctx context.Context, tag, sessionID string) (int, error) {
	q := url.Values{}
	q.Set("tag", tag)
	q.Set("session_id", sessionID)
	var out model.TotalChunksResponse
	if err := getJSON(ctx, c.cli, c.baseURL+"/totalChunks", q, &out); err != nil {
		return 0, err
	}
	return out.Total, nil
}
