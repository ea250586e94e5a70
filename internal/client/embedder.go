package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studypal-ai/ragserver/internal/model"
)

// EmbedderClient talks to the embedding service. The /embed endpoint
// returns a bare float array, not an object.
type EmbedderClient struct {
	baseURL string
	cli     httpDoer
}

func NewEmbedderClient(baseURL string, timeout time.Duration) *EmbedderClient {
	return &EmbedderClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		cli:     newHTTPClient(timeout),
	}
}

func (c *EmbedderClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	if err := postJSON(ctx, c.cli, c.baseURL+"/embed", &model.EmbedRequest{Inputs: text}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("embedder returned empty vector")
	}
	return out, nil
}
