package client

import (
	"context"
	"strings"
	"time"

	"github.com/studypal-ai/ragserver/internal/model"
)

// LLMClient talks to the prompt service.
type LLMClient struct {
	baseURL string
	cli     httpDoer
}

func NewLLMClient(baseURL string, timeout time.Duration) *LLMClient {
	return &LLMClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		cli:     newHTTPClient(timeout),
	}
}

func (c *LLMClient) Generate(ctx context.Context, req *model.GenerateRequest) (string, error) {
	var out model.GenerateResponse
	if err := postJSON(ctx, c.cli, c.baseURL+"/generate", req, &out); err != nil {
		return "", err
	}
	return out.GeneratedText, nil
}
