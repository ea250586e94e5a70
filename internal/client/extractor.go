package client

import (
	"context"
	"strings"
	"time"

	"github.com/studypal-ai/ragserver/internal/model"
)

// ExtractorClient talks to the extraction service.
type ExtractorClient struct {
	baseURL string
	cli     httpDoer
}

func NewExtractorClient(baseURL string, timeout time.Duration) *ExtractorClient {
	return &ExtractorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		cli:     newHTTPClient(timeout),
	}
}

func (c *ExtractorClient) Process(ctx context.Context, req *model.ProcessRequest) (*model.ProcessResult, error) {
	var out model.ProcessResult
	if err := postJSON(ctx, c.cli, c.baseURL+"/process", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
