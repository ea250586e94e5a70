// Package client holds typed HTTP clients for the internal service surface.
// Every call decodes error bodies of the form {"detail": "..."} into plain
// Go errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

type errorBody struct {
	Detail string `json:"detail"`
}

func decodeError(rsp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(rsp.Body, 1<<20))
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil && eb.Detail != "" {
		return fmt.Errorf("status %d: %s", rsp.StatusCode, eb.Detail)
	}
	return fmt.Errorf("status %d: %s", rsp.StatusCode, strings.TrimSpace(string(data)))
}

func postJSON(ctx context.Context, cli httpDoer, rawurl string, in interface{}, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawurl, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	rsp, err := cli.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", rawurl, err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("call %s: %w", rawurl, decodeError(rsp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(rsp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawurl, err)
	}
	return nil
}

func getJSON(ctx context.Context, cli httpDoer, rawurl string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		rawurl += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	rsp, err := cli.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", rawurl, err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("call %s: %w", rawurl, decodeError(rsp))
	}
	if err := json.NewDecoder(rsp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawurl, err)
	}
	return nil
}
