package transcript

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://video.google.com/timedtext"

// Segment is one timed caption line.
type Segment struct {
	Start float64
	Dur   float64
	Text  string
}

// Client fetches video captions from the timedtext endpoint. The base URL is
// configurable so tests can point at a local server.
type Client struct {
	baseURL string
	lang    string
	http    *http.Client
}

func NewClient(baseURL, lang string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if lang == "" {
		lang = "en"
	}
	return &Client{
		baseURL: baseURL,
		lang:    lang,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type timedTextXML struct {
	Texts []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",chardata"`
	} `xml:"text"`
}

// Fetch returns the ordered caption segments for a video. An empty transcript
// is an error: the video either has no captions or none in this language.
func (c *Client) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	endpoint := fmt.Sprintf("%s?lang=%s&v=%s", c.baseURL, url.QueryEscape(c.lang), url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcript request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var parsed timedTextXML
	if err := xml.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	segments := make([]Segment, 0, len(parsed.Texts))
	for _, t := range parsed.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Body))
		if text == "" {
			continue
		}
		segments = append(segments, Segment{Start: t.Start, Dur: t.Dur, Text: text})
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("no transcript available for video %s", videoID)
	}
	return segments, nil
}

// JoinText concatenates segment texts with single spaces, the form the
// chunker expects.
func JoinText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
