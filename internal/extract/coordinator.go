package extract

import (
	"context"
	"io"
	"os"
	"path"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/studypal-ai/ragserver/internal/chunker"
	"github.com/studypal-ai/ragserver/internal/model"
	"github.com/studypal-ai/ragserver/internal/objstore"
	"github.com/studypal-ai/ragserver/internal/transcript"
)

// ObjectFetcher downloads raw object bytes.
type ObjectFetcher interface {
	Download(ctx context.Context, bucket, key string, w io.Writer) error
}

// TranscriptFetcher retrieves a video's timed caption segments.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) ([]transcript.Segment, error)
}

// Coordinator turns a batch of document URIs and video IDs into chunk lists.
// Items are processed independently: one item's failure lands in the result's
// Errors and never aborts its siblings.
type Coordinator struct {
	objects       ObjectFetcher
	transcripts   TranscriptFetcher
	maxTokens     int
	overlapTokens int
	parallelism   int
}

func NewCoordinator(objects ObjectFetcher, transcripts TranscriptFetcher, maxTokens, overlapTokens, parallelism int) *Coordinator {
	if maxTokens <= 0 {
		maxTokens = chunker.DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = chunker.DefaultOverlapTokens
	}
	if parallelism <= 0 {
		parallelism = 4
	}
	return &Coordinator{
		objects:       objects,
		transcripts:   transcripts,
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
		parallelism:   parallelism,
	}
}

// Process runs the whole batch. Output order follows input order; failed
// items are absent from the chunk lists and present in Errors.
func (c *Coordinator) Process(ctx context.Context, req *model.ProcessRequest) *model.ProcessResult {
	logger := logutil.GetLogger(ctx)

	docResults := make([]*model.DocumentChunks, len(req.Documents))
	docErrors := make([]*model.ProcessError, len(req.Documents))
	vidResults := make([]*model.VideoChunks, len(req.YoutubeVideos))
	vidErrors := make([]*model.ProcessError, len(req.YoutubeVideos))

	g := &errgroup.Group{}
	g.SetLimit(c.parallelism)

	for i, uri := range req.Documents {
		g.Go(func() error {
			chunks, err := c.processDocument(ctx, uri)
			if err != nil {
				logger.Error("document processing failed", zap.String("uri", uri), zap.Error(err))
				docErrors[i] = &model.ProcessError{Document: uri, Error: err.Error()}
				return nil
			}
			logger.Info("document chunking complete", zap.String("uri", uri), zap.Int("chunks", len(chunks)))
			docResults[i] = &model.DocumentChunks{S3URI: uri, Chunks: chunks}
			return nil
		})
	}
	for i, videoID := range req.YoutubeVideos {
		g.Go(func() error {
			chunks, err := c.processVideo(ctx, videoID)
			if err != nil {
				logger.Error("video processing failed", zap.String("video_id", videoID), zap.Error(err))
				vidErrors[i] = &model.ProcessError{VideoID: videoID, Error: err.Error()}
				return nil
			}
			logger.Info("video transcript processed", zap.String("video_id", videoID), zap.Int("chunks", len(chunks)))
			vidResults[i] = &model.VideoChunks{VideoID: videoID, Chunks: chunks}
			return nil
		})
	}
	_ = g.Wait()

	result := &model.ProcessResult{
		DocumentChunks: []model.DocumentChunks{},
		YoutubeChunks:  []model.VideoChunks{},
		Errors:         []model.ProcessError{},
	}
	for _, r := range docResults {
		if r != nil {
			result.DocumentChunks = append(result.DocumentChunks, *r)
		}
	}
	for _, e := range docErrors {
		if e != nil {
			result.Errors = append(result.Errors, *e)
		}
	}
	for _, r := range vidResults {
		if r != nil {
			result.YoutubeChunks = append(result.YoutubeChunks, *r)
		}
	}
	for _, e := range vidErrors {
		if e != nil {
			result.Errors = append(result.Errors, *e)
		}
	}
	return result
}

// processDocument downloads one object into a scratch file, extracts its text
// and chunks it. The scratch file is removed whether or not extraction
// succeeds.
func (c *Coordinator) processDocument(ctx context.Context, uri string) ([]string, error) {
	bucket, key, err := objstore.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))

	tmp, err := os.CreateTemp("", "extract-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := c.objects.Download(ctx, bucket, key, tmp); err != nil {
		return nil, err
	}
	if err := tmp.Sync(); err != nil {
		return nil, err
	}

	text, err := parseFile(tmp.Name(), ext)
	if err != nil {
		return nil, err
	}
	return c.chunk(text), nil
}

func (c *Coordinator) processVideo(ctx context.Context, videoID string) ([]string, error) {
	segments, err := c.transcripts.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return c.chunk(transcript.JoinText(segments)), nil
}

func (c *Coordinator) chunk(text string) []string {
	chunks := chunker.Chunk(text, c.maxTokens, c.overlapTokens)
	if chunks == nil {
		chunks = []string{}
	}
	return chunks
}
