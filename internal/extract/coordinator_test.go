package extract

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studypal-ai/ragserver/internal/model"
	"github.com/studypal-ai/ragserver/internal/transcript"
)

type fakeObjects struct {
	content map[string]string
}

func (f *fakeObjects) Download(ctx context.Context, bucket, key string, w io.Writer) error {
	body, ok := f.content[bucket+"/"+key]
	if !ok {
		return fmt.Errorf("object not found: %s/%s", bucket, key)
	}
	_, err := io.WriteString(w, body)
	return err
}

type fakeTranscripts struct {
	segments map[string][]transcript.Segment
}

func (f *fakeTranscripts) Fetch(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	segs, ok := f.segments[videoID]
	if !ok {
		return nil, fmt.Errorf("no transcript available for video %s", videoID)
	}
	return segs, nil
}

func newTestCoordinator(objects ObjectFetcher, transcripts TranscriptFetcher) *Coordinator {
	return NewCoordinator(objects, transcripts, 300, 50, 2)
}

func TestProcessIsolatesUnsupportedFormat(t *testing.T) {
	objects := &fakeObjects{content: map[string]string{
		"bkt/sess/notes.txt":   "The mitochondria is the powerhouse of the cell. It produces energy.",
		"bkt/sess/slides.docx": "binary junk",
	}}
	c := newTestCoordinator(objects, &fakeTranscripts{})

	result := c.Process(context.Background(), &model.ProcessRequest{
		Documents: []string{"s3://bkt/sess/slides.docx", "s3://bkt/sess/notes.txt"},
	})

	require.Len(t, result.DocumentChunks, 1)
	require.Equal(t, "s3://bkt/sess/notes.txt", result.DocumentChunks[0].S3URI)
	require.NotEmpty(t, result.DocumentChunks[0].Chunks)

	require.Len(t, result.Errors, 1)
	require.Equal(t, "s3://bkt/sess/slides.docx", result.Errors[0].Document)
	require.Contains(t, result.Errors[0].Error, "unsupported file type")
}

func TestProcessIsolatesDownloadFailure(t *testing.T) {
	objects := &fakeObjects{content: map[string]string{
		"bkt/sess/a.txt": "First document. Short and sweet.",
	}}
	c := newTestCoordinator(objects, &fakeTranscripts{})

	result := c.Process(context.Background(), &model.ProcessRequest{
		Documents: []string{"s3://bkt/sess/a.txt", "s3://bkt/sess/missing.txt"},
	})

	require.Len(t, result.DocumentChunks, 1)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "s3://bkt/sess/missing.txt", result.Errors[0].Document)
}

func TestProcessInvalidURI(t *testing.T) {
	c := newTestCoordinator(&fakeObjects{}, &fakeTranscripts{})

	result := c.Process(context.Background(), &model.ProcessRequest{
		Documents: []string{"http://not-s3/file.txt"},
	})

	require.Empty(t, result.DocumentChunks)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Error, "invalid s3 uri")
}

func TestProcessVideoTranscriptJoinedWithSpaces(t *testing.T) {
	transcripts := &fakeTranscripts{segments: map[string][]transcript.Segment{
		"vid1": {
			{Start: 0, Dur: 2, Text: "Welcome to the lecture."},
			{Start: 2, Dur: 3, Text: "Today we study vectors."},
		},
	}}
	c := newTestCoordinator(&fakeObjects{}, transcripts)

	result := c.Process(context.Background(), &model.ProcessRequest{
		YoutubeVideos: []string{"vid1"},
	})

	require.Len(t, result.YoutubeChunks, 1)
	require.Equal(t, "vid1", result.YoutubeChunks[0].VideoID)
	require.Len(t, result.YoutubeChunks[0].Chunks, 1)
	require.Equal(t, "Welcome to the lecture. Today we study vectors.", result.YoutubeChunks[0].Chunks[0])
}

func TestProcessVideoFailureRecorded(t *testing.T) {
	c := newTestCoordinator(&fakeObjects{}, &fakeTranscripts{})

	result := c.Process(context.Background(), &model.ProcessRequest{
		YoutubeVideos: []string{"ghost"},
	})

	require.Empty(t, result.YoutubeChunks)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "ghost", result.Errors[0].VideoID)
}

func TestProcessMixedBatchKeepsInputOrder(t *testing.T) {
	objects := &fakeObjects{content: map[string]string{
		"bkt/s/a.txt": "Alpha document text. It has two sentences.",
		"bkt/s/b.txt": "Beta document text. Also two sentences.",
	}}
	c := newTestCoordinator(objects, &fakeTranscripts{})

	result := c.Process(context.Background(), &model.ProcessRequest{
		Documents: []string{"s3://bkt/s/a.txt", "s3://bkt/s/b.txt"},
	})

	require.Len(t, result.DocumentChunks, 2)
	require.Equal(t, "s3://bkt/s/a.txt", result.DocumentChunks[0].S3URI)
	require.Equal(t, "s3://bkt/s/b.txt", result.DocumentChunks[1].S3URI)
}
