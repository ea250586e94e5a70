package model

// Chunk is one positional slice of a source document's text. ChunkID is the
// ordinal within its document, not a global identifier.
type Chunk struct {
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
}

// Document groups the chunks of one ingested source. Exactly one of URI or
// VideoID is set depending on where the text came from.
type Document struct {
	URI     string  `json:"uri,omitempty"`
	VideoID string  `json:"video_id,omitempty"`
	Chunks  []Chunk `json:"chunks"`
}

// SourceName returns whichever locator identifies the document.
func (d *Document) SourceName() string {
	if d.URI != "" {
		return d.URI
	}
	return d.VideoID
}

// StoreRequest is the vector store service's ingestion payload. Every chunk in
// every document lands in the (SessionID, Tag) partition.
type StoreRequest struct {
	Documents []Document `json:"documents"`
	Tag       string     `json:"tag"`
	SessionID string     `json:"session_id"`
}

// SearchRequest asks the vector store for the TopK records nearest to the
// query's embedding within one (SessionID, Tag) partition.
type SearchRequest struct {
	Query     string `json:"query"`
	Tag       string `json:"tag"`
	SessionID string `json:"session_id"`
	TopK      int    `json:"top_k"`
}

// SearchResult is one stored record returned by a similarity search, ordered
// by ascending vector distance.
type SearchResult struct {
	ID        int64  `json:"id" db:"id"`
	Content   string `json:"content" db:"content"`
	ChunkID   int    `json:"chunk_id" db:"chunk_id"`
	Tag       string `json:"tag" db:"tag"`
	URI       string `json:"uri" db:"uri"`
	VideoID   string `json:"video_id" db:"video_id"`
	SessionID string `json:"session_id" db:"session_id"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

type TotalChunksResponse struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// ProcessRequest names the items the extraction service should turn into
// chunks: object store URIs and video identifiers.
type ProcessRequest struct {
	Documents     []string `json:"documents"`
	YoutubeVideos []string `json:"youtube_videos"`
}

type DocumentChunks struct {
	S3URI  string   `json:"s3_uri"`
	Chunks []string `json:"chunks"`
}

type VideoChunks struct {
	VideoID string   `json:"video_id"`
	Chunks  []string `json:"chunks"`
}

// ProcessError records a single failed item. Document or VideoID identifies
// the originating locator; the other field stays empty.
type ProcessError struct {
	Document string `json:"document,omitempty"`
	VideoID  string `json:"video_id,omitempty"`
	Error    string `json:"error"`
}

// ProcessResult is the extraction service's response. A failed item appears in
// Errors and in neither chunk list; failures never abort the batch.
type ProcessResult struct {
	DocumentChunks []DocumentChunks `json:"document_chunks"`
	YoutubeChunks  []VideoChunks    `json:"youtube_chunks"`
	Errors         []ProcessError   `json:"errors"`
}

// EmbedRequest is the embedding service's payload. The response body is the
// bare JSON float array.
type EmbedRequest struct {
	Inputs string `json:"inputs"`
}

// GenerateRequest is the LLM service's payload.
type GenerateRequest struct {
	Prompt      string  `json:"prompt"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type GenerateResponse struct {
	GeneratedText string `json:"generated_text"`
}
