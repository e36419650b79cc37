package domain

import "time"

// DocumentStatus tracks a document's progress through the ingestion pipeline.
// Statuses only advance forward along the pipeline order, except for the
// transition to failed, which is reachable from any non-terminal status.
type DocumentStatus string

const (
	StatusUploaded  DocumentStatus = "uploaded"
	StatusParsing   DocumentStatus = "parsing"
	StatusChunking  DocumentStatus = "chunking"
	StatusEmbedding DocumentStatus = "embedding"
	StatusIndexed   DocumentStatus = "indexed"
	StatusFailed    DocumentStatus = "failed"
)

// statusOrder defines the forward progression of the pipeline.
var statusOrder = map[DocumentStatus]int{
	StatusUploaded:  0,
	StatusParsing:   1,
	StatusChunking:  2,
	StatusEmbedding: 3,
	StatusIndexed:   4,
}

// Terminal reports whether no further transitions are allowed.
func (s DocumentStatus) Terminal() bool {
	return s == StatusIndexed || s == StatusFailed
}

// CanTransition reports whether a transition from s to next is legal.
// The pipeline advances one stage at a time; skipping stages is not allowed.
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	from, ok := statusOrder[s]
	to, ok2 := statusOrder[next]
	return ok && ok2 && to == from+1
}

// Document represents an ingested document and its pipeline state
type Document struct {
	ID          string         `json:"id"`
	SourceURL   string         `json:"source_url"`
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	Metadata    Metadata       `json:"metadata,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"` // failure detail when Status == failed
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Chunk represents a retrievable slice of a document's extracted text.
// ChunkNumber is 1-based in extraction order and is never reassigned,
// even when neighbouring chunks are dropped for failed embeddings.
type Chunk struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"document_id"`
	ChunkNumber  int       `json:"chunk_number"`
	Content      string    `json:"content"`
	PageNumber   *int      `json:"page_number,omitempty"`
	SectionTitle string    `json:"section_title,omitempty"`
	Embedding    []float32 `json:"embedding,omitempty"`
	Metadata     Metadata  `json:"metadata,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
