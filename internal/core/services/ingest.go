package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/doclens-labs/doclens-core/internal/chunker"
	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driving"
)

// Ensure ingestionService implements IngestionService
var _ driving.IngestionService = (*ingestionService)(nil)

// ingestionService drives a document through the staged pipeline:
// fetch → parse → chunk → embed → persist → index.
// Each stage persists the document status before proceeding, so a crash
// mid-pipeline leaves an inspectable, unambiguous state.
type ingestionService struct {
	fetcher       driven.Fetcher
	extractors    driven.ExtractorRegistry
	chunker       *chunker.Chunker
	embedder      driven.EmbeddingService
	documentStore driven.DocumentStore
	chunkStore    driven.ChunkStore
	searchIndex   driven.SearchIndex
	taskQueue     driven.TaskQueue
	logger        *slog.Logger
}

// IngestionConfig holds dependencies for the ingestion service.
type IngestionConfig struct {
	Fetcher       driven.Fetcher
	Extractors    driven.ExtractorRegistry
	Chunker       *chunker.Chunker
	Embedder      driven.EmbeddingService
	DocumentStore driven.DocumentStore
	ChunkStore    driven.ChunkStore
	SearchIndex   driven.SearchIndex
	TaskQueue     driven.TaskQueue // optional; enables EnqueueIngest
	Logger        *slog.Logger
}

// NewIngestionService creates a new IngestionService.
func NewIngestionService(cfg IngestionConfig) driving.IngestionService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ingestionService{
		fetcher:       cfg.Fetcher,
		extractors:    cfg.Extractors,
		chunker:       cfg.Chunker,
		embedder:      cfg.Embedder,
		documentStore: cfg.DocumentStore,
		chunkStore:    cfg.ChunkStore,
		searchIndex:   cfg.SearchIndex,
		taskQueue:     cfg.TaskQueue,
		logger:        logger,
	}
}

// Ingest runs the full pipeline synchronously.
func (s *ingestionService) Ingest(ctx context.Context, sourceURL string, metadata domain.Metadata) (*domain.Document, error) {
	s.logger.Info("starting ingest", "source_url", sourceURL)

	// Fetch happens before any document exists; fetch failures propagate
	// directly and leave nothing behind to mark failed.
	data, contentType, err := s.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &domain.Document{
		ID:          uuid.NewString(),
		SourceURL:   sourceURL,
		Filename:    filenameOrDefault(sourceURL, now),
		ContentType: contentType,
		Metadata:    metadata,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.documentStore.Create(ctx, doc); err != nil {
		return nil, &domain.PipelineError{DocumentID: doc.ID, Stage: domain.StatusUploaded, Err: err}
	}

	// Parse
	if err := s.transition(ctx, doc, domain.StatusParsing); err != nil {
		return doc, err
	}
	text, err := s.extractText(ctx, data, contentType)
	if err != nil {
		return doc, s.fail(ctx, doc, domain.StatusParsing, err)
	}
	s.logger.Info("document parsed", "document_id", doc.ID, "text_length", len(text))

	// Chunk. Zero chunks is valid: the document indexes empty and later
	// yields empty retrieval results.
	if err := s.transition(ctx, doc, domain.StatusChunking); err != nil {
		return doc, err
	}
	pieces := s.chunker.Split(text)
	s.logger.Info("document chunked", "document_id", doc.ID, "chunks", len(pieces))

	// Embed sequentially in extraction order; chunk numbers are assigned by
	// extraction position and survive skips, so they stay reproducible.
	if err := s.transition(ctx, doc, domain.StatusEmbedding); err != nil {
		return doc, err
	}
	chunks := s.embedChunks(ctx, doc, pieces)

	if err := s.chunkStore.SaveBatch(ctx, chunks); err != nil {
		return doc, s.fail(ctx, doc, domain.StatusEmbedding, fmt.Errorf("failed to save chunks: %w", err))
	}
	if len(chunks) > 0 {
		if err := s.searchIndex.Index(ctx, chunks); err != nil {
			return doc, s.fail(ctx, doc, domain.StatusEmbedding, fmt.Errorf("failed to index chunks: %w", err))
		}
	}

	if err := s.transition(ctx, doc, domain.StatusIndexed); err != nil {
		return doc, err
	}

	s.logger.Info("ingest completed",
		"document_id", doc.ID,
		"chunks_extracted", len(pieces),
		"chunks_indexed", len(chunks),
	)

	return doc, nil
}

// extractText selects an extractor for the content type and runs it.
func (s *ingestionService) extractText(ctx context.Context, data []byte, contentType string) (string, error) {
	extractor := s.extractors.Get(contentType)
	if extractor == nil {
		return "", &domain.ParseError{
			ContentType: contentType,
			Err:         fmt.Errorf("no extractor registered"),
		}
	}
	return extractor.Extract(ctx, data, contentType)
}

// embedChunks embeds each extracted piece in order. A failed embedding drops
// that chunk with a log line; it never aborts the document.
func (s *ingestionService) embedChunks(ctx context.Context, doc *domain.Document, pieces []string) []*domain.Chunk {
	now := time.Now()
	chunks := make([]*domain.Chunk, 0, len(pieces))

	for i, content := range pieces {
		embeddings, err := s.embedder.Embed(ctx, []string{content})
		if err != nil || len(embeddings) == 0 {
			s.logger.Warn("skipping chunk after failed embedding",
				"document_id", doc.ID,
				"chunk_number", i+1,
				"error", err,
			)
			continue
		}

		chunks = append(chunks, &domain.Chunk{
			ID:          uuid.NewString(),
			DocumentID:  doc.ID,
			ChunkNumber: i + 1,
			Content:     content,
			Embedding:   embeddings[0],
			CreatedAt:   now,
		})
	}

	return chunks
}

// transition advances and persists the document status.
func (s *ingestionService) transition(ctx context.Context, doc *domain.Document, next domain.DocumentStatus) error {
	if !doc.Status.CanTransition(next) {
		return s.fail(ctx, doc, doc.Status,
			fmt.Errorf("illegal status transition %s -> %s", doc.Status, next))
	}

	doc.Status = next
	doc.UpdatedAt = time.Now()
	if err := s.documentStore.UpdateStatus(ctx, doc.ID, next, ""); err != nil {
		return s.fail(ctx, doc, next, fmt.Errorf("failed to persist status: %w", err))
	}
	return nil
}

// fail marks the document failed, persists it, and wraps the cause.
func (s *ingestionService) fail(ctx context.Context, doc *domain.Document, stage domain.DocumentStatus, cause error) error {
	s.logger.Error("ingest failed", "document_id", doc.ID, "stage", stage, "error", cause)

	doc.Status = domain.StatusFailed
	doc.Error = cause.Error()
	doc.UpdatedAt = time.Now()
	if err := s.documentStore.UpdateStatus(ctx, doc.ID, domain.StatusFailed, cause.Error()); err != nil {
		s.logger.Error("failed to persist failed status", "document_id", doc.ID, "error", err)
	}

	return &domain.PipelineError{DocumentID: doc.ID, Stage: stage, Err: cause}
}

// EnqueueIngest queues an ingestion task for a worker.
func (s *ingestionService) EnqueueIngest(ctx context.Context, sourceURL string, metadata domain.Metadata) (string, error) {
	if s.taskQueue == nil {
		return "", fmt.Errorf("task queue not configured: %w", domain.ErrServiceUnavailable)
	}

	task := &domain.Task{
		ID:         uuid.NewString(),
		SourceURL:  sourceURL,
		Metadata:   metadata,
		EnqueuedAt: time.Now(),
	}
	if err := s.taskQueue.Enqueue(ctx, task); err != nil {
		return "", fmt.Errorf("failed to enqueue ingest: %w", err)
	}

	s.logger.Info("ingest enqueued", "task_id", task.ID, "source_url", sourceURL)
	return task.ID, nil
}

// Get retrieves a document by ID.
func (s *ingestionService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.documentStore.Get(ctx, id)
}

// Delete removes a document, its persisted chunks and its index entries.
// Index and chunk deletion run before the document row goes away, so a
// partial failure leaves the document visible for a retried delete.
func (s *ingestionService) Delete(ctx context.Context, id string) error {
	if _, err := s.documentStore.Get(ctx, id); err != nil {
		return err
	}

	if err := s.searchIndex.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete index entries: %w", err)
	}
	if err := s.chunkStore.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if err := s.documentStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.Info("document deleted", "document_id", id)
	return nil
}

// filenameOrDefault extracts the filename from the URL, falling back to a
// timestamped placeholder like the upload path uses.
func filenameOrDefault(sourceURL string, now time.Time) string {
	if parsed, err := url.Parse(sourceURL); err == nil {
		if name := path.Base(parsed.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return fmt.Sprintf("document_%d", now.UnixMilli())
}
