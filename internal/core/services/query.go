package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driving"
)

// Ensure queryService implements QueryService
var _ driving.QueryService = (*queryService)(nil)

// DefaultAnswerTTL bounds how long a synthesized answer stays cached.
const DefaultAnswerTTL = 15 * time.Minute

// queryService is the query entry point: hybrid retrieval, answer synthesis,
// and an optional answer cache in front of both.
type queryService struct {
	retriever   *retriever
	synthesizer *synthesizer
	ingestion   driving.IngestionService
	answerCache driven.AnswerCache
	answerTTL   time.Duration
	logger      *slog.Logger
}

// QueryConfig holds dependencies for the query service.
type QueryConfig struct {
	Embedder    driven.EmbeddingService
	SearchIndex driven.SearchIndex
	ChunkStore  driven.ChunkStore
	Generator   driven.GenerationService
	Ingestion   driving.IngestionService
	AnswerCache driven.AnswerCache // optional
	AnswerTTL   time.Duration
	Logger      *slog.Logger
}

// NewQueryService creates a new QueryService.
func NewQueryService(cfg QueryConfig) driving.QueryService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ttl := cfg.AnswerTTL
	if ttl <= 0 {
		ttl = DefaultAnswerTTL
	}

	return &queryService{
		retriever:   newRetriever(cfg.Embedder, cfg.SearchIndex, cfg.ChunkStore, logger),
		synthesizer: newSynthesizer(cfg.Generator, logger),
		ingestion:   cfg.Ingestion,
		answerCache: cfg.AnswerCache,
		answerTTL:   ttl,
		logger:      logger,
	}
}

// Answer retrieves context for the query and synthesizes a structured answer.
func (s *queryService) Answer(ctx context.Context, query string, documentID string, filters domain.Metadata) (*domain.Answer, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", domain.ErrInvalidInput)
	}

	s.logger.Info("handling query", "query", query, "document_id", documentID)

	cacheKey := answerCacheKey(query, documentID, filters)
	if s.answerCache != nil {
		answer, hit, err := s.answerCache.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("answer cache read failed", "error", err)
		} else if hit {
			s.logger.Info("answer served from cache", "query", query)
			return answer, nil
		}
	}

	searchFilters := domain.SearchFilters{Metadata: filters}
	if documentID != "" {
		searchFilters.DocumentIDs = []string{documentID}
	}

	chunks, err := s.retriever.Retrieve(ctx, query, searchFilters, domain.DefaultRetrievalOptions())
	if err != nil {
		return nil, err
	}

	answer, err := s.synthesizer.Synthesize(ctx, query, chunks)
	if err != nil {
		return nil, err
	}

	if s.answerCache != nil {
		if err := s.answerCache.Set(ctx, cacheKey, answer, s.answerTTL); err != nil {
			s.logger.Warn("answer cache write failed", "error", err)
		}
	}

	s.logger.Info("query completed", "query", query, "citations", len(answer.Citations))
	return answer, nil
}

// RunBatch ingests the document at sourceURL and answers each question in
// order, scoped to that document.
func (s *queryService) RunBatch(ctx context.Context, sourceURL string, questions []string) ([]*domain.Answer, error) {
	if s.ingestion == nil {
		return nil, fmt.Errorf("ingestion not configured: %w", domain.ErrServiceUnavailable)
	}

	doc, err := s.ingestion.Ingest(ctx, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("batch ingest failed: %w", err)
	}

	answers := make([]*domain.Answer, 0, len(questions))
	for _, question := range questions {
		answer, err := s.Answer(ctx, question, doc.ID, nil)
		if err != nil {
			return nil, fmt.Errorf("batch question %q failed: %w", question, err)
		}
		answers = append(answers, answer)
	}

	return answers, nil
}

// answerCacheKey derives a stable key from the query, document scope, and the
// canonical metadata fingerprint.
func answerCacheKey(query, documentID string, filters domain.Metadata) string {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(documentID))
	h.Write([]byte{0})
	h.Write([]byte(filters.Fingerprint()))
	return hex.EncodeToString(h.Sum(nil))
}
