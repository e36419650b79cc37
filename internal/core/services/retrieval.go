package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
	"github.com/doclens-labs/doclens-core/internal/fusion"
)

// retriever runs the hybrid retrieval pass: a semantic signal over query
// embeddings and a lexical signal over the query text, fused with reciprocal
// rank fusion. A failed signal degrades to an empty list instead of failing
// the whole retrieval; results only disappear entirely when every signal is
// down.
type retriever struct {
	embedder    driven.EmbeddingService
	searchIndex driven.SearchIndex
	chunkStore  driven.ChunkStore
	logger      *slog.Logger
}

func newRetriever(embedder driven.EmbeddingService, searchIndex driven.SearchIndex, chunkStore driven.ChunkStore, logger *slog.Logger) *retriever {
	return &retriever{
		embedder:    embedder,
		searchIndex: searchIndex,
		chunkStore:  chunkStore,
		logger:      logger,
	}
}

// Retrieve returns the fused top chunks for the query, ordered by fused score.
func (r *retriever) Retrieve(ctx context.Context, query string, filters domain.SearchFilters, opts domain.RetrievalOptions) ([]*domain.Chunk, error) {
	semantic, lexical := r.gatherSignals(ctx, query, filters, opts.TopPerSignal)

	fused := fusion.Fuse([][]domain.RankedResult{semantic, lexical}, fusion.DefaultK)
	if len(fused) > opts.TopFused {
		fused = fused[:opts.TopFused]
	}
	if len(fused) == 0 {
		return nil, nil
	}

	ids := make([]string, len(fused))
	for i, result := range fused {
		ids[i] = result.ID
	}

	chunks, err := r.chunkStore.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load fused chunks: %w", err)
	}

	// The store returns chunks in no particular order; the fused ranking is
	// authoritative. Ids missing from the store (already deleted) are skipped.
	byID := make(map[string]*domain.Chunk, len(chunks))
	for _, chunk := range chunks {
		byID[chunk.ID] = chunk
	}

	ordered := make([]*domain.Chunk, 0, len(fused))
	for _, result := range fused {
		if chunk, ok := byID[result.ID]; ok {
			ordered = append(ordered, chunk)
		}
	}

	return ordered, nil
}

// gatherSignals runs both retrieval signals concurrently.
func (r *retriever) gatherSignals(ctx context.Context, query string, filters domain.SearchFilters, topK int) (semantic, lexical []domain.RankedResult) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		semantic = r.semanticSignal(ctx, query, filters, topK)
	}()
	go func() {
		defer wg.Done()
		lexical = r.lexicalSignal(ctx, query, filters, topK)
	}()

	wg.Wait()
	return semantic, lexical
}

// semanticSignal embeds the query and searches by vector. Embedding or search
// failures degrade to an empty list.
func (r *retriever) semanticSignal(ctx context.Context, query string, filters domain.SearchFilters, topK int) []domain.RankedResult {
	embedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, skipping semantic signal", "error", err)
		return nil
	}

	results, err := r.searchIndex.VectorSearch(ctx, embedding, filters, topK)
	if err != nil {
		r.logger.Warn("vector search failed, skipping semantic signal", "error", err)
		return nil
	}
	return results
}

// lexicalSignal searches by query text. Failures degrade to an empty list.
func (r *retriever) lexicalSignal(ctx context.Context, query string, filters domain.SearchFilters, topK int) []domain.RankedResult {
	results, err := r.searchIndex.LexicalSearch(ctx, query, filters, topK)
	if err != nil {
		r.logger.Warn("lexical search failed, skipping lexical signal", "error", err)
		return nil
	}
	return results
}
