package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/doclens-labs/doclens-core/internal/chunker"
	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven/mocks"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driving"
	"github.com/doclens-labs/doclens-core/internal/extract"
)

type queryFixture struct {
	service     driving.QueryService
	embedder    *mocks.MockEmbeddingService
	searchIndex *mocks.MockSearchIndex
	chunkStore  *mocks.MockChunkStore
	generator   *mocks.MockGenerationService
	fetcher     *mocks.MockFetcher
	cache       *mocks.MockAnswerCache
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()

	f := &queryFixture{
		embedder:    mocks.NewMockEmbeddingService(),
		searchIndex: mocks.NewMockSearchIndex(),
		chunkStore:  mocks.NewMockChunkStore(),
		generator:   mocks.NewMockGenerationService(),
		fetcher:     mocks.NewMockFetcher(),
		cache:       mocks.NewMockAnswerCache(),
	}

	splitter, _ := chunker.New(chunker.Config{Size: 50, Overlap: 10})
	ingestion := NewIngestionService(IngestionConfig{
		Fetcher:       f.fetcher,
		Extractors:    extract.DefaultRegistry("", time.Second),
		Chunker:       splitter,
		Embedder:      f.embedder,
		DocumentStore: mocks.NewMockDocumentStore(),
		ChunkStore:    f.chunkStore,
		SearchIndex:   f.searchIndex,
	})

	f.service = NewQueryService(QueryConfig{
		Embedder:    f.embedder,
		SearchIndex: f.searchIndex,
		ChunkStore:  f.chunkStore,
		Generator:   f.generator,
		Ingestion:   ingestion,
		AnswerCache: f.cache,
	})
	return f
}

func (f *queryFixture) seedChunks(t *testing.T, chunks ...*domain.Chunk) {
	t.Helper()
	if err := f.chunkStore.SaveBatch(context.Background(), chunks); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
}

const validGeneration = `{"answer":"Yes, it is covered.","reasoning":"r","conditions":{},"citations":[]}`

func TestAnswerNoResultsSkipsGeneration(t *testing.T) {
	f := newQueryFixture(t)

	answer, err := f.service.Answer(context.Background(), "what is covered?", "", nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if answer.Answer != domain.NoRelevantInformation().Answer {
		t.Errorf("answer = %q", answer.Answer)
	}
	if f.generator.Calls() != 0 {
		t.Errorf("generator invoked %d times, want 0", f.generator.Calls())
	}
}

func TestAnswerFusedOrderIsAuthoritative(t *testing.T) {
	f := newQueryFixture(t)
	f.generator.SetResponse(validGeneration)
	f.seedChunks(t,
		testChunk("c1", "doc-A", "PASSAGE-ONE", nil),
		testChunk("c2", "doc-A", "PASSAGE-TWO", nil),
		testChunk("c3", "doc-A", "PASSAGE-THREE", nil),
	)

	// c1 appears in both signals, so fusion puts it first even though it
	// never tops either individual list.
	f.searchIndex.SetVectorResults([]domain.RankedResult{
		{ID: "c2", Rank: 1}, {ID: "c1", Rank: 2},
	})
	f.searchIndex.SetLexicalResults([]domain.RankedResult{
		{ID: "c3", Rank: 1}, {ID: "c1", Rank: 2},
	})

	if _, err := f.service.Answer(context.Background(), "query", "", nil); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	prompt := f.generator.LastPrompt()
	one := strings.Index(prompt, "PASSAGE-ONE")
	two := strings.Index(prompt, "PASSAGE-TWO")
	three := strings.Index(prompt, "PASSAGE-THREE")
	if one == -1 || two == -1 || three == -1 {
		t.Fatalf("prompt missing passages:\n%s", prompt)
	}
	if !(one < two && one < three) {
		t.Errorf("doubly-ranked passage not first: one=%d two=%d three=%d", one, two, three)
	}
}

func TestAnswerDegradesWhenVectorSignalFails(t *testing.T) {
	f := newQueryFixture(t)
	f.generator.SetResponse(validGeneration)
	f.seedChunks(t, testChunk("c1", "doc-A", "lexical passage", nil))

	f.searchIndex.SetFailVector(true)
	f.searchIndex.SetLexicalResults([]domain.RankedResult{{ID: "c1", Rank: 1}})

	answer, err := f.service.Answer(context.Background(), "query", "", nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Answer != "Yes, it is covered." {
		t.Errorf("answer = %q", answer.Answer)
	}
}

func TestAnswerDegradesWhenQueryEmbeddingFails(t *testing.T) {
	f := newQueryFixture(t)
	f.generator.SetResponse(validGeneration)
	f.seedChunks(t, testChunk("c1", "doc-A", "lexical passage", nil))

	f.embedder.SetFailures(1)
	f.searchIndex.SetVectorResults([]domain.RankedResult{{ID: "c1", Rank: 1}})
	f.searchIndex.SetLexicalResults([]domain.RankedResult{{ID: "c1", Rank: 1}})

	answer, err := f.service.Answer(context.Background(), "query", "", nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Answer != "Yes, it is covered." {
		t.Errorf("answer = %q", answer.Answer)
	}
}

func TestAnswerBothSignalsDownYieldsNoInformation(t *testing.T) {
	f := newQueryFixture(t)
	f.searchIndex.SetFailVector(true)
	f.searchIndex.SetFailLexical(true)

	answer, err := f.service.Answer(context.Background(), "query", "", nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Answer != domain.NoRelevantInformation().Answer {
		t.Errorf("answer = %q", answer.Answer)
	}
	if f.generator.Calls() != 0 {
		t.Error("generator should not run with no context")
	}
}

func TestAnswerServedFromCache(t *testing.T) {
	f := newQueryFixture(t)
	f.generator.SetResponse(validGeneration)
	f.seedChunks(t, testChunk("c1", "doc-A", "passage", nil))
	f.searchIndex.SetLexicalResults([]domain.RankedResult{{ID: "c1", Rank: 1}})

	if _, err := f.service.Answer(context.Background(), "query", "", nil); err != nil {
		t.Fatalf("first Answer: %v", err)
	}
	if _, err := f.service.Answer(context.Background(), "query", "", nil); err != nil {
		t.Fatalf("second Answer: %v", err)
	}

	if f.generator.Calls() != 1 {
		t.Errorf("generator invoked %d times, want 1 (second call cached)", f.generator.Calls())
	}
	if f.cache.Hits() != 1 {
		t.Errorf("cache hits = %d, want 1", f.cache.Hits())
	}
}

func TestAnswerCacheKeyedByScope(t *testing.T) {
	f := newQueryFixture(t)
	f.generator.SetResponse(validGeneration)
	f.seedChunks(t, testChunk("c1", "doc-A", "passage", nil))
	f.searchIndex.SetLexicalResults([]domain.RankedResult{{ID: "c1", Rank: 1}})

	if _, err := f.service.Answer(context.Background(), "query", "doc-A", nil); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if _, err := f.service.Answer(context.Background(), "query", "doc-B", nil); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if f.generator.Calls() != 2 {
		t.Errorf("generator invoked %d times, want 2 (different scopes)", f.generator.Calls())
	}
}

func TestAnswerEmptyQuery(t *testing.T) {
	f := newQueryFixture(t)

	_, err := f.service.Answer(context.Background(), "", "", nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRunBatch(t *testing.T) {
	f := newQueryFixture(t)
	f.generator.SetResponse(validGeneration)
	f.fetcher.AddResponse("https://example.com/policy.txt", []byte(testText), "text/plain")

	// Retrieval finds nothing for these questions; the point is that each
	// question yields an answer, in order, after the ingest completes.
	answers, err := f.service.RunBatch(context.Background(), "https://example.com/policy.txt", []string{
		"Is knee surgery covered?",
		"What is the waiting period?",
	})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	if len(answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(answers))
	}
}

func TestRunBatchFetchFailure(t *testing.T) {
	f := newQueryFixture(t)
	f.fetcher.SetFailAll(true)

	_, err := f.service.RunBatch(context.Background(), "https://example.com/gone.txt", []string{"q"})

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("expected FetchError, got %v", err)
	}
}
