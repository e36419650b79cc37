// Package vespa implements the SearchIndex port against a Vespa cluster.
// Chunks are indexed once with both their content and embedding; the two
// retrieval signals are served by separate rank profiles (semantic and bm25).
package vespa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchIndex = (*Index)(nil)

// Index implements driven.SearchIndex using Vespa
type Index struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds Vespa connection configuration
type Config struct {
	// BaseURL is the Vespa endpoint (e.g., http://localhost:19071)
	BaseURL string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// NewIndex creates a new Vespa-backed SearchIndex
func NewIndex(cfg Config) *Index {
	return &Index{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// vespaDocument represents a chunk in Vespa format
type vespaDocument struct {
	Fields vespaFields `json:"fields"`
}

type vespaFields struct {
	ID          string            `json:"id"`
	DocumentID  string            `json:"document_id"`
	ChunkNumber int               `json:"chunk_number"`
	Content     string            `json:"content"`
	Embedding   []float32         `json:"embedding,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Index indexes chunks for a document
func (s *Index) Index(ctx context.Context, chunks []*domain.Chunk) error {
	for _, chunk := range chunks {
		if err := s.indexChunk(ctx, chunk); err != nil {
			return fmt.Errorf("failed to index chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

func (s *Index) indexChunk(ctx context.Context, chunk *domain.Chunk) error {
	metadata := make(map[string]string, len(chunk.Metadata))
	for key, value := range chunk.Metadata {
		metadata[key] = value.Text()
	}

	doc := vespaDocument{
		Fields: vespaFields{
			ID:          chunk.ID,
			DocumentID:  chunk.DocumentID,
			ChunkNumber: chunk.ChunkNumber,
			Content:     chunk.Content,
			Embedding:   chunk.Embedding,
			Metadata:    metadata,
		},
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	// Vespa document API: POST /document/v1/{namespace}/{doctype}/docid/{docid}
	url := fmt.Sprintf("%s/document/v1/doclens/chunk/docid/%s", s.baseURL, chunk.ID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("vespa index failed: %s - %s", resp.Status, string(respBody))
	}

	return nil
}

// VectorSearch returns the topK chunks nearest to the embedding
func (s *Index) VectorSearch(ctx context.Context, embedding []float32, filters domain.SearchFilters, topK int) ([]domain.RankedResult, error) {
	where := fmt.Sprintf("{targetHits:%d}nearestNeighbor(embedding, query_embedding)", topK)
	if filterClause := buildFilterClause(filters); filterClause != "" {
		where = where + " and " + filterClause
	}

	searchReq := map[string]interface{}{
		"yql":                          fmt.Sprintf("select * from chunk where %s", where),
		"hits":                         topK,
		"ranking.profile":              "semantic",
		"input.query(query_embedding)": embedding,
	}

	return s.search(ctx, searchReq)
}

// LexicalSearch returns the topK chunks best matching the query text
func (s *Index) LexicalSearch(ctx context.Context, query string, filters domain.SearchFilters, topK int) ([]domain.RankedResult, error) {
	where := "userInput(@query)"
	if filterClause := buildFilterClause(filters); filterClause != "" {
		where = where + " and " + filterClause
	}

	searchReq := map[string]interface{}{
		"yql":             fmt.Sprintf("select * from chunk where %s", where),
		"query":           query,
		"hits":            topK,
		"ranking.profile": "bm25",
	}

	return s.search(ctx, searchReq)
}

// buildFilterClause renders document id and metadata filters as YQL.
func buildFilterClause(filters domain.SearchFilters) string {
	var clauses []string

	if len(filters.DocumentIDs) > 0 {
		quoted := make([]string, len(filters.DocumentIDs))
		for i, id := range filters.DocumentIDs {
			quoted[i] = fmt.Sprintf("document_id contains %q", id)
		}
		clauses = append(clauses, "("+strings.Join(quoted, " or ")+")")
	}

	for _, key := range filters.Metadata.Keys() {
		clauses = append(clauses, fmt.Sprintf(
			"metadata contains sameElement(key contains %q, value contains %q)",
			key, filters.Metadata[key].Text(),
		))
	}

	return strings.Join(clauses, " and ")
}

type vespaSearchResponse struct {
	Root struct {
		Fields struct {
			TotalCount int64 `json:"totalCount"`
		} `json:"fields"`
		Children []struct {
			Relevance float64     `json:"relevance"`
			Fields    vespaFields `json:"fields"`
		} `json:"children"`
	} `json:"root"`
}

// search runs a query and converts hits into a dense 1-based ranked list.
func (s *Index) search(ctx context.Context, searchReq map[string]interface{}) ([]domain.RankedResult, error) {
	body, err := json.Marshal(searchReq)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/search/", s.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vespa search failed: %s - %s", resp.Status, string(respBody))
	}

	var searchResp vespaSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, err
	}

	results := make([]domain.RankedResult, 0, len(searchResp.Root.Children))
	for i, hit := range searchResp.Root.Children {
		score := hit.Relevance
		results = append(results, domain.RankedResult{
			ID:    hit.Fields.ID,
			Rank:  i + 1,
			Score: &score,
		})
	}

	return results, nil
}

// DeleteByDocument deletes all indexed chunks for a document
func (s *Index) DeleteByDocument(ctx context.Context, documentID string) error {
	// Vespa delete-by-selection API
	url := fmt.Sprintf("%s/document/v1/doclens/chunk/docid?selection=chunk.document_id=='%s'&cluster=doclens",
		s.baseURL, documentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("vespa delete failed: %s - %s", resp.Status, string(respBody))
	}

	return nil
}

// HealthCheck verifies the search index is available
func (s *Index) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/state/v1/health", nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("vespa health check failed: %s", resp.Status)
	}

	return nil
}
