package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// stubIngestion is a scriptable IngestionService for handler tests
type stubIngestion struct {
	doc        *domain.Document
	ingestErr  error
	taskID     string
	enqueueErr error
}

func (s *stubIngestion) Ingest(ctx context.Context, sourceURL string, metadata domain.Metadata) (*domain.Document, error) {
	return s.doc, s.ingestErr
}

func (s *stubIngestion) EnqueueIngest(ctx context.Context, sourceURL string, metadata domain.Metadata) (string, error) {
	return s.taskID, s.enqueueErr
}

func (s *stubIngestion) Get(ctx context.Context, id string) (*domain.Document, error) {
	if s.doc != nil && s.doc.ID == id {
		return s.doc, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubIngestion) Delete(ctx context.Context, id string) error {
	if s.doc != nil && s.doc.ID == id {
		s.doc = nil
		return nil
	}
	return domain.ErrNotFound
}

// stubQuery is a scriptable QueryService for handler tests
type stubQuery struct {
	answer *domain.Answer
	err    error
}

func (s *stubQuery) Answer(ctx context.Context, query, documentID string, filters domain.Metadata) (*domain.Answer, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", domain.ErrInvalidInput)
	}
	return s.answer, s.err
}

func (s *stubQuery) RunBatch(ctx context.Context, sourceURL string, questions []string) ([]*domain.Answer, error) {
	if s.err != nil {
		return nil, s.err
	}
	answers := make([]*domain.Answer, len(questions))
	for i := range questions {
		answers[i] = s.answer
	}
	return answers, nil
}

const testJWTSecret = "test-secret"

func testServer(t *testing.T, ingestion *stubIngestion, query *stubQuery) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.JWTSecret = testJWTSecret
	return NewServer(cfg, ingestion, query, nil, nil)
}

func testToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "tester",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t, &stubIngestion{}, &stubQuery{})

	rec := doRequest(t, s, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestIngestRequiresAuth(t *testing.T) {
	s := testServer(t, &stubIngestion{}, &stubQuery{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/documents", "", IngestRequest{SourceURL: "https://example.com/a.txt"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestIngestRejectsBadToken(t *testing.T) {
	s := testServer(t, &stubIngestion{}, &stubQuery{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/documents", "not-a-jwt", IngestRequest{SourceURL: "https://example.com/a.txt"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestIngestDocument(t *testing.T) {
	ingestion := &stubIngestion{
		doc: &domain.Document{ID: "doc-1", Status: domain.StatusIndexed},
	}
	s := testServer(t, ingestion, &stubQuery{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/documents", testToken(t), IngestRequest{
		SourceURL: "https://example.com/policy.pdf",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var doc domain.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ID != "doc-1" || doc.Status != domain.StatusIndexed {
		t.Errorf("doc = %+v", doc)
	}
}

func TestIngestDocumentAsync(t *testing.T) {
	s := testServer(t, &stubIngestion{taskID: "task-9"}, &stubQuery{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/documents", testToken(t), IngestRequest{
		SourceURL: "https://example.com/policy.pdf",
		Async:     true,
	})

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp IngestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TaskID != "task-9" || resp.Status != "queued" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestIngestMissingSourceURL(t *testing.T) {
	s := testServer(t, &stubIngestion{}, &stubQuery{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/documents", testToken(t), IngestRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestIngestFetchFailure(t *testing.T) {
	ingestion := &stubIngestion{
		ingestErr: &domain.FetchError{URL: "https://example.com/gone", Err: errors.New("404")},
	}
	s := testServer(t, ingestion, &stubQuery{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/documents", testToken(t), IngestRequest{
		SourceURL: "https://example.com/gone",
	})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestIngestPipelineFailureReturnsFailedDocument(t *testing.T) {
	failed := &domain.Document{ID: "doc-1", Status: domain.StatusFailed, Error: "parse failed"}
	ingestion := &stubIngestion{
		doc:       failed,
		ingestErr: &domain.PipelineError{DocumentID: "doc-1", Stage: domain.StatusParsing, Err: errors.New("parse failed")},
	}
	s := testServer(t, ingestion, &stubQuery{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/documents", testToken(t), IngestRequest{
		SourceURL: "https://example.com/bad.pdf",
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var doc domain.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Status != domain.StatusFailed {
		t.Errorf("doc status = %s", doc.Status)
	}
}

func TestGetDocument(t *testing.T) {
	ingestion := &stubIngestion{
		doc: &domain.Document{ID: "doc-1", Status: domain.StatusIndexed},
	}
	s := testServer(t, ingestion, &stubQuery{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/documents/doc-1", testToken(t), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/documents/missing", testToken(t), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status for missing = %d, want 404", rec.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	ingestion := &stubIngestion{
		doc: &domain.Document{ID: "doc-1", Status: domain.StatusIndexed},
	}
	s := testServer(t, ingestion, &stubQuery{})

	rec := doRequest(t, s, http.MethodDelete, "/api/v1/documents/doc-1", testToken(t), nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/documents/doc-1", testToken(t), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", rec.Code)
	}
}

func TestQueryEndpoint(t *testing.T) {
	query := &stubQuery{
		answer: &domain.Answer{
			Answer:          "Yes, it is covered.",
			LogicEvaluation: "Policy likely provides coverage based on answer.",
		},
	}
	s := testServer(t, &stubIngestion{}, query)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/query", testToken(t), QueryRequest{
		Query: "Is knee surgery covered?",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var answer domain.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if answer.Answer != "Yes, it is covered." {
		t.Errorf("answer = %q", answer.Answer)
	}
}

func TestQueryEmptyQuery(t *testing.T) {
	s := testServer(t, &stubIngestion{}, &stubQuery{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/query", testToken(t), QueryRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQueryGenerationFormatError(t *testing.T) {
	query := &stubQuery{
		err: &domain.GenerationFormatError{Err: errors.New("not json")},
	}
	s := testServer(t, &stubIngestion{}, query)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/query", testToken(t), QueryRequest{Query: "q"})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestBatchQueryEndpoint(t *testing.T) {
	query := &stubQuery{answer: &domain.Answer{Answer: "a"}}
	s := testServer(t, &stubIngestion{}, query)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/query/batch", testToken(t), BatchQueryRequest{
		Documents: "https://example.com/policy.pdf",
		Questions: []string{"q1", "q2", "q3"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp BatchQueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Answers) != 3 {
		t.Errorf("answers = %d, want 3", len(resp.Answers))
	}
}

func TestBatchQueryValidation(t *testing.T) {
	s := testServer(t, &stubIngestion{}, &stubQuery{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/query/batch", testToken(t), BatchQueryRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("service-key-123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	cfg := DefaultConfig()
	cfg.APIKeyHash = string(hash)
	s := NewServer(cfg, &stubIngestion{doc: &domain.Document{ID: "doc-1"}}, &stubQuery{}, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/documents/doc-1", "service-key-123", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status with api key = %d, want 200", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/documents/doc-1", "wrong-key", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status with wrong key = %d, want 401", rec.Code)
	}
}
