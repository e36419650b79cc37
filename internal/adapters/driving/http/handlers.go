package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	ready := true

	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			checks["postgres"] = err.Error()
			ready = false
		} else {
			checks["postgres"] = "ok"
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			checks["redis"] = err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"status": map[bool]string{true: "ready", false: "not ready"}[ready],
		"checks": checks,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Document endpoints

// IngestRequest is the body for POST /api/v1/documents
type IngestRequest struct {
	SourceURL string          `json:"source_url"`
	Metadata  domain.Metadata `json:"metadata,omitempty"`

	// Async enqueues the ingestion instead of running it inline
	Async bool `json:"async,omitempty"`
}

// IngestResponse is returned for async ingestion requests
type IngestResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceURL == "" {
		writeError(w, http.StatusBadRequest, "source_url is required")
		return
	}

	if req.Async {
		taskID, err := s.ingestionService.EnqueueIngest(r.Context(), req.SourceURL, req.Metadata)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, IngestResponse{TaskID: taskID, Status: "queued"})
		return
	}

	doc, err := s.ingestionService.Ingest(r.Context(), req.SourceURL, req.Metadata)
	if err != nil {
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			writeError(w, http.StatusBadGateway, "failed to fetch source: "+fetchErr.Error())
			return
		}

		// Pipeline failures still carry a document with a failed status
		var pipelineErr *domain.PipelineError
		if errors.As(err, &pipelineErr) && doc != nil {
			writeJSON(w, http.StatusUnprocessableEntity, doc)
			return
		}

		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	doc, err := s.ingestionService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.ingestionService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Query endpoints

// QueryRequest is the body for POST /api/v1/query
type QueryRequest struct {
	Query      string          `json:"query"`
	DocumentID string          `json:"document_id,omitempty"`
	Filters    domain.Metadata `json:"filters,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := s.queryService.Answer(r.Context(), req.Query, req.DocumentID, req.Filters)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var formatErr *domain.GenerationFormatError
		if errors.As(err, &formatErr) {
			writeError(w, http.StatusBadGateway, "generation returned malformed output, please retry")
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// BatchQueryRequest is the body for POST /api/v1/query/batch
type BatchQueryRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// BatchQueryResponse carries one answer per question, in order
type BatchQueryResponse struct {
	Answers []*domain.Answer `json:"answers"`
}

func (s *Server) handleBatchQuery(w http.ResponseWriter, r *http.Request) {
	var req BatchQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Documents == "" || len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "documents and questions are required")
		return
	}

	answers, err := s.queryService.RunBatch(r.Context(), req.Documents, req.Questions)
	if err != nil {
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			writeError(w, http.StatusBadGateway, "failed to fetch source: "+fetchErr.Error())
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BatchQueryResponse{Answers: answers})
}

// Helpers

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrServiceUnavailable) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
