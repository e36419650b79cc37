package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
)

const answerPromptTemplate = `You are a helpful and knowledgeable assistant specializing in regulated domains (e.g., insurance, legal, HR, compliance).
Your primary goal is to answer the user's query based ONLY on the provided context.
If the context does not contain sufficient information to answer the query, you MUST explicitly state that.

Provide a concise answer, a step-by-step reasoning for your answer derived from the context,
any key conditions or rules found in the text related to the query,
and a list of citations including the source ID and page number (if available) for each piece of information.

You MUST respond in the following JSON format. Ensure the JSON is valid and complete:
{
  "answer": "The concise answer to the query based on the context.",
  "reasoning": "A step-by-step explanation of how the answer was derived from the provided context.",
  "conditions": {
    "condition_name_1": "value_1",
    "condition_name_2": "value_2"
  },
  "citations": [
    {
      "source_id": "document_id_from_context",
      "page_number": "page_number_from_context"
    }
  ]
}

---
User Query: %q

---
Context (Relevant information from documents):
%s

---
Please generate your response strictly in the specified JSON format.`

// synthesizer turns a query plus ordered context chunks into a structured,
// citation-backed answer.
type synthesizer struct {
	generator driven.GenerationService
	logger    *slog.Logger
}

func newSynthesizer(generator driven.GenerationService, logger *slog.Logger) *synthesizer {
	return &synthesizer{generator: generator, logger: logger}
}

// generatedOutput matches the JSON shape the model is instructed to emit.
// page_number arrives as a number or a string depending on the model's mood.
type generatedOutput struct {
	Answer     string            `json:"answer"`
	Reasoning  string            `json:"reasoning"`
	Conditions map[string]string `json:"conditions"`
	Citations  []rawCitation     `json:"citations"`
}

type rawCitation struct {
	SourceID   string          `json:"source_id"`
	PageNumber json.RawMessage `json:"page_number"`
}

// Synthesize builds the grounding prompt, invokes generation, and validates
// the result. Empty orderedChunks short-circuits without a generation call.
func (s *synthesizer) Synthesize(ctx context.Context, query string, orderedChunks []*domain.Chunk) (*domain.Answer, error) {
	if len(orderedChunks) == 0 {
		s.logger.Warn("no relevant context found", "query", query)
		return domain.NoRelevantInformation(), nil
	}

	prompt := fmt.Sprintf(answerPromptTemplate, query, buildContext(orderedChunks))

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	var output generatedOutput
	if err := json.Unmarshal([]byte(raw), &output); err != nil {
		s.logger.Error("failed to parse generation output", "error", err)
		return nil, &domain.GenerationFormatError{Err: err}
	}

	answer := &domain.Answer{
		Answer:     output.Answer,
		Reasoning:  output.Reasoning,
		Conditions: output.Conditions,
		Citations:  s.validateCitations(output.Citations, orderedChunks),
	}
	if answer.Answer == "" {
		answer.Answer = "I could not find a direct answer in the provided context."
	}
	if answer.Reasoning == "" {
		answer.Reasoning = "No specific reasoning could be extracted."
	}
	if answer.Conditions == nil {
		answer.Conditions = map[string]string{}
	}

	answer.LogicEvaluation = evaluateRules(answerFacts{
		Answer:     answer.Answer,
		Conditions: answer.Conditions,
	})

	return answer, nil
}

// buildContext renders each chunk with an inline source annotation so the
// model can cite what it used.
func buildContext(chunks []*domain.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		var refs []string
		if chunk.DocumentID != "" {
			refs = append(refs, "Source ID: "+chunk.DocumentID)
		}
		if chunk.PageNumber != nil {
			refs = append(refs, "Page: "+strconv.Itoa(*chunk.PageNumber))
		}

		if len(refs) > 0 {
			parts = append(parts, "["+strings.Join(refs, ", ")+"] "+chunk.Content)
		} else {
			parts = append(parts, chunk.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// validateCitations keeps only citations whose source id belongs to the
// retrieved set, normalizes page numbers to strings, and deduplicates by the
// (source id, page) pair in first-seen order. Rejections are logged, never
// surfaced.
func (s *synthesizer) validateCitations(raw []rawCitation, retrievedChunks []*domain.Chunk) []domain.Citation {
	retrievedDocIDs := make(map[string]struct{}, len(retrievedChunks))
	for _, chunk := range retrievedChunks {
		retrievedDocIDs[chunk.DocumentID] = struct{}{}
	}

	seen := make(map[string]struct{})
	citations := make([]domain.Citation, 0, len(raw))

	for _, citation := range raw {
		if citation.SourceID == "" {
			continue
		}
		if _, ok := retrievedDocIDs[citation.SourceID]; !ok {
			s.logger.Warn("rejecting citation to non-retrieved source", "source_id", citation.SourceID)
			continue
		}

		page := normalizePageNumber(citation.PageNumber)

		key := citation.SourceID + "-"
		if page != nil {
			key += *page
		} else {
			key += "null"
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		citations = append(citations, domain.Citation{
			SourceID:   citation.SourceID,
			PageNumber: page,
		})
	}

	return citations
}

// normalizePageNumber renders the model's page value as a string, or nil when
// absent, null, or empty.
func normalizePageNumber(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "" {
			return nil
		}
		return &asString
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		rendered := asNumber.String()
		return &rendered
	}

	return nil
}
