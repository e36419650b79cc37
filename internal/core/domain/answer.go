package domain

// Citation claims a grounding of part of an answer in a retrieved source.
// PageNumber is a string or null on the wire, mirroring the generation
// model's loose typing.
type Citation struct {
	SourceID   string  `json:"source_id"`
	PageNumber *string `json:"page_number"`
}

// Answer is the structured, citation-backed response returned for a query.
type Answer struct {
	Answer          string            `json:"answer"`
	Reasoning       string            `json:"reasoning"`
	Conditions      map[string]string `json:"conditions"`
	Citations       []Citation        `json:"citations"`
	LogicEvaluation string            `json:"logic_evaluation"`
}

// NoRelevantInformation is the fixed answer returned when retrieval finds
// nothing; the generation model is never invoked for it.
func NoRelevantInformation() *Answer {
	return &Answer{
		Answer:          "I could not find relevant information in the provided documents to answer this question.",
		Reasoning:       "No relevant document chunks were retrieved based on the query and filters.",
		Conditions:      map[string]string{},
		Citations:       []Citation{},
		LogicEvaluation: "N/A",
	}
}
