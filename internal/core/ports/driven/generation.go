package driven

import "context"

// GenerationService produces text completions for answer synthesis.
type GenerationService interface {
	// Generate returns the raw completion for a prompt. Answer prompts
	// demand structured JSON output; parsing is the caller's concern.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the generation service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the generation service
	Close() error
}
