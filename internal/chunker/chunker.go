package chunker

import (
	"fmt"
	"strings"
)

// Config configures the chunking engine.
type Config struct {
	// Size is the target maximum characters per chunk
	Size int

	// Overlap is the character overlap carried into the next chunk
	Overlap int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Size:    1000,
		Overlap: 100,
	}
}

// Chunker splits extracted text into overlapping passages, preferring
// sentence boundaries, then newlines, then hard cuts.
type Chunker struct {
	cfg Config
}

// New creates a chunker. Size must be strictly greater than Overlap and
// Overlap must be non-negative, otherwise forward progress could stall.
func New(cfg Config) (*Chunker, error) {
	if cfg.Overlap < 0 {
		return nil, fmt.Errorf("overlap must be >= 0, got %d", cfg.Overlap)
	}
	if cfg.Size <= cfg.Overlap {
		return nil, fmt.Errorf("chunk size must be > overlap, got size=%d overlap=%d", cfg.Size, cfg.Overlap)
	}
	return &Chunker{cfg: cfg}, nil
}

// Split splits text into ordered, trimmed, non-empty chunks.
// An empty input yields an empty result.
func (c *Chunker) Split(text string) []string {
	var chunks []string
	size := c.cfg.Size
	overlap := c.cfg.Overlap

	cursor := 0
	for cursor < len(text) {
		end := cursor + size
		if end > len(text) {
			end = len(text)
		}

		// Prefer a sentence terminator, then a newline, provided the cut
		// stays out of the overlap window and the next cursor still advances
		// past the current one. A boundary that would move the cursor
		// backward falls through to the hard cut.
		if end < len(text) {
			if cut := lastBoundary(text, end, "."); boundaryAdvances(cut, cursor, size, overlap) {
				end = cut + 1
			} else if cut := lastBoundary(text, end, "\n"); boundaryAdvances(cut, cursor, size, overlap) {
				end = cut + 1
			}
		}

		if chunk := strings.TrimSpace(text[cursor:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// The hard cut advances by size-overlap > 0 and boundary cuts are
		// rejected unless they advance, so the loop terminates.
		cursor = end - overlap
		if cursor < 0 {
			cursor = 0
		}
		if end == len(text) {
			break
		}
	}

	return chunks
}

// lastBoundary returns the index of the last occurrence of sep at or before
// end, or -1.
func lastBoundary(text string, end int, sep string) int {
	return strings.LastIndex(text[:end+1], sep)
}

// boundaryAdvances reports whether cutting at cut keeps the chunk out of the
// overlap window and moves the next cursor (cut+1-overlap) strictly forward.
func boundaryAdvances(cut, cursor, size, overlap int) bool {
	return cut > cursor+size-overlap && cut > cursor && cut+1-overlap > cursor
}
