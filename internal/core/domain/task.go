package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// GenerateConsumerName creates a unique random name for a queue consumer.
func GenerateConsumerName() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Task represents a queued ingestion job to be processed by workers.
type Task struct {
	// ID is the unique identifier for this task
	ID string `json:"id"`

	// SourceURL is the document source to ingest
	SourceURL string `json:"source_url"`

	// Metadata is attached to the created document
	Metadata Metadata `json:"metadata,omitempty"`

	// Retries counts how often this task has been redelivered
	Retries int `json:"retries"`

	// EnqueuedAt is when the task entered the queue
	EnqueuedAt time.Time `json:"enqueued_at"`
}
