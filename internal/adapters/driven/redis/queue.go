package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
)

const (
	taskStream = "doclens:ingest"
	taskGroup  = "doclens:workers"

	taskKeyPrefix = "doclens:task:"

	// Task payload TTL for safety; acked tasks are deleted eagerly
	taskTTL = 24 * time.Hour
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using Redis Streams.
// A consumer group tracks delivery, so tasks claimed by a crashed worker
// stay pending rather than disappearing.
// One Queue is shared by all worker goroutines.
type Queue struct {
	client       *redis.Client
	consumerName string

	// messageIDs maps task id to stream message id for ack/nack
	mu         sync.Mutex
	messageIDs map[string]string
}

// NewQueue creates a new Redis-backed task queue.
// The consumerName should be unique per worker instance.
func NewQueue(client *redis.Client, consumerName string) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if consumerName == "" {
		consumerName = "worker-" + domain.GenerateConsumerName()
	}

	q := &Queue{
		client:       client,
		consumerName: consumerName,
		messageIDs:   make(map[string]string),
	}

	// Create consumer group if it doesn't exist
	ctx := context.Background()
	err := q.client.XGroupCreateMkStream(ctx, taskStream, taskGroup, "0").Err()
	if err != nil && !isGroupExistsError(err) {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return q, nil
}

// Enqueue adds a task to the queue for processing.
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.client.Pipeline()
	pipe.Set(ctx, taskKeyPrefix+task.ID, taskData, taskTTL)
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: taskStream,
		Values: map[string]interface{}{
			"task_id": task.ID,
		},
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

// DequeueWithTimeout retrieves the next available task, waiting up to timeout.
// Returns nil, nil if the timeout elapses with no tasks.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout time.Duration) (*domain.Task, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    taskGroup,
		Consumer: q.consumerName,
		Streams:  []string{taskStream, ">"},
		Count:    1,
		Block:    timeout,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			taskID, _ := msg.Values["task_id"].(string)
			if taskID == "" {
				// Malformed message; drop it
				_ = q.client.XAck(ctx, taskStream, taskGroup, msg.ID).Err()
				continue
			}

			taskData, err := q.client.Get(ctx, taskKeyPrefix+taskID).Bytes()
			if err != nil {
				// Payload expired or missing; ack and skip
				_ = q.client.XAck(ctx, taskStream, taskGroup, msg.ID).Err()
				continue
			}

			var task domain.Task
			if err := json.Unmarshal(taskData, &task); err != nil {
				_ = q.client.XAck(ctx, taskStream, taskGroup, msg.ID).Err()
				continue
			}

			q.mu.Lock()
			q.messageIDs[task.ID] = msg.ID
			q.mu.Unlock()
			return &task, nil
		}
	}

	return nil, nil
}

// Ack acknowledges successful completion of a task.
func (q *Queue) Ack(ctx context.Context, taskID string) error {
	msgID, err := q.claimMessageID(taskID)
	if err != nil {
		return err
	}

	pipe := q.client.Pipeline()
	pipe.XAck(ctx, taskStream, taskGroup, msgID)
	pipe.Del(ctx, taskKeyPrefix+taskID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to ack task: %w", err)
	}
	return nil
}

// Nack requeues a failed task with an incremented retry count.
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	msgID, err := q.claimMessageID(taskID)
	if err != nil {
		return err
	}

	taskData, err := q.client.Get(ctx, taskKeyPrefix+taskID).Bytes()
	if err != nil {
		return fmt.Errorf("failed to load task for requeue: %w", err)
	}

	var task domain.Task
	if err := json.Unmarshal(taskData, &task); err != nil {
		return fmt.Errorf("failed to unmarshal task for requeue: %w", err)
	}
	task.Retries++

	updated, err := json.Marshal(&task)
	if err != nil {
		return fmt.Errorf("failed to marshal task for requeue: %w", err)
	}

	pipe := q.client.Pipeline()
	pipe.XAck(ctx, taskStream, taskGroup, msgID)
	pipe.Set(ctx, taskKeyPrefix+taskID, updated, taskTTL)
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: taskStream,
		Values: map[string]interface{}{
			"task_id": taskID,
			"reason":  reason,
		},
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to requeue task: %w", err)
	}
	return nil
}

// claimMessageID removes and returns the stream message id for a dequeued
// task, so a task can be acked or nacked exactly once.
func (q *Queue) claimMessageID(taskID string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	msgID, ok := q.messageIDs[taskID]
	if !ok {
		return "", fmt.Errorf("unknown task %s: %w", taskID, domain.ErrNotFound)
	}
	delete(q.messageIDs, taskID)
	return msgID, nil
}

// Ping checks if the queue backend is healthy.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close cleans up resources.
func (q *Queue) Close() error {
	return nil
}

func isGroupExistsError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}
