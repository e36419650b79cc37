package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

func setupTestAnswerCache(t *testing.T) (*AnswerCache, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewAnswerCache(client), mr, func() {
		client.Close()
		mr.Close()
	}
}

func testAnswer() *domain.Answer {
	page := "4"
	return &domain.Answer{
		Answer:          "Yes, it is covered.",
		Reasoning:       "The policy text says so.",
		Conditions:      map[string]string{"waiting_period": "36 months"},
		Citations:       []domain.Citation{{SourceID: "doc-A", PageNumber: &page}},
		LogicEvaluation: "Policy likely provides coverage based on answer.",
	}
}

func TestAnswerCacheRoundTrip(t *testing.T) {
	cache, _, cleanup := setupTestAnswerCache(t)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, "key-1", testAnswer(), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, hit, err := cache.Get(ctx, "key-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got.Answer != "Yes, it is covered." {
		t.Errorf("answer = %q", got.Answer)
	}
	if len(got.Citations) != 1 || got.Citations[0].SourceID != "doc-A" {
		t.Errorf("citations = %+v", got.Citations)
	}
}

func TestAnswerCacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestAnswerCache(t)
	defer cleanup()

	_, hit, err := cache.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected miss")
	}
}

func TestAnswerCacheExpiry(t *testing.T) {
	cache, mr, cleanup := setupTestAnswerCache(t)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, "key-1", testAnswer(), time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	mr.FastForward(2 * time.Second)

	_, hit, err := cache.Get(ctx, "key-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected expired entry to miss")
	}
}

func TestAnswerCacheCorruptEntryIsMiss(t *testing.T) {
	cache, mr, cleanup := setupTestAnswerCache(t)
	defer cleanup()

	mr.Set(answerKeyPrefix+"key-1", "{not json")

	_, hit, err := cache.Get(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("corrupt entry should read as a miss")
	}
}

func TestAnswerCacheZeroTTLIsNoop(t *testing.T) {
	cache, mr, cleanup := setupTestAnswerCache(t)
	defer cleanup()

	if err := cache.Set(context.Background(), "key-1", testAnswer(), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if mr.Exists(answerKeyPrefix + "key-1") {
		t.Error("zero ttl should not write")
	}
}
