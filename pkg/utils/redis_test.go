package utils

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestDedupeScriptCompiles(t *testing.T) {
	// Compile-time smoke test: the script should be initialized.
	if dedupeScript == nil {
		t.Fatalf("expected dedupe script to be initialized")
	}
}

func TestDedupeOnce_ValidatesInput(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rdb.Close()

	if _, err := DedupeOnce(context.Background(), nil, "k", time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := DedupeOnce(context.Background(), rdb, "", time.Minute); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := DedupeOnce(context.Background(), rdb, "k", 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}
