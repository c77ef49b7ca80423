package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get after Set = %v, want ErrMiss", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	if _, _, err := NewRedis(context.Background(), "not-a-redis-url", "sz:"); err == nil {
		t.Fatal("expected error for invalid url")
	}
}
