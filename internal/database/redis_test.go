package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/keyxmakerx/calview/internal/config"
)

func TestNewRedis_EmptyURL(t *testing.T) {
	client, err := NewRedis(context.Background(), config.RedisConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client when REDIS_URL is unset")
	}
}

func TestNewRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got := mr.Exists("k"); !got {
		t.Error("expected key to reach miniredis")
	}
}

func TestNewRedis_BadURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), config.RedisConfig{URL: "://nope"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedis(context.Background(), config.RedisConfig{URL: "redis://" + addr}); err == nil {
		t.Fatal("expected ping error for closed server")
	}
}
