package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRevoker(t *testing.T) (*RedisRevoker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRevoker(client, "test:revoked"), mr
}

func TestRevokedAfterWithoutCutoff(t *testing.T) {
	revoker, _ := newTestRevoker(t)

	cutoff, err := revoker.RevokedAfter(context.Background(), 7)
	if err != nil {
		t.Fatalf("revoked after: %v", err)
	}
	if !cutoff.IsZero() {
		t.Fatalf("expected zero cutoff, got %v", cutoff)
	}
}

func TestRevokeAccountStoresCutoff(t *testing.T) {
	revoker, mr := newTestRevoker(t)
	since := time.Date(2026, 3, 1, 12, 30, 45, 500, time.UTC)

	if err := revoker.RevokeAccount(context.Background(), 7, since, time.Hour); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	cutoff, err := revoker.RevokedAfter(context.Background(), 7)
	if err != nil {
		t.Fatalf("revoked after: %v", err)
	}
	if !cutoff.Equal(since.Truncate(time.Second)) {
		t.Fatalf("expected %v, got %v", since.Truncate(time.Second), cutoff)
	}
	if ttl := mr.TTL("test:revoked:7"); ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	cutoff, err = revoker.RevokedAfter(context.Background(), 7)
	if err != nil {
		t.Fatalf("revoked after expiry: %v", err)
	}
	if !cutoff.IsZero() {
		t.Fatalf("expected cutoff to expire, got %v", cutoff)
	}
}

func TestRevokedAfterRedisDown(t *testing.T) {
	revoker, mr := newTestRevoker(t)
	mr.Close()

	if _, err := revoker.RevokedAfter(context.Background(), 7); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}
