package storage

import (
	"strings"
	"testing"
)

func TestNewMediaKey(t *testing.T) {
	key := NewMediaKey("Poster.PNG")
	if !strings.HasPrefix(key, KeyPrefix) {
		t.Fatalf("expected prefix %q, got %q", KeyPrefix, key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("expected lower-case extension, got %q", key)
	}
	if key == NewMediaKey("Poster.PNG") {
		t.Fatalf("expected unique keys")
	}
}

func TestIsMediaKey(t *testing.T) {
	if !IsMediaKey(NewMediaKey("a.jpg")) {
		t.Fatalf("generated keys are media keys")
	}
	if IsMediaKey("https://cdn.example.com/a.jpg") {
		t.Fatalf("external urls are not media keys")
	}
}
