package util

import "testing"

func TestShortHash(t *testing.T) {
	id := "google:12345"
	got := ShortHash(id, 8)
	if got != ShortHash(id, 8) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 8 {
		t.Fatalf("expected 8 hex characters, got %d", len(got))
	}
	if full := ShortHash(id, 0); len(full) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(full))
	}
}
