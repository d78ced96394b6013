package cache

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestKeyStability(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	first := Key(userID, "card", "q-1", "scope-1")
	second := Key(userID, "card", "q-1", "scope-1")

	if first != second {
		t.Fatalf("same logical lookup produced different keys: %q vs %q", first, second)
	}
}

func TestKeyDistinguishesParts(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	testCases := []struct {
		name string
		a    string
		b    string
	}{
		{"different kinds", Key(userID, "card", "q-1"), Key(userID, "overdue", "q-1")},
		{"different parts", Key(userID, "card", "q-1"), Key(userID, "card", "q-2")},
		{"different users", Key(userID, "card", "q-1"), Key(uuid.New(), "card", "q-1")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.a == tc.b {
				t.Errorf("expected distinct keys, both were %q", tc.a)
			}
		})
	}
}

func TestKeyCarriesUserPrefix(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	key := Key(userID, "due", "scope-1", "2025-06-01")
	prefix := UserPrefix(userID)

	if !strings.HasPrefix(key, prefix) {
		t.Fatalf("key %q does not start with user prefix %q", key, prefix)
	}
	if !strings.HasPrefix(prefix, "cards:") {
		t.Fatalf("user prefix %q missing namespace", prefix)
	}
}

func TestDigestLength(t *testing.T) {
	t.Parallel()

	key := Key(uuid.New(), "card", "a", "b", "c")
	parts := strings.Split(key, ":")

	if got := parts[len(parts)-1]; len(got) != 8 {
		t.Fatalf("expected 8-character digest, got %q", got)
	}
}
