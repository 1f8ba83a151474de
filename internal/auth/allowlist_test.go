package auth_test

import (
	"testing"

	"github.com/jonesrussell/tooldex/internal/auth"
)

func TestAllowList_NormalizesEntriesAndCandidates(t *testing.T) {
	t.Helper()

	list := auth.NewAllowList([]string{"a@x.com"})

	// Mixed case with trailing whitespace still matches.
	if !list.Allows("a@X.com ") {
		t.Fatal("expected mixed-case candidate with trailing space to be allowed")
	}
	if !list.Allows("A@X.COM") {
		t.Fatal("expected upper-case candidate to be allowed")
	}
	if list.Allows("b@x.com") {
		t.Fatal("expected unlisted email to be refused")
	}
}

func TestAllowList_EmptyEmailNeverAllowed(t *testing.T) {
	t.Helper()

	list := auth.NewAllowList([]string{"a@x.com"})

	if list.Allows("") {
		t.Fatal("expected empty email to be refused")
	}
	if list.Allows("   ") {
		t.Fatal("expected whitespace email to be refused")
	}
}

func TestAllowList_DropsEmptyEntries(t *testing.T) {
	t.Helper()

	list := auth.NewAllowList([]string{" A@x.com ", "", "  ", "b@y.com"})

	if list.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", list.Len())
	}
	if !list.Allows("a@x.com") || !list.Allows("b@y.com") {
		t.Fatal("expected both normalized entries to be allowed")
	}
}
