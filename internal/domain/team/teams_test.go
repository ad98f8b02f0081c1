package team

import "testing"

func TestLookup(t *testing.T) {
	t.Parallel()

	celtics, ok := Lookup(1610612738)
	if !ok || celtics.Tricode != "BOS" {
		t.Fatalf("Lookup(1610612738) = %+v, %v", celtics, ok)
	}
	if _, ok := Lookup(42); ok {
		t.Fatalf("unknown id must not resolve")
	}
}

func TestDirectoryIsComplete(t *testing.T) {
	t.Parallel()

	ids := IDs()
	if len(ids) != 30 {
		t.Fatalf("expected 30 franchises, got %d", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("IDs not ascending at %d", i)
		}
	}
	for _, id := range ids {
		franchise := All[id]
		if err := franchise.Validate(); err != nil {
			t.Fatalf("franchise %d invalid: %v", id, err)
		}
	}
}
