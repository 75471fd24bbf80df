package registry

import (
	"errors"
	"testing"

	"github.com/hupe1980/simmesh/core"
)

func TestInMemory_RegisterAndGet(t *testing.T) {
	r := NewInMemory()
	a := core.NewAgent("Red", "farmer")

	if err := r.Register(a); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.Register(a); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}

	got, ok := r.Get(a.ID)
	if !ok || got != a {
		t.Fatal("Get should return the registered agent handle")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("unknown id should not resolve")
	}
	if r.Len() != 1 {
		t.Errorf("expected population 1, got %d", r.Len())
	}
}

func TestInMemory_AllIsStableSnapshot(t *testing.T) {
	r := NewInMemory()
	for _, name := range []string{"Red", "Blue", "Green"} {
		if err := r.Register(core.NewAgent(name, "p")); err != nil {
			t.Fatalf("register failed: %v", err)
		}
	}

	first := r.All()
	second := r.All()
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 agents, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatal("enumeration order must be stable across passes")
		}
		if i > 0 && first[i-1].ID >= first[i].ID {
			t.Fatal("enumeration must be ordered by id")
		}
	}
}
