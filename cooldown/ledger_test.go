package cooldown

import (
	"sort"
	"testing"
	"time"
)

func TestLedger_TickDecrementsAndExpires(t *testing.T) {
	l := NewLedger()
	l.Start("a", 100*time.Millisecond)
	l.Start("b", 250*time.Millisecond)

	if l.IsEligible("a") {
		t.Fatal("agent with active cooldown must not be eligible")
	}

	expired := l.Tick(100 * time.Millisecond)
	if len(expired) != 1 || expired[0] != "a" {
		t.Fatalf("expected [a] to expire, got %v", expired)
	}
	if !l.IsEligible("a") {
		t.Error("expired agent should be eligible")
	}
	if l.IsEligible("b") {
		t.Error("b should still be cooling down")
	}
	if rem := l.Remaining("b"); rem != 150*time.Millisecond {
		t.Errorf("expected 150ms remaining, got %v", rem)
	}

	// Over-shooting clamps at zero rather than going negative.
	expired = l.Tick(time.Hour)
	if len(expired) != 1 || expired[0] != "b" {
		t.Fatalf("expected [b] to expire, got %v", expired)
	}
	if rem := l.Remaining("b"); rem != 0 {
		t.Errorf("expected zero remaining, got %v", rem)
	}
}

func TestLedger_StartReplacesAndIgnoresNonPositive(t *testing.T) {
	l := NewLedger()
	l.Start("a", time.Second)
	l.Start("a", 3*time.Second)
	if rem := l.Remaining("a"); rem != 3*time.Second {
		t.Errorf("restart should replace remaining, got %v", rem)
	}

	l.Start("b", 0)
	l.Start("c", -time.Second)
	if !l.IsEligible("b") || !l.IsEligible("c") {
		t.Error("non-positive cooldowns must leave agents eligible")
	}
}

func TestLedger_TickMultipleExpiries(t *testing.T) {
	l := NewLedger()
	l.Start("a", 10*time.Millisecond)
	l.Start("b", 10*time.Millisecond)

	expired := l.Tick(20 * time.Millisecond)
	sort.Strings(expired)
	if len(expired) != 2 || expired[0] != "a" || expired[1] != "b" {
		t.Fatalf("expected both to expire, got %v", expired)
	}
}

func TestLedger_ZeroElapsedIsNoOp(t *testing.T) {
	l := NewLedger()
	l.Start("a", time.Second)
	if expired := l.Tick(0); expired != nil {
		t.Errorf("zero elapsed must not expire anything, got %v", expired)
	}
	if rem := l.Remaining("a"); rem != time.Second {
		t.Errorf("zero elapsed must not decrement, got %v", rem)
	}
}
