package cooldown

import (
	"sync"
	"time"
)

// Ledger tracks per-agent cooldown timers. It is safe for concurrent access.
//
// Contract:
//   - Start sets an agent's remaining cooldown, replacing any prior value
//   - Tick decrements every active cooldown, floor-clamped at zero
//   - a remaining value of zero means the agent is eligible again
type Ledger struct {
	mu        sync.Mutex
	remaining map[string]time.Duration
}

// NewLedger constructs an empty cooldown ledger.
func NewLedger() *Ledger {
	return &Ledger{remaining: make(map[string]time.Duration)}
}

// Start begins (or restarts) a cooldown for the given agent. Non-positive
// durations leave the agent eligible.
func (l *Ledger) Start(agentID string, d time.Duration) {
	if d <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remaining[agentID] = d
}

// Tick decrements all active cooldowns by elapsed and returns the ids whose
// cooldown expired during this tick.
func (l *Ledger) Tick(elapsed time.Duration) []string {
	if elapsed <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var expired []string
	for id, rem := range l.remaining {
		rem -= elapsed
		if rem <= 0 {
			delete(l.remaining, id)
			expired = append(expired, id)
			continue
		}
		l.remaining[id] = rem
	}
	return expired
}

// Remaining returns the agent's remaining cooldown, zero when none is active.
func (l *Ledger) Remaining(agentID string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining[agentID]
}

// IsEligible reports whether the agent has no active cooldown.
func (l *Ledger) IsEligible(agentID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, active := l.remaining[agentID]
	return !active
}
