package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/simmesh/convo"
	"github.com/hupe1980/simmesh/cooldown"
	"github.com/hupe1980/simmesh/core"
	"github.com/hupe1980/simmesh/logging"
	"github.com/hupe1980/simmesh/negotiator"
	"github.com/hupe1980/simmesh/scanner"
)

// ErrNoSession is returned by ForceEnd when the agent is not in a session.
var ErrNoSession = errors.New("engine: agent has no active session")

// Population is the registry view the engine iterates each scan pass.
type Population interface {
	All() []*core.Agent
	Get(id string) (*core.Agent, bool)
}

// Options configures an Engine.
type Options struct {
	// TickInterval is the period of the tick loop.
	TickInterval time.Duration
	// ScanIntervalTicks is the coarse scan cadence in ticks.
	ScanIntervalTicks int
	// Logger receives engine lifecycle logging. Defaults to NoOp.
	Logger logging.Logger
}

// Engine owns the tick loop and wires scanner, negotiator and cooldown
// ledger together. Sessions it starts are bound to the Run context and are
// force-closed on shutdown.
type Engine struct {
	population Population
	scanner    *scanner.Scanner
	negotiator *negotiator.Negotiator
	ledger     *cooldown.Ledger
	opts       Options
	logger     logging.Logger

	mu        sync.Mutex
	sessions  map[string]*convo.Session
	tickCount uint64
}

// New creates an engine over pre-wired components.
func New(population Population, sc *scanner.Scanner, neg *negotiator.Negotiator, ledger *cooldown.Ledger, optFns ...func(o *Options)) *Engine {
	opts := Options{
		TickInterval:      50 * time.Millisecond,
		ScanIntervalTicks: 30,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	// Direct construction can bypass config validation.
	if opts.TickInterval <= 0 {
		opts.TickInterval = 50 * time.Millisecond
	}
	if opts.ScanIntervalTicks <= 0 {
		opts.ScanIntervalTicks = 30
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Engine{
		population: population,
		scanner:    sc,
		negotiator: neg,
		ledger:     ledger,
		opts:       opts,
		logger:     opts.Logger,
		sessions:   make(map[string]*convo.Session),
	}
}

// Run drives the tick loop until the context ends, then force-closes any
// session still active. Always returns the context's error.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.opts.TickInterval)
	defer ticker.Stop()

	e.logger.Info("engine started",
		"tick_interval", e.opts.TickInterval, "scan_interval_ticks", e.opts.ScanIntervalTicks)

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return ctx.Err()
		case <-ticker.C:
			e.tick(ctx, e.opts.TickInterval)
		}
	}
}

// tick advances cooldowns every call and runs a scan pass on the coarse
// cadence.
func (e *Engine) tick(ctx context.Context, elapsed time.Duration) {
	for _, id := range e.ledger.Tick(elapsed) {
		if a, ok := e.population.Get(id); ok {
			a.SetIdle()
			e.logger.Debug("cooldown expired", "agent_id", id)
		}
	}

	e.mu.Lock()
	e.tickCount++
	scanDue := e.tickCount%uint64(e.opts.ScanIntervalTicks) == 0
	e.mu.Unlock()

	if scanDue {
		e.scanPass(ctx)
	}
}

// scanPass lets every idle, off-cooldown agent scan once and claim its pick.
// A claim that fails because the candidate was grabbed earlier in the same
// pass is silently dropped; the agent retries next cycle.
func (e *Engine) scanPass(ctx context.Context) {
	for _, agent := range e.population.All() {
		if agent.State() != core.StateIdle || !e.ledger.IsEligible(agent.ID) {
			continue
		}
		candidate, ok := e.scanner.Pick(agent)
		if !ok {
			continue
		}
		session, err := e.negotiator.Claim(agent.ID, candidate.ID)
		if err != nil {
			e.logger.Debug("claim failed", "claimant_id", agent.ID,
				"candidate_id", candidate.ID, "error", err)
			continue
		}
		e.startSession(ctx, session)
	}
}

// ForceConversation is the director operation: start a session between two
// named idle agents, bypassing the scanner but still subject to the
// negotiator's exclusivity claim.
func (e *Engine) ForceConversation(ctx context.Context, initiatorID, receiverID string) (*convo.Session, error) {
	session, err := e.negotiator.Claim(initiatorID, receiverID)
	if err != nil {
		return nil, err
	}
	e.startSession(ctx, session)
	return session, nil
}

// ForceEnd closes the session currently owning the agent, if any.
func (e *Engine) ForceEnd(agentID string) error {
	sessionID, ok := e.negotiator.SessionOf(agentID)
	if !ok {
		return ErrNoSession
	}
	e.mu.Lock()
	session, ok := e.sessions[sessionID]
	e.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	session.Close(convo.ReasonForced)
	return nil
}

// Session returns a live session by id.
func (e *Engine) Session(sessionID string) (*convo.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[sessionID]
	return s, ok
}

// ActiveSessions returns the number of sessions not yet closed.
func (e *Engine) ActiveSessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Engine) startSession(ctx context.Context, session *convo.Session) {
	e.mu.Lock()
	e.sessions[session.ID] = session
	e.mu.Unlock()

	session.OnClosed(func(closed *convo.Session, _ convo.CloseReason) {
		e.untrack(closed.ID)
	})

	initiator, receiver := session.Participants()
	e.logger.Info("session started", "session_id", session.ID,
		"initiator_id", initiator.ID, "receiver_id", receiver.ID)

	session.Start(ctx)
}

// untrack drops a closed session from the engine's table.
func (e *Engine) untrack(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, sessionID)
}

func (e *Engine) shutdown() {
	e.mu.Lock()
	open := make([]*convo.Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		open = append(open, s)
	}
	e.mu.Unlock()

	for _, s := range open {
		s.Close(convo.ReasonForced)
	}
	e.logger.Info("engine stopped", "closed_sessions", len(open))
}
