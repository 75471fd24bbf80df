package negotiator

import (
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/simmesh/convo"
	"github.com/hupe1980/simmesh/cooldown"
	"github.com/hupe1980/simmesh/core"
	"github.com/hupe1980/simmesh/generator"
	"github.com/hupe1980/simmesh/logging"
)

// Claim failure modes. None of them are fatal: a failed claim leaves the
// claimant idle to retry on its next scheduled scan.
var (
	// ErrUnknownAgent means the claimant or candidate id is not registered.
	ErrUnknownAgent = errors.New("negotiator: unknown agent")
	// ErrSelfClaim means an agent tried to claim itself.
	ErrSelfClaim = errors.New("negotiator: cannot claim self")
	// ErrNotEligible means one of the two agents was not idle and off
	// cooldown at the instant the claim was applied.
	ErrNotEligible = errors.New("negotiator: agent not eligible")
)

// Directory is the lookup side of the agent registry.
type Directory interface {
	Get(id string) (*core.Agent, bool)
}

// Options configures a Negotiator.
type Options struct {
	// PostConversationCooldown is applied to both agents when their session
	// closes.
	PostConversationCooldown time.Duration
	// SessionOptions customize every session the negotiator creates. The
	// negotiator chains its own OnClose after any hook set here.
	SessionOptions []func(o *convo.Options)
	// Logger receives claim lifecycle logging. Defaults to NoOp.
	Logger logging.Logger
}

// Negotiator converts "A found B eligible" into an exclusive session. It owns
// the only shared mutable state in the system: the per-agent session
// ownership map, guarded by the claim mutex.
type Negotiator struct {
	directory Directory
	ledger    *cooldown.Ledger
	gen       generator.Generator
	opts      Options
	logger    logging.Logger

	mu     sync.Mutex
	owners map[string]string // agent id -> session id
}

// New creates a negotiator over the given directory and cooldown ledger.
func New(directory Directory, ledger *cooldown.Ledger, gen generator.Generator, optFns ...func(o *Options)) *Negotiator {
	opts := Options{
		PostConversationCooldown: 5 * time.Second,
		Logger:                   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Negotiator{
		directory: directory,
		ledger:    ledger,
		gen:       gen,
		opts:      opts,
		logger:    opts.Logger,
		owners:    make(map[string]string),
	}
}

// Claim atomically reserves claimant and candidate for a new session. It
// succeeds only when both agents are idle and off cooldown at the instant the
// claim is applied; the claimant becomes the initiator. The returned session
// has not been started yet.
//
// A failed claim has no side effects: the claimant stays idle and simply
// retries on its next scan.
func (n *Negotiator) Claim(claimantID, candidateID string) (*convo.Session, error) {
	if claimantID == candidateID {
		return nil, ErrSelfClaim
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	claimant, ok := n.directory.Get(claimantID)
	if !ok {
		return nil, ErrUnknownAgent
	}
	candidate, ok := n.directory.Get(candidateID)
	if !ok {
		return nil, ErrUnknownAgent
	}

	if !n.ledger.IsEligible(claimant.ID) || !n.ledger.IsEligible(candidate.ID) {
		return nil, ErrNotEligible
	}

	// Check-and-set over both agents. BeginNegotiation only succeeds from
	// Idle, so an agent claimed earlier in this same cycle is rejected here.
	if !claimant.BeginNegotiation() {
		return nil, ErrNotEligible
	}
	if !candidate.BeginNegotiation() {
		claimant.AbortNegotiation()
		return nil, ErrNotEligible
	}

	session := convo.NewSession(claimant, candidate, n.gen, n.sessionOptions()...)
	claimant.EnterSession(core.RoleInitiator, candidate.ID, session.ID)
	candidate.EnterSession(core.RoleReceiver, claimant.ID, session.ID)
	n.owners[claimant.ID] = session.ID
	n.owners[candidate.ID] = session.ID

	n.logger.Debug("claim succeeded", "session_id", session.ID,
		"initiator_id", claimant.ID, "receiver_id", candidate.ID)

	return session, nil
}

// SessionOf returns the session id currently owning the agent, if any.
func (n *Negotiator) SessionOf(agentID string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id, ok := n.owners[agentID]
	return id, ok
}

// ActivePairs returns the number of sessions currently owning agents.
func (n *Negotiator) ActivePairs() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.owners) / 2
}

func (n *Negotiator) sessionOptions() []func(o *convo.Options) {
	opts := make([]func(o *convo.Options), 0, len(n.opts.SessionOptions)+1)
	opts = append(opts, n.opts.SessionOptions...)
	opts = append(opts, func(o *convo.Options) {
		prev := o.OnClose
		o.OnClose = func(s *convo.Session, reason convo.CloseReason) {
			n.release(s)
			if prev != nil {
				prev(s, reason)
			}
		}
	})
	return opts
}

// release clears ownership and starts both cooldowns. Runs once per session
// via the session's idempotent close.
func (n *Negotiator) release(s *convo.Session) {
	initiator, receiver := s.Participants()

	n.mu.Lock()
	if n.owners[initiator.ID] == s.ID {
		delete(n.owners, initiator.ID)
	}
	if n.owners[receiver.ID] == s.ID {
		delete(n.owners, receiver.ID)
	}
	n.mu.Unlock()

	if n.opts.PostConversationCooldown <= 0 {
		// No cooldown configured; skip the Cooldown state entirely.
		initiator.SetIdle()
		receiver.SetIdle()
		return
	}
	n.ledger.Start(initiator.ID, n.opts.PostConversationCooldown)
	n.ledger.Start(receiver.ID, n.opts.PostConversationCooldown)
}
