package convo

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/hupe1980/simmesh/core"
	"github.com/hupe1980/simmesh/generator"
	"github.com/hupe1980/simmesh/logging"
	"github.com/hupe1980/simmesh/sink"
)

// Status enumerates the session lifecycle states.
type Status int

const (
	// StatusAwaitingReply means a generator call is owed or outstanding for
	// the agent holding the floor.
	StatusAwaitingReply Status = iota
	// StatusActive means the last reply has been applied and the floor is
	// passing to the partner.
	StatusActive
	// StatusClosing means a farewell was spoken; the session closes after
	// the grace delay.
	StatusClosing
	// StatusClosed is terminal.
	StatusClosed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusAwaitingReply:
		return "awaiting_reply"
	case StatusActive:
		return "active"
	case StatusClosing:
		return "closing"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// CloseReason records why a session reached Closed.
type CloseReason string

const (
	// ReasonFarewell means a participant spoke a closing token.
	ReasonFarewell CloseReason = "farewell"
	// ReasonForced means an external caller ended the conversation.
	ReasonForced CloseReason = "forced"
	// ReasonTimeout means the reply watchdog fired with no response.
	ReasonTimeout CloseReason = "timeout"
)

// Options configures a Session.
type Options struct {
	// HistoryWindow bounds how many trailing turns enter the prompt view.
	HistoryWindow int
	// MaxTurns, when positive, forces a termination directive into prompts
	// once reached.
	MaxTurns int
	// MinTurnDelay and MaxTurnDelay bound the randomized thinking pause
	// before each generator call.
	MinTurnDelay time.Duration
	MaxTurnDelay time.Duration
	// ClosingGrace is how long a farewell stays visible before the session
	// closes and the agents are released.
	ClosingGrace time.Duration
	// ReplyTimeout, when positive, bounds a whole turn; a turn that produces
	// no reply within it forces the session closed. Zero reproduces the
	// legacy behavior of waiting forever.
	ReplyTimeout time.Duration
	// ClosingTokens are the case-insensitive substrings that end a
	// conversation.
	ClosingTokens []string
	// Rand drives the thinking delay. Nil falls back to the shared source.
	Rand *rand.Rand
	// Sinks receive every applied utterance.
	Sinks []sink.Sink
	// Logger receives session lifecycle logging. Defaults to NoOp.
	Logger logging.Logger
	// OnClose runs exactly once when the session closes, after both agents
	// have been released. The negotiator uses it to clear ownership and
	// start cooldowns.
	OnClose func(s *Session, reason CloseReason)
}

// Session is the exclusive pairwise conversation between two agents. Create
// one through the negotiator's claim; it must never be shared between pairs.
type Session struct {
	ID string

	initiator *core.Agent
	receiver  *core.Agent
	gen       generator.Generator
	opts      Options
	logger    logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	randMu sync.Mutex

	mu          sync.Mutex
	status      Status
	next        core.Role
	turnSeq     uint64
	inFlight    bool
	history     []core.Turn
	turnCount   int
	started     bool
	closeReason CloseReason
	closeHooks  []func(s *Session, reason CloseReason)
}

// NewSession creates a session in AwaitingReply with an empty history, the
// initiator holding the floor. Turns do not run until Start is called.
func NewSession(initiator, receiver *core.Agent, gen generator.Generator, optFns ...func(o *Options)) *Session {
	opts := Options{
		HistoryWindow: 6,
		MinTurnDelay:  time.Second,
		MaxTurnDelay:  2500 * time.Millisecond,
		ClosingGrace:  time.Second,
		ClosingTokens: []string{"goodbye", "bye"},
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Session{
		ID:        core.NewID(),
		initiator: initiator,
		receiver:  receiver,
		gen:       gen,
		opts:      opts,
		logger:    opts.Logger,
		status:    StatusAwaitingReply,
		next:      core.RoleInitiator,
	}
}

// Participants returns the initiator and receiver agents.
func (s *Session) Participants() (initiator, receiver *core.Agent) {
	return s.initiator, s.receiver
}

// Status returns the current lifecycle status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// TurnCount returns how many replies have been applied.
func (s *Session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnCount
}

// History returns a defensive copy of the full append-only history.
func (s *Session) History() []core.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Start launches the opening turn. Calling Start more than once is a no-op.
// The parent context bounds the whole session; cancelling it abandons any
// in-flight generator call.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.status == StatusClosed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.takeTurn(core.RoleInitiator)
}

// takeTurn begins a turn for the given role. It is a no-op unless the role
// holds the floor and no call is outstanding, which makes duplicate triggers
// harmless.
func (s *Session) takeTurn(role core.Role) {
	s.mu.Lock()
	if s.status == StatusClosing || s.status == StatusClosed || !s.started {
		s.mu.Unlock()
		return
	}
	if s.inFlight || role != s.next {
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.status = StatusAwaitingReply
	s.turnSeq++
	seq := s.turnSeq
	mustWrapUp := s.opts.MaxTurns > 0 && s.turnCount >= s.opts.MaxTurns
	speaker, partner := s.agentsFor(role)
	prompt := buildPrompt(speaker, partner, s.history, s.opts.HistoryWindow, mustWrapUp)
	s.mu.Unlock()

	if s.opts.ReplyTimeout > 0 {
		time.AfterFunc(s.opts.ReplyTimeout, func() { s.timeoutTurn(seq) })
	}

	go s.runTurn(seq, role, speaker, prompt)
}

// timeoutTurn is the per-turn watchdog. A session still awaiting the same
// turn when the timer fires is closed rather than left stuck, regardless of
// how the turn stalled.
func (s *Session) timeoutTurn(seq uint64) {
	s.mu.Lock()
	if s.status != StatusAwaitingReply || seq != s.turnSeq {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.logger.Warn("reply watchdog fired, closing session", "session_id", s.ID)
	s.Close(ReasonTimeout)
}

// runTurn performs the thinking delay and the single generator attempt, then
// applies the outcome. It is the sole suspension point of the protocol.
func (s *Session) runTurn(seq uint64, role core.Role, speaker *core.Agent, prompt string) {
	ctx := s.ctx
	cancel := context.CancelFunc(func() {})
	if s.opts.ReplyTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.opts.ReplyTimeout)
	}
	defer cancel()

	if !s.thinkingPause(ctx) {
		s.applyFailure(seq, ctx.Err())
		return
	}

	start := time.Now()
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.Debug("generator call failed", "session_id", s.ID,
			"speaker_id", speaker.ID, "duration", time.Since(start), "error", err)
		s.applyFailure(seq, err)
		return
	}
	s.applyReply(seq, role, speaker, text)
}

// thinkingPause sleeps for a random duration in the configured bounds,
// returning false when the context ends first.
func (s *Session) thinkingPause(ctx context.Context) bool {
	d := s.opts.MinTurnDelay
	if spread := s.opts.MaxTurnDelay - s.opts.MinTurnDelay; spread > 0 {
		d += time.Duration(s.int63n(int64(spread)))
	}
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (s *Session) int63n(n int64) int64 {
	if s.opts.Rand == nil {
		return rand.Int63n(n)
	}
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.opts.Rand.Int63n(n)
}

// applyFailure abandons a turn: no history entry, no forwarded message. The
// session stays in AwaitingReply; with a ReplyTimeout configured the turn's
// watchdog timer turns the stall into a timeout close.
func (s *Session) applyFailure(seq uint64, _ error) {
	s.mu.Lock()
	if s.status == StatusClosed || seq != s.turnSeq {
		s.mu.Unlock()
		return
	}
	s.inFlight = false
	s.mu.Unlock()
}

// applyReply lands a generated utterance: normalize, append, increment, fan
// out to sinks, then either enter Closing or pass the floor. A reply arriving
// after closure (or superseded by a newer turn) is dropped.
func (s *Session) applyReply(seq uint64, role core.Role, speaker *core.Agent, raw string) {
	text := normalizeReply(raw, speaker.Name)

	s.mu.Lock()
	if s.status == StatusClosed || s.status == StatusClosing || seq != s.turnSeq {
		s.mu.Unlock()
		return
	}
	s.inFlight = false
	if text == "" {
		// Nothing speakable came back; treat like a failed attempt.
		s.mu.Unlock()
		return
	}
	s.history = append(s.history, core.NewTurn(s.ID, speaker.ID, speaker.Name, text))
	s.turnCount++
	closing := containsClosingToken(text, s.opts.ClosingTokens)
	if closing {
		s.status = StatusClosing
	} else {
		s.status = StatusActive
		s.next = role.Other()
	}
	s.mu.Unlock()

	for _, snk := range s.opts.Sinks {
		snk.ShowText(speaker.ID, speaker.Name, text)
	}

	if closing {
		s.logger.Debug("farewell spoken", "session_id", s.ID, "speaker_id", speaker.ID)
		if s.opts.ClosingGrace > 0 {
			time.AfterFunc(s.opts.ClosingGrace, func() { s.Close(ReasonFarewell) })
		} else {
			s.Close(ReasonFarewell)
		}
		return
	}

	s.takeTurn(role.Other())
}

// Close transitions the session to Closed exactly once, cancels any in-flight
// generator call, releases both agents and runs the OnClose hook. Closing an
// already closed session is a no-op, not an error.
func (s *Session) Close(reason CloseReason) {
	s.mu.Lock()
	if s.status == StatusClosed {
		s.mu.Unlock()
		return
	}
	s.status = StatusClosed
	s.inFlight = false
	s.turnSeq++ // invalidates any outstanding turn
	s.closeReason = reason
	cancel := s.cancel
	turns := s.turnCount
	hooks := s.closeHooks
	s.closeHooks = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.initiator.LeaveSession(s.ID)
	s.receiver.LeaveSession(s.ID)

	s.logger.Info("session closed", "session_id", s.ID, "turn_count", turns, "reason", string(reason))

	if s.opts.OnClose != nil {
		s.opts.OnClose(s, reason)
	}
	for _, fn := range hooks {
		fn(s, reason)
	}
}

// OnClosed registers fn to run after the session reaches Closed, following
// the OnClose option. Registering on an already closed session runs fn
// immediately with the recorded reason.
func (s *Session) OnClosed(fn func(s *Session, reason CloseReason)) {
	s.mu.Lock()
	if s.status == StatusClosed {
		reason := s.closeReason
		s.mu.Unlock()
		fn(s, reason)
		return
	}
	s.closeHooks = append(s.closeHooks, fn)
	s.mu.Unlock()
}

func (s *Session) agentsFor(role core.Role) (speaker, partner *core.Agent) {
	if role == core.RoleInitiator {
		return s.initiator, s.receiver
	}
	return s.receiver, s.initiator
}
