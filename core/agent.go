package core

import "sync"

// State enumerates the lifecycle states of an agent. Transitions are driven
// exclusively by the negotiator (claiming) and the conversation session that
// currently holds the agent; see Agent for the permitted moves.
type State int

const (
	// StateIdle means the agent is unengaged and may be claimed.
	StateIdle State = iota
	// StateNegotiating is the transient state while a claim involving the
	// agent is being validated.
	StateNegotiating
	// StateInSession means the agent is engaged in exactly one conversation.
	StateInSession
	// StateCooldown means the agent recently left a conversation and is
	// ineligible until its cooldown expires.
	StateCooldown
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNegotiating:
		return "negotiating"
	case StateInSession:
		return "in_session"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// Role identifies which side of a conversation an agent occupies.
type Role int

const (
	// RoleInitiator is the agent whose claim created the session. It speaks first.
	RoleInitiator Role = iota
	// RoleReceiver is the agent that was claimed.
	RoleReceiver
)

// String returns the string representation of the role.
func (r Role) String() string {
	if r == RoleInitiator {
		return "initiator"
	}
	return "receiver"
}

// Other returns the opposite role.
func (r Role) Other() Role {
	if r == RoleInitiator {
		return RoleReceiver
	}
	return RoleInitiator
}

// Category is a bitmask used by the scanner to separate conversational agents
// from other collidable things sharing the space.
type Category uint32

const (
	// CategoryAgent marks entities that can hold conversations.
	CategoryAgent Category = 1 << iota
	// CategoryProp marks inert objects that occupy space but never talk.
	CategoryProp
)

// Matches reports whether the category intersects the given mask.
func (c Category) Matches(mask Category) bool { return c&mask != 0 }

// Engagement describes an agent's current conversation membership.
type Engagement struct {
	Role      Role   `json:"role"`
	PartnerID string `json:"partner_id"`
	SessionID string `json:"session_id"`
}

// Agent is an autonomous simulated participant. Identity fields are immutable
// after construction; the mutable state (lifecycle state, engagement,
// position) is guarded by the agent's own mutex so callers serialize on the
// agent rather than on any registry holding it.
//
// Permitted transitions:
//
//	Idle -> Negotiating (claim validation begins)
//	Negotiating -> InSession (claim committed) | Idle (claim aborted)
//	InSession -> Cooldown (session closed)
//	Cooldown -> Idle (cooldown expired)
type Agent struct {
	ID       string
	Name     string
	Persona  string
	Category Category

	mu         sync.RWMutex
	state      State
	engagement Engagement
	pos        Vec3
}

// NewAgent creates an idle agent with a fresh id and the CategoryAgent mask.
func NewAgent(name, persona string) *Agent {
	return &Agent{ID: NewID(), Name: name, Persona: persona, Category: CategoryAgent}
}

// State returns the agent's current lifecycle state.
func (a *Agent) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Position returns the agent's current position.
func (a *Agent) Position() Vec3 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pos
}

// SetPosition moves the agent. Movement is presentation-driven and never
// blocked by conversation state.
func (a *Agent) SetPosition(p Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pos = p
}

// Engagement returns the current engagement and true when the agent is in a
// session, the zero Engagement and false otherwise.
func (a *Agent) Engagement() (Engagement, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state != StateInSession {
		return Engagement{}, false
	}
	return a.engagement, true
}

// BeginNegotiation atomically moves the agent from Idle to Negotiating.
// Returns false when the agent is not currently claimable, in which case no
// state changes.
func (a *Agent) BeginNegotiation() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateIdle {
		return false
	}
	a.state = StateNegotiating
	return true
}

// AbortNegotiation rolls a Negotiating agent back to Idle. A no-op in any
// other state.
func (a *Agent) AbortNegotiation() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateNegotiating {
		a.state = StateIdle
	}
}

// EnterSession commits a claim, binding the agent to a session with the given
// role and partner. The caller must have previously succeeded with
// BeginNegotiation; entering from any other state is rejected.
func (a *Agent) EnterSession(role Role, partnerID, sessionID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateNegotiating {
		return false
	}
	a.state = StateInSession
	a.engagement = Engagement{Role: role, PartnerID: partnerID, SessionID: sessionID}
	return true
}

// LeaveSession releases the agent into Cooldown, but only when it is still
// bound to the given session. A stale release from an already superseded
// session is a no-op, which keeps session close idempotent.
func (a *Agent) LeaveSession(sessionID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateInSession || a.engagement.SessionID != sessionID {
		return false
	}
	a.state = StateCooldown
	a.engagement = Engagement{}
	return true
}

// SetIdle returns a cooled-down agent to Idle. A no-op unless the agent is
// currently in Cooldown.
func (a *Agent) SetIdle() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateCooldown {
		a.state = StateIdle
	}
}
