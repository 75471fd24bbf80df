// Package convo implements the per-pair conversation session: a turn-taking
// state machine that alternates strictly between initiator and receiver,
// builds prompts over a bounded history window, drives the external dialogue
// generator and handles termination, grace delay and cooldown hand-off.
//
// The state space is explicit:
//
//	AwaitingReply -> Active -> AwaitingReply -> ... -> Closing -> Closed
//
// AwaitingReply means a generator call is owed or in flight for the agent
// holding the floor; it doubles as the re-entrancy guard, so a duplicate
// trigger while a call is outstanding is a no-op. Closed is terminal and
// idempotent; replies landing after closure are dropped.
package convo
