// Package negotiator resolves concurrent partner detection into at most one
// exclusive session per agent pair. All claims serialize on a single
// negotiation mutex (population sizes are small), so the two Idle->InSession
// transitions of a successful claim are observed as one indivisible operation
// by every other claim: when A and B pick each other in the same scan cycle,
// exactly one session over {A,B} is created and the loser's claim fails
// silently. Session ownership is tracked in an explicit map from agent id to
// session id rather than any global "currently active" pointer.
package negotiator
