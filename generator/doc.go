// Package generator defines the boundary to the external text-generation
// service that produces agent utterances. The Generator contract is a pure
// request/response call with no retained state, a single attempt and no
// retry; concurrency and cancellation live with the calling session, which
// runs each call as a task bound to the session's lifetime.
//
// Concrete backends live in subpackages (gemini, openai, anthropic); Mock
// provides deterministic scripted responses for tests and demos.
package generator
