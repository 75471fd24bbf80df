// Package cooldown implements the post-conversation ineligibility ledger.
// Cooldowns are pure tick-delta accounting with no persistence; the engine
// feeds elapsed time into Tick and returns expired agents to idle.
package cooldown
