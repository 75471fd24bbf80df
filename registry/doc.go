// Package registry holds the live population of agents. It provides lookup
// and snapshot enumeration only; agent state is mutated through the agent's
// own accessors, never through the registry. Additional backends can be added
// alongside the in-memory implementation without changing calling code.
package registry
