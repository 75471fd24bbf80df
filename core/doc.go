// Package core contains the domain contracts shared by every other package:
// the Agent with its lifecycle state machine, spatial positions, conversation
// turns and identifier generation. Higher level packages (scanner, negotiator,
// convo, engine) depend on core and never on each other's internals, keeping
// the dependency graph acyclic.
package core
