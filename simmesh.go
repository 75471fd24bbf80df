// Package simmesh provides a high-level façade over the simulation engine
// and its components (registry, scanner, negotiator, sessions, cooldowns)
// enabling quick construction of ambient agent conversation simulations.
// Most applications interact with this package by:
//  1. Creating a SimMesh via New() (optionally overriding config, generator
//     backend, occluder, sinks and logger)
//  2. Registering agents and placing them in space
//  3. Running the tick loop (Run) and optionally directing conversations
//     (ForceConversation / ForceEnd)
//
// All defaults are safe for local development: an in-memory registry, a mock
// generator and a no-op logger.
package simmesh

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/hupe1980/simmesh/config"
	"github.com/hupe1980/simmesh/convo"
	"github.com/hupe1980/simmesh/cooldown"
	"github.com/hupe1980/simmesh/core"
	"github.com/hupe1980/simmesh/engine"
	"github.com/hupe1980/simmesh/generator"
	"github.com/hupe1980/simmesh/generator/anthropic"
	"github.com/hupe1980/simmesh/generator/gemini"
	"github.com/hupe1980/simmesh/generator/openai"
	"github.com/hupe1980/simmesh/logging"
	"github.com/hupe1980/simmesh/negotiator"
	"github.com/hupe1980/simmesh/registry"
	"github.com/hupe1980/simmesh/scanner"
	"github.com/hupe1980/simmesh/sink"
)

// Options configures the SimMesh instance.
type Options struct {
	// Config holds the simulation tuning. Defaults to config.Default().
	Config *config.Config
	// Generator overrides the backend selected by Config.Generator.
	Generator generator.Generator
	// Occluder enables line-of-sight filtering during scans. Nil disables it.
	Occluder scanner.Occluder
	// Sinks receive every utterance. Defaults to none.
	Sinks []sink.Sink
	// Logger defaults to NoOp.
	Logger logging.Logger
	// Rand seeds scanning choice and thinking delays. Nil uses the shared
	// source; tests inject a fixed seed.
	Rand *rand.Rand
}

// SimMesh aggregates the wired simulation components.
type SimMesh struct {
	cfg      *config.Config
	registry *registry.InMemory
	ledger   *cooldown.Ledger
	engine   *engine.Engine
	logger   logging.Logger
}

// New creates a SimMesh instance with optional overrides. The configuration
// is validated up front; malformed settings fail here, never mid-session.
func New(optFns ...func(o *Options)) (*SimMesh, error) {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	gen := opts.Generator
	if gen == nil {
		var err error
		gen, err = buildGenerator(opts.Config.Generator)
		if err != nil {
			return nil, err
		}
	}

	reg := registry.NewInMemory()
	ledger := cooldown.NewLedger()

	sc := scanner.New(reg, ledger, func(o *scanner.Options) {
		o.Radius = opts.Config.DetectionRadius
		o.Occluder = opts.Occluder
		o.Rand = opts.Rand
	})

	neg := negotiator.New(reg, ledger, gen, func(o *negotiator.Options) {
		o.PostConversationCooldown = opts.Config.PostConversationCooldown
		o.Logger = opts.Logger
		o.SessionOptions = []func(so *convo.Options){func(so *convo.Options) {
			so.HistoryWindow = opts.Config.HistoryWindow
			so.MaxTurns = opts.Config.MaxTurnsPerSession
			so.MinTurnDelay = opts.Config.MinTurnDelay
			so.MaxTurnDelay = opts.Config.MaxTurnDelay
			so.ClosingGrace = opts.Config.ClosingGrace
			so.ReplyTimeout = opts.Config.ReplyTimeout
			so.Rand = opts.Rand
			so.Sinks = opts.Sinks
			so.Logger = opts.Logger
		}}
	})

	eng := engine.New(reg, sc, neg, ledger, func(o *engine.Options) {
		o.TickInterval = opts.Config.TickInterval
		o.ScanIntervalTicks = opts.Config.ScanIntervalTicks
		o.Logger = opts.Logger
	})

	return &SimMesh{
		cfg:      opts.Config,
		registry: reg,
		ledger:   ledger,
		engine:   eng,
		logger:   opts.Logger,
	}, nil
}

// buildGenerator instantiates the backend named by the configuration.
func buildGenerator(cfg config.GeneratorConfig) (generator.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.New(func(o *gemini.Options) {
			if cfg.BaseURL != "" {
				o.BaseURL = cfg.BaseURL
			}
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.APIKey = cfg.APIKey()
		}), nil
	case "openai":
		return openai.New(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.APIKey = cfg.APIKey()
		}), nil
	case "mock":
		return generator.NewMock(), nil
	default:
		return nil, fmt.Errorf("simmesh: unknown generator provider %q", cfg.Provider)
	}
}

// RegisterAgent adds an agent to the population.
func (m *SimMesh) RegisterAgent(a *core.Agent) error { return m.registry.Register(a) }

// Registry exposes the agent population.
func (m *SimMesh) Registry() *registry.InMemory { return m.registry }

// Cooldowns exposes the cooldown ledger.
func (m *SimMesh) Cooldowns() *cooldown.Ledger { return m.ledger }

// Run drives the tick loop until the context ends.
func (m *SimMesh) Run(ctx context.Context) error { return m.engine.Run(ctx) }

// ForceConversation starts a session between two named idle agents,
// bypassing the scanner but still subject to the exclusivity claim.
func (m *SimMesh) ForceConversation(ctx context.Context, initiatorID, receiverID string) (*convo.Session, error) {
	return m.engine.ForceConversation(ctx, initiatorID, receiverID)
}

// ForceEnd closes the session currently owning the agent, if any.
func (m *SimMesh) ForceEnd(agentID string) error { return m.engine.ForceEnd(agentID) }
