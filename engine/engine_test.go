package engine

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simmesh/convo"
	"github.com/hupe1980/simmesh/cooldown"
	"github.com/hupe1980/simmesh/core"
	"github.com/hupe1980/simmesh/generator"
	"github.com/hupe1980/simmesh/negotiator"
	"github.com/hupe1980/simmesh/registry"
	"github.com/hupe1980/simmesh/scanner"
)

type fixture struct {
	engine *Engine
	reg    *registry.InMemory
	ledger *cooldown.Ledger
	neg    *negotiator.Negotiator
}

func newFixture(t *testing.T, gen generator.Generator, cooldownDur time.Duration) *fixture {
	t.Helper()
	reg := registry.NewInMemory()
	ledger := cooldown.NewLedger()

	sc := scanner.New(reg, ledger, func(o *scanner.Options) {
		o.Radius = 4
		o.Rand = rand.New(rand.NewSource(7))
	})

	neg := negotiator.New(reg, ledger, gen, func(o *negotiator.Options) {
		o.PostConversationCooldown = cooldownDur
		o.SessionOptions = []func(so *convo.Options){func(so *convo.Options) {
			so.MinTurnDelay = 0
			so.MaxTurnDelay = 0
			so.ClosingGrace = time.Millisecond
		}}
	})

	eng := New(reg, sc, neg, ledger, func(o *Options) {
		o.TickInterval = time.Millisecond
		o.ScanIntervalTicks = 1
	})
	return &fixture{engine: eng, reg: reg, ledger: ledger, neg: neg}
}

func place(t *testing.T, reg *registry.InMemory, name string, pos core.Vec3) *core.Agent {
	t.Helper()
	a := core.NewAgent(name, "persona")
	a.SetPosition(pos)
	require.NoError(t, reg.Register(a))
	return a
}

func TestTick_ScanPassPairsNearbyAgents(t *testing.T) {
	gen := generator.NewMock("Hello there!", "Goodbye.")
	gen.SetDelay(50 * time.Millisecond) // keeps the session observable after the tick
	f := newFixture(t, gen, 500*time.Millisecond)

	red := place(t, f.reg, "Red", core.Vec3{})
	blue := place(t, f.reg, "Blue", core.Vec3{X: 3})
	place(t, f.reg, "Far", core.Vec3{X: 50})

	f.engine.tick(context.Background(), time.Millisecond)

	assert.Equal(t, 1, f.neg.ActivePairs(), "one pair within radius should be claimed")
	assert.Equal(t, core.StateInSession, red.State())
	assert.Equal(t, core.StateInSession, blue.State())

	// The session runs to its farewell and releases both into cooldown.
	require.Eventually(t, func() bool {
		return red.State() == core.StateCooldown && blue.State() == core.StateCooldown
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, 0, f.neg.ActivePairs())
	assert.False(t, f.ledger.IsEligible(red.ID))
}

func TestTick_CooldownExpiryRestoresIdle(t *testing.T) {
	f := newFixture(t, generator.NewMock(), 30*time.Millisecond)

	red := place(t, f.reg, "Red", core.Vec3{})
	require.True(t, red.BeginNegotiation())
	require.True(t, red.EnterSession(core.RoleInitiator, "x", "s"))
	require.True(t, red.LeaveSession("s"))
	f.ledger.Start(red.ID, 30*time.Millisecond)

	f.engine.tick(context.Background(), 10*time.Millisecond)
	assert.Equal(t, core.StateCooldown, red.State())

	f.engine.tick(context.Background(), 50*time.Millisecond)
	assert.Equal(t, core.StateIdle, red.State())
}

func TestTick_NoScanOffCadence(t *testing.T) {
	f := newFixture(t, generator.NewMock(), time.Second)
	f.engine.opts.ScanIntervalTicks = 5

	place(t, f.reg, "Red", core.Vec3{})
	place(t, f.reg, "Blue", core.Vec3{X: 1})

	for i := 0; i < 4; i++ {
		f.engine.tick(context.Background(), time.Millisecond)
	}
	assert.Equal(t, 0, f.neg.ActivePairs(), "no scan before the cadence boundary")

	f.engine.tick(context.Background(), time.Millisecond)
	assert.Equal(t, 1, f.neg.ActivePairs(), "fifth tick runs the scan pass")
}

func TestForceConversation_DirectorBypassesScanner(t *testing.T) {
	gen := generator.NewMock("Hello!", "Goodbye.")
	gen.SetDelay(50 * time.Millisecond)
	f := newFixture(t, gen, time.Second)

	// Far apart: the scanner would never pair them.
	red := place(t, f.reg, "Red", core.Vec3{})
	blue := place(t, f.reg, "Blue", core.Vec3{X: 100})

	session, err := f.engine.ForceConversation(context.Background(), red.ID, blue.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.engine.ActiveSessions())

	require.Eventually(t, func() bool { return session.Status() == convo.StatusClosed }, 2*time.Second, time.Millisecond)

	// The closed session drops out of the engine's table on its own.
	require.Eventually(t, func() bool { return f.engine.ActiveSessions() == 0 }, time.Second, time.Millisecond)

	// Still subject to exclusivity afterwards: both are on cooldown.
	_, err = f.engine.ForceConversation(context.Background(), red.ID, blue.ID)
	assert.ErrorIs(t, err, negotiator.ErrNotEligible)
}

func TestNew_ClampsNonPositiveOptions(t *testing.T) {
	reg := registry.NewInMemory()
	ledger := cooldown.NewLedger()
	sc := scanner.New(reg, ledger)
	neg := negotiator.New(reg, ledger, generator.NewMock())

	eng := New(reg, sc, neg, ledger, func(o *Options) {
		o.TickInterval = 0
		o.ScanIntervalTicks = 0
	})

	assert.Equal(t, 50*time.Millisecond, eng.opts.TickInterval)
	assert.Equal(t, 30, eng.opts.ScanIntervalTicks)

	require.NotPanics(t, func() { eng.tick(context.Background(), time.Millisecond) })
}

func TestForceEnd_ClosesOwningSession(t *testing.T) {
	gen := generator.NewMock()
	gen.SetDelay(time.Hour) // keeps the session open
	f := newFixture(t, gen, time.Second)

	red := place(t, f.reg, "Red", core.Vec3{})
	blue := place(t, f.reg, "Blue", core.Vec3{X: 1})

	session, err := f.engine.ForceConversation(context.Background(), red.ID, blue.ID)
	require.NoError(t, err)

	require.NoError(t, f.engine.ForceEnd(blue.ID))
	assert.Equal(t, convo.StatusClosed, session.Status())
	assert.Equal(t, core.StateCooldown, red.State())

	assert.ErrorIs(t, f.engine.ForceEnd(blue.ID), ErrNoSession)
}

func TestRun_ShutdownClosesSessions(t *testing.T) {
	gen := generator.NewMock()
	gen.SetDelay(time.Hour)
	f := newFixture(t, gen, time.Second)

	place(t, f.reg, "Red", core.Vec3{})
	place(t, f.reg, "Blue", core.Vec3{X: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.engine.Run(ctx) }()

	require.Eventually(t, func() bool { return f.engine.ActiveSessions() > 0 }, 2*time.Second, time.Millisecond)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.neg.ActivePairs())
}
