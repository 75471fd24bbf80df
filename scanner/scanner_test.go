package scanner

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simmesh/cooldown"
	"github.com/hupe1980/simmesh/core"
	"github.com/hupe1980/simmesh/registry"
)

func place(t *testing.T, reg *registry.InMemory, name string, pos core.Vec3) *core.Agent {
	t.Helper()
	a := core.NewAgent(name, "persona")
	a.SetPosition(pos)
	require.NoError(t, reg.Register(a))
	return a
}

func ids(agents []*core.Agent) map[string]bool {
	out := make(map[string]bool, len(agents))
	for _, a := range agents {
		out[a.ID] = true
	}
	return out
}

func TestCandidates_GeometricSet(t *testing.T) {
	reg := registry.NewInMemory()
	ledger := cooldown.NewLedger()

	self := place(t, reg, "Self", core.Vec3{})
	near := place(t, reg, "Near", core.Vec3{X: 3})
	edge := place(t, reg, "Edge", core.Vec3{X: 4})
	far := place(t, reg, "Far", core.Vec3{X: 4.01})

	sc := New(reg, ledger, func(o *Options) { o.Radius = 4 })

	got := ids(sc.Candidates(self))
	assert.True(t, got[near.ID])
	assert.True(t, got[edge.ID], "radius is inclusive")
	assert.False(t, got[far.ID])
	assert.False(t, got[self.ID], "self is never a candidate")
}

func TestCandidates_EligibilityFilters(t *testing.T) {
	reg := registry.NewInMemory()
	ledger := cooldown.NewLedger()

	self := place(t, reg, "Self", core.Vec3{})
	cooled := place(t, reg, "Cooled", core.Vec3{X: 1})
	busy := place(t, reg, "Busy", core.Vec3{X: 2})
	prop := place(t, reg, "Crate", core.Vec3{X: 1})
	ok := place(t, reg, "Ok", core.Vec3{X: 3})

	ledger.Start(cooled.ID, time.Minute)
	require.True(t, busy.BeginNegotiation())
	require.True(t, busy.EnterSession(core.RoleReceiver, "x", "s"))
	prop.Category = core.CategoryProp

	sc := New(reg, ledger, func(o *Options) { o.Radius = 4 })

	got := ids(sc.Candidates(self))
	assert.False(t, got[cooled.ID], "agents on cooldown are never candidates")
	assert.False(t, got[busy.ID], "in-session agents are never candidates")
	assert.False(t, got[prop.ID], "category mask excludes non-agents")
	assert.True(t, got[ok.ID])
}

func TestCandidates_Occlusion(t *testing.T) {
	reg := registry.NewInMemory()
	ledger := cooldown.NewLedger()

	self := place(t, reg, "Self", core.Vec3{})
	hidden := place(t, reg, "Hidden", core.Vec3{X: 4})
	visible := place(t, reg, "Visible", core.Vec3{Y: 3})

	// A wall sphere sits between self and hidden.
	occluder := NewSphereObstacles(Sphere{Center: core.Vec3{X: 2}, Radius: 0.5})

	sc := New(reg, ledger, func(o *Options) {
		o.Radius = 5
		o.Occluder = occluder
	})

	got := ids(sc.Candidates(self))
	assert.False(t, got[hidden.ID], "blocked line of sight excludes the candidate")
	assert.True(t, got[visible.ID])
}

func TestPick_SeededChoiceIsDeterministic(t *testing.T) {
	build := func(seed int64) (*Scanner, *core.Agent, *registry.InMemory) {
		reg := registry.NewInMemory()
		ledger := cooldown.NewLedger()
		self := place(t, reg, "Self", core.Vec3{})
		place(t, reg, "A", core.Vec3{X: 1})
		place(t, reg, "B", core.Vec3{X: 2})
		place(t, reg, "C", core.Vec3{X: 3})
		sc := New(reg, ledger, func(o *Options) {
			o.Radius = 4
			o.Rand = rand.New(rand.NewSource(seed))
		})
		return sc, self, reg
	}

	sc1, self1, _ := build(42)
	sc2, self2, _ := build(42)

	for i := 0; i < 10; i++ {
		p1, ok1 := sc1.Pick(self1)
		p2, ok2 := sc2.Pick(self2)
		require.True(t, ok1)
		require.True(t, ok2)
		assert.Equal(t, p1.Name, p2.Name, "same seed must yield the same pick sequence")
	}
}

func TestPick_NoCandidates(t *testing.T) {
	reg := registry.NewInMemory()
	ledger := cooldown.NewLedger()
	self := place(t, reg, "Self", core.Vec3{})
	place(t, reg, "Far", core.Vec3{X: 100})

	sc := New(reg, ledger, func(o *Options) { o.Radius = 4 })

	_, ok := sc.Pick(self)
	assert.False(t, ok, "an agent with no eligible candidates does nothing this cycle")
}

func TestSegmentIntersectsSphere(t *testing.T) {
	s := Sphere{Center: core.Vec3{X: 5}, Radius: 1}
	assert.True(t, segmentIntersectsSphere(core.Vec3{}, core.Vec3{X: 10}, s))
	assert.False(t, segmentIntersectsSphere(core.Vec3{}, core.Vec3{X: 3}, s), "segment ends before the sphere")
	assert.False(t, segmentIntersectsSphere(core.Vec3{Y: 5}, core.Vec3{X: 10, Y: 5}, s), "segment passes beside the sphere")
	assert.True(t, segmentIntersectsSphere(core.Vec3{X: 5.5}, core.Vec3{X: 5.5}, Sphere{Center: core.Vec3{X: 5}, Radius: 1}), "degenerate segment inside the sphere")
}
