package scanner

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/simmesh/core"
)

// Population is the read side of the agent registry the scanner queries.
type Population interface {
	All() []*core.Agent
}

// EligibilityChecker gates candidates on cooldown state. Satisfied by
// *cooldown.Ledger.
type EligibilityChecker interface {
	IsEligible(agentID string) bool
}

// Options configures a Scanner.
type Options struct {
	// Radius is the detection radius of the overlap query. Must be positive.
	Radius float64
	// Mask filters which categories of entities count as candidates.
	Mask core.Category
	// Occluder excludes candidates whose line of sight is blocked. Nil
	// disables the occlusion test.
	Occluder Occluder
	// Rand drives candidate selection. Nil falls back to the shared
	// math/rand source.
	Rand *rand.Rand
}

// Scanner finds eligible conversation partners within a detection radius.
type Scanner struct {
	population Population
	eligible   EligibilityChecker
	opts       Options

	randMu sync.Mutex
}

// New creates a scanner over the given population.
func New(population Population, eligible EligibilityChecker, optFns ...func(o *Options)) *Scanner {
	opts := Options{
		Radius: 4.0,
		Mask:   core.CategoryAgent,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scanner{population: population, eligible: eligible, opts: opts}
}

// Candidates returns every agent within the detection radius of self that
// passes the category mask, is idle and off cooldown, and is not occluded.
// The result is empty (never an error) when nothing qualifies.
func (s *Scanner) Candidates(self *core.Agent) []*core.Agent {
	origin := self.Position()
	radiusSq := s.opts.Radius * s.opts.Radius

	var out []*core.Agent
	for _, other := range s.population.All() {
		if other.ID == self.ID {
			continue
		}
		if !other.Category.Matches(s.opts.Mask) {
			continue
		}
		if other.Position().DistanceSq(origin) > radiusSq {
			continue
		}
		if other.State() != core.StateIdle || !s.eligible.IsEligible(other.ID) {
			continue
		}
		if s.opts.Occluder != nil && s.opts.Occluder.Blocked(origin, other.Position()) {
			continue
		}
		out = append(out, other)
	}
	return out
}

// Pick runs a scan for self and selects one candidate uniformly at random.
// Returns false when the scan yields no eligible candidate, in which case the
// agent simply waits for its next scheduled scan.
func (s *Scanner) Pick(self *core.Agent) (*core.Agent, bool) {
	candidates := s.Candidates(self)
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[s.intn(len(candidates))], true
}

func (s *Scanner) intn(n int) int {
	if s.opts.Rand == nil {
		return rand.Intn(n)
	}
	// rand.Rand is not safe for concurrent use.
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.opts.Rand.Intn(n)
}
