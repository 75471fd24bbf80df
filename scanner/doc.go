// Package scanner implements proximity detection: the radius query an idle
// agent runs on its scan cadence to find conversation partners. Candidates
// are filtered by category mask, eligibility (idle, off cooldown) and an
// optional line-of-sight occlusion test. Selection among multiple candidates
// is uniform random from an injectable source so tests can seed it.
package scanner
