package scanner

import "github.com/hupe1980/simmesh/core"

// Occluder answers line-of-sight queries between two points. A blocked pair
// of agents cannot see, and therefore cannot approach, each other.
type Occluder interface {
	Blocked(from, to core.Vec3) bool
}

// Sphere is an opaque spherical obstacle.
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// SphereObstacles is an Occluder backed by a static set of opaque spheres.
// Suitable for the small scene sizes the simulation targets; a spatial index
// is unnecessary at this scale.
type SphereObstacles struct {
	spheres []Sphere
}

// NewSphereObstacles constructs an occluder from the given obstacles.
func NewSphereObstacles(spheres ...Sphere) *SphereObstacles {
	return &SphereObstacles{spheres: spheres}
}

// Blocked reports whether the segment from->to intersects any obstacle.
func (o *SphereObstacles) Blocked(from, to core.Vec3) bool {
	for _, s := range o.spheres {
		if segmentIntersectsSphere(from, to, s) {
			return true
		}
	}
	return false
}

// segmentIntersectsSphere tests the segment against a sphere by projecting
// the sphere center onto the segment and comparing the closest approach
// against the sphere radius.
func segmentIntersectsSphere(from, to core.Vec3, s Sphere) bool {
	d := to.Sub(from)
	lenSq := d.LengthSq()
	if lenSq == 0 {
		return from.DistanceSq(s.Center) <= s.Radius*s.Radius
	}
	t := s.Center.Sub(from).Dot(d) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := from.Add(d.Scale(t))
	return closest.DistanceSq(s.Center) <= s.Radius*s.Radius
}
