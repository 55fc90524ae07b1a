// Package physics runs the force-directed layout: pairwise repulsion,
// springs along edges, a weak pull towards the centre, damping, and a
// frame-driven loop that stops once the layout has settled.
package physics

import (
	"time"

	"github.com/ha1tch/reseau/pkg/geom"
)

// Profile is the set of tunables the simulation runs with. Hosts pick one
// at construction time; the engine never inspects the machine itself.
type Profile struct {
	Name string

	// FrameInterval is the minimum time between two executed steps.
	FrameInterval time.Duration

	// Stride > 1 samples only every Stride-th pair and edge per step, rotating
	// the sample so each is visited once every Stride steps.
	Stride int

	// EdgeCap bounds the springs applied per step. Zero means no cap.
	EdgeCap int

	// Damping is the share of velocity kept after each step (< 1).
	Damping float64

	Repulsion       float64
	Softening       float64 // added to the squared distance
	SpringLength    float64
	SpringStiffness float64
	Gravity         float64
	Centre          geom.Vec

	// The layout is stable once the sum of the per-node mean displacement
	// over the last StabilityWindow steps stays under StabilityThreshold
	// for StableFrames consecutive steps.
	StabilityWindow    int
	StabilityThreshold float64
	StableFrames       int
}

// StandardProfile returns the profile for ordinary hosts: about 60 steps per
// second over every pair and edge.
func StandardProfile() Profile {
	return Profile{
		Name:               "standard",
		FrameInterval:      time.Second / 60,
		Stride:             1,
		EdgeCap:            0,
		Damping:            0.9,
		Repulsion:          2000,
		Softening:          0.01,
		SpringLength:       100,
		SpringStiffness:    0.01,
		Gravity:            0.001,
		Centre:             geom.Vec{X: 400, Y: 300},
		StabilityWindow:    30,
		StabilityThreshold: 0.5,
		StableFrames:       30,
	}
}

// LowPowerProfile returns the profile for constrained hosts: about 30 steps
// per second, half the pairs and edges, at most 150 springs, and more
// friction so motion settles sooner.
func LowPowerProfile() Profile {
	p := StandardProfile()
	p.Name = "low-power"
	p.FrameInterval = time.Second / 30
	p.Stride = 2
	p.EdgeCap = 150
	p.Damping = 0.8
	return p
}

// ProfileByName returns the named profile. Unknown names yield the
// standard profile and false.
func ProfileByName(name string) (Profile, bool) {
	switch name {
	case "standard", "":
		return StandardProfile(), true
	case "low-power", "lowpower", "low":
		return LowPowerProfile(), true
	}
	return StandardProfile(), false
}

// withDefaults fills zero fields from the standard profile.
func (p Profile) withDefaults() Profile {
	d := StandardProfile()
	if p.FrameInterval <= 0 {
		p.FrameInterval = d.FrameInterval
	}
	if p.Stride < 1 {
		p.Stride = 1
	}
	if p.EdgeCap < 0 {
		p.EdgeCap = 0
	}
	if p.Damping <= 0 || p.Damping >= 1 {
		p.Damping = d.Damping
	}
	if p.StabilityWindow < 1 {
		p.StabilityWindow = d.StabilityWindow
	}
	if p.StabilityThreshold <= 0 {
		p.StabilityThreshold = d.StabilityThreshold
	}
	if p.StableFrames < 1 {
		p.StableFrames = d.StableFrames
	}
	return p
}
