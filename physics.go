package marionette

import (
	"errors"
	"fmt"
	"math"
)

// Default physics constants.
const (
	DefaultSubStep        = 0.01 // seconds per integration step
	DefaultMaxCatchUp     = 10.0 // seconds integrated at most per advance
	DefaultPixelsPerMeter = 1000.0
)

var (
	// ErrNegativeDelta is returned when a frame advances by a negative time.
	ErrNegativeDelta = errors.New("negative frame delta")
	// ErrNonFiniteDelta is returned when a frame advances by NaN or infinity.
	ErrNonFiniteDelta = errors.New("non-finite frame delta")
)

// checkDelta rejects frame deltas the fixed-step clock cannot absorb.
func checkDelta(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("marionette: %w: %v", ErrNonFiniteDelta, dt)
	}
	if dt < 0 {
		return fmt.Errorf("marionette: %w: %v", ErrNegativeDelta, dt)
	}
	return nil
}

// PhysicsSettings holds the rig-wide physics constants supplied by the loader.
type PhysicsSettings struct {
	Gravity Vec2
	// PixelsPerMeter is carried for renderers and tools; the integrator
	// works in rig units and does not convert.
	PixelsPerMeter float64
	SubStep        float64
	MaxCatchUp     float64
}

// DefaultPhysicsSettings returns earth gravity pointing down (+Y) with a
// 10 ms sub-step and a 10 s catch-up ceiling.
func DefaultPhysicsSettings() PhysicsSettings {
	return PhysicsSettings{
		Gravity:        Vec2{0, 9.8},
		PixelsPerMeter: DefaultPixelsPerMeter,
		SubStep:        DefaultSubStep,
		MaxCatchUp:     DefaultMaxCatchUp,
	}
}

func (s *PhysicsSettings) applyDefaults() {
	if s.SubStep <= 0 {
		s.SubStep = DefaultSubStep
	}
	if s.MaxCatchUp <= 0 {
		s.MaxCatchUp = DefaultMaxCatchUp
	}
	if s.PixelsPerMeter <= 0 {
		s.PixelsPerMeter = DefaultPixelsPerMeter
	}
}

// PhysicsBody is the runtime state of one physics node. Configuration is
// fixed at creation; integration state persists across frames until Reset.
type PhysicsBody struct {
	Node   uint32
	Config PhysicsConfig
	// Anchor is the node's static translation when the body was created.
	Anchor Vec3

	// pos/vel hold (angle, unused) for the rigid model and (x, y) for the
	// spring model.
	pos   Vec2
	vel   Vec2
	clock fixedClock
}

func newPhysicsBody(n *Node, cfg *PhysicsConfig, s PhysicsSettings) *PhysicsBody {
	return &PhysicsBody{
		Node:   n.ID,
		Config: *cfg,
		Anchor: n.Offset.Translation,
		clock:  fixedClock{step: s.SubStep, maxElapse: s.MaxCatchUp},
	}
}

// State returns the integration position and velocity.
func (b *PhysicsBody) State() (pos, vel Vec2) {
	return b.pos, b.vel
}

// Output returns (angle, 1) for the rigid model and (x/length, y/length)
// for the spring model.
func (b *PhysicsBody) Output() Vec2 {
	switch b.Config.Model {
	case ModelSpringPendulum:
		if b.Config.Length <= 0 {
			return Vec2{}
		}
		return Vec2{b.pos.X / b.Config.Length, b.pos.Y / b.Config.Length}
	default:
		return Vec2{b.pos.X, 1}
	}
}

// Reset zeroes integration state and keeps configuration.
func (b *PhysicsBody) Reset() {
	b.pos = Vec2{}
	b.vel = Vec2{}
	b.clock.reset()
}

func (b *PhysicsBody) gravity(global Vec2) Vec2 {
	if b.Config.LocalGravity != nil {
		return *b.Config.LocalGravity
	}
	return global
}

// advance integrates dt seconds and returns the number of sub-steps taken.
func (b *PhysicsBody) advance(dt float64, global Vec2) int {
	steps := b.clock.advance(dt)
	if steps == 0 {
		return 0
	}
	g := b.gravity(global)
	h := b.clock.step
	switch b.Config.Model {
	case ModelSpringPendulum:
		sx, sy := b.Config.springs(g)
		for i := 0; i < steps; i++ {
			b.pos.X, b.vel.X = rk4Step(sx, b.pos.X, b.vel.X, h)
			b.pos.Y, b.vel.Y = rk4Step(sy, b.pos.Y, b.vel.Y, h)
		}
	default:
		arm := b.Config.rigid(g)
		for i := 0; i < steps; i++ {
			b.pos.X, b.vel.X = rk4Step(arm, b.pos.X, b.vel.X, h)
		}
	}
	return steps
}

// PhysicsSystem integrates every pendulum body and feeds results back into
// parameters.
type PhysicsSystem struct {
	settings PhysicsSettings
	bodies   []*PhysicsBody
}

// NewPhysicsSystem creates a body for every physics node in g.
func NewPhysicsSystem(g *Graph, settings PhysicsSettings) *PhysicsSystem {
	settings.applyDefaults()
	ps := &PhysicsSystem{settings: settings}
	g.Walk(func(n *Node) {
		if cfg, ok := n.Payload.(*PhysicsConfig); ok {
			ps.bodies = append(ps.bodies, newPhysicsBody(n, cfg, settings))
		}
	})
	return ps
}

// Settings returns the physics constants in use.
func (ps *PhysicsSystem) Settings() PhysicsSettings {
	return ps.settings
}

// SetGravity replaces the rig-wide gravity vector.
func (ps *PhysicsSystem) SetGravity(g Vec2) {
	ps.settings.Gravity = g
}

// Bodies returns every body in graph pre-order.
// The returned slice MUST NOT be mutated by the caller.
func (ps *PhysicsSystem) Bodies() []*PhysicsBody {
	return ps.bodies
}

// Body returns the body attached to node id, or nil.
func (ps *PhysicsSystem) Body(node uint32) *PhysicsBody {
	for _, b := range ps.bodies {
		if b.Node == node {
			return b
		}
	}
	return nil
}

// Step advances every body by dt seconds and writes mapped outputs into
// params. A dt of zero is valid and leaves state untouched; a negative or
// non-finite dt is an error and nothing is advanced. Returns the
// total number of sub-steps integrated.
func (ps *PhysicsSystem) Step(dt float64, params *ParamSystem) (int, error) {
	if err := checkDelta(dt); err != nil {
		return 0, err
	}
	total := 0
	for _, b := range ps.bodies {
		total += b.advance(dt, ps.settings.Gravity)
		if !b.Config.MapsParam || params == nil {
			continue
		}
		p := params.Param(b.Config.ParamID)
		if p == nil {
			continue
		}
		p.SetValue(b.Output().Mul(b.Config.OutputScale))
	}
	return total, nil
}

// Reset zeroes every body's integration state.
func (ps *PhysicsSystem) Reset() {
	for _, b := range ps.bodies {
		b.Reset()
	}
}
