package marionette

import "math"

// PhysicsModel selects the pendulum approximation a body integrates.
type PhysicsModel uint8

const (
	// ModelRigidPendulum swings a fixed-length arm; state is an angle.
	ModelRigidPendulum PhysicsModel = iota
	// ModelSpringPendulum moves a free point on two independent damped
	// springs; state is an X/Y offset.
	ModelSpringPendulum
)

// PhysicsConfig is the payload of physics nodes.
type PhysicsConfig struct {
	Model  PhysicsModel
	Length float64
	// Frequency and Damping are per-axis. The rigid model reads X only.
	Frequency Vec2
	Damping   Vec2
	// LocalGravity, when non-nil, replaces the rig-wide gravity for this body.
	LocalGravity *Vec2

	// MapsParam enables writing Output()*OutputScale into parameter ParamID.
	MapsParam   bool
	ParamID     uint32
	OutputScale Vec2
}

func (*PhysicsConfig) payloadKind() PayloadKind { return PayloadPhysics }

// rigidArm is the angular equation of a damped pendulum hanging along the
// gravity direction.
type rigidArm struct {
	omega2  float64 // ω0²
	damping float64 // 2ζω0f
	rest    float64 // atan2(g.x, g.y)
}

func (r rigidArm) accel(theta, vel float64) float64 {
	return -r.omega2*math.Sin(theta-r.rest) - r.damping*vel
}

// spring is a damped harmonic oscillator with a constant driving force.
type spring struct {
	omega2  float64
	damping float64
	force   float64
}

func (s spring) accel(x, vel float64) float64 {
	return -s.omega2*x - s.damping*vel + s.force
}

// naturalOmega returns sqrt(|g|/length), or 0 for degenerate inputs.
func naturalOmega(g Vec2, length float64) float64 {
	mag := g.Len()
	if mag == 0 || length <= 0 {
		return 0
	}
	return math.Sqrt(mag / length)
}

func (c *PhysicsConfig) rigid(g Vec2) rigidArm {
	w0 := naturalOmega(g, c.Length)
	f := c.Frequency.X
	if f == 0 {
		f = 1
	}
	return rigidArm{
		omega2:  w0 * w0,
		damping: 2 * c.Damping.X * w0 * f,
		rest:    math.Atan2(g.X, g.Y),
	}
}

// springs returns the X and Y oscillators. An axis without an explicit
// frequency oscillates at the pendulum's natural frequency.
func (c *PhysicsConfig) springs(g Vec2) (spring, spring) {
	w0 := naturalOmega(g, c.Length)
	axis := func(freq, zeta, force float64) spring {
		w := w0
		if freq > 0 {
			w = 2 * math.Pi * freq
		}
		if w == 0 {
			return spring{}
		}
		return spring{omega2: w * w, damping: 2 * zeta * w, force: force}
	}
	return axis(c.Frequency.X, c.Damping.X, g.X), axis(c.Frequency.Y, c.Damping.Y, g.Y)
}
