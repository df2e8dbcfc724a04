package marionette

// oscillator is a second-order ODE x'' = accel(x, x').
type oscillator interface {
	accel(x, v float64) float64
}

// rk4Step advances position x and velocity v by h with the classic
// fourth-order Runge-Kutta scheme.
func rk4Step(o oscillator, x, v, h float64) (float64, float64) {
	k1x, k1v := v, o.accel(x, v)

	x2, v2 := x+0.5*h*k1x, v+0.5*h*k1v
	k2x, k2v := v2, o.accel(x2, v2)

	x3, v3 := x+0.5*h*k2x, v+0.5*h*k2v
	k3x, k3v := v3, o.accel(x3, v3)

	x4, v4 := x+h*k3x, v+h*k3v
	k4x, k4v := v4, o.accel(x4, v4)

	x += h / 6 * (k1x + 2*k2x + 2*k3x + k4x)
	v += h / 6 * (k1v + 2*k2v + 2*k3v + k4v)
	return x, v
}

// fixedClock splits elapsed time into fixed sub-steps and carries the
// fractional remainder to the next advance.
type fixedClock struct {
	step      float64
	maxElapse float64
	remainder float64
}

// clockSlack absorbs float error when dt is an exact multiple of step.
const clockSlack = 1e-9

// advance adds dt (capped at maxElapse together with the carried remainder)
// and returns the number of whole sub-steps to integrate.
func (c *fixedClock) advance(dt float64) int {
	if c.step <= 0 {
		return 0
	}
	c.remainder += dt
	if c.maxElapse > 0 && c.remainder > c.maxElapse {
		c.remainder = c.maxElapse
	}
	n := 0
	for c.remainder+clockSlack >= c.step {
		c.remainder -= c.step
		n++
	}
	if c.remainder < 0 {
		c.remainder = 0
	}
	return n
}

func (c *fixedClock) reset() {
	c.remainder = 0
}
