package marionette

import (
	"fmt"
	"math"
)

// axisMatchEpsilon is the tolerance for treating a normalized parameter
// value as sitting exactly on an axis point.
const axisMatchEpsilon = 1e-9

// Parameter is a continuous 1D or 2D control. Its current value is mapped
// through the axis-point grid of every binding once per frame.
type Parameter struct {
	ID   uint32
	Name string
	// IsVec2 enables the Y axis. A 1D parameter ignores AxisPoints[1] and
	// its bindings have a single row.
	IsVec2 bool

	Min     Vec2
	Max     Vec2
	Default Vec2

	// AxisPoints holds the ascending normalized sample coordinates for the
	// X axis ([0]) and Y axis ([1]). An axis with a single point is inert.
	AxisPoints [2][]float64

	Bindings []*Binding

	value    Vec2
	hasValue bool
}

// NewParameter creates a 1D parameter over [min, max] with axis points at
// both ends of the range.
func NewParameter(id uint32, name string, min, max float64) *Parameter {
	return &Parameter{
		ID:         id,
		Name:       name,
		Min:        Vec2{min, 0},
		Max:        Vec2{max, 0},
		AxisPoints: [2][]float64{{0, 1}, {0}},
	}
}

// NewParameter2D creates a 2D parameter over the given per-axis ranges with
// axis points at both ends of each range.
func NewParameter2D(id uint32, name string, min, max Vec2) *Parameter {
	return &Parameter{
		ID:         id,
		Name:       name,
		IsVec2:     true,
		Min:        min,
		Max:        max,
		AxisPoints: [2][]float64{{0, 1}, {0, 1}},
	}
}

// Value returns the current value, or the default when none was set.
func (p *Parameter) Value() Vec2 {
	if !p.hasValue {
		return p.Default
	}
	return p.value
}

// SetValue stores v clamped to the parameter's range. A NaN component is
// ignored and keeps the current value of that axis.
func (p *Parameter) SetValue(v Vec2) {
	cur := p.Value()
	if math.IsNaN(v.X) {
		v.X = cur.X
	}
	if math.IsNaN(v.Y) {
		v.Y = cur.Y
	}
	p.value = p.clamp(v)
	p.hasValue = true
}

// Reset discards the current value so the default applies again.
func (p *Parameter) Reset() {
	p.value = Vec2{}
	p.hasValue = false
}

// AddBinding appends b to the parameter's bindings and returns it.
func (p *Parameter) AddBinding(b *Binding) *Binding {
	p.Bindings = append(p.Bindings, b)
	return b
}

func (p *Parameter) clamp(v Vec2) Vec2 {
	return Vec2{
		X: clampRange(v.X, p.Min.X, p.Max.X),
		Y: clampRange(v.Y, p.Min.Y, p.Max.Y),
	}
}

// normalize clamps v to the range and maps each axis linearly onto [0, 1].
// A zero-width axis maps to 0.
func (p *Parameter) normalize(v Vec2) Vec2 {
	v = p.clamp(v)
	return Vec2{
		X: normalizeAxis(v.X, p.Min.X, p.Max.X),
		Y: normalizeAxis(v.Y, p.Min.Y, p.Max.Y),
	}
}

// axis returns the axis points for axis i, defaulting to a single point.
// The Y axis of a 1D parameter is always a single point.
func (p *Parameter) axis(i int) []float64 {
	if len(p.AxisPoints[i]) == 0 || (i == 1 && !p.IsVec2) {
		return singlePointAxis
	}
	return p.AxisPoints[i]
}

var singlePointAxis = []float64{0}

// validate checks every binding's grid against the axis point counts and,
// for deform bindings, the target mesh vertex count.
func (p *Parameter) validate(g *Graph) error {
	nx, ny := len(p.axis(0)), len(p.axis(1))
	for i, b := range p.Bindings {
		if err := b.validate(nx, ny, g); err != nil {
			return fmt.Errorf("parameter %q binding %d: %w", p.Name, i, err)
		}
	}
	return nil
}

func clampRange(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normalizeAxis(v, lo, hi float64) float64 {
	w := hi - lo
	if w == 0 {
		return 0
	}
	return (v - lo) / w
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// locate brackets the normalized value t between two axis points and returns
// the interpolation fraction between them.
//
// On an exact match the bracket is the matched point and its successor, or
// its predecessor when the match is the last point. Otherwise it is the
// enclosing pair, or the nearest edge pair when t lies outside the points.
// The fraction is measured after clamping t into the bracket's own span, so
// axis points that stop short of 0 or 1 leave no dead zone.
func locate(t float64, points []float64) (lo, hi int, frac float64) {
	n := len(points)
	if n <= 1 {
		return 0, 0, 0
	}

	lo, hi = -1, -1
	for i, p := range points {
		if math.Abs(t-p) <= axisMatchEpsilon {
			if i == n-1 {
				lo, hi = i-1, i
			} else {
				lo, hi = i, i+1
			}
			break
		}
	}
	if lo < 0 {
		switch {
		case t < points[0]:
			lo, hi = 0, 1
		case t > points[n-1]:
			lo, hi = n-2, n-1
		default:
			for i := 0; i < n-1; i++ {
				if t >= points[i] && t <= points[i+1] {
					lo, hi = i, i+1
					break
				}
			}
			if lo < 0 {
				// Unordered points; fall back to the last pair.
				lo, hi = n-2, n-1
			}
		}
	}

	a, b := points[lo], points[hi]
	w := b - a
	if w == 0 {
		return lo, hi, 0
	}
	tc := clampRange(t, a, b)
	return lo, hi, clamp01((tc - a) / w)
}

// ParamSystem maps parameter values through their bindings onto node
// transforms, zsort, opacity and deform stacks.
type ParamSystem struct {
	params []*Parameter
	byID   map[uint32]*Parameter
	byName map[string]*Parameter

	// applied is scratch for one ApplyAll pass.
	applied map[uint32]struct{}
	scratch []Vec2
}

// NewParamSystem indexes params by id and name. Later duplicates of a name
// do not replace earlier ones in name lookups.
func NewParamSystem(params []*Parameter) *ParamSystem {
	ps := &ParamSystem{
		params:  params,
		byID:    make(map[uint32]*Parameter, len(params)),
		byName:  make(map[string]*Parameter, len(params)),
		applied: make(map[uint32]struct{}, len(params)),
	}
	for _, p := range params {
		if p == nil {
			panic("marionette: nil parameter")
		}
		if _, ok := ps.byID[p.ID]; !ok {
			ps.byID[p.ID] = p
		}
		if _, ok := ps.byName[p.Name]; !ok {
			ps.byName[p.Name] = p
		}
	}
	return ps
}

// Params returns every parameter in load order.
// The returned slice MUST NOT be mutated by the caller.
func (ps *ParamSystem) Params() []*Parameter {
	return ps.params
}

// Param returns the parameter with the given id, or nil.
func (ps *ParamSystem) Param(id uint32) *Parameter {
	return ps.byID[id]
}

// ParamByName returns the parameter with the given name, or nil.
func (ps *ParamSystem) ParamByName(name string) *Parameter {
	return ps.byName[name]
}

// ResetToDefaults discards every parameter's current value.
func (ps *ParamSystem) ResetToDefaults() {
	for _, p := range ps.params {
		p.Reset()
	}
}

// validate checks every parameter's bindings against g.
func (ps *ParamSystem) validate(g *Graph) error {
	for _, p := range ps.params {
		if err := p.validate(g); err != nil {
			return err
		}
	}
	return nil
}

// applyStats reports what one ApplyAll pass touched.
type applyStats struct {
	params   int
	bindings int
	skipped  int
}

// applyAll applies every parameter at most once to f.
func (ps *ParamSystem) applyAll(f *frameTargets) applyStats {
	var st applyStats
	clear(ps.applied)
	for _, p := range ps.params {
		if _, done := ps.applied[p.ID]; done {
			continue
		}
		ps.applied[p.ID] = struct{}{}
		st.params++

		t := p.normalize(p.Value())
		xlo, xhi, fx := locate(t.X, p.axis(0))
		ylo, yhi, fy := locate(t.Y, p.axis(1))
		c := cellRect{xlo: xlo, xhi: xhi, ylo: ylo, yhi: yhi, fx: clamp01(fx), fy: clamp01(fy)}

		for _, b := range p.Bindings {
			if ps.applyBinding(p, b, c, f) {
				st.bindings++
			} else {
				st.skipped++
			}
		}
	}
	return st
}

// applyBinding interpolates b at c and dispatches the result to the target
// node. Reports false when the target is missing or cannot take the value.
func (ps *ParamSystem) applyBinding(p *Parameter, b *Binding, c cellRect, f *frameTargets) bool {
	idx, ok := f.graph.indexOf(b.Node)
	if !ok {
		return false
	}

	if b.Target == PropDeform {
		stack := f.deformStack(idx)
		if stack == nil || !b.hasCells() {
			return false
		}
		ps.scratch = b.interpolateDeform(c, ps.scratch)
		stack.Set(ParamSource(p.ID), ps.scratch)
		return true
	}

	if !b.hasCells() {
		return false
	}
	v := b.interpolate(c)

	switch b.Target {
	case PropZSort:
		zs := f.zsorts.state(idx)
		if zs == nil {
			return false
		}
		zs.base += v
		return true
	case PropOpacity:
		if idx >= len(f.opacity) {
			return false
		}
		f.opacity[idx] = clamp01(v)
		return true
	}

	ts := f.transforms.state(idx)
	if ts == nil {
		return false
	}
	rel := &ts.relative
	switch b.Target {
	case PropTranslateX:
		rel.Translation.X += v
	case PropTranslateY:
		rel.Translation.Y += v
	case PropScaleX:
		rel.Scale.X *= v
	case PropScaleY:
		rel.Scale.Y *= v
	case PropRotateX:
		rel.Rotation.X += v
	case PropRotateY:
		rel.Rotation.Y += v
	case PropRotateZ:
		rel.Rotation.Z += v
	default:
		return false
	}
	return true
}
