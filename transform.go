package marionette

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// transformState is the per-node transform store entry.
type transformState struct {
	// relative starts each frame as the node's static offset and is
	// accumulated into by bindings.
	relative Offset
	absolute mgl64.Mat4
}

// transformStore holds transform state for every node, indexed by the
// graph's arena index.
type transformStore struct {
	states []transformState
}

func newTransformStore(g *Graph) *transformStore {
	s := &transformStore{states: make([]transformState, g.Len())}
	s.reset(g)
	return s
}

// state returns the entry for arena index i, or nil when the store has no
// entry for it.
func (s *transformStore) state(i int) *transformState {
	if i < 0 || i >= len(s.states) {
		return nil
	}
	return &s.states[i]
}

// reset copies every node's static offset into its relative offset and
// clears the absolute matrix.
func (s *transformStore) reset(g *Graph) {
	for _, i := range g.preorder() {
		st := s.state(i)
		if st == nil {
			continue
		}
		st.relative = g.nodes[i].Offset
		st.absolute = mgl64.Ident4()
	}
}

// update recomputes absolute matrices top-down. The pre-order guarantees
// that a node's parent, and the root, are computed before the node itself.
func (s *transformStore) update(g *Graph) {
	root := s.state(0)
	for _, i := range g.preorder() {
		st := s.state(i)
		if st == nil {
			continue
		}
		local := computeLocalMatrix(st.relative)
		n := g.nodes[i]
		switch {
		case n.parentIdx < 0:
			st.absolute = local
		case n.LockToRoot && root != nil:
			st.absolute = root.absolute.Mul4(local)
		default:
			parent := s.state(n.parentIdx)
			if parent == nil {
				st.absolute = local
				continue
			}
			st.absolute = parent.absolute.Mul4(local)
		}
	}
}

// computeLocalMatrix builds T(translation) * Rx * Ry * Rz * S(scale.x, scale.y, 1).
func computeLocalMatrix(o Offset) mgl64.Mat4 {
	tx, ty := o.Translation.X, o.Translation.Y
	if o.PixelSnap {
		tx = math.Round(tx)
		ty = math.Round(ty)
	}
	m := mgl64.Translate3D(tx, ty, o.Translation.Z)
	if o.Rotation.X != 0 {
		m = m.Mul4(mgl64.HomogRotate3DX(o.Rotation.X))
	}
	if o.Rotation.Y != 0 {
		m = m.Mul4(mgl64.HomogRotate3DY(o.Rotation.Y))
	}
	if o.Rotation.Z != 0 {
		m = m.Mul4(mgl64.HomogRotate3DZ(o.Rotation.Z))
	}
	return m.Mul4(mgl64.Scale3D(o.Scale.X, o.Scale.Y, 1))
}

// transformPoint applies m to the point (v.X, v.Y, 0) and drops Z.
func transformPoint(m mgl64.Mat4, v Vec2) Vec2 {
	return Vec2{
		X: m[0]*v.X + m[4]*v.Y + m[12],
		Y: m[1]*v.X + m[5]*v.Y + m[13],
	}
}

// affine2D projects m onto the XY plane as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func affine2D(m mgl64.Mat4) [6]float64 {
	return [6]float64{m[0], m[1], m[4], m[5], m[12], m[13]}
}
