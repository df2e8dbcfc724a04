package marionette

import (
	"errors"
	"fmt"
)

// Binding ties one property of one node to a parameter. Cell values are
// authored at every combination of the parameter's axis points and indexed
// [x][y].
type Binding struct {
	Node   uint32
	Target PropertyKind

	// Values holds scalar cells for every kind except PropDeform.
	Values [][]float64
	// Deforms holds one displacement per mesh vertex for PropDeform.
	Deforms [][][]Vec2
	// IsSet marks authored cells. Nil means every cell is authored. Unset
	// cells fall back to the [0][0] value.
	IsSet [][]bool
}

// NewValueBinding creates a scalar binding from a [x][y] grid.
func NewValueBinding(node uint32, target PropertyKind, values [][]float64) *Binding {
	return &Binding{Node: node, Target: target, Values: values}
}

// NewDeformBinding creates a deform binding from a [x][y][vertex] grid.
func NewDeformBinding(node uint32, deforms [][][]Vec2) *Binding {
	return &Binding{Node: node, Target: PropDeform, Deforms: deforms}
}

// cellRect is the pair of brackets and fractions produced by locating a
// parameter value on both axes.
type cellRect struct {
	xlo, xhi, ylo, yhi int
	fx, fy             float64
}

var errEmptyGrid = errors.New("binding has no cells")

func (b *Binding) hasCells() bool {
	if b.Target == PropDeform {
		return len(b.Deforms) > 0 && len(b.Deforms[0]) > 0
	}
	return len(b.Values) > 0 && len(b.Values[0]) > 0
}

func (b *Binding) cellSet(x, y int) bool {
	if b.IsSet == nil {
		return true
	}
	if x >= len(b.IsSet) || y >= len(b.IsSet[x]) {
		return false
	}
	return b.IsSet[x][y]
}

// value returns cell (x, y), or the top-left cell when it is missing or unset.
func (b *Binding) value(x, y int) float64 {
	if x < len(b.Values) && y < len(b.Values[x]) && b.cellSet(x, y) {
		return b.Values[x][y]
	}
	return b.Values[0][0]
}

func (b *Binding) deform(x, y int) []Vec2 {
	if x < len(b.Deforms) && y < len(b.Deforms[x]) && b.cellSet(x, y) {
		return b.Deforms[x][y]
	}
	return b.Deforms[0][0]
}

// interpolate blends the four corner cells along Y first, then along X.
// Authoring tools bake their previews in this order.
func (b *Binding) interpolate(c cellRect) float64 {
	v00 := b.value(c.xlo, c.ylo)
	v01 := b.value(c.xlo, c.yhi)
	v10 := b.value(c.xhi, c.ylo)
	v11 := b.value(c.xhi, c.yhi)
	lo := lerp(v00, v01, c.fy)
	hi := lerp(v10, v11, c.fy)
	return lerp(lo, hi, c.fx)
}

// interpolateDeform blends the corner displacement arrays per vertex in the
// same order as interpolate, writing into dst.
func (b *Binding) interpolateDeform(c cellRect, dst []Vec2) []Vec2 {
	d00 := b.deform(c.xlo, c.ylo)
	d01 := b.deform(c.xlo, c.yhi)
	d10 := b.deform(c.xhi, c.ylo)
	d11 := b.deform(c.xhi, c.yhi)
	n := len(d00)
	if cap(dst) < n {
		dst = make([]Vec2, n)
	}
	dst = dst[:n]
	for i := range dst {
		lo := lerpVec(d00[i], d01[i], c.fy)
		hi := lerpVec(d10[i], d11[i], c.fy)
		dst[i] = lerpVec(lo, hi, c.fx)
	}
	return dst
}

// validate checks the grid against nx*ny axis points and, for deform
// bindings, every cell against the target mesh.
func (b *Binding) validate(nx, ny int, g *Graph) error {
	if !b.hasCells() {
		return errEmptyGrid
	}
	if b.Target == PropDeform {
		if len(b.Deforms) != nx {
			return fmt.Errorf("deform grid has %d columns, want %d", len(b.Deforms), nx)
		}
		want := -1
		if n := g.Node(b.Node); n != nil {
			switch p := n.Payload.(type) {
			case *Drawable:
				want = p.Mesh.VertexCount()
			case *MeshGroup:
				want = p.Mesh.VertexCount()
			}
		}
		for x, col := range b.Deforms {
			if len(col) != ny {
				return fmt.Errorf("deform column %d has %d rows, want %d", x, len(col), ny)
			}
			for y, cell := range col {
				if want >= 0 && len(cell) != want {
					return fmt.Errorf("deform cell [%d][%d] has %d vectors, mesh %d has %d vertices",
						x, y, len(cell), b.Node, want)
				}
			}
		}
		return nil
	}
	if len(b.Values) != nx {
		return fmt.Errorf("%s grid has %d columns, want %d", b.Target, len(b.Values), nx)
	}
	for x, col := range b.Values {
		if len(col) != ny {
			return fmt.Errorf("%s column %d has %d rows, want %d", b.Target, x, len(col), ny)
		}
	}
	return nil
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpVec(a, b Vec2, t float64) Vec2 {
	return a.Add(b.Sub(a).Scale(t))
}
