package marionette

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// DrawSnapshot is everything a renderer needs to draw one drawable for the
// current frame. Snapshots are owned by the Rig and rewritten by every
// EndFrame; copy what must outlive the next frame.
type DrawSnapshot struct {
	Node uint32
	Name string

	// Transform is the node's absolute matrix.
	Transform mgl64.Mat4
	// Vertices are the local-space mesh positions with the combined
	// deformation applied.
	Vertices []Vec2
	UVs      []Vec2
	Indices  []uint16

	Opacity float64
	ZSort   float64
	Tint    Color

	// Forwarded unchanged from the node's Drawable payload.
	Texture       *ebiten.Image
	Blend         BlendMode
	Masks         []uint32
	MaskThreshold float64

	index int
}

// Affine returns Transform projected to 2D as [a, b, c, d, tx, ty].
func (s *DrawSnapshot) Affine() [6]float64 {
	return affine2D(s.Transform)
}

// GeoM returns Transform projected to 2D as an ebiten.GeoM.
func (s *DrawSnapshot) GeoM() ebiten.GeoM {
	m := affine2D(s.Transform)
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// WorldVertices writes the deformed vertices transformed by the absolute
// matrix into dst and returns it.
func (s *DrawSnapshot) WorldVertices(dst []Vec2) []Vec2 {
	if cap(dst) < len(s.Vertices) {
		dst = make([]Vec2, len(s.Vertices))
	}
	dst = dst[:len(s.Vertices)]
	for i, v := range s.Vertices {
		dst[i] = transformPoint(s.Transform, v)
	}
	return dst
}

// EbitenVertices writes the snapshot as DrawTriangles vertices into dst and
// returns it. Positions are in world space; the tint and opacity are
// premultiplied into the vertex color.
func (s *DrawSnapshot) EbitenVertices(dst []ebiten.Vertex) []ebiten.Vertex {
	n := len(s.Vertices)
	if cap(dst) < n {
		dst = make([]ebiten.Vertex, n)
	}
	dst = dst[:n]
	ca := float32(s.Tint.A * s.Opacity)
	cr := float32(s.Tint.R) * ca
	cg := float32(s.Tint.G) * ca
	cb := float32(s.Tint.B) * ca
	for i, v := range s.Vertices {
		p := transformPoint(s.Transform, v)
		var uv Vec2
		if i < len(s.UVs) {
			uv = s.UVs[i]
		}
		dst[i] = ebiten.Vertex{
			DstX:   float32(p.X),
			DstY:   float32(p.Y),
			SrcX:   float32(uv.X),
			SrcY:   float32(uv.Y),
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}
	return dst
}

// Drawables returns the enabled drawables of the last EndFrame sorted by
// descending effective zsort, ties broken by ascending node id.
// The returned slice MUST NOT be mutated by the caller.
func (r *Rig) Drawables() []*DrawSnapshot {
	return r.drawList
}

// Snapshot returns the last snapshot of drawable node id, or nil.
func (r *Rig) Snapshot(id uint32) *DrawSnapshot {
	for i := range r.snapshots {
		if r.snapshots[i].Node == id {
			return &r.snapshots[i]
		}
	}
	return nil
}

// rebuildSnapshots refreshes every snapshot slot from the frame stores and
// rebuilds the sorted draw list.
func (r *Rig) rebuildSnapshots() {
	for _, i := range r.graph.preorder() {
		n := r.graph.nodes[i]
		r.enabled[i] = n.Enabled && (n.parentIdx < 0 || r.enabled[n.parentIdx])
	}

	r.drawList = r.drawList[:0]
	for k := range r.snapshots {
		s := &r.snapshots[k]
		i := s.index
		n := r.graph.nodes[i]
		d := n.Drawable()
		if d == nil {
			continue
		}
		if ts := r.targets.transforms.state(i); ts != nil {
			s.Transform = ts.absolute
		}
		if zs := r.targets.zsorts.state(i); zs != nil {
			s.ZSort = zs.effective
		}
		s.Opacity = r.targets.opacity[i]
		s.Vertices = r.targets.deforms[i].Apply(d.Mesh.Vertices, s.Vertices)
		s.UVs = d.Mesh.UVs
		s.Indices = d.Mesh.Indices
		s.Tint = d.Tint
		s.Texture = d.Texture
		s.Blend = d.Blend
		s.Masks = d.Masks
		s.MaskThreshold = d.MaskThreshold
		if r.enabled[i] {
			r.drawList = append(r.drawList, s)
		}
	}
	r.sortDrawList()
}

// drawLessOrEqual reports whether a paints before or at the same position
// as b: higher zsort first, then lower node id.
func drawLessOrEqual(a, b *DrawSnapshot) bool {
	if a.ZSort != b.ZSort {
		return a.ZSort > b.ZSort
	}
	return a.Node <= b.Node
}

// sortDrawList sorts r.drawList in place using r.sortBuf as scratch.
// Bottom-up merge sort: stable, and allocation-free once sortBuf has grown.
func (r *Rig) sortDrawList() {
	n := len(r.drawList)
	if n <= 1 {
		return
	}
	if cap(r.sortBuf) < n {
		r.sortBuf = make([]*DrawSnapshot, n)
	}
	r.sortBuf = r.sortBuf[:n]

	a := r.drawList
	b := r.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(r.drawList, r.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []*DrawSnapshot, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if drawLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
