package marionette

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func drawOrder(r *Rig) []uint32 {
	ids := make([]uint32, len(r.Drawables()))
	for i, d := range r.Drawables() {
		ids[i] = d.Node
	}
	return ids
}

func assertOrder(t *testing.T, got, want []uint32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestDrawablesSortedByZSortDescending(t *testing.T) {
	g := NewGraph(NewNode(0, "root"))
	for i, z := range []float64{1, 3, -2, 3, 0} {
		n := NewDrawableNode(uint32(10-i), "d", quadMesh(1), nil)
		n.ZSort = z
		g.AddChild(0, n)
	}
	r := mustRig(t, g)
	mustUpdate(t, r, 0)

	// ids 10..6 carry zsort 1, 3, -2, 3, 0; the two 3s tie and sort by id.
	assertOrder(t, drawOrder(r), []uint32{7, 9, 10, 6, 8})
}

func TestDrawablesSortLarge(t *testing.T) {
	g := NewGraph(NewNode(0, "root"))
	const n = 37
	for i := range n {
		d := NewDrawableNode(uint32(i+1), "d", quadMesh(1), nil)
		d.ZSort = float64((i * 7) % 5)
		g.AddChild(0, d)
	}
	r := mustRig(t, g)
	mustUpdate(t, r, 0)

	list := r.Drawables()
	if len(list) != n {
		t.Fatalf("drawables = %d, want %d", len(list), n)
	}
	for i := 1; i < len(list); i++ {
		if !drawLessOrEqual(list[i-1], list[i]) {
			t.Fatalf("out of order at %d: (%v, %d) before (%v, %d)",
				i, list[i-1].ZSort, list[i-1].Node, list[i].ZSort, list[i].Node)
		}
	}
}

func TestDrawablesReorderWithParam(t *testing.T) {
	g := NewGraph(NewNode(0, "root"))
	g.AddChild(0, NewDrawableNode(1, "front", quadMesh(1), nil))
	g.AddChild(0, NewDrawableNode(2, "back", quadMesh(1), nil))
	p := NewParameter(1, "Swap", 0, 1)
	p.AddBinding(NewValueBinding(2, PropZSort, [][]float64{{-1}, {1}}))
	r := mustRig(t, g, p)

	mustUpdate(t, r, 0)
	assertOrder(t, drawOrder(r), []uint32{1, 2})

	p.SetValue(Vec2{1, 0})
	mustUpdate(t, r, 0)
	assertOrder(t, drawOrder(r), []uint32{2, 1})
}

func TestDrawablesSkipDisabledSubtree(t *testing.T) {
	g := NewGraph(NewNode(0, "root"))
	group := NewCompositeNode(1, "group")
	g.AddChild(0, group)
	g.AddChild(1, NewDrawableNode(2, "inside", quadMesh(1), nil))
	g.AddChild(0, NewDrawableNode(3, "outside", quadMesh(1), nil))
	r := mustRig(t, g)

	mustUpdate(t, r, 0)
	if len(r.Drawables()) != 2 {
		t.Fatalf("drawables = %d, want 2", len(r.Drawables()))
	}

	group.Enabled = false
	mustUpdate(t, r, 0)
	assertOrder(t, drawOrder(r), []uint32{3})
	if r.Snapshot(2) == nil {
		t.Error("disabled drawables keep their snapshot slot")
	}
	if r.Stats().Drawables != 1 {
		t.Errorf("Stats.Drawables = %d, want 1", r.Stats().Drawables)
	}
}

func TestSnapshotForwardsPayload(t *testing.T) {
	g := NewGraph(NewNode(0, "root"))
	n := NewDrawableNode(1, "eye", quadMesh(1), nil)
	d := n.Drawable()
	d.Blend = BlendMultiply
	d.Masks = []uint32{4, 5}
	d.MaskThreshold = 0.5
	d.Tint = Color{1, 0.5, 0.25, 1}
	g.AddChild(0, n)
	r := mustRig(t, g)
	mustUpdate(t, r, 0)

	s := r.Snapshot(1)
	if s == nil {
		t.Fatal("missing snapshot")
	}
	if s.Name != "eye" || s.Blend != BlendMultiply || len(s.Masks) != 2 || s.MaskThreshold != 0.5 {
		t.Errorf("snapshot = %+v", s)
	}
	if len(s.Indices) != 6 || len(s.UVs) != 4 {
		t.Errorf("indices = %d, uvs = %d", len(s.Indices), len(s.UVs))
	}
	if r.Snapshot(0) != nil {
		t.Error("non-drawables have no snapshot")
	}
}

func TestSnapshotWorldVertices(t *testing.T) {
	g := NewGraph(NewNode(0, "root"))
	n := NewDrawableNode(1, "quad", quadMesh(2), nil)
	n.Offset.Translation = Vec3{10, 20, 0}
	n.Offset.Scale = Vec2{3, 1}
	g.AddChild(0, n)
	r := mustRig(t, g)
	mustUpdate(t, r, 0)

	s := r.Snapshot(1)
	assertVecs(t, "world", s.WorldVertices(nil), []Vec2{{10, 20}, {16, 20}, {16, 22}, {10, 22}})
	assertAffine(t, "affine", s.Affine(), [6]float64{3, 0, 0, 1, 10, 20})
}

func TestSnapshotGeoMMatchesAffine(t *testing.T) {
	g := NewGraph(NewNode(0, "root"))
	n := NewDrawableNode(1, "quad", quadMesh(1), nil)
	n.Offset.Translation = Vec3{5, -5, 0}
	n.Offset.Rotation.Z = math.Pi / 6
	n.Offset.Scale = Vec2{2, 0.5}
	g.AddChild(0, n)
	r := mustRig(t, g)
	mustUpdate(t, r, 0)

	s := r.Snapshot(1)
	gm := s.GeoM()
	for _, v := range []Vec2{{0, 0}, {1, 0}, {0, 1}, {3, -2}} {
		x, y := gm.Apply(v.X, v.Y)
		want := transformPoint(s.Transform, v)
		if math.Abs(x-want.X) > 1e-6 || math.Abs(y-want.Y) > 1e-6 {
			t.Errorf("GeoM.Apply(%v) = (%v, %v), want %v", v, x, y, want)
		}
	}
}

func TestSnapshotEbitenVertices(t *testing.T) {
	g := NewGraph(NewNode(0, "root"))
	n := NewDrawableNode(1, "quad", quadMesh(4), nil)
	n.Offset.Translation = Vec3{1, 2, 0}
	n.Drawable().Tint = Color{1, 0.5, 0, 1}
	n.Drawable().Opacity = 0.5
	g.AddChild(0, n)
	r := mustRig(t, g)
	mustUpdate(t, r, 0)

	verts := r.Snapshot(1).EbitenVertices(nil)
	if len(verts) != 4 {
		t.Fatalf("vertices = %d, want 4", len(verts))
	}
	want := ebiten.Vertex{DstX: 5, DstY: 6, SrcX: 1, SrcY: 1, ColorR: 0.5, ColorG: 0.25, ColorB: 0, ColorA: 0.5}
	if verts[2] != want {
		t.Errorf("vertex[2] = %+v, want %+v", verts[2], want)
	}

	buf := make([]ebiten.Vertex, 0, 8)
	out := r.Snapshot(1).EbitenVertices(buf)
	if &out[0] != &buf[:1][0] {
		t.Error("EbitenVertices should reuse the provided buffer")
	}
}

func TestBlendModeEbitenBlend(t *testing.T) {
	if BlendNormal.EbitenBlend() != ebiten.BlendSourceOver {
		t.Error("BlendNormal should map to source-over")
	}
	if BlendAdd.EbitenBlend() != ebiten.BlendLighter {
		t.Error("BlendAdd should map to lighter")
	}
	if BlendScreen.EbitenBlend() == BlendMultiply.EbitenBlend() {
		t.Error("screen and multiply should differ")
	}
}

func TestPropertyKindNames(t *testing.T) {
	for k := PropTranslateX; k <= PropDeform; k++ {
		got, ok := ParsePropertyKind(k.String())
		if !ok || got != k {
			t.Errorf("ParsePropertyKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParsePropertyKind("transform.q"); ok {
		t.Error("unknown name should not parse")
	}
	if PropertyKind(200).String() != "unknown" {
		t.Error("out of range kind should be unknown")
	}
}
