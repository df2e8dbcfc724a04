package marionette

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertAffine(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func assertMat4(t *testing.T, name string, got, want mgl64.Mat4) {
	t.Helper()
	if !got.ApproxEqualThreshold(want, epsilon) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// --- computeLocalMatrix ---

func TestLocalMatrixIdentity(t *testing.T) {
	assertMat4(t, "identity", computeLocalMatrix(IdentityOffset()), mgl64.Ident4())
}

func TestLocalMatrixTranslation(t *testing.T) {
	o := IdentityOffset()
	o.Translation = Vec3{10, 20, 5}
	got := computeLocalMatrix(o)
	assertAffine(t, "translation", affine2D(got), [6]float64{1, 0, 0, 1, 10, 20})
	assertNear(t, "tz", got[14], 5)
}

func TestLocalMatrixScale(t *testing.T) {
	o := IdentityOffset()
	o.Scale = Vec2{2, 3}
	assertAffine(t, "scale", affine2D(computeLocalMatrix(o)), [6]float64{2, 0, 0, 3, 0, 0})
}

func TestLocalMatrixRotationZ90(t *testing.T) {
	o := IdentityOffset()
	o.Rotation.Z = math.Pi / 2
	// cos(90)=0, sin(90)=1 → a=0, b=1, c=-1, d=0
	assertAffine(t, "rotZ", affine2D(computeLocalMatrix(o)), [6]float64{0, 1, -1, 0, 0, 0})
}

func TestLocalMatrixRotationXFlipsY(t *testing.T) {
	o := IdentityOffset()
	o.Rotation.X = math.Pi
	assertAffine(t, "rotX", affine2D(computeLocalMatrix(o)), [6]float64{1, 0, 0, -1, 0, 0})
}

func TestLocalMatrixCombined(t *testing.T) {
	o := IdentityOffset()
	o.Translation = Vec3{X: 50, Y: 100}
	o.Scale = Vec2{2, 2}
	o.Rotation.Z = math.Pi / 2
	// Scale(2,2) then Rotate(90°), then translate.
	assertAffine(t, "combined", affine2D(computeLocalMatrix(o)), [6]float64{0, 2, -2, 0, 50, 100})
}

func TestLocalMatrixEulerOrder(t *testing.T) {
	o := IdentityOffset()
	o.Rotation = Vec3{0.3, -0.7, 1.1}
	want := mgl64.HomogRotate3DX(0.3).
		Mul4(mgl64.HomogRotate3DY(-0.7)).
		Mul4(mgl64.HomogRotate3DZ(1.1))
	assertMat4(t, "xyz", computeLocalMatrix(o), want)

	reversed := mgl64.HomogRotate3DZ(1.1).
		Mul4(mgl64.HomogRotate3DY(-0.7)).
		Mul4(mgl64.HomogRotate3DX(0.3))
	if computeLocalMatrix(o).ApproxEqualThreshold(reversed, epsilon) {
		t.Error("rotation composed in Z,Y,X order")
	}
}

func TestLocalMatrixPixelSnap(t *testing.T) {
	o := IdentityOffset()
	o.Translation = Vec3{X: 10.4, Y: 20.6}
	o.PixelSnap = true
	assertAffine(t, "snap", affine2D(computeLocalMatrix(o)), [6]float64{1, 0, 0, 1, 10, 21})
}

func TestTransformPoint(t *testing.T) {
	o := IdentityOffset()
	o.Translation = Vec3{X: 5, Y: -5}
	o.Rotation.Z = math.Pi / 2
	p := transformPoint(computeLocalMatrix(o), Vec2{1, 0})
	assertNear(t, "x", p.X, 5)
	assertNear(t, "y", p.Y, -4)
}

// --- transformStore ---

func newChain(offsets ...Vec3) *Graph {
	root := NewNode(0, "root")
	root.Offset.Translation = offsets[0]
	g := NewGraph(root)
	for i := 1; i < len(offsets); i++ {
		n := NewNode(uint32(i), "")
		n.Offset.Translation = offsets[i]
		g.AddChild(uint32(i-1), n)
	}
	return g
}

func TestTransformParentChild(t *testing.T) {
	g := newChain(Vec3{X: 100}, Vec3{X: 10})
	s := newTransformStore(g)
	s.update(g)

	assertNear(t, "root.tx", s.states[0].absolute[12], 100)
	assertNear(t, "child.tx", s.states[1].absolute[12], 110)
}

func TestTransformRootIsLocal(t *testing.T) {
	g := newChain(Vec3{X: 7, Y: 3})
	g.Root().Offset.Rotation.Z = 0.5
	g.Root().Offset.Scale = Vec2{2, 4}
	s := newTransformStore(g)
	s.update(g)

	assertMat4(t, "root", s.states[0].absolute, computeLocalMatrix(g.Root().Offset))
}

func TestTransformLockToRoot(t *testing.T) {
	g := newChain(Vec3{X: 100}, Vec3{X: 50}, Vec3{X: 10})
	g.Node(1).Offset.Rotation.Z = math.Pi / 2
	g.Node(2).LockToRoot = true
	s := newTransformStore(g)
	s.update(g)

	assertAffine(t, "locked", affine2D(s.states[2].absolute), [6]float64{1, 0, 0, 1, 110, 0})
}

func TestTransformDeepHierarchy(t *testing.T) {
	offsets := make([]Vec3, 10)
	for i := range offsets {
		offsets[i] = Vec3{X: 10}
	}
	g := newChain(offsets...)
	s := newTransformStore(g)
	s.update(g)
	assertNear(t, "leaf.tx", s.states[9].absolute[12], 100)
}

func TestTransformResetRestoresStatic(t *testing.T) {
	g := newChain(Vec3{}, Vec3{X: 10})
	s := newTransformStore(g)
	s.states[1].relative.Translation.X += 40
	s.states[1].relative.Scale.X *= 3
	s.update(g)
	assertNear(t, "moved.tx", s.states[1].absolute[12], 50)

	s.reset(g)
	if s.states[1].relative != g.Node(1).Offset {
		t.Errorf("relative = %+v, want static %+v", s.states[1].relative, g.Node(1).Offset)
	}
	assertMat4(t, "absolute after reset", s.states[1].absolute, mgl64.Ident4())
}

func TestTransformMissingEntryIsNoOp(t *testing.T) {
	g := newChain(Vec3{X: 1}, Vec3{X: 2})
	s := &transformStore{states: make([]transformState, 1)}
	s.reset(g)
	s.update(g)
	assertNear(t, "root.tx", s.states[0].absolute[12], 1)
	if s.state(1) != nil {
		t.Error("state(1) should be nil")
	}
}
