package marionette

import "github.com/hajimehoshi/ebiten/v2"

// Offset is a node's transform relative to its parent: a 3D translation,
// Euler rotation in radians (applied X, then Y, then Z) and a 2D scale.
type Offset struct {
	Translation Vec3
	Rotation    Vec3
	Scale       Vec2
	// PixelSnap rounds the X/Y translation to whole pixels when composing
	// the local matrix.
	PixelSnap bool
}

// IdentityOffset returns an offset with unit scale and no translation or
// rotation.
func IdentityOffset() Offset {
	return Offset{Scale: Vec2{1, 1}}
}

// Payload is the closed set of typed node contents: *Drawable, *Composite,
// *MeshGroup, *PhysicsConfig and *PathDeform. A node without a payload is a
// plain grouping node.
type Payload interface {
	payloadKind() PayloadKind
}

// PayloadKind names a Payload variant.
type PayloadKind uint8

const (
	PayloadNone       PayloadKind = iota // plain node
	PayloadDrawable                      // textured, deformable mesh
	PayloadComposite                     // group composited as a unit
	PayloadMeshGroup                     // deformable mesh forwarded to tools
	PayloadPhysics                       // pendulum driving a parameter
	PayloadPathDeform                    // control-point path
)

// Mesh is the undeformed geometry of a drawable, in node-local space.
type Mesh struct {
	Vertices []Vec2
	UVs      []Vec2 // texture coordinates in pixels, parallel to Vertices
	Indices  []uint16
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Drawable is the payload of nodes the renderer draws.
type Drawable struct {
	Mesh Mesh
	// Texture is forwarded to the renderer untouched.
	Texture *ebiten.Image
	Blend   BlendMode
	// Masks lists node ids whose coverage clips this drawable.
	Masks         []uint32
	MaskThreshold float64
	// Opacity is the static opacity; an opacity binding replaces it per frame.
	Opacity float64
	Tint    Color
}

func (*Drawable) payloadKind() PayloadKind { return PayloadDrawable }

// Composite renders its subtree into a single layer.
type Composite struct {
	Blend   BlendMode
	Opacity float64
	Tint    Color
}

func (*Composite) payloadKind() PayloadKind { return PayloadComposite }

// MeshGroup carries a mesh that is not drawn. Bindings and external sources
// deform it through its DeformStack like a drawable's, and the combined
// result is available from Rig.DeformStack. The engine does not apply it to
// descendants; like PathDeform it is forwarded for the renderer or tooling.
type MeshGroup struct {
	Mesh Mesh
}

func (*MeshGroup) payloadKind() PayloadKind { return PayloadMeshGroup }

// PathDeform carries control points of a deformation path.
type PathDeform struct {
	Points []Vec2
}

func (*PathDeform) payloadKind() PayloadKind { return PayloadPathDeform }

// NoParent is the parent id recorded for the root node.
const NoParent = ^uint32(0)

// Node is one element of the rig hierarchy. Nodes are created by the loader
// and owned by a Graph; hierarchy links are stored as ids.
type Node struct {
	ID      uint32
	Name    string
	Enabled bool

	// ZSort is the static draw-order offset relative to the parent.
	ZSort float64
	// Offset is the static transform relative to the parent.
	Offset Offset
	// LockToRoot composes the node directly under the root's absolute
	// transform, ignoring intermediate ancestors.
	LockToRoot bool

	Payload Payload

	parent    uint32
	parentIdx int
	children  []uint32
}

// NewNode creates an enabled plain node with an identity offset.
func NewNode(id uint32, name string) *Node {
	return &Node{
		ID:        id,
		Name:      name,
		Enabled:   true,
		Offset:    IdentityOffset(),
		parent:    NoParent,
		parentIdx: -1,
	}
}

// NewDrawableNode creates a drawable node with full opacity and a white tint.
func NewDrawableNode(id uint32, name string, mesh Mesh, texture *ebiten.Image) *Node {
	n := NewNode(id, name)
	n.Payload = &Drawable{
		Mesh:    mesh,
		Texture: texture,
		Opacity: 1,
		Tint:    ColorWhite,
	}
	return n
}

// NewCompositeNode creates a composite group node.
func NewCompositeNode(id uint32, name string) *Node {
	n := NewNode(id, name)
	n.Payload = &Composite{Opacity: 1, Tint: ColorWhite}
	return n
}

// NewPhysicsNode creates a node carrying a pendulum configuration.
func NewPhysicsNode(id uint32, name string, cfg PhysicsConfig) *Node {
	n := NewNode(id, name)
	c := cfg
	n.Payload = &c
	return n
}

// Kind returns the node's payload kind.
func (n *Node) Kind() PayloadKind {
	if n.Payload == nil {
		return PayloadNone
	}
	return n.Payload.payloadKind()
}

// Parent returns the parent's id, or NoParent for the root.
func (n *Node) Parent() uint32 {
	return n.parent
}

// Children returns the ids of the node's children in insertion order.
// The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []uint32 {
	return n.children
}

// Drawable returns the node's drawable payload, or nil.
func (n *Node) Drawable() *Drawable {
	d, _ := n.Payload.(*Drawable)
	return d
}
