package marionette

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for vertex positions, deform offsets, parameter
// values and gravity.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Mul returns the component-wise product of v and o.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Vec3 is a 3D vector. Node offsets carry a Z translation and three Euler
// angles even though the rig is drawn in 2D.
type Vec3 struct {
	X, Y, Z float64
}

// BlendMode selects a compositing operation. The engine never composites; the
// mode is forwarded to the renderer with each drawable snapshot.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
	BlendClipMask                  // clip destination to source alpha
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendClipMask:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorZero,
			BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
			BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	default:
		return ebiten.BlendSourceOver
	}
}

// PropertyKind identifies which node property a Binding drives.
type PropertyKind uint8

const (
	PropTranslateX PropertyKind = iota // added to relative translation X
	PropTranslateY                     // added to relative translation Y
	PropScaleX                         // multiplied into relative scale X
	PropScaleY                         // multiplied into relative scale Y
	PropRotateX                        // added to relative Euler X (radians)
	PropRotateY                        // added to relative Euler Y (radians)
	PropRotateZ                        // added to relative Euler Z (radians)
	PropZSort                          // added to the zsort base
	PropOpacity                        // replaces the frame opacity, clamped to [0, 1]
	PropDeform                         // replaces this parameter's deform stack entry
)

var propertyNames = [...]string{
	PropTranslateX: "transform.t.x",
	PropTranslateY: "transform.t.y",
	PropScaleX:     "transform.s.x",
	PropScaleY:     "transform.s.y",
	PropRotateX:    "transform.r.x",
	PropRotateY:    "transform.r.y",
	PropRotateZ:    "transform.r.z",
	PropZSort:      "zSort",
	PropOpacity:    "opacity",
	PropDeform:     "deform",
}

// String returns the property's authoring-tool name.
func (k PropertyKind) String() string {
	if int(k) < len(propertyNames) {
		return propertyNames[k]
	}
	return "unknown"
}

// ParsePropertyKind maps an authoring-tool property name back to its kind.
func ParsePropertyKind(name string) (PropertyKind, bool) {
	for i, n := range propertyNames {
		if n == name {
			return PropertyKind(i), true
		}
	}
	return 0, false
}
