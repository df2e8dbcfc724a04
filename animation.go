package marionette

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ParamTween animates one parameter's X and Y values toward a target.
// Create one with TweenParam and call Update(dt) each frame before
// EndFrame. If the parameter is also driven by physics, the last writer
// within a frame wins. Callers own and update their tweens.
type ParamTween struct {
	tweens [2]*gween.Tween
	param  *Parameter
	Done   bool
}

// TweenParam creates a ParamTween that moves the named parameter from its
// current value to `to` over duration seconds using the easing function.
func TweenParam(r *Rig, name string, to Vec2, duration float32, fn ease.TweenFunc) (*ParamTween, error) {
	if err := r.paramsReady("TweenParam"); err != nil {
		return nil, err
	}
	p := r.params.ParamByName(name)
	if p == nil {
		return nil, fmt.Errorf("marionette: %w: %q", ErrUnknownParam, name)
	}
	return newParamTween(p, to, duration, fn), nil
}

func newParamTween(p *Parameter, to Vec2, duration float32, fn ease.TweenFunc) *ParamTween {
	from := p.Value()
	to = p.clamp(to)
	return &ParamTween{
		param: p,
		tweens: [2]*gween.Tween{
			gween.New(float32(from.X), float32(to.X), duration, fn),
			gween.New(float32(from.Y), float32(to.Y), duration, fn),
		},
	}
}

// Update advances the tween by dt seconds and writes the interpolated value
// into the parameter.
func (t *ParamTween) Update(dt float32) {
	if t.Done {
		return
	}
	x, doneX := t.tweens[0].Update(dt)
	y, doneY := t.tweens[1].Update(dt)
	t.param.SetValue(Vec2{float64(x), float64(y)})
	t.Done = doneX && doneY
}

// Reset rewinds the tween to its start value.
func (t *ParamTween) Reset() {
	t.tweens[0].Reset()
	t.tweens[1].Reset()
	t.Done = false
}
