package marionette

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// LifecycleState is the initialization progress of a Rig.
type LifecycleState uint8

const (
	StateUninitialized   LifecycleState = iota // nothing built yet
	StateTransformsReady                       // transform and zsort stores built
	StateRenderReady                           // deform stacks and snapshot slots built
	StateParamsReady                           // parameters indexed and validated
	StatePhysicsReady                          // physics bodies built; frames may run
)

var stateNames = [...]string{
	StateUninitialized:   "uninitialized",
	StateTransformsReady: "transforms-ready",
	StateRenderReady:     "render-ready",
	StateParamsReady:     "params-ready",
	StatePhysicsReady:    "physics-ready",
}

func (s LifecycleState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

var (
	// ErrLifecycle is returned when an init step runs out of order or twice.
	ErrLifecycle = errors.New("lifecycle violation")
	// ErrNotInitialized is returned when a rig is used before it is ready.
	ErrNotInitialized = errors.New("rig not initialized")
	// ErrUnknownParam is returned when a parameter name or id is not found.
	ErrUnknownParam = errors.New("unknown parameter")
)

// frameTargets bundles the per-node stores parameters write into.
type frameTargets struct {
	graph      *Graph
	transforms *transformStore
	zsorts     *zsortStore
	opacity    []float64
	deforms    []*DeformStack
}

func (f *frameTargets) deformStack(i int) *DeformStack {
	if i < 0 || i >= len(f.deforms) {
		return nil
	}
	return f.deforms[i]
}

// Rig owns a node graph, its parameters and physics bodies, and runs the
// per-frame pipeline. A Rig is not safe for concurrent use.
type Rig struct {
	graph       *Graph
	paramDefs   []*Parameter
	physicsConf PhysicsSettings
	state       LifecycleState

	targets frameTargets
	params  *ParamSystem
	physics *PhysicsSystem

	enabled   []bool
	snapshots []DrawSnapshot
	drawList  []*DrawSnapshot
	sortBuf   []*DrawSnapshot

	frame    uint64
	stats    FrameStats
	logger   *slog.Logger
	debug    bool
	observer FrameObserver
}

// New creates an uninitialized rig over a fully materialized graph and
// parameter table. Call Init (or the four Init* steps in order) before
// running frames.
func New(g *Graph, params []*Parameter, physics PhysicsSettings) *Rig {
	if g == nil {
		panic("marionette: cannot create rig with nil graph")
	}
	return &Rig{
		graph:       g,
		paramDefs:   params,
		physicsConf: physics,
		logger:      slog.Default(),
	}
}

// State returns the rig's initialization progress.
func (r *Rig) State() LifecycleState {
	return r.state
}

// Graph returns the rig's node graph.
func (r *Rig) Graph() *Graph {
	return r.graph
}

// Params returns the parameter system, or nil before InitParams.
func (r *Rig) Params() *ParamSystem {
	return r.params
}

// Node returns the node with the given id, or nil.
func (r *Rig) Node(id uint32) *Node {
	return r.graph.Node(id)
}

// Physics returns the physics system, or nil before InitPhysics.
func (r *Rig) Physics() *PhysicsSystem {
	return r.physics
}

// expect reports a lifecycle error unless the rig is in state from.
func (r *Rig) expect(from, to LifecycleState) error {
	if r.state != from {
		return fmt.Errorf("marionette: %w: cannot enter %s from %s", ErrLifecycle, to, r.state)
	}
	return nil
}

// Init runs every initialization step in order.
func (r *Rig) Init() error {
	for _, step := range []func() error{r.InitTransforms, r.InitRender, r.InitParams, r.InitPhysics} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// InitTransforms builds the transform and zsort stores and computes the
// rest pose.
func (r *Rig) InitTransforms() error {
	if err := r.expect(StateUninitialized, StateTransformsReady); err != nil {
		return err
	}
	r.graph.freeze()
	r.targets.graph = r.graph
	r.targets.transforms = newTransformStore(r.graph)
	r.targets.zsorts = newZSortStore(r.graph)
	r.targets.transforms.update(r.graph)
	r.targets.zsorts.update(r.graph)
	r.state = StateTransformsReady
	return nil
}

// InitRender builds deform stacks for meshes and a snapshot slot for every
// drawable.
func (r *Rig) InitRender() error {
	if err := r.expect(StateTransformsReady, StateRenderReady); err != nil {
		return err
	}
	nn := r.graph.Len()
	r.targets.opacity = make([]float64, nn)
	r.targets.deforms = make([]*DeformStack, nn)
	r.enabled = make([]bool, nn)
	for _, i := range r.graph.preorder() {
		n := r.graph.nodes[i]
		switch p := n.Payload.(type) {
		case *Drawable:
			r.targets.deforms[i] = NewDeformStack(p.Mesh.VertexCount())
			r.snapshots = append(r.snapshots, DrawSnapshot{Node: n.ID, Name: n.Name, index: i})
		case *MeshGroup:
			r.targets.deforms[i] = NewDeformStack(p.Mesh.VertexCount())
		}
	}
	r.drawList = make([]*DrawSnapshot, 0, len(r.snapshots))
	r.sortBuf = make([]*DrawSnapshot, 0, len(r.snapshots))
	r.resetOpacity()
	r.state = StateRenderReady
	return nil
}

// InitParams indexes the parameter table and validates every binding grid.
func (r *Rig) InitParams() error {
	if err := r.expect(StateRenderReady, StateParamsReady); err != nil {
		return err
	}
	ps := NewParamSystem(r.paramDefs)
	if err := ps.validate(r.graph); err != nil {
		return fmt.Errorf("marionette: invalid parameters: %w", err)
	}
	r.params = ps
	r.state = StateParamsReady
	return nil
}

// InitPhysics creates a body for every physics node.
func (r *Rig) InitPhysics() error {
	if err := r.expect(StateParamsReady, StatePhysicsReady); err != nil {
		return err
	}
	r.physics = NewPhysicsSystem(r.graph, r.physicsConf)
	r.state = StatePhysicsReady
	return nil
}

func (r *Rig) requireReady(op string) error {
	if r.state != StatePhysicsReady {
		return fmt.Errorf("marionette: %w: %s in state %s", ErrNotInitialized, op, r.state)
	}
	return nil
}

// BeginFrame resets relative transforms, zsort bases and opacity to their
// static values and clears every deform stack.
func (r *Rig) BeginFrame() error {
	if err := r.requireReady("BeginFrame"); err != nil {
		return err
	}
	r.targets.transforms.reset(r.graph)
	r.targets.zsorts.reset(r.graph)
	r.resetOpacity()
	for _, s := range r.targets.deforms {
		if s != nil {
			s.Clear()
		}
	}
	return nil
}

// EndFrame applies parameters, propagates transforms and zsort, steps
// physics by dt seconds and rebuilds the drawable snapshots. A dt of zero
// poses the rig without advancing physics.
func (r *Rig) EndFrame(dt float64) error {
	if err := r.requireReady("EndFrame"); err != nil {
		return err
	}
	if err := checkDelta(dt); err != nil {
		return err
	}

	var st FrameStats
	t0 := time.Now()

	as := r.params.applyAll(&r.targets)
	st.Params, st.Bindings, st.SkippedBindings = as.params, as.bindings, as.skipped
	st.ApplyTime = time.Since(t0)
	t0 = time.Now()

	r.targets.transforms.update(r.graph)
	r.targets.zsorts.update(r.graph)
	st.PropagateTime = time.Since(t0)
	t0 = time.Now()

	steps, err := r.physics.Step(dt, r.params)
	if err != nil {
		return err
	}
	st.PhysicsSteps = steps
	st.PhysicsTime = time.Since(t0)
	t0 = time.Now()

	r.rebuildSnapshots()
	st.Drawables = len(r.drawList)
	st.SnapshotTime = time.Since(t0)

	r.frame++
	r.stats = st
	if r.debug {
		r.debugLog(st)
	}
	if r.observer != nil {
		r.observer.FrameEnded(FrameEvent{Frame: r.frame, Delta: dt, Stats: st})
	}
	return nil
}

// Update runs BeginFrame followed by EndFrame(dt).
func (r *Rig) Update(dt float64) error {
	if err := r.BeginFrame(); err != nil {
		return err
	}
	return r.EndFrame(dt)
}

// Reset discards every parameter value and zeroes physics state.
func (r *Rig) Reset() error {
	if err := r.requireReady("Reset"); err != nil {
		return err
	}
	r.params.ResetToDefaults()
	r.physics.Reset()
	return nil
}

func (r *Rig) resetOpacity() {
	for i, n := range r.graph.nodes {
		if i >= len(r.targets.opacity) {
			return
		}
		switch p := n.Payload.(type) {
		case *Drawable:
			r.targets.opacity[i] = p.Opacity
		case *Composite:
			r.targets.opacity[i] = p.Opacity
		default:
			r.targets.opacity[i] = 1
		}
	}
}

// --- Parameter access ---

func (r *Rig) paramsReady(op string) error {
	if r.params == nil {
		return fmt.Errorf("marionette: %w: %s before InitParams", ErrNotInitialized, op)
	}
	return nil
}

// SetParam sets the named parameter's value, clamped to its range. The new
// value takes effect on the next EndFrame.
func (r *Rig) SetParam(name string, v Vec2) error {
	if err := r.paramsReady("SetParam"); err != nil {
		return err
	}
	p := r.params.ParamByName(name)
	if p == nil {
		return fmt.Errorf("marionette: %w: %q", ErrUnknownParam, name)
	}
	p.SetValue(v)
	return nil
}

// SetParamByID sets the value of the parameter with the given id.
func (r *Rig) SetParamByID(id uint32, v Vec2) error {
	if err := r.paramsReady("SetParamByID"); err != nil {
		return err
	}
	p := r.params.Param(id)
	if p == nil {
		return fmt.Errorf("marionette: %w: id %d", ErrUnknownParam, id)
	}
	p.SetValue(v)
	return nil
}

// ParamValue returns the named parameter's current value.
func (r *Rig) ParamValue(name string) (Vec2, error) {
	if err := r.paramsReady("ParamValue"); err != nil {
		return Vec2{}, err
	}
	p := r.params.ParamByName(name)
	if p == nil {
		return Vec2{}, fmt.Errorf("marionette: %w: %q", ErrUnknownParam, name)
	}
	return p.Value(), nil
}

// --- Per-node results ---

// AbsoluteTransform returns the node's absolute matrix projected to 2D as
// [a, b, c, d, tx, ty]. Reports false for unknown nodes or before
// InitTransforms.
func (r *Rig) AbsoluteTransform(id uint32) ([6]float64, bool) {
	st := r.transformState(id)
	if st == nil {
		return [6]float64{}, false
	}
	return affine2D(st.absolute), true
}

// RelativeOffset returns the node's relative offset for the current frame.
func (r *Rig) RelativeOffset(id uint32) (Offset, bool) {
	st := r.transformState(id)
	if st == nil {
		return Offset{}, false
	}
	return st.relative, true
}

func (r *Rig) transformState(id uint32) *transformState {
	if r.targets.transforms == nil {
		return nil
	}
	i, ok := r.graph.indexOf(id)
	if !ok {
		return nil
	}
	return r.targets.transforms.state(i)
}

// ZSort returns the node's effective draw order.
func (r *Rig) ZSort(id uint32) (float64, bool) {
	if r.targets.zsorts == nil {
		return 0, false
	}
	i, ok := r.graph.indexOf(id)
	if !ok {
		return 0, false
	}
	st := r.targets.zsorts.state(i)
	if st == nil {
		return 0, false
	}
	return st.effective, true
}

// Opacity returns the node's opacity for the current frame.
func (r *Rig) Opacity(id uint32) (float64, bool) {
	i, ok := r.graph.indexOf(id)
	if !ok || i >= len(r.targets.opacity) {
		return 0, false
	}
	return r.targets.opacity[i], true
}

// DeformStack returns the deform stack of a drawable or mesh-group node, or
// nil. Contributions added between BeginFrame and EndFrame are included in
// that frame's snapshot.
func (r *Rig) DeformStack(id uint32) *DeformStack {
	i, ok := r.graph.indexOf(id)
	if !ok {
		return nil
	}
	return r.targets.deformStack(i)
}

// Stats returns the statistics of the most recent EndFrame.
func (r *Rig) Stats() FrameStats {
	return r.stats
}

// Frame returns the number of completed EndFrame calls.
func (r *Rig) Frame() uint64 {
	return r.frame
}
