package marionette

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureLogger(r *Rig) *bytes.Buffer {
	var buf bytes.Buffer
	r.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &buf
}

func resetDebug(r *Rig) {
	r.SetDebugMode(false)
	r.SetLogger(nil)
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	r := New(NewGraph(NewNode(0, "unused")), nil, DefaultPhysicsSettings())
	buf := captureLogger(r)
	r.SetDebugMode(true)
	defer resetDebug(r)

	g := NewGraph(NewNode(0, "root"))
	for i := uint32(1); i <= debugMaxTreeDepth+5; i++ {
		g.AddChild(i-1, NewNode(i, fmt.Sprintf("depth_%d", i)))
	}

	if !strings.Contains(buf.String(), "tree depth") {
		t.Errorf("expected tree depth warning, got: %q", buf.String())
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	r := New(NewGraph(NewNode(0, "unused")), nil, DefaultPhysicsSettings())
	buf := captureLogger(r)
	r.SetDebugMode(true)
	defer resetDebug(r)

	g := NewGraph(NewNode(0, "root"))
	for i := uint32(1); i <= debugMaxChildCount+1; i++ {
		g.AddChild(0, NewNode(i, ""))
	}

	out := buf.String()
	if !strings.Contains(out, "children") || !strings.Contains(out, "threshold") {
		t.Errorf("expected child count warning, got: %q", out)
	}
}

func TestReleaseMode_NoWarnings(t *testing.T) {
	r := New(NewGraph(NewNode(0, "unused")), nil, DefaultPhysicsSettings())
	buf := captureLogger(r)
	defer resetDebug(r)

	g := NewGraph(NewNode(0, "root"))
	for i := uint32(1); i <= debugMaxTreeDepth+5; i++ {
		g.AddChild(i-1, NewNode(i, ""))
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output with debug off, got: %q", buf.String())
	}
}

func TestDebugMode_FrameLog(t *testing.T) {
	g := NewGraph(NewNode(0, "root"))
	g.AddChild(0, NewDrawableNode(1, "quad", quadMesh(1), nil))
	p := NewParameter(1, "P", 0, 1)
	p.AddBinding(NewValueBinding(1, PropTranslateX, [][]float64{{0}, {1}}))
	p.AddBinding(NewValueBinding(77, PropTranslateX, [][]float64{{0}, {1}}))
	r := mustRig(t, g, p)
	buf := captureLogger(r)
	r.SetDebugMode(true)
	defer resetDebug(r)

	mustUpdate(t, r, 0)

	out := buf.String()
	for _, want := range []string{"marionette frame", "frame=1", "bindings=1", "skipped=1", "drawables=1", "bindings skipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %q", want, out)
		}
	}
}

func TestDebugMode_OffIsSilent(t *testing.T) {
	r := mustRig(t, NewGraph(NewNode(0, "root")))
	buf := captureLogger(r)
	defer resetDebug(r)

	mustUpdate(t, r, 0)
	if buf.Len() != 0 {
		t.Errorf("expected no frame log with debug off, got: %q", buf.String())
	}
}

func TestFrameStatsTotal(t *testing.T) {
	s := FrameStats{
		ApplyTime:     1 * time.Millisecond,
		PropagateTime: 2 * time.Millisecond,
		PhysicsTime:   3 * time.Millisecond,
		SnapshotTime:  4 * time.Millisecond,
	}
	if s.Total() != 10*time.Millisecond {
		t.Errorf("Total = %v, want 10ms", s.Total())
	}
}

func TestFrameStatsCounts(t *testing.T) {
	g := NewGraph(NewNode(0, "root"))
	g.AddChild(0, NewDrawableNode(1, "a", quadMesh(1), nil))
	g.AddChild(0, NewDrawableNode(2, "b", quadMesh(1), nil))
	g.AddChild(0, NewPhysicsNode(3, "p", PhysicsConfig{Length: 1}))
	a := NewParameter(1, "A", 0, 1)
	a.AddBinding(NewValueBinding(1, PropOpacity, [][]float64{{0}, {1}}))
	a.AddBinding(NewValueBinding(2, PropOpacity, [][]float64{{0}, {1}}))
	b := NewParameter(2, "B", 0, 1)
	r := mustRig(t, g, a, b)

	mustUpdate(t, r, 0.1)
	st := r.Stats()
	if st.Params != 2 || st.Bindings != 2 || st.SkippedBindings != 0 {
		t.Errorf("params = %d, bindings = %d, skipped = %d", st.Params, st.Bindings, st.SkippedBindings)
	}
	if st.PhysicsSteps != 10 {
		t.Errorf("PhysicsSteps = %d, want 10", st.PhysicsSteps)
	}
	if st.Drawables != 2 {
		t.Errorf("Drawables = %d, want 2", st.Drawables)
	}
}
