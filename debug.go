package marionette

import (
	"fmt"
	"log/slog"
	"time"
)

// FrameStats holds per-frame timing and workload counts, filled by every
// EndFrame.
type FrameStats struct {
	ApplyTime     time.Duration
	PropagateTime time.Duration
	PhysicsTime   time.Duration
	SnapshotTime  time.Duration

	Params          int
	Bindings        int
	SkippedBindings int
	PhysicsSteps    int
	Drawables       int
}

// Total returns the summed pipeline time.
func (s FrameStats) Total() time.Duration {
	return s.ApplyTime + s.PropagateTime + s.PhysicsTime + s.SnapshotTime
}

// SetDebugMode enables or disables debug mode. When enabled, graph
// construction warns about deep trees and wide nodes, and every EndFrame
// logs its FrameStats at debug level.
func (r *Rig) SetDebugMode(enabled bool) {
	r.debug = enabled
	globalDebug = enabled
}

// SetLogger replaces the logger used for debug output. A nil logger
// restores slog.Default().
func (r *Rig) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	r.logger = l
	debugLogger = l
}

// globalDebug mirrors the most recently set Rig debug flag so that graph
// construction (which has no Rig) can check it cheaply. Only meaningful with
// a single Rig.
var globalDebug bool

// debugLogger is the logger for graph-construction warnings.
var debugLogger = slog.Default()

func (r *Rig) debugLog(st FrameStats) {
	r.logger.Debug("marionette frame",
		slog.Uint64("frame", r.frame),
		slog.Duration("apply", st.ApplyTime),
		slog.Duration("propagate", st.PropagateTime),
		slog.Duration("physics", st.PhysicsTime),
		slog.Duration("snapshot", st.SnapshotTime),
		slog.Duration("total", st.Total()),
		slog.Int("params", st.Params),
		slog.Int("bindings", st.Bindings),
		slog.Int("skipped", st.SkippedBindings),
		slog.Int("physics_steps", st.PhysicsSteps),
		slog.Int("drawables", st.Drawables),
	)
	if st.SkippedBindings > 0 {
		r.logger.Warn("marionette: bindings skipped",
			slog.Int("count", st.SkippedBindings),
			slog.String("reason", "missing target node or store"))
	}
}

const debugMaxTreeDepth = 32

// debugCheckTreeDepth warns if the node at arena index i is nested deeper
// than debugMaxTreeDepth.
func debugCheckTreeDepth(g *Graph, i int) {
	depth := 0
	for p := i; p >= 0; p = g.nodes[p].parentIdx {
		depth++
	}
	if depth > debugMaxTreeDepth {
		n := g.nodes[i]
		debugLogger.Warn(fmt.Sprintf("marionette: tree depth %d exceeds %d", depth, debugMaxTreeDepth),
			slog.Uint64("node", uint64(n.ID)), slog.String("name", n.Name))
	}
}

const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		debugLogger.Warn(fmt.Sprintf("marionette: node has %d children (threshold %d)", len(n.children), debugMaxChildCount),
			slog.Uint64("node", uint64(n.ID)), slog.String("name", n.Name))
	}
}
