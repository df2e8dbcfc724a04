package marionette

import "fmt"

// Graph owns the node hierarchy as an arena of nodes keyed by stable id.
// There is exactly one root, every other node has one parent, and children
// can only be attached under nodes already in the graph, so the hierarchy is
// acyclic by construction.
type Graph struct {
	nodes   []*Node
	index   map[uint32]int
	byName  map[string]int
	order   []int // pre-order arena indices
	ordered bool
	frozen  bool // set once a Rig has sized its stores from the graph
}

// NewGraph creates a graph with the given node as root.
// Panics if root is nil.
func NewGraph(root *Node) *Graph {
	if root == nil {
		panic("marionette: cannot create graph with nil root")
	}
	root.parent = NoParent
	root.parentIdx = -1
	g := &Graph{
		nodes:  []*Node{root},
		index:  map[uint32]int{root.ID: 0},
		byName: map[string]int{root.Name: 0},
	}
	return g
}

// AddChild attaches child under the node with id parentID.
// Panics if child is nil, its id is already in the graph, the parent is
// unknown, or a Rig over the graph has already run InitTransforms.
func (g *Graph) AddChild(parentID uint32, child *Node) {
	if g.frozen {
		panic("marionette: graph modified after InitTransforms")
	}
	if child == nil {
		panic("marionette: cannot add nil child")
	}
	if _, dup := g.index[child.ID]; dup {
		panic(fmt.Sprintf("marionette: duplicate node id %d (%q)", child.ID, child.Name))
	}
	pi, ok := g.index[parentID]
	if !ok {
		panic(fmt.Sprintf("marionette: parent %d of node %d (%q) is not in the graph", parentID, child.ID, child.Name))
	}
	parent := g.nodes[pi]
	child.parent = parentID
	child.parentIdx = pi
	idx := len(g.nodes)
	g.nodes = append(g.nodes, child)
	g.index[child.ID] = idx
	if _, seen := g.byName[child.Name]; !seen {
		g.byName[child.Name] = idx
	}
	parent.children = append(parent.children, child.ID)
	g.ordered = false
	if globalDebug {
		debugCheckTreeDepth(g, idx)
		debugCheckChildCount(parent)
	}
}

// Root returns the root node.
func (g *Graph) Root() *Node {
	return g.nodes[0]
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id uint32) *Node {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.nodes[i]
}

// Find returns the first node added with the given name, or nil.
func (g *Graph) Find(name string) *Node {
	i, ok := g.byName[name]
	if !ok {
		return nil
	}
	return g.nodes[i]
}

// Len returns the number of nodes, root included.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Walk calls fn for every node in pre-order: a parent is always visited
// before its children, and siblings in insertion order.
func (g *Graph) Walk(fn func(n *Node)) {
	for _, i := range g.preorder() {
		fn(g.nodes[i])
	}
}

// Frozen reports whether the hierarchy is closed to further AddChild calls.
func (g *Graph) Frozen() bool {
	return g.frozen
}

func (g *Graph) freeze() {
	g.frozen = true
}

// indexOf returns the arena index for id.
func (g *Graph) indexOf(id uint32) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// preorder returns the cached pre-order traversal, rebuilding it when the
// hierarchy changed since the last call.
func (g *Graph) preorder() []int {
	if g.ordered {
		return g.order
	}
	if cap(g.order) < len(g.nodes) {
		g.order = make([]int, 0, len(g.nodes))
	}
	g.order = g.order[:0]
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		g.order = append(g.order, i)
		children := g.nodes[i].children
		for c := len(children) - 1; c >= 0; c-- {
			stack = append(stack, g.index[children[c]])
		}
	}
	g.ordered = true
	return g.order
}
