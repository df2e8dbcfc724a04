package marionette

// zsortState is the per-node draw-order entry. base is reset to the node's
// static ZSort each frame and accumulated into by zsort bindings.
type zsortState struct {
	base      float64
	effective float64
}

type zsortStore struct {
	states []zsortState
}

func newZSortStore(g *Graph) *zsortStore {
	s := &zsortStore{states: make([]zsortState, g.Len())}
	s.reset(g)
	return s
}

func (s *zsortStore) state(i int) *zsortState {
	if i < 0 || i >= len(s.states) {
		return nil
	}
	return &s.states[i]
}

func (s *zsortStore) reset(g *Graph) {
	for _, i := range g.preorder() {
		st := s.state(i)
		if st == nil {
			continue
		}
		st.base = g.nodes[i].ZSort
		st.effective = st.base
	}
}

// update accumulates effective values top-down. The root keeps its own base.
func (s *zsortStore) update(g *Graph) {
	for _, i := range g.preorder() {
		st := s.state(i)
		if st == nil {
			continue
		}
		n := g.nodes[i]
		parent := s.state(n.parentIdx)
		if parent == nil {
			st.effective = st.base
			continue
		}
		st.effective = parent.effective + st.base
	}
}
