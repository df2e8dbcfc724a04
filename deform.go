package marionette

import (
	"fmt"
	"sort"
)

// SourceKind distinguishes what contributed a deformation.
type SourceKind uint8

const (
	SourceParameter SourceKind = iota // a deform binding, keyed by parameter id
	SourceNode                        // another node (path deformers, mesh groups)
)

// DeformKey identifies one contributor to a DeformStack.
type DeformKey struct {
	Kind SourceKind
	ID   uint32
}

// ParamSource returns the key used by deform bindings of parameter id.
func ParamSource(id uint32) DeformKey {
	return DeformKey{Kind: SourceParameter, ID: id}
}

// NodeSource returns the key used by contributions from node id.
func NodeSource(id uint32) DeformKey {
	return DeformKey{Kind: SourceNode, ID: id}
}

// DeformStack sums named per-vertex displacements for one mesh. It is
// cleared at the start of every frame and repopulated by parameters.
type DeformStack struct {
	vertexCount int
	entries     map[DeformKey][]Vec2
	keys        []DeformKey // insertion order, for deterministic summation
}

// NewDeformStack creates an empty stack for a mesh with vertexCount vertices.
func NewDeformStack(vertexCount int) *DeformStack {
	return &DeformStack{
		vertexCount: vertexCount,
		entries:     make(map[DeformKey][]Vec2),
	}
}

// VertexCount returns the mesh vertex count the stack was created for.
func (s *DeformStack) VertexCount() int {
	return s.vertexCount
}

// Len returns the number of contributors currently in the stack.
func (s *DeformStack) Len() int {
	return len(s.keys)
}

// Set replaces the displacement contributed by key. The vectors are copied.
// Panics if len(vectors) differs from the stack's vertex count.
func (s *DeformStack) Set(key DeformKey, vectors []Vec2) {
	if len(vectors) != s.vertexCount {
		panic(fmt.Sprintf("marionette: deform source %v has %d vectors, mesh has %d vertices",
			key, len(vectors), s.vertexCount))
	}
	buf, ok := s.entries[key]
	if !ok {
		buf = make([]Vec2, s.vertexCount)
		s.keys = append(s.keys, key)
	}
	copy(buf, vectors)
	s.entries[key] = buf
}

// Get returns the displacement contributed by key, if any.
// The returned slice MUST NOT be mutated by the caller.
func (s *DeformStack) Get(key DeformKey) ([]Vec2, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Keys returns the contributing keys sorted by kind, then id.
func (s *DeformStack) Keys() []DeformKey {
	keys := make([]DeformKey, len(s.keys))
	copy(keys, s.keys)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].ID < keys[j].ID
	})
	return keys
}

// Combine writes the elementwise sum of all contributions into dst and
// returns it. dst is grown to the vertex count if needed.
func (s *DeformStack) Combine(dst []Vec2) []Vec2 {
	if cap(dst) < s.vertexCount {
		dst = make([]Vec2, s.vertexCount)
	}
	dst = dst[:s.vertexCount]
	for i := range dst {
		dst[i] = Vec2{}
	}
	for _, k := range s.keys {
		for i, v := range s.entries[k] {
			dst[i] = dst[i].Add(v)
		}
	}
	return dst
}

// Apply writes base + Combine() into dst and returns it.
// Panics if len(base) differs from the stack's vertex count.
func (s *DeformStack) Apply(base, dst []Vec2) []Vec2 {
	if len(base) != s.vertexCount {
		panic(fmt.Sprintf("marionette: base mesh has %d vertices, deform stack has %d",
			len(base), s.vertexCount))
	}
	dst = s.Combine(dst)
	for i := range dst {
		dst[i] = dst[i].Add(base[i])
	}
	return dst
}

// Clear drops every contribution.
func (s *DeformStack) Clear() {
	for _, k := range s.keys {
		delete(s.entries, k)
	}
	s.keys = s.keys[:0]
}
