package marionette

// --- Grid ---

// GridMesh builds a w*h rectangle split into cols*rows cells with its
// top-left corner at the origin. Vertices are laid out row-major, so there
// are (cols+1)*(rows+1) of them. UVs equal the vertex positions, sampling a
// texture of the same size 1:1.
func GridMesh(w, h float64, cols, rows int) Mesh {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	vcols := cols + 1
	vrows := rows + 1
	verts := make([]Vec2, vcols*vrows)
	inds := make([]uint16, cols*rows*6)

	cellW := w / float64(cols)
	cellH := h / float64(rows)
	for r := 0; r < vrows; r++ {
		for c := 0; c < vcols; c++ {
			verts[r*vcols+c] = Vec2{float64(c) * cellW, float64(r) * cellH}
		}
	}

	ii := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			tl := uint16(r*vcols + c)
			tr := tl + 1
			bl := uint16((r+1)*vcols + c)
			br := bl + 1
			inds[ii+0] = tl
			inds[ii+1] = bl
			inds[ii+2] = tr
			inds[ii+3] = tr
			inds[ii+4] = bl
			inds[ii+5] = br
			ii += 6
		}
	}

	uvs := make([]Vec2, len(verts))
	copy(uvs, verts)
	return Mesh{Vertices: verts, UVs: uvs, Indices: inds}
}

// GridDeform builds a displacement array for a GridMesh with the given cell
// counts, suitable as one cell of a deform binding. fn receives each
// vertex's column, row and rest position and returns its displacement.
func GridDeform(m Mesh, cols, rows int, fn func(col, row int, rest Vec2) Vec2) []Vec2 {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	vcols := cols + 1
	out := make([]Vec2, len(m.Vertices))
	for i, rest := range m.Vertices {
		out[i] = fn(i%vcols, i/vcols, rest)
	}
	return out
}

// --- Polygon ---

// PolygonMesh builds a fan-triangulated mesh from the outline of a convex
// polygon. UVs map the points' bounding box onto a texW*texH texture.
// Returns an empty mesh for fewer than three points.
func PolygonMesh(points []Vec2, texW, texH float64) Mesh {
	n := len(points)
	if n < 3 {
		return Mesh{}
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	bbW := maxX - minX
	bbH := maxY - minY

	verts := make([]Vec2, n)
	uvs := make([]Vec2, n)
	for i, p := range points {
		verts[i] = p
		var u, v float64
		if bbW > 0 {
			u = (p.X - minX) / bbW * texW
		}
		if bbH > 0 {
			v = (p.Y - minY) / bbH * texH
		}
		uvs[i] = Vec2{u, v}
	}

	inds := make([]uint16, 0, (n-2)*3)
	for i := 1; i < n-1; i++ {
		inds = append(inds, 0, uint16(i), uint16(i+1))
	}
	return Mesh{Vertices: verts, UVs: uvs, Indices: inds}
}
