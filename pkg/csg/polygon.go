package csg

// Polygon is an ordered loop of at least three vertices lying approximately
// on one plane. The plane is derived from the first three vertices. Tag is
// an opaque material/group identifier carried through boolean operations so
// that output geometry can be regrouped when converted back to a host mesh.
//
// A polygon is owned by exactly one BSP node list at a time; splitting
// consumes the original and produces fresh polygons with interpolated
// vertices.
type Polygon struct {
	Vertices []Vertex
	Plane    Plane
	Tag      string
}

// NewPolygon builds a polygon from a vertex loop, deriving its plane from
// the first three vertices. The caller keeps no ownership of verts.
func NewPolygon(verts []Vertex, tag string) Polygon {
	p := Polygon{Vertices: verts, Tag: tag}
	if len(verts) >= 3 {
		p.Plane = PlaneFromPoints(verts[0].Pos, verts[1].Pos, verts[2].Pos)
	}
	return p
}

// OK reports whether the polygon has enough vertices and a valid plane.
// Zero-area (collinear) polygons fail this check and are skipped during
// tree construction.
func (p Polygon) OK() bool {
	return len(p.Vertices) >= 3 && p.Plane.OK()
}

// Flip reverses the polygon's winding in place, flipping each vertex normal
// and the derived plane.
func (p *Polygon) Flip() {
	for i, j := 0, len(p.Vertices)-1; i < j; i, j = i+1, j-1 {
		p.Vertices[i], p.Vertices[j] = p.Vertices[j], p.Vertices[i]
	}
	for i := range p.Vertices {
		p.Vertices[i] = p.Vertices[i].Flipped()
	}
	p.Plane = p.Plane.Flipped()
}

// clone returns a deep copy with its own vertex storage.
func (p Polygon) clone() Polygon {
	verts := make([]Vertex, len(p.Vertices))
	copy(verts, p.Vertices)
	return Polygon{Vertices: verts, Plane: p.Plane, Tag: p.Tag}
}

// clonePolygons deep-copies a polygon soup. Combine clones its inputs so
// the in-place tree mutations never alias caller-owned geometry.
func clonePolygons(polys []Polygon) []Polygon {
	out := make([]Polygon, len(polys))
	for i, p := range polys {
		out[i] = p.clone()
	}
	return out
}

// Volume returns the signed volume enclosed by a closed polygon soup, via
// the divergence theorem over a fan triangulation of each polygon. The
// result is positive for outward-facing windings.
func Volume(polys []Polygon) float64 {
	var v float64
	for _, p := range polys {
		for i := 2; i < len(p.Vertices); i++ {
			a := p.Vertices[0].Pos
			b := p.Vertices[i-1].Pos
			c := p.Vertices[i].Pos
			v += a.Dot(b.Cross(c))
		}
	}
	return v / 6
}

// SurfaceArea returns the total area of all polygons in the soup.
func SurfaceArea(polys []Polygon) float64 {
	var area float64
	for _, p := range polys {
		for i := 2; i < len(p.Vertices); i++ {
			e1 := p.Vertices[i-1].Pos.Sub(p.Vertices[0].Pos)
			e2 := p.Vertices[i].Pos.Sub(p.Vertices[0].Pos)
			area += e1.Cross(e2).Length() / 2
		}
	}
	return area
}
