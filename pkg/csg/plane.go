package csg

// Side classifies a point or polygon relative to a plane.
type Side int

const (
	SideCoplanar Side = iota // within tolerance of the plane
	SideFront                // strictly on the normal side
	SideBack                 // strictly on the anti-normal side
	SideSpanning             // polygon only: vertices on both sides
)

func (s Side) String() string {
	switch s {
	case SideCoplanar:
		return "coplanar"
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	case SideSpanning:
		return "spanning"
	default:
		return "unknown"
	}
}

// Plane is an infinite oriented plane. A point p lies on the plane iff
// dot(Normal, p) == W. The normal is deliberately NOT normalized: planes
// derived from polygons keep the raw cross product, matching the numeric
// behavior of the classic BSP CSG formulation. Tolerance comparisons are
// therefore relative to the normal's magnitude.
type Plane struct {
	Normal Vector
	W      float64
}

// PlaneFromPoints derives a plane from three ordered points. The returned
// plane is invalid (OK() == false) when the points are collinear.
func PlaneFromPoints(a, b, c Vector) Plane {
	n := b.Sub(a).Cross(c.Sub(a))
	return Plane{Normal: n, W: n.Dot(a)}
}

// OK reports whether the plane is valid, i.e. its normal is nonzero.
func (p Plane) OK() bool {
	return p.Normal != (Vector{})
}

// Flipped returns the plane with its half-space sense reversed.
func (p Plane) Flipped() Plane {
	return Plane{Normal: p.Normal.Neg(), W: -p.W}
}

// ClassifyPoint returns the side of the plane the point lies on, using the
// given tolerance for the coplanar band.
func (p Plane) ClassifyPoint(pos Vector, eps float64) Side {
	t := p.Normal.Dot(pos) - p.W
	switch {
	case t < -eps:
		return SideBack
	case t > eps:
		return SideFront
	default:
		return SideCoplanar
	}
}

// sideOf combines per-vertex classifications into a polygon classification.
func sideOf(hasFront, hasBack bool) Side {
	switch {
	case hasFront && hasBack:
		return SideSpanning
	case hasFront:
		return SideFront
	case hasBack:
		return SideBack
	default:
		return SideCoplanar
	}
}

// Split classifies poly against the plane and appends it, or the pieces it
// splits into, to the appropriate output lists:
//
//   - coplanar polygons go to coplanarFront or coplanarBack depending on
//     whether their own normal agrees with this plane's normal, which is
//     what distinguishes same-facing from opposite-facing overlapping
//     coplanar geometry;
//   - polygons entirely on one side go whole to front or back;
//   - spanning polygons are cut edge by edge, with a vertex synthesized by
//     interpolation wherever an edge crosses the plane and appended to both
//     halves, so the two halves share the cut edge exactly.
//
// Split fragments that end up with fewer than three vertices are dropped.
// The input polygon is never mutated.
func (p Plane) Split(poly Polygon, eps float64, coplanarFront, coplanarBack, front, back *[]Polygon) {
	sides := make([]Side, len(poly.Vertices))
	hasFront, hasBack := false, false
	for i, v := range poly.Vertices {
		s := p.ClassifyPoint(v.Pos, eps)
		sides[i] = s
		switch s {
		case SideFront:
			hasFront = true
		case SideBack:
			hasBack = true
		}
	}

	switch sideOf(hasFront, hasBack) {
	case SideCoplanar:
		if p.Normal.Dot(poly.Plane.Normal) > 0 {
			*coplanarFront = append(*coplanarFront, poly)
		} else {
			*coplanarBack = append(*coplanarBack, poly)
		}

	case SideFront:
		*front = append(*front, poly)

	case SideBack:
		*back = append(*back, poly)

	case SideSpanning:
		var f, b []Vertex
		n := len(poly.Vertices)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			vi, vj := poly.Vertices[i], poly.Vertices[j]
			si, sj := sides[i], sides[j]

			// Boundary-coplanar vertices belong to both halves.
			if si != SideBack {
				f = append(f, vi)
			}
			if si != SideFront {
				b = append(b, vi)
			}

			// Edge crosses the plane: synthesize the intersection vertex
			// and emit it to both halves so they share the cut edge.
			if (si == SideFront && sj == SideBack) || (si == SideBack && sj == SideFront) {
				t := (p.W - p.Normal.Dot(vi.Pos)) / p.Normal.Dot(vj.Pos.Sub(vi.Pos))
				mid := vi.Interpolate(vj, t)
				f = append(f, mid)
				b = append(b, mid)
			}
		}
		if len(f) >= 3 {
			*front = append(*front, NewPolygon(f, poly.Tag))
		}
		if len(b) >= 3 {
			*back = append(*back, NewPolygon(b, poly.Tag))
		}
	}
}

// Transform re-expresses the plane under an affine transform of the space.
// Planes transform by the inverse transpose of the point transform applied
// to the homogeneous plane vector (nx, ny, nz, -w). Singular transforms
// leave the plane unchanged.
func (p Plane) Transform(m Mat4) Plane {
	inv, ok := m.Inverse()
	if !ok {
		return p
	}
	it := inv.Transpose()
	nx, ny, nz, nw := it.applyHomogeneous(p.Normal.X, p.Normal.Y, p.Normal.Z, -p.W)
	return Plane{Normal: Vector{nx, ny, nz}, W: -nw}
}
