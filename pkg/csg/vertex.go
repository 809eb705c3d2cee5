package csg

// UV is a 2D texture coordinate.
type UV struct {
	U, V float64
}

// Lerp returns the linear interpolation between two texture coordinates.
func (t UV) Lerp(o UV, f float64) UV {
	return UV{
		U: t.U + (o.U-t.U)*f,
		V: t.V + (o.V-t.V)*f,
	}
}

// Vertex is a positional point with optional shading attributes. A zero
// Normal or UV simply means the source mesh carried none; attributes are
// always interpolated together with position so that vertices synthesized
// at split points remain consistent.
type Vertex struct {
	Pos    Vector
	Normal Vector
	Tex    UV
}

// Interpolate returns the vertex at parameter t on the segment from v to o.
// Every attribute is mixed with the same parameter.
func (v Vertex) Interpolate(o Vertex, t float64) Vertex {
	return Vertex{
		Pos:    v.Pos.Lerp(o.Pos, t),
		Normal: v.Normal.Lerp(o.Normal, t),
		Tex:    v.Tex.Lerp(o.Tex, t),
	}
}

// Flipped returns a copy of v with its normal reversed. Used when a
// polygon's winding is reversed.
func (v Vertex) Flipped() Vertex {
	v.Normal = v.Normal.Neg()
	return v
}
