// Package bsp implements the kernel.Kernel interface on top of the
// pkg/csg BSP boolean engine. It is the default backend: pure Go, no
// CGo, exact polygon output (no marching-cubes resampling).
package bsp

import (
	"fmt"
	"math"

	"github.com/carvecad/carve/pkg/csg"
	"github.com/carvecad/carve/pkg/kernel"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*Kernel)(nil)
var _ kernel.Solid = (*bspSolid)(nil)

// defaultSegments is the circular tessellation used when a caller passes
// segments <= 0 for a curved primitive.
const defaultSegments = 32

// bspSolid wraps a polygon soup to implement kernel.Solid. The soup is
// treated as immutable; every kernel operation returns a new solid.
type bspSolid struct {
	polygons []csg.Polygon
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *bspSolid) BoundingBox() (min, max [3]float64) {
	first := true
	for _, p := range s.polygons {
		for _, v := range p.Vertices {
			pos := [3]float64{v.Pos.X, v.Pos.Y, v.Pos.Z}
			if first {
				min, max = pos, pos
				first = false
				continue
			}
			for i := 0; i < 3; i++ {
				if pos[i] < min[i] {
					min[i] = pos[i]
				}
				if pos[i] > max[i] {
					max[i] = pos[i]
				}
			}
		}
	}
	return min, max
}

// Kernel implements kernel.Kernel using BSP-tree booleans on polygon
// soups.
type Kernel struct {
	// Tolerance is the plane coincidence epsilon threaded through every
	// boolean operation.
	Tolerance float64
}

// New returns a Kernel with the default tolerance.
func New() *Kernel {
	return &Kernel{Tolerance: csg.DefaultTolerance}
}

// NewWithTolerance returns a Kernel with the given coincidence epsilon.
// Non-positive values fall back to the default.
func NewWithTolerance(tol float64) *Kernel {
	if tol <= 0 {
		tol = csg.DefaultTolerance
	}
	return &Kernel{Tolerance: tol}
}

// unwrap extracts the polygon soup from a kernel.Solid.
func unwrap(s kernel.Solid) []csg.Polygon {
	return s.(*bspSolid).polygons
}

// wrap creates a kernel.Solid from a polygon soup.
func wrap(polys []csg.Polygon) kernel.Solid {
	return &bspSolid{polygons: polys}
}

// FromPolygons creates a solid directly from a polygon soup. The soup must
// describe a closed surface with outward windings for booleans to be
// meaningful.
func FromPolygons(polys []csg.Polygon) kernel.Solid {
	return wrap(polys)
}

// Polygons returns the polygon soup backing a solid produced by this
// kernel.
func Polygons(s kernel.Solid) []csg.Polygon {
	return unwrap(s)
}

// Box creates a box with the given dimensions. The resulting solid has its
// minimum corner at the origin (0,0,0) so that placement translations work
// intuitively — (place :at (vec3 10 0 0)) puts the board's corner at x=10.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	quad := func(n csg.Vector, a, b, c, d csg.Vector) csg.Polygon {
		return csg.NewPolygon([]csg.Vertex{
			{Pos: a, Normal: n},
			{Pos: b, Normal: n},
			{Pos: c, Normal: n},
			{Pos: d, Normal: n},
		}, "")
	}
	return wrap([]csg.Polygon{
		quad(csg.Vector{X: -1}, csg.Vector{}, csg.Vector{Z: z}, csg.Vector{Y: y, Z: z}, csg.Vector{Y: y}),
		quad(csg.Vector{X: 1}, csg.Vector{X: x}, csg.Vector{X: x, Y: y}, csg.Vector{X: x, Y: y, Z: z}, csg.Vector{X: x, Z: z}),
		quad(csg.Vector{Y: -1}, csg.Vector{}, csg.Vector{X: x}, csg.Vector{X: x, Z: z}, csg.Vector{Z: z}),
		quad(csg.Vector{Y: 1}, csg.Vector{Y: y}, csg.Vector{Y: y, Z: z}, csg.Vector{X: x, Y: y, Z: z}, csg.Vector{X: x, Y: y}),
		quad(csg.Vector{Z: -1}, csg.Vector{}, csg.Vector{Y: y}, csg.Vector{X: x, Y: y}, csg.Vector{X: x}),
		quad(csg.Vector{Z: 1}, csg.Vector{Z: z}, csg.Vector{X: x, Z: z}, csg.Vector{X: x, Y: y, Z: z}, csg.Vector{Y: y, Z: z}),
	})
}

// Cylinder creates a cylinder along the Z axis, centered at the origin,
// with the given height, radius, and number of circular segments. Side
// vertices carry radial normals so the surface shades smoothly.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if segments <= 0 {
		segments = defaultSegments
	}
	h2 := height / 2
	top := csg.Vector{Z: h2}
	bottom := csg.Vector{Z: -h2}

	rim := func(i int) (pos csg.Vector, radial csg.Vector, u float64) {
		theta := 2 * math.Pi * float64(i%segments) / float64(segments)
		radial = csg.Vector{X: math.Cos(theta), Y: math.Sin(theta)}
		return radial.Scale(radius), radial, float64(i) / float64(segments)
	}

	polys := make([]csg.Polygon, 0, segments*3)
	for i := 0; i < segments; i++ {
		p0, n0, u0 := rim(i)
		p1, n1, u1 := rim(i + 1)

		b0 := csg.Vector{X: p0.X, Y: p0.Y, Z: -h2}
		b1 := csg.Vector{X: p1.X, Y: p1.Y, Z: -h2}
		t0 := csg.Vector{X: p0.X, Y: p0.Y, Z: h2}
		t1 := csg.Vector{X: p1.X, Y: p1.Y, Z: h2}

		// Bottom cap faces -Z, top cap faces +Z.
		polys = append(polys,
			csg.NewPolygon([]csg.Vertex{
				{Pos: bottom, Normal: csg.Vector{Z: -1}, Tex: csg.UV{U: 0.5, V: 0.5}},
				{Pos: b1, Normal: csg.Vector{Z: -1}, Tex: csg.UV{U: n1.X/2 + 0.5, V: n1.Y/2 + 0.5}},
				{Pos: b0, Normal: csg.Vector{Z: -1}, Tex: csg.UV{U: n0.X/2 + 0.5, V: n0.Y/2 + 0.5}},
			}, ""),
			csg.NewPolygon([]csg.Vertex{
				{Pos: top, Normal: csg.Vector{Z: 1}, Tex: csg.UV{U: 0.5, V: 0.5}},
				{Pos: t0, Normal: csg.Vector{Z: 1}, Tex: csg.UV{U: n0.X/2 + 0.5, V: n0.Y/2 + 0.5}},
				{Pos: t1, Normal: csg.Vector{Z: 1}, Tex: csg.UV{U: n1.X/2 + 0.5, V: n1.Y/2 + 0.5}},
			}, ""),
			csg.NewPolygon([]csg.Vertex{
				{Pos: b0, Normal: n0, Tex: csg.UV{U: u0, V: 0}},
				{Pos: b1, Normal: n1, Tex: csg.UV{U: u1, V: 0}},
				{Pos: t1, Normal: n1, Tex: csg.UV{U: u1, V: 1}},
				{Pos: t0, Normal: n0, Tex: csg.UV{U: u0, V: 1}},
			}, ""),
		)
	}
	return wrap(polys)
}

// Sphere creates a UV sphere centered at the origin. Stacks are derived
// from segments (half as many) so faces stay roughly square.
func (k *Kernel) Sphere(radius float64, segments int) kernel.Solid {
	if segments <= 0 {
		segments = defaultSegments
	}
	stacks := segments / 2
	if stacks < 2 {
		stacks = 2
	}

	at := func(i, j int) csg.Vertex {
		theta := 2 * math.Pi * float64(i%segments) / float64(segments)
		phi := math.Pi * float64(j) / float64(stacks)
		dir := csg.Vector{
			X: math.Cos(theta) * math.Sin(phi),
			Y: math.Sin(theta) * math.Sin(phi),
			Z: math.Cos(phi),
		}
		return csg.Vertex{
			Pos:    dir.Scale(radius),
			Normal: dir,
			Tex:    csg.UV{U: float64(i) / float64(segments), V: 1 - float64(j)/float64(stacks)},
		}
	}

	polys := make([]csg.Polygon, 0, segments*stacks)
	for i := 0; i < segments; i++ {
		for j := 0; j < stacks; j++ {
			verts := []csg.Vertex{at(i, j), at(i, j+1)}
			// Pole rows collapse one edge of the quad to a point, so the
			// duplicate corner is skipped and a triangle remains.
			if j < stacks-1 {
				verts = append(verts, at(i+1, j+1))
			}
			if j > 0 {
				verts = append(verts, at(i+1, j))
			}
			polys = append(polys, csg.NewPolygon(verts, ""))
		}
	}
	return wrap(polys)
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return k.boolean(csg.Union, a, b)
}

// Difference returns the difference a - b.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return k.boolean(csg.Difference, a, b)
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return k.boolean(csg.Intersection, a, b)
}

// boolean dispatches to csg.Combine, short-circuiting empty operands so
// that folds over child lists never feed an empty soup to the engine.
func (k *Kernel) boolean(op csg.Op, a, b kernel.Solid) kernel.Solid {
	pa, pb := unwrap(a), unwrap(b)
	switch {
	case len(pa) == 0 && len(pb) == 0:
		return wrap(nil)
	case len(pa) == 0:
		if op == csg.Union {
			return b
		}
		return wrap(nil)
	case len(pb) == 0:
		if op == csg.Intersection {
			return wrap(nil)
		}
		return a
	}

	out, err := csg.Combine(op, pa, pb, k.Tolerance)
	if err != nil {
		panic(fmt.Sprintf("bsp: %v: %v", op, err))
	}
	return wrap(out)
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return transform(s, csg.Translation(csg.Vector{X: x, Y: y, Z: z}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes,
// applied in X, Y, Z order.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := csg.RotationZ(zRad).Mul(csg.RotationY(yRad)).Mul(csg.RotationX(xRad))
	return transform(s, m)
}

// transform applies a rigid transform to every vertex and plane of a
// solid's polygons, returning a new solid.
func transform(s kernel.Solid, m csg.Mat4) kernel.Solid {
	src := unwrap(s)
	out := make([]csg.Polygon, len(src))
	for i, p := range src {
		verts := make([]csg.Vertex, len(p.Vertices))
		for j, v := range p.Vertices {
			verts[j] = csg.Vertex{
				Pos:    m.ApplyPoint(v.Pos),
				Normal: m.ApplyDir(v.Normal),
				Tex:    v.Tex,
			}
		}
		out[i] = csg.Polygon{
			Vertices: verts,
			Plane:    p.Plane.Transform(m),
			Tag:      p.Tag,
		}
	}
	return wrap(out)
}

// ToMesh converts a solid to a triangle mesh by fan-triangulating each
// polygon. Vertices are not shared between polygons, so face creases
// render sharply.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	polys := unwrap(s)

	var numVerts, numTris int
	for _, p := range polys {
		if len(p.Vertices) < 3 {
			continue
		}
		numVerts += len(p.Vertices)
		numTris += len(p.Vertices) - 2
	}

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	texcoords := make([]float32, 0, numVerts*2)
	indices := make([]uint32, 0, numTris*3)

	base := uint32(0)
	for _, p := range polys {
		if len(p.Vertices) < 3 {
			continue
		}
		for _, v := range p.Vertices {
			vertices = append(vertices, float32(v.Pos.X), float32(v.Pos.Y), float32(v.Pos.Z))
			normals = append(normals, float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z))
			texcoords = append(texcoords, float32(v.Tex.U), float32(v.Tex.V))
		}
		for t := 1; t < len(p.Vertices)-1; t++ {
			indices = append(indices, base, base+uint32(t), base+uint32(t)+1)
		}
		base += uint32(len(p.Vertices))
	}

	return &kernel.Mesh{
		Vertices:  vertices,
		Normals:   normals,
		TexCoords: texcoords,
		Indices:   indices,
	}, nil
}

// FromMesh builds a solid from a triangle mesh. The mesh must be closed
// with outward windings; triangles that collapse to a line or point are
// dropped.
func FromMesh(m *kernel.Mesh) kernel.Solid {
	polys := make([]csg.Polygon, 0, m.TriangleCount())
	pos := func(i uint32) csg.Vector {
		return csg.Vector{
			X: float64(m.Vertices[i*3+0]),
			Y: float64(m.Vertices[i*3+1]),
			Z: float64(m.Vertices[i*3+2]),
		}
	}
	normal := func(i uint32) csg.Vector {
		if len(m.Normals) < len(m.Vertices) {
			return csg.Vector{}
		}
		return csg.Vector{
			X: float64(m.Normals[i*3+0]),
			Y: float64(m.Normals[i*3+1]),
			Z: float64(m.Normals[i*3+2]),
		}
	}
	tex := func(i uint32) csg.UV {
		if len(m.TexCoords)/2 < m.VertexCount() {
			return csg.UV{}
		}
		return csg.UV{U: float64(m.TexCoords[i*2+0]), V: float64(m.TexCoords[i*2+1])}
	}

	for t := 0; t < m.TriangleCount(); t++ {
		i0, i1, i2 := m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]
		p := csg.NewPolygon([]csg.Vertex{
			{Pos: pos(i0), Normal: normal(i0), Tex: tex(i0)},
			{Pos: pos(i1), Normal: normal(i1), Tex: tex(i1)},
			{Pos: pos(i2), Normal: normal(i2), Tex: tex(i2)},
		}, m.PartName)
		if !p.OK() {
			continue
		}
		polys = append(polys, p)
	}
	return wrap(polys)
}
