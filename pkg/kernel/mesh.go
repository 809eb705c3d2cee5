package kernel

import (
	"github.com/chewxy/math32"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, texcoords has 2 floats per vertex,
// indices has 3 uint32s per triangle. Normals and texcoords may be empty.
type Mesh struct {
	Vertices  []float32 `json:"vertices"`  // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals"`   // [nx0,ny0,nz0, ...]
	TexCoords []float32 `json:"texcoords"` // [u0,v0, u1,v1, ...]
	Indices   []uint32  `json:"indices"`   // [i0,i1,i2, ...] triangles
	PartName  string    `json:"partName"`  // which design graph part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// BoundingBox returns the axis-aligned bounds of the mesh vertices.
// An empty mesh reports a zero box.
func (m *Mesh) BoundingBox() (min, max [3]float64) {
	if m.IsEmpty() {
		return min, max
	}
	for i := 0; i < 3; i++ {
		min[i] = float64(m.Vertices[i])
		max[i] = float64(m.Vertices[i])
	}
	for v := 1; v < m.VertexCount(); v++ {
		for i := 0; i < 3; i++ {
			c := float64(m.Vertices[v*3+i])
			if c < min[i] {
				min[i] = c
			}
			if c > max[i] {
				max[i] = c
			}
		}
	}
	return min, max
}

// Volume returns the volume enclosed by the mesh, computed with the
// divergence theorem over its triangles. Only meaningful for closed
// meshes with outward-facing windings.
func (m *Mesh) Volume() float64 {
	var v float64
	for t := 0; t < m.TriangleCount(); t++ {
		i0, i1, i2 := m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]
		ax := float64(m.Vertices[i0*3+0])
		ay := float64(m.Vertices[i0*3+1])
		az := float64(m.Vertices[i0*3+2])
		bx := float64(m.Vertices[i1*3+0])
		by := float64(m.Vertices[i1*3+1])
		bz := float64(m.Vertices[i1*3+2])
		cx := float64(m.Vertices[i2*3+0])
		cy := float64(m.Vertices[i2*3+1])
		cz := float64(m.Vertices[i2*3+2])
		v += ax*(by*cz-bz*cy) + ay*(bz*cx-bx*cz) + az*(bx*cy-by*cx)
	}
	return v / 6
}

// ComputeFlatNormals generates per-vertex normals by accumulating the face
// normals of every triangle incident on each vertex. Backends use this as a
// fallback when the source geometry carries no normals.
func ComputeFlatNormals(vertices []float32, indices []uint32) []float32 {
	numVerts := len(vertices) / 3
	normals := make([]float32, numVerts*3)

	numTris := len(indices) / 3
	for t := 0; t < numTris; t++ {
		i0 := indices[t*3+0]
		i1 := indices[t*3+1]
		i2 := indices[t*3+2]

		// Edge vectors from the first triangle vertex.
		e1x := vertices[i1*3+0] - vertices[i0*3+0]
		e1y := vertices[i1*3+1] - vertices[i0*3+1]
		e1z := vertices[i1*3+2] - vertices[i0*3+2]
		e2x := vertices[i2*3+0] - vertices[i0*3+0]
		e2y := vertices[i2*3+1] - vertices[i0*3+1]
		e2z := vertices[i2*3+2] - vertices[i0*3+2]

		// Unnormalized face normal; the magnitude weights large faces more.
		nx := e1y*e2z - e1z*e2y
		ny := e1z*e2x - e1x*e2z
		nz := e1x*e2y - e1y*e2x

		for _, idx := range [3]uint32{i0, i1, i2} {
			normals[idx*3+0] += nx
			normals[idx*3+1] += ny
			normals[idx*3+2] += nz
		}
	}

	for i := 0; i < numVerts; i++ {
		nx := normals[i*3+0]
		ny := normals[i*3+1]
		nz := normals[i*3+2]
		length := math32.Sqrt(nx*nx + ny*ny + nz*nz)
		if length > 1e-12 {
			normals[i*3+0] = nx / length
			normals[i*3+1] = ny / length
			normals[i*3+2] = nz / length
		}
	}

	return normals
}
