package kernel

import (
	"math"
	"testing"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshBoundingBox(t *testing.T) {
	m := &Mesh{Vertices: []float32{
		-1, 0, 2,
		3, -4, 0,
		0, 5, -6,
	}}
	min, max := m.BoundingBox()
	if min != [3]float64{-1, -4, -6} {
		t.Errorf("min = %v, want [-1 -4 -6]", min)
	}
	if max != [3]float64{3, 5, 2} {
		t.Errorf("max = %v, want [3 5 2]", max)
	}

	var empty Mesh
	min, max = empty.BoundingBox()
	if min != [3]float64{} || max != [3]float64{} {
		t.Errorf("empty mesh bounding box = %v %v, want zeros", min, max)
	}
}

// unitTetrahedron is a closed tetrahedron with outward windings and
// volume 1/6.
func unitTetrahedron() *Mesh {
	return &Mesh{
		Vertices: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		},
		Indices: []uint32{
			0, 2, 1, // bottom, facing -Z
			0, 1, 3, // facing -Y
			0, 3, 2, // facing -X
			1, 2, 3, // slanted face
		},
	}
}

func TestMeshVolume(t *testing.T) {
	m := unitTetrahedron()
	if got, want := m.Volume(), 1.0/6.0; math.Abs(got-want) > 1e-6 {
		t.Errorf("tetrahedron volume = %f, want %f", got, want)
	}
}

func TestComputeFlatNormals(t *testing.T) {
	// Single triangle in the XY plane wound counter-clockwise: every
	// vertex normal must be +Z.
	vertices := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	indices := []uint32{0, 1, 2}

	normals := ComputeFlatNormals(vertices, indices)
	if len(normals) != len(vertices) {
		t.Fatalf("normals length = %d, want %d", len(normals), len(vertices))
	}
	for v := 0; v < 3; v++ {
		nx, ny, nz := normals[v*3], normals[v*3+1], normals[v*3+2]
		if math.Abs(float64(nx)) > 1e-6 || math.Abs(float64(ny)) > 1e-6 || math.Abs(float64(nz)-1) > 1e-6 {
			t.Errorf("vertex %d normal = (%f, %f, %f), want (0, 0, 1)", v, nx, ny, nz)
		}
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{
		minBB: [3]float64{0, 0, 0},
		maxBB: [3]float64{x, y, z},
	}
}

func (k *stubKernel) Cylinder(height, radius float64, _ int) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, 0},
		maxBB: [3]float64{radius, radius, height},
	}
}

func (k *stubKernel) Sphere(radius float64, _ int) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -radius},
		maxBB: [3]float64{radius, radius, radius},
	}
}

func (k *stubKernel) Union(a, _ Solid) Solid        { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid   { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(10, 20, 30)
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Box min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{10, 20, 30} {
		t.Errorf("Box max = %v, want [10 20 30]", max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(1, 1, 1)
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m == nil {
		t.Fatal("ToMesh() returned nil mesh")
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return empty mesh")
	}
}
