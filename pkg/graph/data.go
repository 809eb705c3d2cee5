package graph

// ---------------------------------------------------------------------------
// Material
// ---------------------------------------------------------------------------

// MaterialSpec describes the intended material of a part. Advisory only:
// it tags output meshes but never changes geometry.
type MaterialSpec struct {
	Name  string `json:"name,omitempty"`  // e.g. "aluminum", "abs"
	Color string `json:"color,omitempty"` // display color hint, e.g. "#c0c0c0"
	Notes string `json:"notes,omitempty"`
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// BoxData represents a rectangular solid with its minimum corner at the
// local origin.
type BoxData struct {
	Dimensions Vec3         `json:"dimensions"` // extent along x, y, z
	Material   MaterialSpec `json:"material"`
}

func (BoxData) nodeData() {}

// CylinderData represents a cylinder along the local Z axis, centered at
// the local origin.
type CylinderData struct {
	Height   float64      `json:"height"`
	Radius   float64      `json:"radius"`
	Segments int          `json:"segments"` // 0 = kernel default
	Material MaterialSpec `json:"material"`
}

func (CylinderData) nodeData() {}

// SphereData represents a sphere centered at the local origin.
type SphereData struct {
	Radius   float64      `json:"radius"`
	Segments int          `json:"segments"` // 0 = kernel default
	Material MaterialSpec `json:"material"`
}

func (SphereData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ...) form. Rotation is applied before translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BoolOp enumerates boolean operations on solids.
type BoolOp int

const (
	BoolUnion BoolOp = iota
	BoolDifference
	BoolIntersection
)

func (op BoolOp) String() string {
	switch op {
	case BoolUnion:
		return "union"
	case BoolDifference:
		return "difference"
	case BoolIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// BooleanData represents a boolean operation over the node's children.
// Union and intersection fold left over all children; difference subtracts
// every child after the first from the first.
type BooleanData struct {
	Op BoolOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping (assembly, subassembly).
// Created by the (assembly ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
