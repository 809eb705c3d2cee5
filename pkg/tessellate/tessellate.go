// Package tessellate walks a design graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per part: groups emit a
// mesh for each member, while boolean subtrees collapse into a single
// solid before meshing.
package tessellate

import (
	"fmt"

	"github.com/carvecad/carve/pkg/graph"
	"github.com/carvecad/carve/pkg/kernel"
)

// transformStack accumulates spatial transforms during graph traversal.
type transformStack struct {
	translations []graph.Vec3
	rotations    []graph.Vec3
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(td graph.TransformData) {
	var t, r graph.Vec3
	if td.Translation != nil {
		t = *td.Translation
	}
	if td.Rotation != nil {
		r = *td.Rotation
	}
	ts.translations = append(ts.translations, t)
	ts.rotations = append(ts.rotations, r)
}

func (ts *transformStack) pop() {
	if len(ts.translations) > 0 {
		ts.translations = ts.translations[:len(ts.translations)-1]
	}
	if len(ts.rotations) > 0 {
		ts.rotations = ts.rotations[:len(ts.rotations)-1]
	}
}

// accumulatedTranslation returns the sum of all translations on the stack.
func (ts *transformStack) accumulatedTranslation() graph.Vec3 {
	var sum graph.Vec3
	for _, t := range ts.translations {
		sum = sum.Add(t)
	}
	return sum
}

// accumulatedRotation returns the sum of all rotations on the stack.
func (ts *transformStack) accumulatedRotation() graph.Vec3 {
	var sum graph.Vec3
	for _, r := range ts.rotations {
		sum = sum.Add(r)
	}
	return sum
}

// apply transforms a solid by the accumulated rotation, then translation.
func (ts *transformStack) apply(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	rot := ts.accumulatedRotation()
	if rot.X != 0 || rot.Y != 0 || rot.Z != 0 {
		s = k.Rotate(s, rot.X, rot.Y, rot.Z)
	}
	trans := ts.accumulatedTranslation()
	if trans.X != 0 || trans.Y != 0 || trans.Z != 0 {
		s = k.Translate(s, trans.X, trans.Y, trans.Z)
	}
	return s
}

// Tessellate walks the design graph and produces triangle meshes for every
// root using the provided geometry kernel. The tessellator is read-only
// and never mutates the graph.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	ts := newTransformStack()

	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(g, k, root, ts, "")
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// walkNode recursively traverses a node and its children, collecting
// meshes. inherited carries a parent group's name down to an unnamed
// single child so named boolean results keep their defsolid name.
func walkNode(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack, inherited string) ([]*kernel.Mesh, error) {
	switch n.Kind {
	case graph.NodePrimitive, graph.NodeBoolean:
		solid, err := buildSolid(g, k, n)
		if err != nil {
			return nil, err
		}
		mesh, err := k.ToMesh(ts.apply(k, solid))
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
		}
		mesh.PartName = meshName(n, inherited)
		return []*kernel.Mesh{mesh}, nil

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		ts.push(td)
		defer ts.pop()

		var meshes []*kernel.Mesh
		for _, child := range g.Children(n) {
			collected, err := walkNode(g, k, child, ts, inherited)
			if err != nil {
				return nil, err
			}
			meshes = append(meshes, collected...)
		}
		return meshes, nil

	case graph.NodeGroup:
		children := g.Children(n)
		// A named group with a single child lends its name to that
		// child's mesh.
		passDown := inherited
		if n.Name != "" && len(children) == 1 {
			passDown = n.Name
		}
		var meshes []*kernel.Mesh
		for _, child := range children {
			collected, err := walkNode(g, k, child, ts, passDown)
			if err != nil {
				return nil, err
			}
			meshes = append(meshes, collected...)
		}
		return meshes, nil

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// meshName picks the output part name: the node's own name, an inherited
// group name, or the short node ID as a last resort.
func meshName(n *graph.Node, inherited string) string {
	if n.Name != "" {
		return n.Name
	}
	if inherited != "" {
		return inherited
	}
	return n.ID.Short()
}

// buildSolid collapses a subtree into a single kernel solid. Boolean
// children fold left to right; groups inside a boolean operand behave as
// implicit unions of their members.
func buildSolid(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		return primitiveSolid(k, n)

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		children := g.Children(n)
		if len(children) != 1 {
			return nil, fmt.Errorf("transform node %s has %d children, want 1", n.ID.Short(), len(children))
		}
		solid, err := buildSolid(g, k, children[0])
		if err != nil {
			return nil, err
		}
		if td.Rotation != nil {
			solid = k.Rotate(solid, td.Rotation.X, td.Rotation.Y, td.Rotation.Z)
		}
		if td.Translation != nil {
			solid = k.Translate(solid, td.Translation.X, td.Translation.Y, td.Translation.Z)
		}
		return solid, nil

	case graph.NodeBoolean:
		bd, ok := n.Data.(graph.BooleanData)
		if !ok {
			return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		children := g.Children(n)
		if len(children) < 2 {
			return nil, fmt.Errorf("boolean node %s has %d operands, want at least 2", n.ID.Short(), len(children))
		}

		acc, err := buildSolid(g, k, children[0])
		if err != nil {
			return nil, err
		}
		for _, child := range children[1:] {
			operand, err := buildSolid(g, k, child)
			if err != nil {
				return nil, err
			}
			switch bd.Op {
			case graph.BoolUnion:
				acc = k.Union(acc, operand)
			case graph.BoolDifference:
				acc = k.Difference(acc, operand)
			case graph.BoolIntersection:
				acc = k.Intersection(acc, operand)
			default:
				return nil, fmt.Errorf("boolean node %s has unknown op %v", n.ID.Short(), bd.Op)
			}
		}
		return acc, nil

	case graph.NodeGroup:
		children := g.Children(n)
		if len(children) == 0 {
			return nil, fmt.Errorf("group node %s is empty", n.ID.Short())
		}
		acc, err := buildSolid(g, k, children[0])
		if err != nil {
			return nil, err
		}
		for _, child := range children[1:] {
			member, err := buildSolid(g, k, child)
			if err != nil {
				return nil, err
			}
			acc = k.Union(acc, member)
		}
		return acc, nil

	default:
		return nil, fmt.Errorf("cannot build solid from node kind %v", n.Kind)
	}
}

// primitiveSolid creates geometry for a primitive node.
func primitiveSolid(k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	switch data := n.Data.(type) {
	case graph.BoxData:
		return k.Box(data.Dimensions.X, data.Dimensions.Y, data.Dimensions.Z), nil
	case graph.CylinderData:
		return k.Cylinder(data.Height, data.Radius, data.Segments), nil
	case graph.SphereData:
		return k.Sphere(data.Radius, data.Segments), nil
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
}
