package csg

// node is one level of a BSP tree: a splitting plane, the polygons coplanar
// with it, and front/back child subtrees. A node with a nil plane is an
// empty subtree that owns no geometry.
//
// Trees are built once from a polygon soup, mutated in place by the
// combination steps (invert, clipTo, build), and read back exactly once
// through allPolygons. Each node exclusively owns its children and its
// polygon list; nothing outside the package holds a reference into a tree,
// so trees can be discarded freely after the driver flattens the result.
type node struct {
	plane    *Plane
	polygons []Polygon
	front    *node
	back     *node
}

// newNode builds a tree from a polygon soup. Degenerate polygons (invalid
// plane) are dropped.
func newNode(polys []Polygon, eps float64) *node {
	n := &node{}
	n.build(polys, eps)
	return n
}

// build inserts polygons into the subtree rooted at n. When n has no plane
// yet it adopts the plane of the first usable polygon; this first-polygon
// pivot makes tree shape sensitive to input order but keeps construction
// deterministic. Children are created lazily.
func (n *node) build(polys []Polygon, eps float64) {
	if len(polys) == 0 {
		return
	}
	if n.plane == nil {
		for _, p := range polys {
			if p.OK() {
				pl := p.Plane
				n.plane = &pl
				break
			}
		}
		if n.plane == nil {
			// Nothing but degenerate polygons; the node stays empty.
			return
		}
	}

	var front, back []Polygon
	for _, p := range polys {
		if !p.OK() {
			continue
		}
		n.plane.Split(p, eps, &n.polygons, &n.polygons, &front, &back)
	}
	if len(front) > 0 {
		if n.front == nil {
			n.front = &node{}
		}
		n.front.build(front, eps)
	}
	if len(back) > 0 {
		if n.back == nil {
			n.back = &node{}
		}
		n.back.build(back, eps)
	}
}

// invert swaps the tree's sense of inside and outside: every plane and
// polygon is flipped and the front/back subtrees are exchanged.
func (n *node) invert() {
	for i := range n.polygons {
		n.polygons[i].Flip()
	}
	if n.plane != nil {
		*n.plane = n.plane.Flipped()
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons returns the subset of polys outside the solid this subtree
// describes. An empty node passes everything through. Fragments that fall
// behind a leaf's plane with no back child are inside the solid and are
// discarded.
func (n *node) clipPolygons(polys []Polygon, eps float64) []Polygon {
	if n.plane == nil {
		out := make([]Polygon, len(polys))
		copy(out, polys)
		return out
	}

	var front, back []Polygon
	for _, p := range polys {
		n.plane.Split(p, eps, &front, &back, &front, &back)
	}
	if n.front != nil {
		front = n.front.clipPolygons(front, eps)
	}
	if n.back != nil {
		back = n.back.clipPolygons(back, eps)
	} else {
		back = nil
	}
	return append(front, back...)
}

// clipTo removes from this tree every polygon that lies inside the solid
// described by other.
func (n *node) clipTo(other *node, eps float64) {
	n.polygons = other.clipPolygons(n.polygons, eps)
	if n.front != nil {
		n.front.clipTo(other, eps)
	}
	if n.back != nil {
		n.back.clipTo(other, eps)
	}
}

// allPolygons flattens the tree depth-first into one polygon soup. This is
// the only way geometry leaves a tree.
func (n *node) allPolygons() []Polygon {
	out := make([]Polygon, len(n.polygons))
	copy(out, n.polygons)
	if n.front != nil {
		out = append(out, n.front.allPolygons()...)
	}
	if n.back != nil {
		out = append(out, n.back.allPolygons()...)
	}
	return out
}
