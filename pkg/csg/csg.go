package csg

import (
	"errors"
	"fmt"
)

// DefaultTolerance is the coincidence epsilon used when a caller passes a
// non-positive tolerance to Combine.
const DefaultTolerance = 1e-5

// Op selects a boolean operation.
type Op int

const (
	Union        Op = iota // everything in either solid
	Difference             // first solid minus the second
	Intersection           // everything in both solids
)

func (op Op) String() string {
	switch op {
	case Union:
		return "union"
	case Difference:
		return "difference"
	case Intersection:
		return "intersection"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

var (
	// ErrEmptySoup is returned when an operand contains no polygons.
	ErrEmptySoup = errors.New("csg: empty polygon soup")

	// ErrDegenerateInput is returned when an operand contains polygons but
	// none of them has a valid plane.
	ErrDegenerateInput = errors.New("csg: operand has no usable polygons")
)

// Combine performs the boolean operation op on two closed polygon soups and
// returns the resulting soup. The inputs are deep-copied, never mutated,
// and the result shares no storage with them. eps is the plane coincidence
// tolerance threaded through every classification; pass <= 0 for
// DefaultTolerance.
//
// The operation is deterministic: identical inputs, in identical order,
// with the same tolerance always produce the same output.
func Combine(op Op, a, b []Polygon, eps float64) ([]Polygon, error) {
	if eps <= 0 {
		eps = DefaultTolerance
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptySoup
	}
	if !anyUsable(a) || !anyUsable(b) {
		return nil, ErrDegenerateInput
	}

	ta := newNode(clonePolygons(a), eps)
	tb := newNode(clonePolygons(b), eps)

	// The exact clip/invert sequences matter: clipTo and invert mutate
	// tree state and do not commute.
	switch op {
	case Union:
		ta.clipTo(tb, eps)
		tb.clipTo(ta, eps)
		tb.invert()
		tb.clipTo(ta, eps)
		tb.invert()
		ta.build(tb.allPolygons(), eps)

	case Difference:
		ta.invert()
		ta.clipTo(tb, eps)
		tb.clipTo(ta, eps)
		tb.invert()
		tb.clipTo(ta, eps)
		tb.invert()
		ta.build(tb.allPolygons(), eps)
		ta.invert()

	case Intersection:
		ta.invert()
		tb.clipTo(ta, eps)
		tb.invert()
		ta.clipTo(tb, eps)
		tb.clipTo(ta, eps)
		ta.build(tb.allPolygons(), eps)
		ta.invert()

	default:
		return nil, fmt.Errorf("csg: unknown operation %d", int(op))
	}

	return ta.allPolygons(), nil
}

func anyUsable(polys []Polygon) bool {
	for _, p := range polys {
		if p.OK() {
			return true
		}
	}
	return false
}
