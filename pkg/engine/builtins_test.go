package engine

import (
	"strings"
	"testing"

	"github.com/carvecad/carve/pkg/graph"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(material :name "aluminum")`,
			expect: `(material "__kw_name" "aluminum")`,
		},
		{
			name:   "multiple keywords",
			input:  `(box :x 400 :y 200)`,
			expect: `(box "__kw_x" 400 "__kw_y" 200)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(drill-pattern :part-a ref)`,
			expect: `(drill_pattern "__kw_part-a" ref)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:head-dia`,
			expect: `"__kw_head-dia"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// evalSource evaluates source and fails the test on any error.
func evalSource(t *testing.T, source string) *graph.DesignGraph {
	t.Helper()
	eng := NewEngine()
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil graph")
	}
	return g
}

// evalExpectingError evaluates source and returns the eval errors, failing
// the test if evaluation succeeds.
func evalExpectingError(t *testing.T, source string) []EvalError {
	t.Helper()
	eng := NewEngine()
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatalf("expected eval errors, got success with %d nodes", g.NodeCount())
	}
	return evalErrs
}

// ---------------------------------------------------------------------------
// Primitive builtins
// ---------------------------------------------------------------------------

func TestDefsolidBox(t *testing.T) {
	g := evalSource(t, `(defsolid "plate" (box :x 100 :y 60 :z 8))`)

	if g.NodeCount() != 1 {
		t.Fatalf("node count = %d, want 1", g.NodeCount())
	}
	n := g.Lookup("plate")
	if n == nil {
		t.Fatal("no node named plate")
	}
	if n.Kind != graph.NodePrimitive {
		t.Errorf("kind = %v, want primitive", n.Kind)
	}
	bd, ok := n.Data.(graph.BoxData)
	if !ok {
		t.Fatalf("data type = %T, want BoxData", n.Data)
	}
	if bd.Dimensions != (graph.Vec3{X: 100, Y: 60, Z: 8}) {
		t.Errorf("dimensions = %v", bd.Dimensions)
	}
	if len(g.Roots) != 1 || g.Roots[0] != n.ID {
		t.Errorf("named solid should be a root, roots = %v", g.Roots)
	}
}

func TestBoxSizeVector(t *testing.T) {
	g := evalSource(t, `(defsolid "plate" (box :size (vec3 100 60 8)))`)

	n := g.MustLookup("plate")
	bd, ok := n.Data.(graph.BoxData)
	if !ok {
		t.Fatalf("data type = %T, want BoxData", n.Data)
	}
	if bd.Dimensions != (graph.Vec3{X: 100, Y: 60, Z: 8}) {
		t.Errorf("dimensions = %v", bd.Dimensions)
	}
}

func TestDefsolidCylinder(t *testing.T) {
	g := evalSource(t, `(defsolid "pin" (cylinder :height 30 :radius 4 :segments 16))`)

	n := g.MustLookup("pin")
	cd, ok := n.Data.(graph.CylinderData)
	if !ok {
		t.Fatalf("data type = %T, want CylinderData", n.Data)
	}
	if cd.Height != 30 || cd.Radius != 4 || cd.Segments != 16 {
		t.Errorf("cylinder data = %+v", cd)
	}
}

func TestDefsolidSphere(t *testing.T) {
	g := evalSource(t, `(defsolid "ball" (sphere :radius 12))`)

	n := g.MustLookup("ball")
	sd, ok := n.Data.(graph.SphereData)
	if !ok {
		t.Fatalf("data type = %T, want SphereData", n.Data)
	}
	if sd.Radius != 12 {
		t.Errorf("radius = %g, want 12", sd.Radius)
	}
	// Segments default from the graph-wide setting.
	if sd.Segments != graph.DefaultSegments {
		t.Errorf("segments = %d, want default %d", sd.Segments, graph.DefaultSegments)
	}
}

func TestMaterialAttached(t *testing.T) {
	g := evalSource(t, `
(def alu (material :name "aluminum" :color "#c0c0c0"))
(defsolid "plate" (box :x 10 :y 10 :z 2 :material alu))
`)

	n := g.MustLookup("plate")
	bd := n.Data.(graph.BoxData)
	if bd.Material.Name != "aluminum" {
		t.Errorf("material name = %q, want aluminum", bd.Material.Name)
	}
	if bd.Material.Color != "#c0c0c0" {
		t.Errorf("material color = %q", bd.Material.Color)
	}
}

// ---------------------------------------------------------------------------
// Boolean builtins
// ---------------------------------------------------------------------------

func TestDifferenceBuildsBooleanNode(t *testing.T) {
	g := evalSource(t, `
(defsolid "bracket"
  (difference (box :x 100 :y 60 :z 8)
              (cylinder :height 10 :radius 3)))
`)

	// Named group root + boolean + two inline primitives.
	if g.NodeCount() != 4 {
		t.Fatalf("node count = %d, want 4", g.NodeCount())
	}

	root := g.MustLookup("bracket")
	if root.Kind != graph.NodeGroup {
		t.Fatalf("root kind = %v, want group", root.Kind)
	}
	kids := g.Children(root)
	if len(kids) != 1 {
		t.Fatalf("root children = %d, want 1", len(kids))
	}

	boolNode := kids[0]
	if boolNode.Kind != graph.NodeBoolean {
		t.Fatalf("child kind = %v, want boolean", boolNode.Kind)
	}
	bd := boolNode.Data.(graph.BooleanData)
	if bd.Op != graph.BoolDifference {
		t.Errorf("op = %v, want difference", bd.Op)
	}
	if len(boolNode.Children) != 2 {
		t.Errorf("boolean operands = %d, want 2", len(boolNode.Children))
	}
}

func TestUnionOfNamedSolids(t *testing.T) {
	g := evalSource(t, `
(defsolid "a" (box :x 10 :y 10 :z 10))
(defsolid "b" (sphere :radius 5))
(defsolid "both" (union (solid "a") (solid "b")))
`)

	both := g.MustLookup("both")
	kids := g.Children(both)
	if len(kids) != 1 || kids[0].Kind != graph.NodeBoolean {
		t.Fatalf("expected boolean under named group, got %+v", kids)
	}
	u := kids[0]
	if u.Data.(graph.BooleanData).Op != graph.BoolUnion {
		t.Errorf("op = %v, want union", u.Data.(graph.BooleanData).Op)
	}

	// The operands must be the named solids themselves.
	names := map[string]bool{}
	for _, c := range g.Children(u) {
		names[c.Name] = true
	}
	if !names["a"] || !names["b"] {
		t.Errorf("union operand names = %v, want a and b", names)
	}
}

func TestBooleanArityError(t *testing.T) {
	errs := evalExpectingError(t, `(union (box :x 1 :y 1 :z 1))`)
	if !containsMessage(errs, "at least 2 operands") {
		t.Errorf("errors = %v, want operand arity message", errs)
	}
}

func TestIntersectVariadic(t *testing.T) {
	g := evalSource(t, `
(defsolid "core"
  (intersect (box :x 10 :y 10 :z 10)
             (sphere :radius 7)
             (cylinder :height 20 :radius 4)))
`)

	core := g.MustLookup("core")
	boolNode := g.Children(core)[0]
	if got := len(boolNode.Children); got != 3 {
		t.Errorf("intersect operands = %d, want 3", got)
	}
}

// ---------------------------------------------------------------------------
// Place and assembly
// ---------------------------------------------------------------------------

func TestPlaceTranslationAndRotation(t *testing.T) {
	g := evalSource(t, `
(defsolid "leg" (box :x 40 :y 40 :z 700))
(assembly "table"
  (place (solid "leg") :at (vec3 0 0 0))
  (place (solid "leg") :at (vec3 960 0 0) :rotate (vec3 0 0 90)))
`)

	table := g.MustLookup("table")
	places := g.Children(table)
	if len(places) != 2 {
		t.Fatalf("assembly children = %d, want 2", len(places))
	}

	second := places[1]
	if second.Kind != graph.NodeTransform {
		t.Fatalf("child kind = %v, want transform", second.Kind)
	}
	td := second.Data.(graph.TransformData)
	if td.Translation == nil || *td.Translation != (graph.Vec3{X: 960}) {
		t.Errorf("translation = %v, want (960, 0, 0)", td.Translation)
	}
	if td.Rotation == nil || *td.Rotation != (graph.Vec3{Z: 90}) {
		t.Errorf("rotation = %v, want (0, 0, 90)", td.Rotation)
	}
}

func TestAssemblyIsRoot(t *testing.T) {
	g := evalSource(t, `
(assembly "frame"
  (place (box :x 10 :y 10 :z 10) :at (vec3 5 0 0)))
`)

	asm := g.MustLookup("frame")
	found := false
	for _, r := range g.Roots {
		if r == asm.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("assembly not registered as root, roots = %v", g.Roots)
	}
}

func TestSolidLookupError(t *testing.T) {
	errs := evalExpectingError(t, `(place (solid "ghost") :at (vec3 0 0 0))`)
	if !containsMessage(errs, "no solid named") {
		t.Errorf("errors = %v, want missing solid message", errs)
	}
}

// ---------------------------------------------------------------------------
// Graph-wide settings
// ---------------------------------------------------------------------------

func TestToleranceAndSegmentsSettings(t *testing.T) {
	g := evalSource(t, `
(tolerance 0.0001)
(segments 64)
(defsolid "wheel" (cylinder :height 10 :radius 50))
`)

	if g.Defaults.Tolerance != 0.0001 {
		t.Errorf("tolerance = %g, want 0.0001", g.Defaults.Tolerance)
	}
	if g.Defaults.Segments != 64 {
		t.Errorf("segments = %d, want 64", g.Defaults.Segments)
	}

	// Cylinders created after the setting pick up the new default.
	cd := g.MustLookup("wheel").Data.(graph.CylinderData)
	if cd.Segments != 64 {
		t.Errorf("wheel segments = %d, want 64", cd.Segments)
	}
}

func TestToleranceRejectsNonPositive(t *testing.T) {
	errs := evalExpectingError(t, `(tolerance 0)`)
	if !containsMessage(errs, "must be positive") {
		t.Errorf("errors = %v, want positivity message", errs)
	}
}

// ---------------------------------------------------------------------------
// Integration: evaluated graphs validate cleanly
// ---------------------------------------------------------------------------

func TestEvaluatedGraphValidates(t *testing.T) {
	g := evalSource(t, `
(defsolid "body" (box :x 60 :y 40 :z 20))
(defsolid "bore" (cylinder :height 30 :radius 6 :segments 48))
(defsolid "housing"
  (difference (solid "body")
              (place (solid "bore") :at (vec3 30 20 0))))
`)

	findings := graph.Validate(g)
	if graph.HasErrors(findings) {
		t.Errorf("evaluated graph has validation errors: %v", findings)
	}
}

func TestReevaluationIsDeterministic(t *testing.T) {
	source := `
(defsolid "plate" (box :x 100 :y 60 :z 8))
(defsolid "bracket" (difference (solid "plate") (cylinder :height 10 :radius 3)))
`
	eng := NewEngine()

	g1, _, err := eng.Evaluate(source)
	if err != nil {
		t.Fatal(err)
	}
	g2, _, err := eng.Evaluate(source)
	if err != nil {
		t.Fatal(err)
	}

	// Named nodes keep the same content-addressed IDs across evaluations.
	if g1.MustLookup("plate").ID != g2.MustLookup("plate").ID {
		t.Error("plate ID changed across evaluations")
	}
	if g1.MustLookup("bracket").ID != g2.MustLookup("bracket").ID {
		t.Error("bracket ID changed across evaluations")
	}
}

func containsMessage(errs []EvalError, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
