package graph

import (
	"strings"
	"testing"
)

// buildGraph assembles a small valid design: two primitives combined by a
// difference, wrapped in a placed assembly.
func buildGraph() (*DesignGraph, NodeID, NodeID, NodeID) {
	g := New()

	plateID := NewNodeID("defsolid/plate")
	holeID := NewNodeID("defsolid/hole")
	diffID := NewNodeID("difference/plate-hole")
	asmID := NewNodeID("assembly/bracket")

	g.AddNode(&Node{
		ID: plateID, Kind: NodePrimitive, Name: "plate",
		Data: BoxData{Dimensions: Vec3{100, 60, 8}},
	})
	g.AddNode(&Node{
		ID: holeID, Kind: NodePrimitive, Name: "hole",
		Data: CylinderData{Height: 10, Radius: 3, Segments: 32},
	})
	g.AddNode(&Node{
		ID: diffID, Kind: NodeBoolean,
		Children: []NodeID{plateID, holeID},
		Data:     BooleanData{Op: BoolDifference},
	})
	g.AddNode(&Node{
		ID: asmID, Kind: NodeGroup, Name: "bracket",
		Children: []NodeID{diffID},
		Data:     GroupData{},
	})
	g.AddRoot(asmID)

	return g, plateID, holeID, diffID
}

func errorsOnly(findings []ValidationError) []ValidationError {
	var out []ValidationError
	for _, f := range findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

func TestValidateCleanGraph(t *testing.T) {
	g, _, _, _ := buildGraph()
	findings := Validate(g)
	if errs := errorsOnly(findings); len(errs) != 0 {
		t.Fatalf("valid graph produced errors: %v", errs)
	}
	if HasErrors(findings) {
		t.Error("HasErrors = true for clean graph")
	}
}

func TestValidateEmptyGraph(t *testing.T) {
	if findings := Validate(New()); len(findings) != 0 {
		t.Errorf("empty graph produced findings: %v", findings)
	}
}

func TestValidateCycle(t *testing.T) {
	g := New()
	a := NewNodeID("a")
	b := NewNodeID("b")
	g.AddNode(&Node{ID: a, Kind: NodeGroup, Children: []NodeID{b}, Data: GroupData{}})
	g.AddNode(&Node{ID: b, Kind: NodeGroup, Children: []NodeID{a}, Data: GroupData{}})
	g.AddRoot(a)

	findings := Validate(g)
	if !hasMessage(findings, "cycle detected") {
		t.Errorf("cycle not detected: %v", findings)
	}
}

func TestValidateDanglingChild(t *testing.T) {
	g, _, _, diffID := buildGraph()
	diff := g.Get(diffID)
	diff.Children = append(diff.Children, NewNodeID("ghost"))

	findings := Validate(g)
	if !hasMessage(findings, "does not exist") {
		t.Errorf("dangling child not detected: %v", findings)
	}
}

func TestValidateDuplicateNames(t *testing.T) {
	g, _, _, _ := buildGraph()
	dupID := NewNodeID("defsolid/plate2")
	g.AddNode(&Node{
		ID: dupID, Kind: NodePrimitive, Name: "plate",
		Data: BoxData{Dimensions: Vec3{1, 1, 1}},
	})

	findings := Validate(g)
	if !hasMessage(findings, "duplicate name") {
		t.Errorf("duplicate name not detected: %v", findings)
	}
}

func TestValidateMissingRoot(t *testing.T) {
	g, _, _, _ := buildGraph()
	g.AddRoot(NewNodeID("ghost-root"))

	findings := Validate(g)
	if !hasMessage(findings, "root reference") {
		t.Errorf("missing root not detected: %v", findings)
	}
}

func TestValidateOrphanWarning(t *testing.T) {
	g, _, _, _ := buildGraph()
	orphanID := NewNodeID("defsolid/stray")
	g.AddNode(&Node{
		ID: orphanID, Kind: NodePrimitive, Name: "stray",
		Data: BoxData{Dimensions: Vec3{1, 1, 1}},
	})

	findings := Validate(g)
	found := false
	for _, f := range findings {
		if strings.Contains(f.Message, "orphan") {
			found = true
			if f.Severity != SeverityWarning {
				t.Errorf("orphan finding severity = %v, want warning", f.Severity)
			}
		}
	}
	if !found {
		t.Errorf("orphan not detected: %v", findings)
	}
	// Orphans warn but do not block.
	if HasErrors(findings) {
		t.Errorf("orphan should not be a blocking error: %v", findings)
	}
}

func TestValidateShapes(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{
			"zero box dimension",
			&Node{ID: NewNodeID("t1"), Kind: NodePrimitive, Name: "t1",
				Data: BoxData{Dimensions: Vec3{0, 10, 10}}},
			"box dimensions must be positive",
		},
		{
			"negative cylinder height",
			&Node{ID: NewNodeID("t2"), Kind: NodePrimitive, Name: "t2",
				Data: CylinderData{Height: -5, Radius: 3}},
			"cylinder height must be positive",
		},
		{
			"zero cylinder radius",
			&Node{ID: NewNodeID("t3"), Kind: NodePrimitive, Name: "t3",
				Data: CylinderData{Height: 5, Radius: 0}},
			"cylinder radius must be positive",
		},
		{
			"too few cylinder segments",
			&Node{ID: NewNodeID("t4"), Kind: NodePrimitive, Name: "t4",
				Data: CylinderData{Height: 5, Radius: 3, Segments: 2}},
			"cylinder segments must be at least 3",
		},
		{
			"zero sphere radius",
			&Node{ID: NewNodeID("t5"), Kind: NodePrimitive, Name: "t5",
				Data: SphereData{Radius: 0}},
			"sphere radius must be positive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			g.AddNode(tt.node)
			g.AddRoot(tt.node.ID)

			findings := Validate(g)
			if !hasMessage(findings, tt.want) {
				t.Errorf("findings %v do not contain %q", findings, tt.want)
			}
		})
	}
}

func TestValidateBooleanArity(t *testing.T) {
	g := New()
	soloID := NewNodeID("defsolid/solo")
	boolID := NewNodeID("union/underfed")
	g.AddNode(&Node{
		ID: soloID, Kind: NodePrimitive, Name: "solo",
		Data: BoxData{Dimensions: Vec3{1, 1, 1}},
	})
	g.AddNode(&Node{
		ID: boolID, Kind: NodeBoolean,
		Children: []NodeID{soloID},
		Data:     BooleanData{Op: BoolUnion},
	})
	g.AddRoot(boolID)

	findings := Validate(g)
	if !hasMessage(findings, "requires at least 2 operands") {
		t.Errorf("underfed boolean not detected: %v", findings)
	}
}

func TestValidateTransformArity(t *testing.T) {
	g := New()
	aID := NewNodeID("defsolid/a")
	bID := NewNodeID("defsolid/b")
	trID := NewNodeID("place/two")
	g.AddNode(&Node{ID: aID, Kind: NodePrimitive, Name: "a", Data: BoxData{Dimensions: Vec3{1, 1, 1}}})
	g.AddNode(&Node{ID: bID, Kind: NodePrimitive, Name: "b", Data: BoxData{Dimensions: Vec3{1, 1, 1}}})
	g.AddNode(&Node{
		ID: trID, Kind: NodeTransform,
		Children: []NodeID{aID, bID},
		Data:     TransformData{Translation: &Vec3{1, 0, 0}},
	})
	g.AddRoot(trID)

	findings := Validate(g)
	if !hasMessage(findings, "exactly 1 child") {
		t.Errorf("transform arity not detected: %v", findings)
	}
}

func TestValidationErrorFormat(t *testing.T) {
	graphLevel := ValidationError{Message: "broken", Severity: SeverityError}
	if got := graphLevel.Error(); got != "[error] broken" {
		t.Errorf("graph-level error = %q", got)
	}

	nodeLevel := ValidationError{
		NodeID:   NewNodeID("x"),
		Message:  "bad shape",
		Severity: SeverityWarning,
	}
	if got := nodeLevel.Error(); !strings.Contains(got, "[warning] node ") || !strings.Contains(got, "bad shape") {
		t.Errorf("node-level error = %q", got)
	}
}

func hasMessage(findings []ValidationError, substr string) bool {
	for _, f := range findings {
		if strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}
