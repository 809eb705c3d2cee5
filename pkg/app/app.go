// Package app wires the evaluation pipeline together: Lisp source is
// evaluated into a design graph, the graph is validated, and valid
// graphs are tessellated into triangle meshes. It is the single entry
// point used by the CLI and any future frontend binding.
package app

import (
	"log"

	"github.com/carvecad/carve/pkg/engine"
	"github.com/carvecad/carve/pkg/graph"
	"github.com/carvecad/carve/pkg/kernel"
	"github.com/carvecad/carve/pkg/kernel/bsp"
	"github.com/carvecad/carve/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the evaluate → validate → tessellate pipeline.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON-serializable mesh format for clients.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a source document.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// New creates an App backed by the native bsp kernel.
func New() *App {
	return NewWithKernel(bsp.New())
}

// NewWithKernel creates an App using the given geometry kernel.
func NewWithKernel(k kernel.Kernel) *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: k,
	}
}

// ConfigureDefaults seeds per-document evaluation defaults, normally from
// a project's carve.yaml. A document's own (tolerance ...) and
// (segments ...) forms override them.
func (a *App) ConfigureDefaults(tolerance float64, segments int) {
	if tolerance > 0 {
		a.engine.DefaultTolerance = tolerance
	}
	if segments > 0 {
		a.engine.DefaultSegments = segments
	}
}

// kernelFor returns the kernel used to tessellate g. The document-level
// tolerance applies to the bsp backend, the only one with a plane
// coincidence epsilon; other backends are returned unchanged.
func (a *App) kernelFor(g *graph.DesignGraph) kernel.Kernel {
	if bk, ok := a.kernel.(*bsp.Kernel); ok {
		if tol := g.Defaults.Tolerance; tol > 0 && tol != bk.Tolerance {
			return bsp.NewWithTolerance(tol)
		}
	}
	return a.kernel
}

// Evaluate takes Lisp source and returns mesh data plus any errors and
// warnings. Validation errors stop the pipeline before tessellation;
// warnings are passed through alongside the meshes.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: err.Error(),
		})
		return result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Structural validation before any geometry work. Errors stop the
	// pipeline; warnings ride along with the meshes.
	for _, v := range graph.Validate(g) {
		data := EvalErrorData{Message: v.Message}
		if v.Severity == graph.SeverityError {
			result.Errors = append(result.Errors, data)
		} else {
			result.Warnings = append(result.Warnings, data)
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	meshes, err := tessellate.Tessellate(g, a.kernelFor(g))
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		color := colorPalette[i%len(colorPalette)]
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    color,
		})
	}

	return result
}

// EvaluateMeshes runs the pipeline and returns the raw kernel meshes.
// Callers that need volumes or bounding boxes use this instead of the
// JSON-oriented Evaluate.
func (a *App) EvaluateMeshes(source string) ([]*kernel.Mesh, EvalResult) {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return nil, result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return nil, result
	}

	for _, v := range graph.Validate(g) {
		data := EvalErrorData{Message: v.Message}
		if v.Severity == graph.SeverityError {
			result.Errors = append(result.Errors, data)
		} else {
			result.Warnings = append(result.Warnings, data)
		}
	}
	if len(result.Errors) > 0 {
		return nil, result
	}

	meshes, err := tessellate.Tessellate(g, a.kernelFor(g))
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return nil, result
	}

	return meshes, result
}
