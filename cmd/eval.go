package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/carvecad/carve/pkg/app"
	"github.com/carvecad/carve/pkg/kernel"
	"github.com/carvecad/carve/pkg/kernel/bsp"
	"github.com/carvecad/carve/pkg/kernel/sdfx"
	"github.com/carvecad/carve/pkg/project"
	"github.com/spf13/cobra"
)

var (
	evalKernel string
	evalJSON   bool
)

var evalCmd = &cobra.Command{
	Use:   "eval <file.carve>",
	Short: "Evaluate a design script and report the resulting parts",
	Long: `Evaluates a Carve Lisp script, validates the design graph and
tessellates it into meshes. For each part the vertex and triangle counts,
bounding box and enclosed volume are printed. With --json the full mesh
data is written to stdout instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		k, cfg, err := selectKernel(evalKernel)
		if err != nil {
			return err
		}

		a := app.NewWithKernel(k)
		if cfg != nil {
			a.ConfigureDefaults(cfg.Tolerance, cfg.Segments)
		}
		meshes, result := a.EvaluateMeshes(string(source))

		for _, w := range result.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
		}
		if len(result.Errors) > 0 {
			for _, e := range result.Errors {
				if e.Line > 0 {
					fmt.Fprintf(os.Stderr, "error: line %d: %s\n", e.Line, e.Message)
				} else {
					fmt.Fprintf(os.Stderr, "error: %s\n", e.Message)
				}
			}
			return fmt.Errorf("evaluation failed with %d error(s)", len(result.Errors))
		}

		if evalJSON {
			return json.NewEncoder(os.Stdout).Encode(meshesToData(meshes))
		}

		fmt.Printf("%d part(s)\n", len(meshes))
		for _, m := range meshes {
			min, max := m.BoundingBox()
			fmt.Printf("  %-20s %6d verts %6d tris  bbox (%.1f, %.1f, %.1f)-(%.1f, %.1f, %.1f)  volume %.2f\n",
				m.PartName, m.VertexCount(), m.TriangleCount(),
				min[0], min[1], min[2], max[0], max[1], max[2],
				m.Volume())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVarP(&evalKernel, "kernel", "k", "", "Geometry kernel (bsp/sdfx); defaults to carve.yaml or bsp")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "Write mesh data as JSON to stdout")
}

// selectKernel resolves the kernel backend from the flag, falling back to
// carve.yaml when a project root is found, then to the bsp default. The
// loaded config, if any, is returned so its tolerance and segments can
// seed the evaluation defaults.
func selectKernel(flag string) (kernel.Kernel, *project.Config, error) {
	var cfg *project.Config
	if root, err := project.FindProjectRoot(); err == nil {
		c, err := project.LoadConfig(root)
		if err != nil {
			return nil, nil, err
		}
		cfg = c
	}

	name := flag
	if name == "" && cfg != nil {
		name = cfg.Kernel
	}

	switch name {
	case "", project.KernelBSP:
		if cfg != nil && cfg.Tolerance > 0 {
			return bsp.NewWithTolerance(cfg.Tolerance), cfg, nil
		}
		return bsp.New(), cfg, nil
	case project.KernelSDFX:
		return sdfx.New(), cfg, nil
	default:
		return nil, nil, fmt.Errorf("unknown kernel %q (want %q or %q)", name, project.KernelBSP, project.KernelSDFX)
	}
}

// meshesToData converts kernel meshes to the JSON wire format.
func meshesToData(meshes []*kernel.Mesh) []app.MeshData {
	out := make([]app.MeshData, 0, len(meshes))
	for _, m := range meshes {
		out = append(out, app.MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
		})
	}
	return out
}
