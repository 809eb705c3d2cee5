package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/carvecad/carve/pkg/kernel/bsp"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "carve.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing carve.yaml: %v", err)
	}
}

func TestSelectKernelProjectTolerance(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "kernel: bsp\ntolerance: 0.001\nsegments: 16\n")
	chdir(t, dir)

	k, cfg, err := selectKernel("")
	if err != nil {
		t.Fatalf("selectKernel error = %v", err)
	}
	bk, ok := k.(*bsp.Kernel)
	if !ok {
		t.Fatalf("kernel type = %T, want *bsp.Kernel", k)
	}
	if bk.Tolerance != 0.001 {
		t.Errorf("kernel tolerance = %g, want 0.001", bk.Tolerance)
	}
	if cfg == nil || cfg.Segments != 16 {
		t.Errorf("config = %+v, want segments 16", cfg)
	}
}

func TestSelectKernelFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "kernel: sdfx\ntolerance: 0.001\n")
	chdir(t, dir)

	k, cfg, err := selectKernel("bsp")
	if err != nil {
		t.Fatalf("selectKernel error = %v", err)
	}
	bk, ok := k.(*bsp.Kernel)
	if !ok {
		t.Fatalf("kernel type = %T, want *bsp.Kernel", k)
	}
	// The flag picks the backend; the project tolerance still applies.
	if bk.Tolerance != 0.001 {
		t.Errorf("kernel tolerance = %g, want 0.001", bk.Tolerance)
	}
	if cfg == nil || cfg.Kernel != "sdfx" {
		t.Errorf("config = %+v, want kernel sdfx", cfg)
	}
}

func TestSelectKernelUnknown(t *testing.T) {
	chdir(t, t.TempDir())
	if _, _, err := selectKernel("nurbs"); err == nil {
		t.Fatal("expected error for unknown kernel name")
	}
}
