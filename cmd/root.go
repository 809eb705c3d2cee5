// Package cmd contains the carve command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "carve",
	Short: "Carve - Lisp-driven solid modeling",
	Long: `Carve evaluates Lisp design scripts into solid geometry.
Scripts define named solids with box, cylinder and sphere primitives,
combine them with union, difference and intersect, and arrange them
into assemblies. The result is tessellated into triangle meshes.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
