package main

import (
	"github.com/spf13/cobra"

	"pyconform/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "pyconform",
	Short: "pyconform - Python source-convention compliance checker",
	Long: `pyconform statically checks Python codebases against documented source
conventions: naming case, verb prefixes, magic numbers, type-hint coverage
and required project layout. It reports violations deterministically and
exits non-zero when error-severity violations exist, so it slots directly
into CI.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("pyconform version {{.Version}}\n")
}
