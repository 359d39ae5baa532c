package cli

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			title := color.New(color.FgCyan, color.Bold)

			title.Fprint(w, "objcinfo version: ")
			fmt.Fprintln(w, Version)
			title.Fprint(w, "Git commit: ")
			fmt.Fprintln(w, GitCommit)
			title.Fprint(w, "Build date: ")
			fmt.Fprintln(w, BuildDate)
			title.Fprint(w, "Go version: ")
			fmt.Fprintln(w, runtime.Version())
		},
	}
}
