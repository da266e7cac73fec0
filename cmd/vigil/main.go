package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vigil/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Doctor for GraphQL development environments",
	Long:  `Vigil validates a TypeScript + GraphQL development environment before the language-service plugin runs`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether the file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
