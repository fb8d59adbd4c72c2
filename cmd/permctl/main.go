package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "permctl",
	Short: "PERM Tracker operator CLI",
	Long: `permctl resolves deadlines and lists cases from a YAML case file, and
manages API users against the configured database.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(resolveCmd(), listCmd(), userCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
