package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "devdeck",
	Short: "Run and monitor multiple project dev servers from one panel",
	Long: `devdeck keeps a slot per project, each with its own dev server and
shell running inside real PTYs, and folds their output, exits and
resource usage back into a single event loop.

Quick start:
  devdeck projects ~/src/web               # Inspect a project's commands
  devdeck run ~/src/web                    # Run its dev script
  devdeck run --command "make serve" .     # Run an arbitrary command`,
}

var verboseFlag bool

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	cobra.OnInitialize(func() {
		if verboseFlag {
			log.SetLevel(log.DebugLevel)
		}
	})

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(versionCmd)
}
