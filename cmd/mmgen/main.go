package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/mmgen/cmd/mmgen/commands"
	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "mmgen",
	Short: "mmgen - metamodel class-definition generator",
	Long: `mmgen - generate Python class definitions from a metamodel.

mmgen reads a model (YAML, JSON, TOML, Gaphor XML or an imported SQLite
model database) and writes a Python module declaring every class in Gaphor
property notation, each class after all of its supertypes.

Available commands:
  generate  - Generate the class-definition module
  check     - Fail when a generated module is out of date
  hierarchy - Show generalization hierarchies
  db        - Import models into a SQLite model database
  am        - Manage mmgen configuration ("I am")
  version   - Show version information

Examples:
  mmgen generate uml.yaml uml.py      # Write uml.py
  mmgen generate uml.gaphor           # Print to stdout
  mmgen generate uml.yaml uml.py -w   # Regenerate on every change
  mmgen check uml.yaml uml.py         # Exit non-zero when uml.py is stale`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: mmgen.toml search, then ~/.mmgen/am.toml)")

	// Add commands
	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.HierarchyCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(commands.ExitCode(err))
	}
}
