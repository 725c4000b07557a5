package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/mmgen/codegen"
)

var checkFormat string

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check SOURCE OUTPUT",
	Short: "Check that a generated module is up to date",
	Long: `Regenerate SOURCE in memory and compare it with OUTPUT.

Exits with status 2 when OUTPUT is missing or differs, so it can guard CI
against forgotten regeneration.

Examples:
  mmgen check uml.yaml gaphor/UML/uml.py`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	CheckCmd.Flags().StringVarP(&checkFormat, "format", "f", "", "Model format: yaml, json, toml, gaphor, sqlite (default: from extension)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	loader, err := newLoader(cfg, checkFormat)
	if err != nil {
		return err
	}

	res, err := gen.Check(cmd.Context(), codegen.RunOptions{
		Source: args[0],
		Output: args[1],
		Loader: loader,
	})
	if err != nil {
		return err
	}

	pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("%s is up to date (%d classes)", args[1], len(res.Generated))
	return nil
}
