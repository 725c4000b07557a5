package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/mmgen/am"
	"github.com/teranos/mmgen/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage mmgen configuration",
	Long: `am - Manage mmgen configuration ("I am")

Display and manage mmgen configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (MMGEN_* prefix)
3. Project config (mmgen.toml in the working directory or a parent)
4. User config (~/.mmgen/am.toml)
5. System config (/etc/mmgen/am.toml)
6. Default values

Examples:
  mmgen am show                    # Show current configuration
  mmgen am show --sources          # Show where every value comes from
  mmgen am init                    # Write ./mmgen.toml with defaults
  mmgen am init --user             # Write ~/.mmgen/am.toml with defaults
  mmgen am validate                # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective mmgen configuration from all sources",
	Args:  cobra.NoArgs,
	RunE:  runAmShow,
}

var amInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to PATH (default: ./mmgen.toml).

An existing file is only replaced with --force; the previous version is kept
as PATH.back1 (up to three rotating backups).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAmInit,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Args:  cobra.NoArgs,
	RunE:  runAmValidate,
}

var (
	amShowSources bool
	amShowJSON    bool
	amInitForce   bool
	amInitUser    bool
)

func init() {
	amShowCmd.Flags().BoolVar(&amShowSources, "sources", false, "Show the source of every setting")
	amShowCmd.Flags().BoolVarP(&amShowJSON, "json", "j", false, "Output as JSON")
	amInitCmd.Flags().BoolVar(&amInitForce, "force", false, "Overwrite an existing file (a backup is kept)")
	amInitCmd.Flags().BoolVar(&amInitUser, "user", false, "Write the user config ~/.mmgen/am.toml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amInitCmd)
	AmCmd.AddCommand(amValidateCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if amShowSources {
		introspection, err := am.GetConfigIntrospection()
		if err != nil {
			return err
		}
		if amShowJSON {
			data, err := json.MarshalIndent(introspection, "", "  ")
			if err != nil {
				return errors.Wrap(err, "failed to marshal config sources")
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		data := pterm.TableData{{"Key", "Value", "Source", "From"}}
		for _, s := range introspection.Settings {
			data = append(data, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, table)
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if amShowJSON {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config to TOML")
	}
	fmt.Fprintf(out, "# mmgen configuration\n%s", string(data))
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.ProjectConfigFile
	switch {
	case len(args) == 1:
		path = args[0]
	case amInitUser:
		path = am.UserConfigPath()
		if path == "" {
			return errors.New("could not determine home directory")
		}
	}

	if err := am.Init(path, amInitForce); err != nil {
		return err
	}
	pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Wrote %s", path)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}
