package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/mmgen/db"
	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/logger"
	"github.com/teranos/mmgen/storage"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the SQLite model database",
	Long: `db - Manage the SQLite model database

A model database holds one imported model. Generating from it skips parsing
the original document and works the same for every source format.

Examples:
  mmgen db import uml.gaphor              # Import into the configured database
  mmgen db import uml.yaml --db uml.db    # Import into uml.db
  mmgen db info --db uml.db               # Show what uml.db holds
  mmgen generate uml.db uml.py            # Generate from the database`,
}

var dbImportCmd = &cobra.Command{
	Use:   "import SOURCE",
	Short: "Import a model into the model database",
	Long:  "Load SOURCE and replace the model stored in the database with it. The database is created and migrated when needed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbImport,
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the model stored in the database",
	Args:  cobra.NoArgs,
	RunE:  runDbInfo,
}

var (
	dbPathFlag   string
	dbFormatFlag string
)

func init() {
	DbCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Model database path (default: database.path from config)")
	dbImportCmd.Flags().StringVarP(&dbFormatFlag, "format", "f", "", "Model format: yaml, json, toml, gaphor (default: from extension)")

	DbCmd.AddCommand(dbImportCmd)
	DbCmd.AddCommand(dbInfoCmd)
}

func runDbImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	loader, err := newLoader(cfg, dbFormatFlag)
	if err != nil {
		return err
	}
	dbPath := dbPathFlag
	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}

	store, err := storage.Import(cmd.Context(), loader, args[0], dbPath)
	if err != nil {
		return err
	}
	defer store.Shutdown()

	pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Imported %s into %s (%d classes)",
		args[0], dbPath, len(store.SelectClasses(nil)))
	return nil
}

func runDbInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dbPath := dbPathFlag
	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}

	database, err := db.OpenReadOnly(dbPath, logger.ComponentLogger("db"))
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	store, meta, err := storage.LoadDB(cmd.Context(), database)
	if err != nil {
		return err
	}
	defer store.Shutdown()

	schema, err := db.SchemaVersion(database)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Model Database\n")
	fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Fprintf(out, "Database Path:  %s\n", dbPath)
	fmt.Fprintf(out, "Source:         %s\n", meta.Source)
	fmt.Fprintf(out, "Schema Version: %s\n", schema)
	fmt.Fprintf(out, "Format Version: %s\n", meta.FormatVersion)
	fmt.Fprintf(out, "Imported At:    %s\n", meta.ImportedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(out, "Classes:        %d\n", len(store.SelectClasses(nil)))
	fmt.Fprintf(out, "Associations:   %d\n", len(store.Associations()))
	return nil
}
