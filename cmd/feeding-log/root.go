package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Watson-W722/cat-feeding-app/internal/config"
	"github.com/Watson-W722/cat-feeding-app/internal/ledger"
	"github.com/Watson-W722/cat-feeding-app/internal/storage"
)

// app carries settings shared by every subcommand. Flags win over the
// environment and .env values loaded by config.Load.
type app struct {
	envFile  string
	dbPath   string
	pet      string
	logLevel string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "feeding-log",
		Short:         "feeding-log records what a pet eats and drinks, meal by meal",
		Long:          "feeding-log keeps an append-only feeding ledger: scale readings become net quantities and nutrients, finished meals get one leftover record, and summaries split intake into food and water.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "Optional dotenv file")
	flags.StringVar(&a.dbPath, "db", "", "Path to SQLite database (FEEDING_DB_PATH)")
	flags.StringVar(&a.pet, "pet", "", "Default pet name (FEEDING_DEFAULT_PET)")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (FEEDING_LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(a),
		newCatalogCmd(a),
		newSummaryCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = a.dbPath
	}
	if flags.Changed("pet") {
		cfg.DefaultPet = a.pet
	}
	if flags.Changed("log-level") {
		if cfg.LogLevel, err = config.ParseLevel(a.logLevel); err != nil {
			return err
		}
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return nil
}

// openEngine opens the SQLite store and wires an engine over it. The caller
// closes the store.
func (a *app) openEngine() (*storage.SQLiteStorage, *ledger.Engine, error) {
	store, err := storage.NewSQLiteStorage(a.cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	engine := ledger.NewEngine(store, store,
		ledger.WithDefaultPet(a.cfg.DefaultPet),
		ledger.WithLogger(a.logger),
	)
	return store, engine, nil
}
