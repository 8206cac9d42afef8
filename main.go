package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"library-catalog/auth"
	"library-catalog/config"
	"library-catalog/library"
	"library-catalog/logging"
)

var (
	cfg    *config.Config
	store  library.Store
	cat    *library.Catalog
	gate   *auth.Gate
	logger *slog.Logger

	flagConfig   string
	flagCatalog  string
	flagDriver   string
	flagLogLevel string
	flagNoColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "libcat",
	Short: "Keep a small library catalog with borrowing and waiting lists",
	Long: `libcat keeps a catalog of books in a single snapshot file (JSON or SQLite).

Administrators add, remove and search books and inspect waiting lists.
Patrons borrow and return books; a borrowed book queues later requests.

Run 'libcat' with no arguments to choose a mode interactively.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newConsole(cmd.InOrStdin(), cmd.OutOrStdout(), cat, gate).modeMenu()
	},
}

func main() {
	Execute()
}

// Execute runs the command tree and closes the catalog store.
func Execute() {
	err := rootCmd.Execute()
	if store != nil {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/libcat/config.yml)")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Catalog snapshot path (overrides catalog.path)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "Snapshot backend: json or sqlite (overrides catalog.driver)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initColor(flagNoColor)

		// config init must work without a readable config or catalog.
		if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		applyFlagOverrides(cfg)

		logger, err = logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		logger = logger.With("session", uuid.NewString())

		gate, err = newGate(cfg.Auth)
		if err != nil {
			return err
		}

		store, err = library.OpenStore(cfg.Catalog.Driver, cfg.Catalog.Path)
		if err != nil {
			return err
		}
		logger.Debug("catalog store opened", "driver", cfg.Catalog.Driver, "path", cfg.Catalog.Path)

		cat, err = library.Open(store, library.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("opening catalog: %w", err)
		}
		return nil
	}

	rootCmd.AddCommand(
		newAdminCmd(),
		newPatronCmd(),
		newListCmd(),
		newSearchCmd(),
		newConfigCmd(),
	)
}

func applyFlagOverrides(c *config.Config) {
	if flagCatalog != "" {
		c.Catalog.Path = config.ExpandHome(flagCatalog)
	}
	if flagDriver != "" {
		c.Catalog.Driver = flagDriver
	}
	if flagLogLevel != "" {
		c.Log.Level = flagLogLevel
	}
}

func newGate(a config.AuthConfig) (*auth.Gate, error) {
	creds := make([]auth.Credential, 0, len(a.Admins))
	for i, admin := range a.Admins {
		if first := a.AdminByName(admin.Name); first != &a.Admins[i] {
			return nil, fmt.Errorf("auth.admins: %q is listed more than once", admin.Name)
		}
		creds = append(creds, auth.Credential{Name: admin.Name, Secret: admin.Secret})
	}
	return auth.NewGate(creds, a.MaxAttempts)
}
