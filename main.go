package main

import (
	"fmt"
	"os"

	"flatdb/auth"
	"flatdb/config"
	"flatdb/database"
	"flatdb/dberror"
	"flatdb/executor"
	"flatdb/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:               "flatdb",
	Short:             "Flat-file relational storage engine",
	Long:              `Create databases and tables, load and query rows, and evolve schemas stored as fixed-width flat files.`,
	PersistentPreRunE: setup,
}

var (
	configPath string
	rootDir    string
	dbName     string
	verbose    bool
	jsonOutput bool
	userName   string
	password   string
)

// state shared by every command, filled in by setup
var (
	cfg     *config.Config
	log     *logger.Logger
	session *database.Session
	users   *auth.Store
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Directory holding the databases (default ./DB)")
	rootCmd.PersistentFlags().StringVar(&dbName, "db", "", "Database to operate on")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().StringVar(&userName, "user", "", "Check permissions as this user")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Password of --user")

	cobra.OnInitialize(func() {
		rootCmd.SilenceUsage = true
		rootCmd.SilenceErrors = true
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		if cfg, err = config.Load(configPath); err != nil {
			return fmt.Errorf("cannot load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Storage.Root = rootDir
	}
	if flags.Changed("db") {
		cfg.Storage.Database = dbName
	}
	if flags.Changed("verbose") {
		cfg.Log.Verbose = verbose
	}
	if flags.Changed("user") {
		cfg.Auth.User = userName
	}

	log = logger.New(cfg.Log.Verbose)
	session = database.NewSession(cfg.Storage.Root, database.WithLogger(log))
	log.WithField("root", cfg.Storage.Root).Debug("session opened")

	users = nil
	if cfg.Auth.User != "" {
		if users, err = auth.Open(cfg.UsersPath()); err != nil {
			return err
		}
		if !users.ValidatePassword(cfg.Auth.User, password) {
			return dberror.New("login", dberror.ErrPermission, "wrong user name or password")
		}
	}
	return nil
}

// useDatabase selects the configured database in the session.
func useDatabase() (*database.Database, error) {
	if cfg.Storage.Database == "" {
		return nil, dberror.New("session", dberror.ErrDatabaseNotFound, "no database selected; pass --db")
	}
	if err := session.Use(cfg.Storage.Database); err != nil {
		return nil, err
	}
	return session.Current()
}

// authorize checks the logged in user's permission. Without --user
// everything is allowed.
func authorize(table string, p auth.Permission) error {
	if users == nil {
		return nil
	}
	return users.Authorize(cfg.Auth.User, cfg.Storage.Database, table, p)
}

func newExecutor() *executor.Executor {
	opts := []executor.Option{executor.WithLogger(log)}
	if users != nil {
		opts = append(opts, executor.WithAuth(users, cfg.Auth.User))
	}
	return executor.New(session, opts...)
}
