// Package cli implements the mervlink CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trainyourai/mervlink/internal/config"
	"github.com/trainyourai/mervlink/internal/mervlink"
	"github.com/trainyourai/mervlink/internal/store"
)

var (
	dbPath     string
	configPath string
	envFile    string
	formatFlag string

	cfg    *config.Config
	logger *slog.Logger
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "mervlink",
	Short: "Inter-user messaging and recipe sharing for TrainYourAI assistants",
	Long: "mervlink runs the MervLink message bus, recipe vault, approval workflow and invite links.\n" +
		"SQLite-backed, single binary. Serve it over HTTP or operate it from the command line.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath, envFile)
		if err != nil {
			return err
		}
		logger, err = cfg.Log.NewLogger(os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: db_path from config, $MERVLINK_DB_PATH, or $XDG_DATA_HOME/mervlink/mervlink.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/mervlink/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before the environment is read")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath
	}
	return config.DefaultDBPath()
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

// openRouter opens the store and builds the chef router over it. The
// caller closes the returned store.
func openRouter() (*mervlink.Router, *store.SQLiteStore, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	publicURL := ""
	if cfg != nil {
		publicURL = cfg.PublicURL
	}
	svc := mervlink.New(s, mervlink.Options{Logger: logger, PublicURL: publicURL})
	return mervlink.NewRouter(svc), s, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

// printJSON writes v as indented JSON.
func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// readContent returns args joined, or piped stdin when there are none.
func readContent(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	stat, err := os.Stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		return "", nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func textOutput() bool { return formatFlag == "text" }
