package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/cli"
	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	version   = "dev"
	logCloser io.Closer
	rootCmd   = &cobra.Command{
		Use:   "propostas",
		Short: "Loan proposal review desk",
		Long: `propostas: the desk where analysts review loan proposals against the
per-type checklist and eligibility filters, then approve or reject them.

Run "propostas review" to open the desk.`,
		PersistentPreRunE:  initConfig,
		PersistentPostRunE: closeLogging,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/propostas/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("analyst", "", "analyst login (default: analyst.login or $USER)")
	rootCmd.PersistentFlags().String("backend", "", "proposal store backend (sqlite, dynamodb)")
	rootCmd.PersistentFlags().String("definitions", "", "workflow definitions file (checklists and number patterns)")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("analyst.login", rootCmd.PersistentFlags().Lookup("analyst"))
	_ = viper.BindPFlag("storage.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("workflow.definitions", rootCmd.PersistentFlags().Lookup("definitions"))

	// Add commands
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(tmaCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(checkNumberCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(checkpointCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := cli.NewInterruptHandler(os.Stderr).HandleInterrupts(context.Background())

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(userMessage(err)))
		os.Exit(1)
	}
}

// userMessage prefers the friendly text of a common.UserError.
func userMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		common.LogDebug("Command failed", common.Fields{"error": err.Error()})
		return userErr.UserMessage
	}
	return err.Error()
}

func initConfig(cmd *cobra.Command, _ []string) error {
	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in standard locations
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("PROPOSTAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// The desk owns the terminal, so its logs go to a file.
	if cmd.Name() == "review" && viper.GetString("logging.file") == "" {
		viper.Set("logging.file", config.DataFile(config.LogFileName))
	}

	if err := setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("database.path", config.DataFile(config.DBFileName))
	viper.SetDefault("storage.backend", "sqlite")
	viper.SetDefault("dynamodb.table_prefix", "")
	viper.SetDefault("dynamodb.create_tables", false)
	viper.SetDefault("ui.theme", "default")
	viper.SetDefault("ui.history_limit", 200)
	viper.SetDefault("ui.call_timeout", "30s")
	viper.SetDefault("catalog.header_rows", 1)
}

func setupLogging() error {
	level, err := parseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}

	format := viper.GetString("logging.format")
	if format != "console" && format != "json" {
		return fmt.Errorf("invalid log format: %s", format)
	}

	path := viper.GetString("logging.file")
	if path == "" {
		return common.SetupLogger(level, format)
	}

	path = config.ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // path comes from the user's own config
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logCloser = f

	return common.SetupLoggerTo(f, level, format)
}

func parseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level: %s", level)
}

func closeLogging(_ *cobra.Command, _ []string) error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("propostas %s\n", version)
		},
	}
}
