package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/earthboundkid/versioninfo/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-edit-mcp/internal/config"
	"github.com/ironsheep/image-edit-mcp/internal/server"
)

// Version information - set by ldflags during build. When unset, the module
// build info is used.
var (
	Version   = ""
	BuildTime = "unknown"
	GitCommit = ""
)

func version() string {
	if Version != "" {
		return Version
	}
	return versioninfo.Short()
}

func commit() string {
	if GitCommit != "" {
		return GitCommit
	}
	return versioninfo.Revision
}

type rootFlags struct {
	configPath string
	logLevel   string
	debug      bool
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "image-edit-mcp",
		Short: "MCP server for editing background-removed images",
		Long: `image-edit-mcp - MCP server for editing background-removed images

With no subcommand the server speaks MCP (JSON-RPC 2.0) over stdin/stdout.
Configure it in your MCP client (e.g., Claude Desktop).

Environment variables (also read from a .env file):
  IMAGE_EDIT_LOG_LEVEL=debug    Enable debug logging
  IMAGE_EDIT_LOG_FORMAT=json    Log as JSON
  IMAGE_EDIT_EXPORT_DIR=<dir>   Where editor_export saves files`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), &flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a JSON config file (default "+config.GetConfigPath()+" when present)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), &flags)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", server.ServerName, version())
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", commit())
		},
	}

	rootCmd.AddCommand(serveCmd, newRenderCmd(&flags), versionCmd)
	return rootCmd
}

func runServe(ctx context.Context, flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger := initLogger(cfg)
	logger.WithFields(logrus.Fields{
		"version":      version(),
		"commit":       commit(),
		"max_sessions": cfg.Session.MaxSessions,
		"export_dir":   cfg.Export.Dir,
	}).Info("starting MCP server")

	srv := server.New(cfg, logger, version())
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("server error")
		return err
	}
	logger.Info("server stopped")
	return nil
}

// loadConfig builds the configuration from defaults, the config file, the
// environment and finally command-line flags.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg := config.Default()

	path := flags.configPath
	if path == "" {
		if _, err := os.Stat(config.GetConfigPath()); err == nil {
			path = config.GetConfigPath()
		}
	}
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.FromEnv(nil); err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger initializes the logger. Output always goes to stderr; stdout
// carries the MCP protocol.
func initLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(cfg.LogLevel())

	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	logger.Debug("Debug logging enabled")
	return logger
}
