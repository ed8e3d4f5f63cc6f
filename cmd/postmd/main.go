package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/gubarz/postmd/internal/config"
	"github.com/gubarz/postmd/internal/logger"
)

var version = "0.1.0"

var appLog = logger.Discard()

var rootCmd = &cobra.Command{
	Use:   "postmd",
	Short: "Publish Markdown articles",
	Long: `Turns Markdown articles into publishable content.

Publish to Ghost, upload local images to an image host, convert
articles for the X editor and watermark images.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "postmd %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd, ghostCmd, uploadCmd, xCmd, watermarkCmd)

	rootCmd.PersistentFlags().String("config", "", "Config file (default: $XDG_CONFIG_HOME/postmd/postmd.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.Init(cfgFile); err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		config.SetLogLevel(lvl)
	}
	appLog = logger.FromName(config.GetLogLevel())
	appLog.ConfigLoaded(config.UsedFile())
	return nil
}

// ============================================================================
// Shared helpers
// ============================================================================

// newLimiter allows one event per interval; zero means unlimited
func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// writeReport renders v as json or yaml, or calls text for the default format
func writeReport(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "", "text":
		return text(w)
	default:
		return fmt.Errorf("unknown format %q (text, json, yaml)", format)
	}
}

func main() {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
