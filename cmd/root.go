package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/conneroisu/xcboot/internal/config"
	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd runs the install when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "xcboot",
	Short: "Bootstrap developer tooling into a Swift/Xcode project",
	Long: `xcboot installs build, test, lint and format scripts, lint configuration,
CI configuration for the detected hosting provider and a pre-commit hook into an
existing iOS project.

Running it again only adds missing files; --force restores every generated file.

Quick Start:
  xcboot                               Install into the current directory
  xcboot --dir ./Weather --force       Restore generated files in ./Weather
  xcboot configure --device "iPhone 15 Pro"
  xcboot doctor                        Check required tools`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInstall,
}

// Execute runs the command tree. Errors are printed with their remediation
// hint; the caller maps a non-nil error to exit status 1.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx)
}

func execute(ctx context.Context) error {
	// cobra hands the first context it sees to every subcommand and keeps it
	clearContexts(rootCmd)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "error:", errors.FormatErrorWithHint(err))
	}
	return err
}

func clearContexts(c *cobra.Command) {
	//nolint:staticcheck // nil resets the inherited context
	c.SetContext(nil)
	for _, sub := range c.Commands() {
		clearContexts(sub)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .xcboot.yml, can also use XCBOOT_CONFIG_FILE env var)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.Duration("timeout", 0, "timeout for each external command (default 30s)")
	flags.String("dir", ".", "project directory")

	bindPersistent(map[string]string{
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
		config.KeyTimeout:   "timeout",
	})

	addInstallFlags(rootCmd)
}

func bindPersistent(bindings map[string]string) {
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
}

// initConfig selects the settings file.
//
// Loading priority (highest to lowest):
//  1. --config flag
//  2. XCBOOT_CONFIG_FILE environment variable
//  3. .xcboot.yml in the current directory
//
// Every setting can also come from XCBOOT_<KEY>, e.g. XCBOOT_LOG_LEVEL=debug.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("XCBOOT_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".xcboot")
	}

	viper.SetEnvPrefix("XCBOOT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// A missing file is fine; Load reports malformed ones.
	_ = viper.ReadInConfig()
}
