package cmd

import (
	"io"

	"github.com/conneroisu/xcboot/internal/config"
	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/logging"
	"github.com/conneroisu/xcboot/internal/profile"
	"github.com/conneroisu/xcboot/internal/shell"
	"github.com/spf13/cobra"
)

// app holds what every command needs, built once per invocation.
type app struct {
	settings  *config.Settings
	logger    logging.Logger
	runner    shell.Runner
	inventory profile.Inventory
	dir       string
}

// newTools builds the external tool runner and simulator inventory.
// Tests replace it with scripted fakes.
var newTools = func(logger logging.Logger, settings *config.Settings) (shell.Runner, profile.Inventory) {
	runner := shell.NewExecRunner(logger, shell.WithTimeout(settings.Timeout))
	return runner, profile.NewSimctlInventory(runner)
}

func newApp(cmd *cobra.Command) (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigRead, "cannot load settings").
			WithHint("check .xcboot.yml and XCBOOT_* environment variables")
	}

	logger, err := newLogger(cmd.ErrOrStderr(), settings)
	if err != nil {
		return nil, err
	}

	dir, _ := cmd.Flags().GetString("dir")
	runner, inventory := newTools(logger, settings)

	return &app{
		settings:  settings,
		logger:    logger,
		runner:    runner,
		inventory: inventory,
		dir:       dir,
	}, nil
}

func newLogger(out io.Writer, settings *config.Settings) (logging.Logger, error) {
	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeValidationFailed, err.Error()).
			WithHint("use one of debug, info, warn, error")
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    settings.LogFormat,
		Output:    out,
		Component: "xcboot",
	}), nil
}
