// Package shell runs the external programs xcboot depends on (git, swift,
// xcrun) with an allowlist, argument validation and a bounded timeout.
package shell

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/logging"
	"github.com/conneroisu/xcboot/internal/validation"
)

// DefaultTimeout bounds every external call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Runner executes an external program and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
	LookPath(name string) (string, error)
}

// DefaultAllowedCommands lists the programs xcboot is allowed to invoke.
var DefaultAllowedCommands = map[string]bool{
	"git":         true,
	"swift":       true,
	"xcrun":       true,
	"xcodebuild":  true,
	"xcodegen":    true,
	"swiftlint":   true,
	"swiftformat": true,
}

// remediation hints for MissingDependency errors
var installHints = map[string]string{
	"git":         "install git (xcode-select --install or https://git-scm.com)",
	"swift":       "install Xcode or a Swift toolchain from https://swift.org/install",
	"xcrun":       "install Xcode and run: xcode-select --install",
	"xcodebuild":  "install Xcode from the App Store and run: sudo xcode-select -s /Applications/Xcode.app",
	"xcodegen":    "brew install xcodegen",
	"swiftlint":   "brew install swiftlint",
	"swiftformat": "brew install swiftformat",
}

// InstallHint returns the remediation hint for a tool, if known.
func InstallHint(tool string) string {
	return installHints[tool]
}

// ExecRunner runs programs through os/exec.
type ExecRunner struct {
	timeout time.Duration
	allowed map[string]bool
	logger  logging.Logger
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *ExecRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewExecRunner creates a runner with the default allowlist and timeout.
func NewExecRunner(logger logging.Logger, opts ...Option) *ExecRunner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	r := &ExecRunner{
		timeout: DefaultTimeout,
		allowed: DefaultAllowedCommands,
		logger:  logger.WithComponent("shell"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LookPath reports where name is installed.
func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.NewMissingDependencyError(name, InstallHint(name), err)
	}
	return path, nil
}

// Run executes name with args in dir. Standard output is returned; standard
// error is attached to the error on failure.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	if err := validation.ValidateCommand(name, r.allowed); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeValidationFailed, "command validation failed").
			WithContext("command", name).WithHint(err.Error())
	}
	for _, arg := range args {
		if err := validation.ValidateArgument(arg); err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeValidationFailed,
				fmt.Sprintf("invalid argument '%s': %v", arg, err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug(ctx, "Running command", "command", name, "args", strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if stderrors.Is(err, exec.ErrNotFound) {
			return nil, errors.NewMissingDependencyError(name, InstallHint(name), err)
		}
		if ctx.Err() != nil {
			return nil, errors.NewInternalError(errors.ErrCodeCommandFailed,
				fmt.Sprintf("%s timed out after %s", name, r.timeout), ctx.Err()).
				WithContext("command", name)
		}
		return nil, errors.NewInternalError(errors.ErrCodeCommandFailed,
			fmt.Sprintf("%s %s failed", name, strings.Join(args, " ")), err).
			WithContext("stderr", strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}
