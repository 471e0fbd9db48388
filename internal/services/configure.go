package services

import (
	"context"
	"path/filepath"

	"github.com/conneroisu/xcboot/internal/config"
	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/logging"
	"github.com/conneroisu/xcboot/internal/probe"
	"github.com/conneroisu/xcboot/internal/profile"
	"github.com/conneroisu/xcboot/internal/shell"
)

// ConfigureOptions selects the profile to persist.
type ConfigureOptions struct {
	ProjectDir string
	Device     string
	OS         string
	Arch       string
}

// ConfigureResult is the persisted (or previewed) profile.
type ConfigureResult struct {
	Profile    profile.TestProfile `json:"profile" yaml:"profile"`
	FromConfig bool                `json:"from_config" yaml:"from_config"`
	Warnings   []string            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Path       string              `json:"path,omitempty" yaml:"path,omitempty"`
}

// ConfigureService resolves test profiles and pins them in the user
// configuration document.
type ConfigureService struct {
	runner    shell.Runner
	inventory profile.Inventory
	logger    logging.Logger
}

// NewConfigureService creates the service.
func NewConfigureService(runner shell.Runner, inventory profile.Inventory, logger logging.Logger) *ConfigureService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ConfigureService{runner: runner, inventory: inventory, logger: logger.WithComponent("configure")}
}

// Resolve computes the profile without writing anything.
func (s *ConfigureService) Resolve(ctx context.Context, opts ConfigureOptions) (*ConfigureResult, error) {
	root, err := filepath.Abs(orDot(opts.ProjectDir))
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeInvalidPath, "cannot resolve project directory", err)
	}

	layered, err := config.Open(root)
	if err != nil {
		return nil, err
	}

	req := ProfileRequest{Device: opts.Device, OS: opts.OS, Arch: opts.Arch}
	if req.OS == "" {
		facts, err := probe.NewProber(root, s.runner, s.logger).Probe(ctx)
		if err != nil {
			return nil, err
		}
		req.DeploymentVersion = facts.DeploymentVersion
	}

	resolved, warning, err := ResolveProfile(ctx, layered, s.inventory, s.logger, req)
	if err != nil {
		return nil, err
	}

	result := &ConfigureResult{Profile: resolved.Profile, FromConfig: resolved.FromConfig}
	if warning != nil {
		result.Warnings = append(result.Warnings, warning.Error())
	}
	return result, nil
}

// Configure resolves the profile and writes test.device, test.os and
// test.arch into .xcboot/config.local.yml. Other keys are left untouched.
func (s *ConfigureService) Configure(ctx context.Context, opts ConfigureOptions) (*ConfigureResult, error) {
	if opts.Device == "" {
		return nil, errors.NewValidationError(errors.ErrCodeValidationFailed, "a device name is required").
			WithHint(`pass --device "iPhone 15", or run xcboot profile resolve to see the current choice`)
	}

	result, err := s.Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}

	root, _ := filepath.Abs(orDot(opts.ProjectDir))
	layered, err := config.Open(root)
	if err != nil {
		return nil, err
	}

	p := result.Profile
	for _, kv := range [][2]string{
		{config.KeyTestDevice, p.Device},
		{config.KeyTestOS, p.OSVersion},
		{config.KeyTestArch, p.Arch},
	} {
		if err := layered.Set(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	result.Path = config.UserPath(root)
	s.logger.Info(ctx, "test profile saved", "device", p.Device, "os", p.OSVersion, "arch", p.Arch, "path", result.Path)
	return result, nil
}

func orDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
