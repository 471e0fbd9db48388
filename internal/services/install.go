// Package services holds the install and configure operations behind the
// CLI. InstallService sequences one install run as a linear series of stages
// and reports the outcome of each.
package services

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/conneroisu/xcboot/internal/config"
	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/logging"
	"github.com/conneroisu/xcboot/internal/probe"
	"github.com/conneroisu/xcboot/internal/profile"
	"github.com/conneroisu/xcboot/internal/scaffolding"
	"github.com/conneroisu/xcboot/internal/shell"
	"github.com/conneroisu/xcboot/internal/version"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InstallOptions controls one install run.
type InstallOptions struct {
	ProjectDir  string
	Force       bool
	Template    string
	TemplateDir string
	NoStatus    bool
	// Structure is accepted for compatibility and has no effect yet.
	Structure string
}

// InstallService runs install and upgrade.
type InstallService struct {
	runner    shell.Runner
	inventory profile.Inventory
	source    scaffolding.Source
	logger    logging.Logger
	handler   *errors.ErrorHandler
	version   string
}

// InstallOption customizes an InstallService.
type InstallOption func(*InstallService)

// WithSource replaces the embedded template sets.
func WithSource(src scaffolding.Source) InstallOption {
	return func(s *InstallService) {
		s.source = src
	}
}

// WithToolVersion sets the version stamped into generated files.
func WithToolVersion(v string) InstallOption {
	return func(s *InstallService) {
		s.version = v
	}
}

// NewInstallService creates the service. runner runs git and swift;
// inventory lists simulator runtimes.
func NewInstallService(runner shell.Runner, inventory profile.Inventory, logger logging.Logger, opts ...InstallOption) *InstallService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &InstallService{
		runner:    runner,
		inventory: inventory,
		source:    scaffolding.NewEmbeddedSource(),
		logger:    logger.WithComponent("install"),
		version:   version.GetVersion(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = errors.NewErrorHandler(s.logger)
	return s
}

// installRun is the state threaded through the stages of one run.
type installRun struct {
	opts         InstallOptions
	root         string
	catalog      *scaffolding.Catalog
	facts        *probe.Facts
	layered      *config.Layered
	bindings     scaffolding.Bindings
	profile      profile.TestProfile
	materializer *scaffolding.Materializer
}

type stageFunc func(ctx context.Context, run *installRun, result *StageResult) error

// Install runs every stage in order. The report is always returned; the
// error is the failure of the first fatal stage, after which the remaining
// stages are marked not-run.
func (s *InstallService) Install(ctx context.Context, opts InstallOptions) (*Report, error) {
	if opts.Template == "" {
		opts.Template = config.DefaultTemplate
	}
	if opts.ProjectDir == "" {
		opts.ProjectDir = "."
	}

	root, err := filepath.Abs(opts.ProjectDir)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeInvalidPath, "cannot resolve project directory", err)
	}

	report := &Report{ProjectDir: root, Template: opts.Template, Force: opts.Force}
	run := &installRun{
		opts:         opts,
		root:         root,
		materializer: scaffolding.NewMaterializer(root, s.logger),
	}

	stages := []struct {
		stage Stage
		fn    stageFunc
	}{
		{StageProbe, s.probe},
		{StageResolveFacts, s.resolveFacts},
		{StageResolveTestProfile, s.resolveTestProfile},
		{StageMaterializeScripts, s.materializeKind(scaffolding.KindScript)},
		{StageMaterializeConfigs, s.materializeConfigs},
		{StageMaterializeCI, s.materializeCI},
		{StageInstallHook, s.installHook},
		{StageMaterializeStatus, s.materializeStatus},
	}

	var fatal error
	for _, st := range stages {
		result := StageResult{Stage: st.stage, Status: StatusPassed}
		if fatal != nil {
			result.Status = StatusNotRun
			report.Stages = append(report.Stages, result)
			continue
		}
		if err := ctx.Err(); err != nil {
			fatal = errors.StageError(string(st.stage), errors.NewInternalError(errors.ErrCodeInternalError, "install cancelled", err))
			result.Status = StatusNotRun
			report.Stages = append(report.Stages, result)
			continue
		}

		start := time.Now()
		err := st.fn(ctx, run, &result)
		result.Duration = time.Since(start)

		if err != nil {
			fatal = errors.StageError(string(st.stage), err)
			result.Status = StatusFailed
			result.Err = fatal
			result.Error = errors.FormatErrorWithHint(fatal)
			result.ErrorType = errors.TypeOf(fatal)
			s.handler.Handle(ctx, fatal, "stage failed", "stage", string(st.stage))
		} else {
			s.logger.Debug(ctx, "stage finished", "stage", string(st.stage), "status", string(result.Status),
				"duration_ms", result.Duration.Milliseconds())
		}
		report.Stages = append(report.Stages, result)

		if st.stage == StageProbe && run.facts != nil {
			report.Facts = run.facts
		}
		if st.stage == StageResolveTestProfile && err == nil {
			p := run.profile
			report.Profile = &p
		}
	}

	return report, fatal
}

func (s *InstallService) probe(ctx context.Context, run *installRun, result *StageResult) error {
	info, err := os.Stat(run.root)
	if err != nil || !info.IsDir() {
		return errors.NewFatalDetectionError(errors.ErrCodeMissingProject, "project directory does not exist").
			WithFile(run.root)
	}

	facts, err := probe.NewProber(run.root, s.runner, s.logger).Probe(ctx)
	if err != nil {
		return err
	}
	run.facts = facts
	result.Message = facts.Name + " (" + string(facts.Descriptor) + ", " + string(facts.VCSProvider) + ")"
	return nil
}

func (s *InstallService) resolveFacts(ctx context.Context, run *installRun, result *StageResult) error {
	src := s.source
	if run.opts.TemplateDir != "" {
		dir, err := scaffolding.NewDirSource(run.opts.TemplateDir)
		if err != nil {
			return err
		}
		src = scaffolding.NewOverlaySource(dir, s.source)
	}
	run.catalog = scaffolding.NewCatalog(src)
	if err := run.catalog.Check(run.opts.Template); err != nil {
		return err
	}

	open := config.Open
	if run.opts.Force {
		open = config.OpenWithoutSystem
	}
	layered, err := open(run.root)
	if err != nil {
		return err
	}
	run.layered = layered

	if run.opts.Structure != "" {
		result.Warnings = append(result.Warnings, "--structure is reserved and has no effect")
	}
	for _, w := range config.ValidateLayers(layered).Warnings {
		result.Warnings = append(result.Warnings, w.Layer+": "+w.Field+": "+w.Message)
	}

	bindings, err := s.factBindings(run)
	if err != nil {
		return err
	}
	run.bindings = bindings
	result.Message = strconv.Itoa(len(bindings)) + " bindings"
	return nil
}

// factBindings assembles every placeholder that does not depend on the test
// profile.
func (s *InstallService) factBindings(run *installRun) (scaffolding.Bindings, error) {
	facts := run.facts
	get := func(key, def string) (string, error) { return run.layered.Get(key, def) }

	scheme, err := get(config.KeyProjectScheme, "")
	if err != nil {
		return nil, err
	}
	if scheme == "" {
		scheme = facts.Name
	}
	configuration, err := get(config.KeyBuildConfiguration, "Debug")
	if err != nil {
		return nil, err
	}
	swiftVersion, err := get(config.KeyFormatSwiftVersion, "")
	if err != nil {
		return nil, err
	}
	if swiftVersion == "" {
		swiftVersion = facts.ToolchainVersion
	}
	xcodeVersion, err := get(config.KeyCIXcodeVersion, "15.4")
	if err != nil {
		return nil, err
	}
	runner, err := get(config.KeyCIRunner, "macos-14")
	if err != nil {
		return nil, err
	}
	strict, err := run.layered.GetBool(config.KeyLintStrict, false)
	if err != nil {
		return nil, err
	}

	projectArgs := ""
	if facts.Descriptor != probe.DescriptorPackage {
		projectArgs = `-project "` + facts.Name + `.xcodeproj"`
	}

	return scaffolding.Bindings{
		scaffolding.TokenProjectName:        facts.Name,
		scaffolding.TokenScheme:             scheme,
		scaffolding.TokenProjectArgs:        projectArgs,
		scaffolding.TokenBundleIDRoot:       facts.BundleIDRoot,
		scaffolding.TokenDeploymentTarget:   facts.DeploymentVersion,
		scaffolding.TokenSwiftVersion:       swiftVersion,
		scaffolding.TokenHostArch:           facts.HostArch,
		scaffolding.TokenVCSProvider:        string(facts.VCSProvider),
		scaffolding.TokenBuildConfiguration: configuration,
		scaffolding.TokenXcodeVersion:       xcodeVersion,
		scaffolding.TokenCIRunner:           runner,
		scaffolding.TokenLintStrict:         strconv.FormatBool(strict),
		scaffolding.TokenTemplateName:       run.opts.Template,
		scaffolding.TokenTemplateTitle:      cases.Title(language.English).String(run.opts.Template),
		scaffolding.TokenToolVersion:        s.version,
	}, nil
}

func (s *InstallService) resolveTestProfile(ctx context.Context, run *installRun, result *StageResult) error {
	resolved, warning, err := ResolveProfile(ctx, run.layered, s.inventory, s.logger, ProfileRequest{
		DeploymentVersion: run.facts.DeploymentVersion,
	})
	if err != nil {
		return err
	}
	if warning != nil {
		result.Warnings = append(result.Warnings, warning.Error())
		s.handler.Handle(ctx, warning, "test profile fallback")
	}

	run.profile = resolved.Profile
	run.bindings[scaffolding.TokenSimulatorDevice] = resolved.Profile.Device
	run.bindings[scaffolding.TokenSimulatorOS] = resolved.Profile.DottedOS()
	run.bindings[scaffolding.TokenSimulatorArch] = resolved.Profile.Arch
	run.bindings[scaffolding.TokenSimulatorDestination] = resolved.Profile.Destination()

	if missing := run.bindings.Missing(); len(missing) > 0 {
		return errors.NewInternalError(errors.ErrCodeInternalError, "bindings incomplete", nil).
			WithContext("missing", missing)
	}

	result.Message = resolved.Profile.Device + ", iOS " + resolved.Profile.DottedOS() + ", " + resolved.Profile.Arch
	if resolved.FromConfig {
		result.Message += " (configured)"
	}
	return nil
}

// materializeKind writes every target of kind for the detected provider.
func (s *InstallService) materializeKind(kinds ...scaffolding.Kind) stageFunc {
	return func(ctx context.Context, run *installRun, result *StageResult) error {
		for _, kind := range kinds {
			for _, t := range scaffolding.TargetsFor(kind, run.facts.VCSProvider) {
				res, err := run.materializer.Materialize(ctx, run.catalog, run.opts.Template, t, run.bindings, run.opts.Force)
				if err != nil {
					return err
				}
				result.Files = append(result.Files, res)
			}
		}
		return nil
	}
}

func (s *InstallService) materializeConfigs(ctx context.Context, run *installRun, result *StageResult) error {
	return s.materializeKind(scaffolding.KindLint, scaffolding.KindConfig)(ctx, run, result)
}

func (s *InstallService) materializeCI(ctx context.Context, run *installRun, result *StageResult) error {
	if run.facts.VCSProvider == probe.ProviderNone {
		result.Status = StatusSkipped
		result.Warnings = append(result.Warnings, "no VCS provider detected, CI configuration not written")
		s.logger.Warn(ctx, nil, "skipping CI configuration", "provider", string(run.facts.VCSProvider))
		return nil
	}
	result.Message = string(run.facts.VCSProvider)
	return s.materializeKind(scaffolding.KindCI)(ctx, run, result)
}

func (s *InstallService) installHook(ctx context.Context, run *installRun, result *StageResult) error {
	info, err := os.Stat(filepath.Join(run.root, ".git"))
	if err != nil {
		result.Status = StatusSkipped
		result.Message = "no .git directory"
		return nil
	}
	if !info.IsDir() {
		result.Status = StatusSkipped
		result.Warnings = append(result.Warnings, ".git is not a directory (worktree or submodule), hook not installed")
		return nil
	}

	enabled, err := run.layered.GetBool(config.KeyHooksPreCommit, true)
	if err != nil {
		return err
	}
	if !enabled {
		result.Status = StatusSkipped
		result.Message = config.KeyHooksPreCommit + " is false"
		return nil
	}

	return s.materializeKind(scaffolding.KindHook)(ctx, run, result)
}

func (s *InstallService) materializeStatus(ctx context.Context, run *installRun, result *StageResult) error {
	if run.opts.NoStatus {
		result.Status = StatusSkipped
		result.Message = "--no-status"
		return nil
	}
	return s.materializeKind(scaffolding.KindStatus)(ctx, run, result)
}
