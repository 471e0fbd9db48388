package cmd

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/conneroisu/xcboot/internal/config"
	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/probe"
	"github.com/conneroisu/xcboot/internal/profile"
	"github.com/conneroisu/xcboot/internal/shell"
	"github.com/conneroisu/xcboot/internal/version"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the tools and project files xcboot relies on",
	Long: `Diagnose the machine and the project before installing.

The doctor checks:
- Required tools (git, swift, xcrun, xcodebuild)
- Optional tools used by the generated scripts (xcodegen, swiftlint, swiftformat)
- Project detection and configuration documents
- Installed iOS simulators

Examples:
  xcboot doctor
  xcboot doctor --format json
  xcboot doctor --format yaml`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorFormat *formatValue

// Diagnostic statuses.
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

var (
	requiredTools = []string{"git", "swift", "xcrun", "xcodebuild"}
	optionalTools = []string{"xcodegen", "swiftlint", "swiftformat"}
)

// DiagnosticResult represents the result of a diagnostic check
type DiagnosticResult struct {
	Name       string `json:"name" yaml:"name"`
	Category   string `json:"category" yaml:"category"`
	Status     string `json:"status" yaml:"status"`
	Message    string `json:"message" yaml:"message"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Environment map[string]string  `json:"environment" yaml:"environment"`
	Results     []DiagnosticResult `json:"results" yaml:"results"`
	Summary     ReportSummary      `json:"summary" yaml:"summary"`
}

// ReportSummary provides an overview of diagnostic results
type ReportSummary struct {
	Total    int `json:"total" yaml:"total"`
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorFormat = addFormatFlag(doctorCmd, formatTable, formatTable, formatJSON, formatYAML)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	report := diagnose(cmd.Context(), a)
	out := cmd.OutOrStdout()

	if f := doctorFormat.String(); f != formatTable {
		if err := writeStructured(out, f, report); err != nil {
			return err
		}
	} else {
		displayReport(out, report)
	}

	if report.Summary.Errors > 0 {
		first := firstError(report)
		return errors.NewValidationError(errors.ErrCodeValidationFailed,
			fmt.Sprintf("doctor found %d problems, first: %s %s", report.Summary.Errors, first.Name, first.Message)).
			WithHint(first.Suggestion)
	}
	return nil
}

func diagnose(ctx context.Context, a *app) *DoctorReport {
	report := &DoctorReport{
		Environment: map[string]string{
			"xcboot":    version.GetVersion(),
			"platform":  runtime.GOOS + "/" + runtime.GOARCH,
			"host_arch": probe.NativeArch(),
			"project":   a.dir,
		},
	}

	for _, tool := range requiredTools {
		report.Results = append(report.Results, checkTool(a.runner, tool, true))
	}
	for _, tool := range optionalTools {
		report.Results = append(report.Results, checkTool(a.runner, tool, false))
	}
	report.Results = append(report.Results,
		checkProject(ctx, a),
		checkConfiguration(a.dir),
		checkSimulators(ctx, a.inventory),
	)

	report.Summary = calculateSummary(report.Results)
	return report
}

func checkTool(runner shell.Runner, tool string, required bool) DiagnosticResult {
	result := DiagnosticResult{Name: tool, Category: "Tools", Status: statusOK}

	path, err := runner.LookPath(tool)
	if err == nil {
		result.Message = path
		return result
	}

	result.Status = statusWarning
	result.Message = "not found (used by the generated scripts)"
	if required {
		result.Status = statusError
		result.Message = "not found"
	}
	result.Suggestion = errors.HintOf(err)
	if result.Suggestion == "" {
		result.Suggestion = shell.InstallHint(tool)
	}
	return result
}

func checkProject(ctx context.Context, a *app) DiagnosticResult {
	result := DiagnosticResult{Name: "Project", Category: "Project", Status: statusOK}

	facts, err := probe.NewProber(a.dir, a.runner, a.logger).Probe(ctx)
	if err != nil {
		result.Status = statusWarning
		result.Message = err.Error()
		result.Suggestion = errors.HintOf(err)
		return result
	}

	result.Message = fmt.Sprintf("%s (%s), iOS %s, Swift %s, %s",
		facts.Name, facts.Descriptor, facts.DeploymentVersion, facts.ToolchainVersion, facts.VCSProvider)
	if facts.VCSProvider == probe.ProviderNone {
		result.Status = statusWarning
		result.Suggestion = "run git init to get CI configuration and the pre-commit hook"
	}
	return result
}

func checkConfiguration(dir string) DiagnosticResult {
	result := DiagnosticResult{Name: "Configuration", Category: "Project", Status: statusOK, Message: "ok"}

	layered, err := config.Open(dir)
	if err != nil {
		result.Status = statusError
		result.Message = err.Error()
		result.Suggestion = "fix the YAML syntax in " + config.Dir
		return result
	}

	validation := config.ValidateLayers(layered)
	switch {
	case validation.HasErrors():
		result.Status = statusError
		result.Message = fmt.Sprintf("%d errors", len(validation.Errors))
		result.Suggestion = strings.TrimSpace(validation.String())
	case validation.HasWarnings():
		result.Status = statusWarning
		result.Message = fmt.Sprintf("%d warnings", len(validation.Warnings))
		result.Suggestion = strings.TrimSpace(validation.String())
	}
	return result
}

func checkSimulators(ctx context.Context, inventory profile.Inventory) DiagnosticResult {
	result := DiagnosticResult{Name: "Simulators", Category: "Tools", Status: statusOK}

	entries, err := inventory.ListAvailableProfiles(ctx)
	if err != nil {
		result.Status = statusWarning
		result.Message = err.Error()
		result.Suggestion = errors.HintOf(err)
		return result
	}
	if len(entries) == 0 {
		result.Status = statusWarning
		result.Message = "no iOS simulators installed"
		result.Suggestion = "install an iOS runtime from Xcode > Settings > Platforms"
		return result
	}

	runtimes := map[string]bool{}
	for _, e := range entries {
		runtimes[e.OSVersion] = true
	}
	result.Message = fmt.Sprintf("%d devices across %d runtimes", len(entries), len(runtimes))
	return result
}

func calculateSummary(results []DiagnosticResult) ReportSummary {
	summary := ReportSummary{Total: len(results)}
	for _, result := range results {
		switch result.Status {
		case statusOK:
			summary.OK++
		case statusWarning:
			summary.Warnings++
		case statusError:
			summary.Errors++
		}
	}
	return summary
}

func firstError(report *DoctorReport) DiagnosticResult {
	for _, r := range report.Results {
		if r.Status == statusError {
			return r
		}
	}
	return DiagnosticResult{}
}

func displayReport(out io.Writer, report *DoctorReport) {
	for _, result := range report.Results {
		var icon string
		switch result.Status {
		case statusOK:
			icon = "✅"
		case statusWarning:
			icon = "⚠️"
		case statusError:
			icon = "❌"
		default:
			icon = "•"
		}

		fmt.Fprintf(out, "%s [%s] %s: %s\n", icon, strings.ToUpper(result.Category), result.Name, result.Message)
		if result.Suggestion != "" {
			fmt.Fprintf(out, "   💡 %s\n", result.Suggestion)
		}
	}

	s := report.Summary
	fmt.Fprintf(out, "\n%d checks: %d ok, %d warnings, %d errors\n", s.Total, s.OK, s.Warnings, s.Errors)
}
