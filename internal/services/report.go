package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/probe"
	"github.com/conneroisu/xcboot/internal/profile"
	"github.com/conneroisu/xcboot/internal/scaffolding"
)

// Stage names one step of the install run.
type Stage string

// Install stages in execution order.
const (
	StageProbe              Stage = "probe"
	StageResolveFacts       Stage = "resolve-facts"
	StageResolveTestProfile Stage = "resolve-test-profile"
	StageMaterializeScripts Stage = "materialize-scripts"
	StageMaterializeConfigs Stage = "materialize-configs"
	StageMaterializeCI      Stage = "materialize-ci"
	StageInstallHook        Stage = "install-hook"
	StageMaterializeStatus  Stage = "materialize-status"
)

// Stages lists every stage in order.
var Stages = []Stage{
	StageProbe,
	StageResolveFacts,
	StageResolveTestProfile,
	StageMaterializeScripts,
	StageMaterializeConfigs,
	StageMaterializeCI,
	StageInstallHook,
	StageMaterializeStatus,
}

// StageStatus is the outcome of one stage.
type StageStatus string

const (
	StatusPassed  StageStatus = "passed"
	StatusFailed  StageStatus = "failed"
	StatusSkipped StageStatus = "skipped"
	StatusNotRun  StageStatus = "not-run"
)

// StageResult records what one stage did.
type StageResult struct {
	Stage     Stage                     `json:"stage" yaml:"stage"`
	Status    StageStatus               `json:"status" yaml:"status"`
	Message   string                    `json:"message,omitempty" yaml:"message,omitempty"`
	Warnings  []string                  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Files     []scaffolding.WriteResult `json:"files,omitempty" yaml:"files,omitempty"`
	Duration  time.Duration             `json:"duration_ns" yaml:"duration_ns"`
	Error     string                    `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorType errors.ErrorType          `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	Err       error                     `json:"-" yaml:"-"`
}

// Report aggregates an install run.
type Report struct {
	ProjectDir string               `json:"project_dir" yaml:"project_dir"`
	Template   string               `json:"template" yaml:"template"`
	Force      bool                 `json:"force" yaml:"force"`
	Facts      *probe.Facts         `json:"facts,omitempty" yaml:"facts,omitempty"`
	Profile    *profile.TestProfile `json:"profile,omitempty" yaml:"profile,omitempty"`
	Stages     []StageResult        `json:"stages" yaml:"stages"`
}

// Success reports whether no stage failed.
func (r *Report) Success() bool {
	return r.Failed() == nil
}

// Failed returns the failed stage, if any.
func (r *Report) Failed() *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Status == StatusFailed {
			return &r.Stages[i]
		}
	}
	return nil
}

// Stage returns the result of stage s, or nil.
func (r *Report) Stage(s Stage) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Stage == s {
			return &r.Stages[i]
		}
	}
	return nil
}

// Files returns every write result in stage order.
func (r *Report) Files() []scaffolding.WriteResult {
	var files []scaffolding.WriteResult
	for _, s := range r.Stages {
		files = append(files, s.Files...)
	}
	return files
}

// Warnings returns every stage warning prefixed with its stage.
func (r *Report) Warnings() []string {
	var warnings []string
	for _, s := range r.Stages {
		for _, w := range s.Warnings {
			warnings = append(warnings, string(s.Stage)+": "+w)
		}
	}
	return warnings
}

// Outcomes counts write results by outcome.
func (r *Report) Outcomes() map[scaffolding.Outcome]int {
	counts := map[scaffolding.Outcome]int{}
	for _, f := range r.Files() {
		counts[f.Outcome]++
	}
	return counts
}

// String renders a human-readable summary.
func (r *Report) String() string {
	var b strings.Builder
	for _, s := range r.Stages {
		fmt.Fprintf(&b, "%-22s %s", s.Stage, s.Status)
		if s.Message != "" {
			fmt.Fprintf(&b, "  %s", s.Message)
		}
		b.WriteString("\n")
		for _, f := range s.Files {
			fmt.Fprintf(&b, "    %-11s %s\n", f.Outcome, f.Path)
		}
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "    warning: %s\n", w)
		}
		if s.Error != "" {
			fmt.Fprintf(&b, "    error: %s\n", s.Error)
		}
	}

	counts := r.Outcomes()
	fmt.Fprintf(&b, "\n%d created, %d overwritten, %d unchanged, %d skipped\n",
		counts[scaffolding.OutcomeCreated], counts[scaffolding.OutcomeOverwritten],
		counts[scaffolding.OutcomeUnchanged], counts[scaffolding.OutcomeSkipped])
	return b.String()
}
