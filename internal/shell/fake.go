package shell

import (
	"context"
	"strings"

	"github.com/conneroisu/xcboot/internal/errors"
)

// FakeRunner is a scripted Runner used by tests and dry runs. Responses are
// keyed by the command line joined with single spaces.
type FakeRunner struct {
	Outputs map[string]string
	Errors  map[string]error
	Missing map[string]bool
	Calls   []string
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Outputs: map[string]string{},
		Errors:  map[string]error{},
		Missing: map[string]bool{},
	}
}

// On registers the output for a command line.
func (f *FakeRunner) On(cmdline, output string) *FakeRunner {
	f.Outputs[cmdline] = output
	return f
}

// Fail registers an error for a command line.
func (f *FakeRunner) Fail(cmdline string, err error) *FakeRunner {
	f.Errors[cmdline] = err
	return f
}

// Without marks a tool as not installed.
func (f *FakeRunner) Without(tool string) *FakeRunner {
	f.Missing[tool] = true
	return f
}

// Run returns the scripted response for the command line.
func (f *FakeRunner) Run(ctx context.Context, _ string, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	line := strings.Join(append([]string{name}, args...), " ")
	f.Calls = append(f.Calls, line)

	if f.Missing[name] {
		return nil, errors.NewMissingDependencyError(name, InstallHint(name), nil)
	}
	if err, ok := f.Errors[line]; ok {
		return nil, err
	}
	if out, ok := f.Outputs[line]; ok {
		return []byte(out), nil
	}
	return nil, errors.NewInternalError(errors.ErrCodeCommandFailed, line+" failed", nil)
}

// LookPath succeeds for every tool not marked missing.
func (f *FakeRunner) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", errors.NewMissingDependencyError(name, InstallHint(name), nil)
	}
	return "/usr/bin/" + name, nil
}
