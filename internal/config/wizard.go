package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/conneroisu/xcboot/internal/validation"
)

// Answers collects what the wizard asked for. Empty fields were left at
// their resolved value.
type Answers struct {
	Device   string
	OS       string
	Arch     string
	Strict   bool
	Hooks    bool
	Xcode    string
	Accepted bool
}

// ConfigWizard prompts for the user document values of a project.
type ConfigWizard struct {
	reader  *bufio.Reader
	out     io.Writer
	layered *Layered
}

// NewConfigWizard creates a wizard reading answers from in and writing
// prompts to out. Current values in layered are offered as defaults.
func NewConfigWizard(in io.Reader, out io.Writer, layered *Layered) *ConfigWizard {
	return &ConfigWizard{
		reader:  bufio.NewReader(in),
		out:     out,
		layered: layered,
	}
}

// Run asks every question and returns the answers without persisting them.
func (w *ConfigWizard) Run() (*Answers, error) {
	fmt.Fprintln(w.out, "Test profile")
	fmt.Fprintln(w.out, "------------")

	device, err := w.layered.Get(KeyTestDevice, "")
	if err != nil {
		return nil, err
	}
	osVersion, err := w.layered.Get(KeyTestOS, "")
	if err != nil {
		return nil, err
	}
	arch, err := w.layered.Get(KeyTestArch, "")
	if err != nil {
		return nil, err
	}
	strict, err := w.layered.GetBool(KeyLintStrict, false)
	if err != nil {
		return nil, err
	}
	hooks, err := w.layered.GetBool(KeyHooksPreCommit, true)
	if err != nil {
		return nil, err
	}
	xcode, err := w.layered.Get(KeyCIXcodeVersion, "")
	if err != nil {
		return nil, err
	}

	answers := &Answers{}
	answers.Device = w.askString("Simulator device", device)
	answers.OS = w.askString("iOS version (blank for newest)", osVersion)
	answers.Arch = w.askChoice("Architecture", []string{"arm64", "x86_64", "auto"}, orDefault(arch, "auto"))
	if answers.Arch == "auto" {
		answers.Arch = ""
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Checks")
	fmt.Fprintln(w.out, "------")
	answers.Strict = w.askBool("Treat lint warnings as errors", strict)
	answers.Hooks = w.askBool("Run checks in the pre-commit hook", hooks)
	answers.Xcode = w.askString("Xcode version for CI", xcode)

	fmt.Fprintln(w.out)
	answers.Accepted = w.askBool("Write these values to "+UserFileName, true)
	return answers, nil
}

// Apply writes accepted answers into the user document.
func (w *ConfigWizard) Apply(a *Answers) error {
	if !a.Accepted {
		return nil
	}

	values := []struct {
		key   string
		value interface{}
	}{
		{KeyTestDevice, a.Device},
		{KeyTestOS, a.OS},
		{KeyTestArch, a.Arch},
		{KeyLintStrict, a.Strict},
		{KeyHooksPreCommit, a.Hooks},
		{KeyCIXcodeVersion, a.Xcode},
	}
	for _, kv := range values {
		if s, ok := kv.value.(string); ok && s == "" {
			continue
		}
		if err := w.layered.Set(kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}

func (w *ConfigWizard) askString(prompt, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(w.out, "%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Fprintf(w.out, "%s: ", prompt)
	}

	input, err := w.reader.ReadString('\n')
	input = strings.TrimSpace(validation.SanitizeInput(input))
	if input == "" {
		return defaultValue
	}
	if err != nil && err != io.EOF {
		return defaultValue
	}
	return input
}

func (w *ConfigWizard) askBool(prompt string, defaultValue bool) bool {
	defaultStr := "n"
	if defaultValue {
		defaultStr = "y"
	}

	fmt.Fprintf(w.out, "%s [%s]: ", prompt, defaultStr)

	input, _ := w.reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultValue
	}

	return input == "y" || input == "yes" || input == "true"
}

func (w *ConfigWizard) askChoice(prompt string, choices []string, defaultValue string) string {
	for {
		fmt.Fprintf(w.out, "%s [%s] (options: %s): ", prompt, defaultValue, strings.Join(choices, ", "))

		input, err := w.reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			return defaultValue
		}

		for _, choice := range choices {
			if strings.EqualFold(input, choice) {
				return choice
			}
		}

		fmt.Fprintf(w.out, "Invalid choice. Please select from: %s\n", strings.Join(choices, ", "))
		if err != nil {
			return defaultValue
		}
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
