package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWizardAcceptsDefaults(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, SystemFileName, "test:\n  device: iPhone 15\n  os: \"17.5\"\n")

	layered, err := Open(root)
	require.NoError(t, err)

	var out bytes.Buffer
	wizard := NewConfigWizard(strings.NewReader("\n\n\n\n\n\n\n"), &out, layered)

	answers, err := wizard.Run()
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15", answers.Device)
	assert.Equal(t, "17.5", answers.OS)
	assert.Equal(t, "", answers.Arch)
	assert.True(t, answers.Hooks)
	assert.False(t, answers.Strict)
	assert.Equal(t, "15.4", answers.Xcode)
	assert.True(t, answers.Accepted)
	assert.Contains(t, out.String(), "Simulator device [iPhone 15]")
}

func TestConfigWizardAppliesAnswers(t *testing.T) {
	root := t.TempDir()
	layered, err := Open(root)
	require.NoError(t, err)

	input := strings.Join([]string{
		"iPad Air",
		"18.0",
		"sparc",
		"x86_64",
		"y",
		"n",
		"16.0",
		"yes",
	}, "\n") + "\n"

	var out bytes.Buffer
	wizard := NewConfigWizard(strings.NewReader(input), &out, layered)

	answers, err := wizard.Run()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Invalid choice")
	require.NoError(t, wizard.Apply(answers))

	reopened, err := Open(root)
	require.NoError(t, err)

	for key, want := range map[string]string{
		KeyTestDevice:     "iPad Air",
		KeyTestOS:         "18.0",
		KeyTestArch:       "x86_64",
		KeyCIXcodeVersion: "16.0",
	} {
		got, err := reopened.Get(key, "")
		require.NoError(t, err)
		assert.Equal(t, want, got, key)
	}

	strict, err := reopened.GetBool(KeyLintStrict, false)
	require.NoError(t, err)
	assert.True(t, strict)

	hooks, err := reopened.GetBool(KeyHooksPreCommit, true)
	require.NoError(t, err)
	assert.False(t, hooks)
}

func TestConfigWizardDeclined(t *testing.T) {
	root := t.TempDir()
	layered, err := Open(root)
	require.NoError(t, err)

	wizard := NewConfigWizard(strings.NewReader("iPad\n\n\n\n\n\nn\n"), &bytes.Buffer{}, layered)
	answers, err := wizard.Run()
	require.NoError(t, err)
	assert.False(t, answers.Accepted)

	require.NoError(t, wizard.Apply(answers))
	assert.NoFileExists(t, UserPath(root))
}

func TestConfigWizardStripsControlCharacters(t *testing.T) {
	layered, err := Open(t.TempDir())
	require.NoError(t, err)

	input := "iPhone\x00 15\x07 Pro\n\n\n\n\n\n\n"
	answers, err := NewConfigWizard(strings.NewReader(input), &bytes.Buffer{}, layered).Run()
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15 Pro", answers.Device)
}
