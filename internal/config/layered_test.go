package config

import (
	"testing"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayeredPrecedence(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, SystemFileName, `
test:
  device: iPhone 15
  os: "17.5"
ci:
  runner: macos-13
`)
	writeDoc(t, root, UserFileName, `
test:
  device: iPad Pro
`)

	layered, err := Open(root)
	require.NoError(t, err)

	tests := []struct {
		key       string
		def       string
		want      string
		wantLayer string
	}{
		{key: KeyTestDevice, want: "iPad Pro", wantLayer: UserLayerName},
		{key: KeyTestOS, want: "17.5", wantLayer: SystemLayerName},
		{key: KeyCIRunner, want: "macos-13", wantLayer: SystemLayerName},
		{key: KeyCIXcodeVersion, want: "15.4", wantLayer: DefaultLayerName},
		{key: "nowhere.at_all", def: "fallback", want: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := layered.Get(tt.key, tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			_, layer, found, err := layered.Resolve(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLayer != "", found)
			assert.Equal(t, tt.wantLayer, layer)
		})
	}
}

func TestOpenWithoutSystem(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, SystemFileName, "ci:\n  runner: edited-runner\n")
	writeDoc(t, root, UserFileName, "test:\n  device: iPad Pro\n")

	layered, err := OpenWithoutSystem(root)
	require.NoError(t, err)
	require.Len(t, layered.Layers(), 2)

	runner, layer, found, err := layered.Resolve(KeyCIRunner)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "macos-14", runner)
	assert.Equal(t, DefaultLayerName, layer)

	device, err := layered.Get(KeyTestDevice, "")
	require.NoError(t, err)
	assert.Equal(t, "iPad Pro", device)
}

func TestLayeredSiblingKeysNotShadowed(t *testing.T) {
	user := NewMemoryDocument(UserLayerName, map[string]interface{}{
		"test": map[string]interface{}{"device": "iPhone SE"},
	})
	system := NewMemoryDocument(SystemLayerName, map[string]interface{}{
		"test": map[string]interface{}{"device": "iPhone 15", "arch": "arm64"},
	})
	layered := NewLayered(user, system)

	device, err := layered.Get(KeyTestDevice, "")
	require.NoError(t, err)
	assert.Equal(t, "iPhone SE", device)

	arch, err := layered.Get(KeyTestArch, "")
	require.NoError(t, err)
	assert.Equal(t, "arm64", arch)
}

func TestLayeredNullFallsThrough(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, SystemFileName, "test:\n  device: iPhone 15\n")
	writeDoc(t, root, UserFileName, "test:\n  device: ~\n")

	layered, err := Open(root)
	require.NoError(t, err)

	device, err := layered.Get(KeyTestDevice, "")
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15", device)
}

func TestLayeredInvalidStructure(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, UserFileName, `
test:
  device:
    name: iPhone 15
lint: strict
`)

	layered, err := Open(root)
	require.NoError(t, err)

	_, err = layered.Get(KeyTestDevice, "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidConfigStructure))

	_, err = layered.GetBool(KeyLintStrict, false)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidConfigStructure))

	// Only the operation that needs the broken key fails
	runner, err := layered.Get(KeyCIRunner, "")
	require.NoError(t, err)
	assert.Equal(t, "macos-14", runner)
}

func TestLayeredGetBool(t *testing.T) {
	system := NewMemoryDocument(SystemLayerName, map[string]interface{}{
		"hooks": map[string]interface{}{"pre_commit": "false"},
		"lint":  map[string]interface{}{"strict": "sometimes"},
	})
	layered := NewLayered(system)

	enabled, err := layered.GetBool(KeyHooksPreCommit, true)
	require.NoError(t, err)
	assert.False(t, enabled)

	_, err = layered.GetBool(KeyLintStrict, false)
	assert.Error(t, err)

	missing, err := layered.GetBool("nope.nope", true)
	require.NoError(t, err)
	assert.True(t, missing)
}

func TestLayeredMalformedDocument(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, SystemFileName, "test: [unclosed\n")

	_, err := Open(root)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidConfigStructure))
}

func TestLayeredKeys(t *testing.T) {
	user := NewMemoryDocument(UserLayerName, map[string]interface{}{
		"test": map[string]interface{}{"device": "iPhone SE"},
	})
	system := NewMemoryDocument(SystemLayerName, map[string]interface{}{
		"test": map[string]interface{}{"device": "iPhone 15"},
		"ci":   map[string]interface{}{"runner": "macos-14"},
	})

	assert.Equal(t, []string{"ci.runner", "test.device"}, NewLayered(user, system).Keys())
}

func TestValidateLayers(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, SystemFileName, `
test:
  arch: sparc
  os: "seventeen"
lint:
  strict: true
colour: blue
`)

	layered, err := Open(root)
	require.NoError(t, err)

	result := ValidateLayers(layered)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "colour", result.Warnings[0].Field)
	assert.Contains(t, result.String(), "unsupported architecture")
}
