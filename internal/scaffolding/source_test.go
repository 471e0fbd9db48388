package scaffolding

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMapSource(files map[string]string) *FSSource {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content), Mode: 0o644}
	}
	return NewFSSource(fsys, "test")
}

func TestEmbeddedTemplates(t *testing.T) {
	catalog := NewCatalog(NewEmbeddedSource())

	names, err := catalog.Templates()
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "spm"}, names)

	manifest, err := catalog.Manifest("spm")
	require.NoError(t, err)
	assert.Equal(t, "default", manifest.Extends)
	assert.NotEmpty(t, manifest.Description)

	defaultFiles, err := catalog.List("default")
	require.NoError(t, err)
	spmFiles, err := catalog.List("spm")
	require.NoError(t, err)
	assert.Equal(t, defaultFiles, spmFiles, "spm inherits every file it does not override")
	assert.NotContains(t, defaultFiles, ManifestFile)

	spmBuild, err := catalog.Read("spm", "scripts/build.sh")
	require.NoError(t, err)
	assert.Contains(t, string(spmBuild), "swift build")

	inherited, err := catalog.Read("spm", "lint/swiftlint.yml")
	require.NoError(t, err)
	base, err := catalog.Read("default", "lint/swiftlint.yml")
	require.NoError(t, err)
	assert.Equal(t, base, inherited)
}

func TestCatalogUnknownTemplate(t *testing.T) {
	catalog := NewCatalog(NewEmbeddedSource())

	_, err := catalog.List("kotlin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, &errors.Error{Type: errors.ErrorTypeValidation, Code: errors.ErrCodeUnknownTemplate}))
	assert.Contains(t, errors.HintOf(err), "default, spm")
}

func TestCatalogMissingFile(t *testing.T) {
	catalog := NewCatalog(NewEmbeddedSource())

	_, err := catalog.Read("default", "scripts/deploy.sh")
	require.Error(t, err)
	assert.True(t, isNotFound(err))

	_, err = catalog.Read("default", "../go.mod")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestCatalogInheritanceCycle(t *testing.T) {
	catalog := NewCatalog(newMapSource(map[string]string{
		"a/template.yml": "extends: b\n",
		"b/template.yml": "extends: a\n",
	}))

	_, err := catalog.List("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestCatalogUnknownParent(t *testing.T) {
	catalog := NewCatalog(newMapSource(map[string]string{
		"child/template.yml": "extends: ghost\n",
	}))

	_, err := catalog.Read("child", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template ghost")
}

func TestDirSourceOverlay(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "default", "lint")
	require.NoError(t, os.MkdirAll(custom, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(custom, "swiftlint.yml"), []byte("# ours for {{PROJECT_NAME}}\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "team"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "team", ManifestFile), []byte("extends: default\n"), 0o644))

	dirSource, err := NewDirSource(dir)
	require.NoError(t, err)
	catalog := NewCatalog(NewOverlaySource(dirSource, NewEmbeddedSource()))

	names, err := catalog.Templates()
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "spm", "team"}, names)

	lint, err := catalog.Read("default", "lint/swiftlint.yml")
	require.NoError(t, err)
	assert.Equal(t, "# ours for {{PROJECT_NAME}}\n", string(lint))

	teamLint, err := catalog.Read("team", "lint/swiftlint.yml")
	require.NoError(t, err)
	assert.Equal(t, lint, teamLint)

	build, err := catalog.Read("default", "scripts/build.sh")
	require.NoError(t, err)
	assert.Contains(t, string(build), "xcodebuild")
}

func TestNewDirSourceErrors(t *testing.T) {
	_, err := NewDirSource(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewDirSource(file)
	assert.Error(t, err)
}
