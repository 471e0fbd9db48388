package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/logging"
	"github.com/conneroisu/xcboot/internal/shell"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const swiftVersionOutput = `swift-driver version: 1.90.11.1 Apple Swift version 5.10 (swiftlang-5.10.0.13 clang-1500.3.9.4)
Target: arm64-apple-macosx14.0
`

const pbxprojFixture = `// !$*UTF8*$!
{
	objects = {
		buildSettings = {
			IPHONEOS_DEPLOYMENT_TARGET = 16.4;
			PRODUCT_BUNDLE_IDENTIFIER = com.acme.Weather;
		};
		buildSettings = {
			IPHONEOS_DEPLOYMENT_TARGET = 16.4;
			PRODUCT_BUNDLE_IDENTIFIER = "com.acme.WeatherTests";
		};
	};
}
`

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newRunner() *shell.FakeRunner {
	return shell.NewFakeRunner().On("swift --version", swiftVersionOutput)
}

func TestProbeXcodeProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Weather.xcodeproj/project.pbxproj", pbxprojFixture)
	writeFile(t, root, "Zebra.xcodeproj/project.pbxproj", "")
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	runner := newRunner().On("git config --get remote.origin.url", "git@github.com:acme/weather.git\n")
	facts, err := NewProber(root, runner, logging.NewNopLogger()).WithArch("arm64").Probe(context.Background())
	require.NoError(t, err)

	want := &Facts{
		Name:              "Weather",
		BundleIDRoot:      "com.acme",
		DeploymentVersion: "16.4",
		ToolchainVersion:  "5.10",
		HostArch:          "arm64",
		VCSProvider:       ProviderGitHub,
		HasVCS:            true,
		RemoteURL:         "git@github.com:acme/weather.git",
		Descriptor:        DescriptorXcodeProject,
	}
	if diff := cmp.Diff(want, facts); diff != "" {
		t.Errorf("Probe() mismatch (-want +got):\n%s", diff)
	}
}

func TestProbeXcodeGenDescriptor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "project.yml", `
name: Notes
options:
  bundleIdPrefix: io.example
targets:
  NotesMac:
    platform: macOS
    deploymentTarget: "13.0"
  Notes:
    platform: iOS
    deploymentTarget: 17.2
`)

	facts, err := NewProber(root, newRunner(), nil).WithArch("x86_64").Probe(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Notes", facts.Name)
	assert.Equal(t, DescriptorXcodeGen, facts.Descriptor)
	assert.Equal(t, "io.example", facts.BundleIDRoot)
	assert.Equal(t, "17.2", facts.DeploymentVersion)
	assert.Equal(t, ProviderNone, facts.VCSProvider)
	assert.False(t, facts.HasVCS)
}

func TestProbeXcodeGenOptionsDeploymentTarget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "project.yml", `
name: Notes
options:
  deploymentTarget:
    iOS: "15.0"
`)

	facts, err := NewProber(root, newRunner(), nil).Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "15.0", facts.DeploymentVersion)
	assert.Equal(t, "com.notes", facts.BundleIDRoot)
}

func TestProbePackageManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Package.swift", `// swift-tools-version:5.9
import PackageDescription

let package = Package(
    name: "Café Kit",
    platforms: [.iOS(.v17)]
)
`)

	facts, err := NewProber(root, newRunner(), nil).Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Café Kit", facts.Name)
	assert.Equal(t, DescriptorPackage, facts.Descriptor)
	assert.Equal(t, DefaultDeploymentVersion, facts.DeploymentVersion)
	assert.Equal(t, "com.cafekit", facts.BundleIDRoot)
}

func TestProbeMissingProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# nothing here\n")

	runner := newRunner()
	_, err := NewProber(root, runner, nil).Probe(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFatalDetection))
	assert.NotEmpty(t, errors.HintOf(err))
	assert.Empty(t, runner.Calls, "no external programs before detection succeeds")
}

func TestProbeDefaultsWhenToolsFail(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "App.xcodeproj"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	runner := shell.NewFakeRunner().Without("swift")
	facts, err := NewProber(root, runner, nil).Probe(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "App", facts.Name)
	assert.Equal(t, DefaultToolchainVersion, facts.ToolchainVersion)
	assert.Equal(t, DefaultDeploymentVersion, facts.DeploymentVersion)
	assert.Equal(t, ProviderGitHub, facts.VCSProvider, "missing remote falls back to github")
	assert.Empty(t, facts.RemoteURL)
}

func TestProviderForRemote(t *testing.T) {
	tests := []struct {
		remote string
		want   Provider
	}{
		{"https://github.com/acme/app.git", ProviderGitHub},
		{"git@gitlab.com:acme/app.git", ProviderGitLab},
		{"ssh://git@gitlab.internal.example.com:2222/acme/app.git", ProviderGitLab},
		{"https://user@bitbucket.org/acme/app.git", ProviderBitbucket},
		{"https://git.example.com/acme/app.git", ProviderGitHub},
		{"not a remote", ProviderGitHub},
		{"", ProviderGitHub},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			assert.Equal(t, tt.want, ProviderForRemote(tt.remote))
		})
	}
}

func TestParseToolchainVersion(t *testing.T) {
	assert.Equal(t, "5.10", ParseToolchainVersion(swiftVersionOutput))
	assert.Equal(t, "6.0.2", ParseToolchainVersion("Swift version 6.0.2 (swift-6.0.2-RELEASE)"))
	assert.Equal(t, DefaultToolchainVersion, ParseToolchainVersion("command not found"))
}

func TestFoldIdentifier(t *testing.T) {
	tests := map[string]string{
		"Weather":     "weather",
		"Café Böard":  "cafeboard",
		"my-app_2":    "myapp2",
		"日本":          "app",
		"":            "app",
		"Ångström UI": "angstromui",
	}
	for in, want := range tests {
		assert.Equal(t, want, FoldIdentifier(in), in)
	}
}

func TestUnsafeProjectNameRejected(t *testing.T) {
	tests := []struct {
		name    string
		project string
	}{
		{"double quote", `We"ather`},
		{"backslash", `Weather\Kit`},
		{"dollar", "Cost$"},
		{"tab", "Weather\tKit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, tt.project+".xcodeproj/project.pbxproj", pbxprojFixture)

			_, err := NewProber(root, newRunner(), nil).Probe(context.Background())
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
			assert.True(t, errors.Is(err, &errors.Error{Type: errors.ErrorTypeValidation, Code: errors.ErrCodeInvalidProjectName}))
			assert.NotEmpty(t, errors.HintOf(err))
		})
	}
}
