// Package testutils builds throwaway Swift projects and scripted tool
// environments for package tests.
package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conneroisu/xcboot/internal/profile"
	"github.com/conneroisu/xcboot/internal/shell"
	"github.com/stretchr/testify/require"
)

// SwiftVersionOutput is what `swift --version` prints on a 5.10 toolchain.
const SwiftVersionOutput = "swift-driver version: 1.90.11.1 Apple Swift version 5.10 (swiftlang-5.10.0.13 clang-1500.3.9.4)\nTarget: arm64-apple-macosx14.0\n"

// RemoteCommand is the command line the prober uses to read the remote.
const RemoteCommand = "git config --get remote.origin.url"

// WriteFile writes content at rel under root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// CreateXcodeProject creates a temp directory holding Name.xcodeproj with a
// minimal project.pbxproj targeting deployment.
func CreateXcodeProject(t *testing.T, name, deployment string) string {
	t.Helper()
	root := t.TempDir()
	WriteFile(t, root, name+".xcodeproj/project.pbxproj", fmt.Sprintf(`// !$*UTF8*$!
{
	objects = {
		buildSettings = {
			IPHONEOS_DEPLOYMENT_TARGET = %s;
			PRODUCT_BUNDLE_IDENTIFIER = "com.acme.%s";
		};
	};
}
`, deployment, name))
	return root
}

// CreatePackageProject creates a temp directory holding a Package.swift.
func CreatePackageProject(t *testing.T, name string) string {
	t.Helper()
	root := t.TempDir()
	WriteFile(t, root, "Package.swift", fmt.Sprintf(`// swift-tools-version:5.10
import PackageDescription

let package = Package(
    name: "%s",
    platforms: [.iOS(.v17)],
    targets: [.target(name: "%s")]
)
`, name, name))
	return root
}

// InitGit creates an empty .git/hooks directory under root.
func InitGit(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "hooks"), 0o755))
}

// FakeTools returns a runner answering swift --version and the remote
// lookup. An empty remote makes the lookup fail the way git does when no
// origin is configured.
func FakeTools(remote string) *shell.FakeRunner {
	runner := shell.NewFakeRunner().On("swift --version", SwiftVersionOutput)
	if remote != "" {
		runner.On(RemoteCommand, remote+"\n")
	}
	return runner
}

// Inventory returns an arm64 inventory of iPhone 15 runtimes for the given
// version tokens, plus an iPhone 15 Pro on the last one.
func Inventory(tokens ...string) *profile.StaticInventory {
	inv := &profile.StaticInventory{Arch: "arm64"}
	for _, tok := range tokens {
		inv.Entries = append(inv.Entries, profile.Entry{Device: "iPhone 15", OSVersion: tok})
	}
	if len(tokens) > 0 {
		inv.Entries = append(inv.Entries, profile.Entry{Device: "iPhone 15 Pro", OSVersion: tokens[len(tokens)-1]})
	}
	return inv
}

// AssertFileMode checks the permission bits of path.
func AssertFileMode(t *testing.T, path string, expectedMode os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)

	actualMode := info.Mode().Perm()
	require.Equal(t, expectedMode, actualMode,
		"File %s has incorrect permissions: got %o, want %o", path, actualMode, expectedMode)
}

// ReadFile returns the content of rel under root.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	require.NoError(t, err)
	return string(data)
}

// WaitForFileChange waits for a file to be modified (useful for testing file watchers)
func WaitForFileChange(
	t *testing.T,
	filePath string,
	originalModTime time.Time,
	timeout time.Duration,
) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		info, err := os.Stat(filePath)
		if err == nil && info.ModTime().After(originalModTime) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s was not modified within %v", filePath, timeout)
}
