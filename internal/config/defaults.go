package config

import "path/filepath"

// Locations of the project documents, relative to the project root.
const (
	Dir              = ".xcboot"
	SystemFileName   = "config.yml"
	UserFileName     = "config.local.yml"
	SystemLayerName  = "system"
	UserLayerName    = "user"
	DefaultLayerName = "defaults"
)

// Project document keys.
const (
	KeyProjectScheme      = "project.scheme"
	KeyBuildConfiguration = "build.configuration"
	KeyTestDevice         = "test.device"
	KeyTestOS             = "test.os"
	KeyTestArch           = "test.arch"
	KeyLintStrict         = "lint.strict"
	KeyFormatSwiftVersion = "format.swift_version"
	KeyCIXcodeVersion     = "ci.xcode_version"
	KeyCIRunner           = "ci.runner"
	KeyHooksPreCommit     = "hooks.pre_commit"
)

// Defaults are the built-in values behind both documents.
var Defaults = map[string]interface{}{
	"project": map[string]interface{}{
		"scheme": "",
	},
	"build": map[string]interface{}{
		"configuration": "Debug",
	},
	"test": map[string]interface{}{
		"device": "iPhone 15",
		"os":     "",
		"arch":   "",
	},
	"lint": map[string]interface{}{
		"strict": false,
	},
	"format": map[string]interface{}{
		"swift_version": "",
	},
	"ci": map[string]interface{}{
		"xcode_version": "15.4",
		"runner":        "macos-14",
	},
	"hooks": map[string]interface{}{
		"pre_commit": true,
	},
}

// KnownKeys lists every key path the installer reads.
var KnownKeys = []string{
	KeyProjectScheme,
	KeyBuildConfiguration,
	KeyTestDevice,
	KeyTestOS,
	KeyTestArch,
	KeyLintStrict,
	KeyFormatSwiftVersion,
	KeyCIXcodeVersion,
	KeyCIRunner,
	KeyHooksPreCommit,
}

// SystemPath returns the system document path for a project root.
func SystemPath(root string) string {
	return filepath.Join(root, Dir, SystemFileName)
}

// UserPath returns the user document path for a project root.
func UserPath(root string) string {
	return filepath.Join(root, Dir, UserFileName)
}
