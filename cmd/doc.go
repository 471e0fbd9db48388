// Package cmd provides the command-line interface for xcboot.
//
// This package implements all CLI commands using the Cobra framework.
//
// # Available Commands
//
//   - install (default): probe the project and write the generated files
//   - configure: pin the test simulator in the user document
//   - profile: resolve the test profile or list installed simulators
//   - config: get, set, show and validate project configuration keys
//   - templates: list, validate and watch template sets
//   - doctor: check required tools and the project
//   - version: print build information
//
// # Command Examples
//
//	// Install, keeping existing files
//	xcboot
//
//	// Restore every generated file from the spm template set
//	xcboot install --force --template spm
//
//	// Pin the simulator used by scripts/test.sh
//	xcboot configure --device "iPhone 15 Pro" --os 17.5
//
//	// Show where each configuration value comes from
//	xcboot config show
//
//	// Iterate on a custom template directory
//	xcboot templates watch --template-dir ./team-templates
//
// # Configuration
//
// Tool settings resolve with clear precedence:
//  1. Command-line flags (--config, --log-level, --timeout, ...)
//  2. XCBOOT_CONFIG_FILE environment variable, a custom settings file path
//  3. Individual environment variables (XCBOOT_LOG_LEVEL, XCBOOT_TIMEOUT, ...)
//  4. The .xcboot.yml settings file
//
// These settings are separate from the project documents under .xcboot/,
// which describe the target project and are read by the install itself.
//
// # Exit Status
//
// Commands exit 0 on success and 1 on any fatal error. Warnings such as a
// runtime fallback or a missing CI provider never change the exit status.
package cmd
