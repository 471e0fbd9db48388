// Package internal contains the implementation packages of xcboot.
//
// # Package Organization
//
//   - probe: project detection and fact gathering (project kind, deployment
//     target, bundle identifier, VCS provider, Swift version)
//   - profile: simulator inventory and test profile resolution with version
//     fallback
//   - config: tool settings and the layered project documents
//   - scaffolding: template sources, token rendering and artifact writing
//   - services: the install and configure operations built on the above
//   - shell: external command execution with argument validation
//   - watcher: debounced template directory watching
//   - errors: the structured error taxonomy with remediation hints
//   - logging: structured logging on log/slog
//   - fsutil: atomic file writes
//   - validation: path, argument and remote URL checks
//   - version: build information
//   - testutils: fixtures shared by package tests
//
// Packages depend downward only: services composes probe, profile,
// scaffolding and config; cmd composes services.
package internal
