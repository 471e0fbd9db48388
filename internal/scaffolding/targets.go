package scaffolding

import "github.com/conneroisu/xcboot/internal/probe"

// Kind groups targets by install stage.
type Kind string

const (
	KindScript Kind = "script"
	KindLint   Kind = "lint"
	KindConfig Kind = "config"
	KindCI     Kind = "ci"
	KindHook   Kind = "hook"
	KindStatus Kind = "status"
)

// Target maps one template file to its destination in the project. Provider
// is empty for targets written regardless of the hosting provider.
type Target struct {
	Source      string
	Destination string
	Executable  bool
	Provider    probe.Provider
	Kind        Kind
}

// ScriptsDir is where the executable scripts are written.
const ScriptsDir = "scripts"

// Targets is the static install table in stage order.
var Targets = []Target{
	{Source: "scripts/bootstrap.sh", Destination: ScriptsDir + "/bootstrap.sh", Executable: true, Kind: KindScript},
	{Source: "scripts/build.sh", Destination: ScriptsDir + "/build.sh", Executable: true, Kind: KindScript},
	{Source: "scripts/test.sh", Destination: ScriptsDir + "/test.sh", Executable: true, Kind: KindScript},
	{Source: "scripts/lint.sh", Destination: ScriptsDir + "/lint.sh", Executable: true, Kind: KindScript},
	{Source: "scripts/format.sh", Destination: ScriptsDir + "/format.sh", Executable: true, Kind: KindScript},

	{Source: "lint/swiftlint.yml", Destination: ".swiftlint.yml", Kind: KindLint},
	{Source: "lint/swiftformat", Destination: ".swiftformat", Kind: KindLint},

	{Source: "config/config.yml", Destination: ".xcboot/config.yml", Kind: KindConfig},

	{Source: "ci/github.yml", Destination: ".github/workflows/ci.yml", Provider: probe.ProviderGitHub, Kind: KindCI},
	{Source: "ci/gitlab-ci.yml", Destination: ".gitlab-ci.yml", Provider: probe.ProviderGitLab, Kind: KindCI},
	{Source: "ci/bitbucket-pipelines.yml", Destination: "bitbucket-pipelines.yml", Provider: probe.ProviderBitbucket, Kind: KindCI},

	{Source: "hooks/pre-commit", Destination: ".git/hooks/pre-commit", Executable: true, Kind: KindHook},

	{Source: "status/XCBOOT.md", Destination: "XCBOOT.md", Kind: KindStatus},
}

// TargetsFor returns the targets of kind gated to provider. Ungated targets
// are always included; gated ones only when their provider matches.
func TargetsFor(kind Kind, provider probe.Provider) []Target {
	var out []Target
	for _, t := range Targets {
		if t.Kind != kind {
			continue
		}
		if t.Provider != "" && t.Provider != provider {
			continue
		}
		out = append(out, t)
	}
	return out
}
