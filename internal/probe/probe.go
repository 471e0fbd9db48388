// Package probe gathers read-only facts about the target project and the
// host: project name, deployment version, bundle identifier root, toolchain
// version, CPU architecture and the hosting provider of the VCS remote.
//
// Facts are recomputed on every run and never persisted. The only external
// programs consulted are git and swift, both through a shell.Runner so that
// every call is bounded by a timeout and the caller's context.
package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/logging"
	"github.com/conneroisu/xcboot/internal/shell"
	"github.com/conneroisu/xcboot/internal/validation"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Provider identifies the hosting service of the VCS remote.
type Provider string

// Known providers. ProviderNone means the project is not under version control.
const (
	ProviderGitHub    Provider = "github"
	ProviderGitLab    Provider = "gitlab"
	ProviderBitbucket Provider = "bitbucket"
	ProviderNone      Provider = "none"
)

// Providers lists every provider that has a CI artifact set.
var Providers = []Provider{ProviderGitHub, ProviderGitLab, ProviderBitbucket}

// Fallback values used when the project or host does not say otherwise.
const (
	DefaultDeploymentVersion = "17.0"
	DefaultToolchainVersion  = "5.10"
)

// Descriptor names the file the project name was read from.
type Descriptor string

const (
	DescriptorXcodeProject Descriptor = "xcodeproj"
	DescriptorXcodeGen     Descriptor = "project.yml"
	DescriptorPackage      Descriptor = "Package.swift"
)

// Facts describes the target project and host.
type Facts struct {
	Name              string     `json:"name" yaml:"name"`
	BundleIDRoot      string     `json:"bundle_id_root" yaml:"bundle_id_root"`
	DeploymentVersion string     `json:"deployment_version" yaml:"deployment_version"`
	ToolchainVersion  string     `json:"toolchain_version" yaml:"toolchain_version"`
	HostArch          string     `json:"host_arch" yaml:"host_arch"`
	VCSProvider       Provider   `json:"vcs_provider" yaml:"vcs_provider"`
	HasVCS            bool       `json:"has_vcs" yaml:"has_vcs"`
	RemoteURL         string     `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`
	Descriptor        Descriptor `json:"descriptor" yaml:"descriptor"`
}

// Prober computes Facts for one project directory.
type Prober struct {
	root   string
	runner shell.Runner
	logger logging.Logger
	arch   string
}

// NewProber creates a prober for the project at root.
func NewProber(root string, runner shell.Runner, logger logging.Logger) *Prober {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Prober{
		root:   root,
		runner: runner,
		logger: logger.WithComponent("probe"),
		arch:   NativeArch(),
	}
}

// WithArch overrides the detected host architecture.
func (p *Prober) WithArch(arch string) *Prober {
	p.arch = arch
	return p
}

// NativeArch returns the host CPU architecture in Apple's naming.
func NativeArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	default:
		return runtime.GOARCH
	}
}

var (
	deploymentTargetPattern = regexp.MustCompile(`IPHONEOS_DEPLOYMENT_TARGET = ([0-9]+(?:\.[0-9]+)*);`)
	bundleIdentifierPattern = regexp.MustCompile(`PRODUCT_BUNDLE_IDENTIFIER = "?([A-Za-z0-9][A-Za-z0-9.\-]*)"?;`)
	packageNamePattern      = regexp.MustCompile(`Package\(\s*name:\s*"([^"]+)"`)
	swiftVersionPattern     = regexp.MustCompile(`Swift version (\d+(?:\.\d+)*)`)
)

// xcodegenManifest is the subset of an XcodeGen project.yml read by the prober.
type xcodegenManifest struct {
	Name    string `yaml:"name"`
	Options struct {
		BundleIDPrefix   string            `yaml:"bundleIdPrefix"`
		DeploymentTarget map[string]string `yaml:"deploymentTarget"`
	} `yaml:"options"`
	Targets map[string]struct {
		Platform         string `yaml:"platform"`
		DeploymentTarget string `yaml:"deploymentTarget"`
	} `yaml:"targets"`
}

// Probe gathers the facts. A project without any descriptor is a
// FatalDetection error; every other missing fact falls back to a default.
func (p *Prober) Probe(ctx context.Context) (*Facts, error) {
	perf := logging.StartOperation(p.logger, "probe")

	facts := &Facts{HostArch: p.arch}

	manifest, err := p.readXcodeGenManifest()
	if err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}

	pbxproj, err := p.detectName(facts, manifest)
	if err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}
	if err := checkName(facts.Name); err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}

	facts.DeploymentVersion = detectDeploymentVersion(pbxproj, manifest)
	facts.BundleIDRoot = detectBundleIDRoot(pbxproj, manifest, facts.Name)
	facts.ToolchainVersion = p.detectToolchain(ctx)
	p.detectProvider(ctx, facts)

	p.logger.Debug(ctx, "probed project",
		"name", facts.Name,
		"descriptor", string(facts.Descriptor),
		"deployment_version", facts.DeploymentVersion,
		"provider", string(facts.VCSProvider))
	perf.End(ctx)
	return facts, nil
}

// detectName fills Name and Descriptor and returns the pbxproj content when
// an Xcode project was found.
func (p *Prober) detectName(facts *Facts, manifest *xcodegenManifest) (string, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeInvalidPath, "cannot read project directory", err).WithFile(p.root)
	}

	// os.ReadDir returns entries sorted by name
	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), ".xcodeproj") {
			facts.Name = strings.TrimSuffix(entry.Name(), ".xcodeproj")
			facts.Descriptor = DescriptorXcodeProject
			content, err := os.ReadFile(filepath.Join(p.root, entry.Name(), "project.pbxproj"))
			if err != nil {
				p.logger.Debug(context.Background(), "project.pbxproj not readable", "error", err.Error())
				return "", nil
			}
			return string(content), nil
		}
	}

	if manifest != nil && strings.TrimSpace(manifest.Name) != "" {
		facts.Name = strings.TrimSpace(manifest.Name)
		facts.Descriptor = DescriptorXcodeGen
		return "", nil
	}

	if content, err := os.ReadFile(filepath.Join(p.root, "Package.swift")); err == nil {
		if m := packageNamePattern.FindStringSubmatch(string(content)); m != nil {
			facts.Name = m[1]
			facts.Descriptor = DescriptorPackage
			return "", nil
		}
	}

	return "", errors.NewFatalDetectionError(errors.ErrCodeMissingProject,
		"no Xcode project found in "+p.root).
		WithFile(p.root).
		WithHint("run xcboot from a directory containing a .xcodeproj, a project.yml or a Package.swift")
}

// checkName rejects project names that cannot be placed inside the quoted
// strings of generated YAML and shell files.
func checkName(name string) error {
	bad := strings.IndexFunc(name, func(r rune) bool {
		return unicode.IsControl(r) || strings.ContainsRune("\"\\`$", r)
	})
	if bad < 0 {
		return nil
	}
	r, _ := utf8.DecodeRuneInString(name[bad:])
	return errors.NewValidationError(errors.ErrCodeInvalidProjectName,
		fmt.Sprintf("project name %q contains %q", name, r)).
		WithHint("rename the project without quotes, backslashes, backticks or $")
}

func (p *Prober) readXcodeGenManifest() (*xcodegenManifest, error) {
	path := filepath.Join(p.root, "project.yml")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewIOError(errors.ErrCodeConfigRead, "cannot read project.yml", err).WithFile(path)
	}

	var manifest xcodegenManifest
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigRead, "cannot parse project.yml").WithFile(path)
	}
	return &manifest, nil
}

func detectDeploymentVersion(pbxproj string, manifest *xcodegenManifest) string {
	if m := deploymentTargetPattern.FindStringSubmatch(pbxproj); m != nil {
		return m[1]
	}

	if manifest != nil {
		if v := strings.TrimSpace(manifest.Options.DeploymentTarget["iOS"]); v != "" {
			return v
		}

		names := make([]string, 0, len(manifest.Targets))
		for name := range manifest.Targets {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			target := manifest.Targets[name]
			if target.Platform != "" && !strings.EqualFold(target.Platform, "iOS") {
				continue
			}
			if v := strings.TrimSpace(target.DeploymentTarget); v != "" {
				return v
			}
		}
	}

	return DefaultDeploymentVersion
}

func detectBundleIDRoot(pbxproj string, manifest *xcodegenManifest, name string) string {
	if manifest != nil {
		if prefix := strings.Trim(strings.TrimSpace(manifest.Options.BundleIDPrefix), "."); prefix != "" {
			return prefix
		}
	}

	if m := bundleIdentifierPattern.FindStringSubmatch(pbxproj); m != nil {
		if i := strings.LastIndex(m[1], "."); i > 0 {
			return m[1][:i]
		}
	}

	return "com." + FoldIdentifier(name)
}

// FoldIdentifier reduces s to lowercase ASCII letters and digits, dropping
// diacritics ("Café Böard" → "cafeboard"). An empty result becomes "app".
func FoldIdentifier(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "app"
	}
	return b.String()
}

func (p *Prober) detectToolchain(ctx context.Context) string {
	out, err := p.runner.Run(ctx, p.root, "swift", "--version")
	if err != nil {
		p.logger.Warn(ctx, err, "swift toolchain not detected, assuming default",
			"default", DefaultToolchainVersion)
		return DefaultToolchainVersion
	}
	return ParseToolchainVersion(string(out))
}

// ParseToolchainVersion extracts the version from `swift --version` output.
func ParseToolchainVersion(output string) string {
	if m := swiftVersionPattern.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	return DefaultToolchainVersion
}

func (p *Prober) detectProvider(ctx context.Context, facts *Facts) {
	if _, err := os.Stat(filepath.Join(p.root, ".git")); err != nil {
		facts.VCSProvider = ProviderNone
		return
	}
	facts.HasVCS = true

	out, err := p.runner.Run(ctx, p.root, "git", "config", "--get", "remote.origin.url")
	if err != nil {
		p.logger.Debug(ctx, "no origin remote, assuming github", "error", err.Error())
		facts.VCSProvider = ProviderGitHub
		return
	}

	facts.RemoteURL = strings.TrimSpace(string(out))
	facts.VCSProvider = ProviderForRemote(facts.RemoteURL)
}

// ProviderForRemote maps a remote URL to its hosting provider. Unknown or
// unparsable remotes map to GitHub, the most common host.
func ProviderForRemote(remote string) Provider {
	host, err := validation.RemoteHost(remote)
	if err != nil {
		return ProviderGitHub
	}

	switch {
	case strings.Contains(host, "gitlab"):
		return ProviderGitLab
	case strings.Contains(host, "bitbucket"):
		return ProviderBitbucket
	default:
		return ProviderGitHub
	}
}
