// Package profile resolves the simulator test profile (device, OS version,
// architecture) a project's test script runs against.
//
// Resolution matches the requested device exactly against the host
// inventory, then picks an OS version:
//
//  1. the runtime whose version equals the deployment version;
//  2. else the newest runtime on the same major line at or above it;
//  3. else the newest runtime overall, reported as a recoverable
//     VersionUnavailable error alongside the usable profile.
//
// Versions compare as numeric tuples, so 17-10 sorts after 17-9.
package profile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/logging"
)

// MaxSuggestions caps the device names offered with DeviceNotFound.
const MaxSuggestions = 5

// TestProfile is a resolved (device, OS version, architecture) triple.
// OSVersion is in inventory token form.
type TestProfile struct {
	Device    string `json:"device" yaml:"device"`
	OSVersion string `json:"os" yaml:"os"`
	Arch      string `json:"arch" yaml:"arch"`
}

// DottedOS returns the OS version as "17.5".
func (p TestProfile) DottedOS() string {
	v, err := ParseVersion(p.OSVersion)
	if err != nil {
		return p.OSVersion
	}
	return v.String()
}

// Destination renders the profile as an xcodebuild -destination value.
func (p TestProfile) Destination() string {
	dest := fmt.Sprintf("platform=iOS Simulator,name=%s,OS=%s", p.Device, p.DottedOS())
	if p.Arch != "" {
		dest += ",arch=" + p.Arch
	}
	return dest
}

// Complete reports whether every field is set.
func (p TestProfile) Complete() bool {
	return p.Device != "" && p.OSVersion != "" && p.Arch != ""
}

// Resolver matches requests against an Inventory.
type Resolver struct {
	inventory Inventory
	logger    logging.Logger
	arch      string
}

// NewResolver creates a resolver over inventory.
func NewResolver(inventory Inventory, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Resolver{inventory: inventory, logger: logger.WithComponent("profile")}
}

// WithArch forces the architecture instead of the host's native one. An
// empty arch restores the default.
func (r *Resolver) WithArch(arch string) *Resolver {
	r.arch = strings.TrimSpace(arch)
	return r
}

// Resolve picks the profile for device and deploymentVersion. An empty
// deploymentVersion selects the newest runtime without a warning.
//
// When the requested version has no usable runtime, Resolve returns the
// fallback profile together with a recoverable VersionUnavailable error;
// callers should check errors.IsRecoverable before discarding the profile.
func (r *Resolver) Resolve(ctx context.Context, device, deploymentVersion string) (TestProfile, error) {
	device = strings.TrimSpace(device)

	entries, err := r.inventory.ListAvailableProfiles(ctx)
	if err != nil {
		return TestProfile{}, err
	}

	canonical, versions := filterDevice(entries, device)
	if len(versions) == 0 {
		return TestProfile{}, errors.NewDeviceNotFoundError(device, Suggest(device, entries))
	}

	result := TestProfile{Device: canonical, Arch: r.arch}
	if result.Arch == "" {
		result.Arch = r.inventory.CurrentArch()
	}

	newest := versions[len(versions)-1]
	if strings.TrimSpace(deploymentVersion) == "" {
		result.OSVersion = newest.Token()
		return result, nil
	}

	requested, err := ParseVersion(deploymentVersion)
	if err != nil {
		return TestProfile{}, errors.NewValidationError(errors.ErrCodeValidationFailed,
			fmt.Sprintf("invalid deployment version %q", deploymentVersion))
	}

	if v, ok := selectVersion(versions, requested); ok {
		result.OSVersion = v.Token()
		r.logger.Debug(ctx, "resolved test profile", "device", result.Device, "os", result.OSVersion)
		return result, nil
	}

	result.OSVersion = newest.Token()
	warning := errors.NewVersionUnavailableError(result.Device, requested.Token(), result.OSVersion)
	r.logger.Warn(ctx, warning, "requested runtime unavailable, using newest",
		"device", result.Device, "requested", requested.Token(), "selected", result.OSVersion)
	return result, warning
}

// selectVersion applies the exact and same-major rules to ascending versions.
func selectVersion(versions []Version, requested Version) (Version, bool) {
	for _, v := range versions {
		if v.Compare(requested) == 0 {
			return v, true
		}
	}

	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		if v.Major() == requested.Major() && v.Compare(requested) >= 0 {
			return v, true
		}
	}
	return nil, false
}

// filterDevice returns the inventory spelling of device and its distinct
// versions in ascending order. Names match exactly, falling back to a
// case-insensitive match.
func filterDevice(entries []Entry, device string) (string, []Version) {
	match := func(eq func(a, b string) bool) (string, []Version) {
		seen := map[string]bool{}
		var name string
		var versions []Version
		for _, e := range entries {
			if !eq(e.Device, device) {
				continue
			}
			name = e.Device
			v, err := ParseVersion(e.OSVersion)
			if err != nil || seen[v.Token()] {
				continue
			}
			seen[v.Token()] = true
			versions = append(versions, v)
		}
		sort.Slice(versions, func(i, j int) bool { return versions[i].Compare(versions[j]) < 0 })
		return name, versions
	}

	if name, versions := match(func(a, b string) bool { return a == b }); len(versions) > 0 {
		return name, versions
	}
	return match(strings.EqualFold)
}

// Suggest offers inventory device names resembling device: names containing
// the request come first, then names sharing its family (first word).
func Suggest(device string, entries []Entry) []string {
	query := strings.ToLower(strings.TrimSpace(device))
	if query == "" {
		return nil
	}
	family := strings.Fields(query)[0]

	seen := map[string]bool{}
	var direct, related []string
	for _, e := range entries {
		if seen[e.Device] {
			continue
		}
		seen[e.Device] = true

		name := strings.ToLower(e.Device)
		switch {
		case strings.Contains(name, query) || strings.Contains(query, name):
			direct = append(direct, e.Device)
		case strings.Contains(name, family):
			related = append(related, e.Device)
		}
	}

	sort.Strings(direct)
	sort.Strings(related)
	suggestions := append(direct, related...)
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	return suggestions
}
