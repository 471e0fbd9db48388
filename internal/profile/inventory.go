package profile

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/probe"
	"github.com/conneroisu/xcboot/internal/shell"
)

// Entry is one available (device, OS runtime) pair on the host.
type Entry struct {
	Device    string `json:"device" yaml:"device"`
	OSVersion string `json:"os" yaml:"os"` // token form, e.g. "17-5"
	RuntimeID string `json:"runtime_id,omitempty" yaml:"runtime_id,omitempty"`
	UDID      string `json:"udid,omitempty" yaml:"udid,omitempty"`
}

// Inventory lists the simulator runtimes available on the host.
type Inventory interface {
	ListAvailableProfiles(ctx context.Context) ([]Entry, error)
	CurrentArch() string
}

const iosRuntimePrefix = "com.apple.CoreSimulator.SimRuntime.iOS-"

// SimctlInventory reads the host inventory from `xcrun simctl`.
type SimctlInventory struct {
	runner shell.Runner
	arch   string
}

// NewSimctlInventory creates an inventory backed by runner.
func NewSimctlInventory(runner shell.Runner) *SimctlInventory {
	return &SimctlInventory{runner: runner, arch: probe.NativeArch()}
}

// CurrentArch returns the native host architecture.
func (s *SimctlInventory) CurrentArch() string {
	return s.arch
}

// ListAvailableProfiles runs `xcrun simctl list devices available --json`.
// A missing xcrun surfaces as a MissingDependency error.
func (s *SimctlInventory) ListAvailableProfiles(ctx context.Context) ([]Entry, error) {
	out, err := s.runner.Run(ctx, "", "xcrun", "simctl", "list", "devices", "available", "--json")
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeMissingDependency) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, errors.ErrCodeCommandFailed, "cannot list simulator runtimes")
	}
	return ParseSimctlDevices(out)
}

type simctlDevices struct {
	Devices map[string][]struct {
		Name        string `json:"name"`
		UDID        string `json:"udid"`
		IsAvailable *bool  `json:"isAvailable"`
	} `json:"devices"`
}

// ParseSimctlDevices decodes simctl's JSON device listing, keeping available
// iOS devices only. Entries are sorted by device then version.
func ParseSimctlDevices(data []byte) ([]Entry, error) {
	var listing simctlDevices
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeCommandFailed, "cannot parse simctl output", err)
	}

	var entries []Entry
	for runtimeID, devices := range listing.Devices {
		token, ok := RuntimeToken(runtimeID)
		if !ok {
			continue
		}
		for _, d := range devices {
			if d.IsAvailable != nil && !*d.IsAvailable {
				continue
			}
			entries = append(entries, Entry{
				Device:    d.Name,
				OSVersion: token,
				RuntimeID: runtimeID,
				UDID:      d.UDID,
			})
		}
	}

	sortEntries(entries)
	return entries, nil
}

// RuntimeToken extracts the version token from an iOS runtime identifier:
// com.apple.CoreSimulator.SimRuntime.iOS-17-5 → "17-5".
func RuntimeToken(runtimeID string) (string, bool) {
	if !strings.HasPrefix(runtimeID, iosRuntimePrefix) {
		return "", false
	}
	v, err := ParseVersion(strings.TrimPrefix(runtimeID, iosRuntimePrefix))
	if err != nil {
		return "", false
	}
	return v.Token(), true
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Device != entries[j].Device {
			return entries[i].Device < entries[j].Device
		}
		vi, erri := ParseVersion(entries[i].OSVersion)
		vj, errj := ParseVersion(entries[j].OSVersion)
		if erri != nil || errj != nil {
			return entries[i].OSVersion < entries[j].OSVersion
		}
		if c := vi.Compare(vj); c != 0 {
			return c < 0
		}
		return entries[i].UDID < entries[j].UDID
	})
}

// StaticInventory is a fixed inventory, used for tests and for projects
// whose profile is pinned in configuration.
type StaticInventory struct {
	Entries []Entry
	Arch    string
}

// ListAvailableProfiles returns a copy of the fixed entries.
func (s *StaticInventory) ListAvailableProfiles(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Entry, len(s.Entries))
	copy(out, s.Entries)
	return out, nil
}

// CurrentArch returns the fixed architecture.
func (s *StaticInventory) CurrentArch() string {
	return s.Arch
}
