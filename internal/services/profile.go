package services

import (
	"context"

	"github.com/conneroisu/xcboot/internal/config"
	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/logging"
	"github.com/conneroisu/xcboot/internal/profile"
	"github.com/spf13/cast"
)

// DefaultDevice is the simulator requested when neither flags nor
// configuration name one.
const DefaultDevice = "iPhone 15"

// ProfileRequest carries explicit choices; empty fields fall back to the
// layered configuration, then to the project's deployment version.
type ProfileRequest struct {
	Device            string
	OS                string
	Arch              string
	DeploymentVersion string
}

func (r ProfileRequest) empty() bool {
	return r.Device == "" && r.OS == "" && r.Arch == ""
}

// ProfileResolution is a resolved profile and where it came from.
type ProfileResolution struct {
	Profile    profile.TestProfile
	FromConfig bool
}

// ResolveProfile decides the test profile for a project. A complete profile
// persisted in the user document is used without consulting the inventory
// unless the request overrides part of it. The second return value is a
// recoverable VersionUnavailable warning accompanying a usable profile.
func ResolveProfile(ctx context.Context, layered *config.Layered, inventory profile.Inventory, logger logging.Logger, req ProfileRequest) (*ProfileResolution, error, error) {
	if req.empty() {
		if pinned, ok, err := persistedProfile(layered); err != nil {
			return nil, nil, err
		} else if ok {
			return &ProfileResolution{Profile: pinned, FromConfig: true}, nil, nil
		}
	}

	device, err := pick(req.Device, layered, config.KeyTestDevice, DefaultDevice)
	if err != nil {
		return nil, nil, err
	}
	requested, err := pick(req.OS, layered, config.KeyTestOS, req.DeploymentVersion)
	if err != nil {
		return nil, nil, err
	}
	arch, err := pick(req.Arch, layered, config.KeyTestArch, "")
	if err != nil {
		return nil, nil, err
	}

	resolved, err := profile.NewResolver(inventory, logger).WithArch(arch).Resolve(ctx, device, requested)
	if err != nil {
		if errors.IsRecoverable(err) {
			return &ProfileResolution{Profile: resolved}, err, nil
		}
		return nil, nil, err
	}
	return &ProfileResolution{Profile: resolved}, nil, nil
}

func pick(explicit string, layered *config.Layered, key, def string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	v, err := layered.Get(key, def)
	if err != nil || v != "" {
		return v, err
	}
	return def, nil
}

// persistedProfile reads test.device, test.os and test.arch from the user
// document only.
func persistedProfile(layered *config.Layered) (profile.TestProfile, bool, error) {
	user := layered.User()
	if user == nil {
		return profile.TestProfile{}, false, nil
	}

	values := make([]string, 3)
	for i, key := range []string{config.KeyTestDevice, config.KeyTestOS, config.KeyTestArch} {
		v, found, err := user.Lookup(key)
		if err != nil {
			return profile.TestProfile{}, false, err
		}
		if found {
			values[i] = cast.ToString(v)
		}
	}

	p := profile.TestProfile{Device: values[0], OSVersion: values[1], Arch: values[2]}
	if !p.Complete() {
		return profile.TestProfile{}, false, nil
	}

	osToken, err := profile.ToToken(p.OSVersion)
	if err != nil {
		return profile.TestProfile{}, false, errors.NewConfigStructureError(config.KeyTestOS,
			config.KeyTestOS+": "+err.Error()).WithFile(user.Path())
	}
	p.OSVersion = osToken
	return p, true, nil
}
