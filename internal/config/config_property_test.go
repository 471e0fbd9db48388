//go:build property
// +build property

package config

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestLayeredResolutionProperties checks per-key precedence across layers.
func TestLayeredResolutionProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	layer := func(device, runner string) *Document {
		values := map[string]interface{}{}
		if device != "" {
			values["test"] = map[string]interface{}{"device": device}
		}
		if runner != "" {
			values["ci"] = map[string]interface{}{"runner": runner}
		}
		return NewMemoryDocument("layer", values)
	}

	properties.Property("first defining layer wins", prop.ForAll(
		func(userDevice, systemDevice string) bool {
			l := NewLayered(layer(userDevice, ""), layer(systemDevice, ""), NewMemoryDocument(DefaultLayerName, Defaults))

			got, err := l.Get(KeyTestDevice, "")
			if err != nil {
				return false
			}

			switch {
			case userDevice != "":
				return got == userDevice
			case systemDevice != "":
				return got == systemDevice
			default:
				return got == "iPhone 15"
			}
		},
		gen.OneGenOf(gen.Const(""), gen.AlphaString()),
		gen.OneGenOf(gen.Const(""), gen.AlphaString()),
	))

	properties.Property("omitted key never shadows a sibling", prop.ForAll(
		func(device, runner string) bool {
			l := NewLayered(layer(device, ""), layer("", runner))

			gotRunner, err := l.Get(KeyCIRunner, "unset")
			if err != nil {
				return false
			}
			gotDevice, err := l.Get(KeyTestDevice, "unset")
			if err != nil {
				return false
			}
			return gotRunner == runner && gotDevice == device
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.TestingRun(t)
}
