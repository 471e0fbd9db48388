//go:build property
// +build property

package profile

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genVersion() gopter.Gen {
	return gen.SliceOfN(2, gen.IntRange(0, 30)).Map(func(parts []int) Version {
		return Version(parts)
	})
}

// TestVersionOrderingProperties checks that version comparison is a total
// numeric order independent of the textual form.
func TestVersionOrderingProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("compare is antisymmetric", prop.ForAll(
		func(a, b Version) bool {
			return a.Compare(b) == -b.Compare(a)
		},
		genVersion(), genVersion(),
	))

	properties.Property("token and dotted forms parse to the same version", prop.ForAll(
		func(v Version) bool {
			fromToken, err := ParseVersion(v.Token())
			if err != nil {
				return false
			}
			fromDotted, err := ParseVersion(v.String())
			if err != nil {
				return false
			}
			return fromToken.Compare(v) == 0 && fromDotted.Compare(v) == 0
		},
		genVersion(),
	))

	properties.Property("minor ten sorts after minor nine", prop.ForAll(
		func(major int) bool {
			return Version{major, 10}.Compare(Version{major, 9}) > 0
		},
		gen.IntRange(0, 99),
	))

	properties.TestingRun(t)
}

// TestResolutionProperties checks that a known device always resolves to a
// runtime it actually has.
func TestResolutionProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("resolved version is installed for the device", prop.ForAll(
		func(installed []Version, requested Version) bool {
			inventory := &StaticInventory{Arch: "arm64"}
			available := map[string]bool{}
			for _, v := range installed {
				inventory.Entries = append(inventory.Entries, Entry{Device: "iPhone 15", OSVersion: v.Token()})
				available[v.Token()] = true
			}

			got, err := NewResolver(inventory, nil).Resolve(context.Background(), "iPhone 15", requested.String())
			if err != nil && got.OSVersion == "" {
				return false
			}
			return available[got.OSVersion]
		},
		gen.SliceOfN(4, genVersion()),
		genVersion(),
	))

	properties.Property("exact runtime is always preferred", prop.ForAll(
		func(installed []Version, pick int) bool {
			inventory := &StaticInventory{Arch: "arm64"}
			for _, v := range installed {
				inventory.Entries = append(inventory.Entries, Entry{Device: "iPhone 15", OSVersion: v.Token()})
			}
			want := installed[pick%len(installed)]

			got, err := NewResolver(inventory, nil).Resolve(context.Background(), "iPhone 15", want.String())
			return err == nil && got.OSVersion == want.Token()
		},
		gen.SliceOfN(4, genVersion()),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
