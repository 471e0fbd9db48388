//go:build property
// +build property

package scaffolding

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRenderProperties checks closure and purity of Render.
func TestRenderProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	genName := gen.OneConstOf(TokenProjectName, TokenScheme, TokenSimulatorDevice, TokenSwiftVersion)
	genValue := gen.AlphaString()

	properties.Property("fully bound content renders without placeholders", prop.ForAll(
		func(names []string, value, filler string) bool {
			var b strings.Builder
			bindings := Bindings{}
			for _, n := range names {
				b.WriteString(filler)
				b.WriteString("{{" + n + "}}")
				bindings[n] = value
			}

			rendered, err := Render(b.String(), bindings)
			return err == nil && len(FindTokens(rendered)) == 0
		},
		gen.SliceOf(genName), genValue, genValue,
	))

	properties.Property("render is deterministic", prop.ForAll(
		func(name, value string) bool {
			content := "x {{" + name + "}} y"
			a, errA := Render(content, Bindings{name: value})
			b, errB := Render(content, Bindings{name: value})
			return a == b && errA == nil && errB == nil
		},
		genName, genValue,
	))

	properties.Property("content without placeholders is untouched", prop.ForAll(
		func(content string) bool {
			if strings.Contains(content, "{{") {
				return true
			}
			rendered, err := Render(content, Bindings{TokenProjectName: "x"})
			return err == nil && rendered == content
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
