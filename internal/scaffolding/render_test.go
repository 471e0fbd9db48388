package scaffolding

import (
	"testing"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		bindings   Bindings
		want       string
		unresolved []string
	}{
		{
			name:     "replaces every occurrence",
			content:  "{{PROJECT_NAME}} and {{PROJECT_NAME}}Tests",
			bindings: Bindings{"PROJECT_NAME": "Weather"},
			want:     "Weather and WeatherTests",
		},
		{
			name:     "values are not re-expanded",
			content:  "{{SCHEME}}",
			bindings: Bindings{"SCHEME": "{{PROJECT_NAME}}", "PROJECT_NAME": "x"},
			want:     "{{PROJECT_NAME}}",
			// the literal in the value is left for the closure check
			unresolved: []string{"PROJECT_NAME"},
		},
		{
			name:     "github expressions are not placeholders",
			content:  "group: ci-${{ github.ref }} {{CI_RUNNER}}",
			bindings: Bindings{"CI_RUNNER": "macos-14"},
			want:     "group: ci-${{ github.ref }} macos-14",
		},
		{
			name:     "lowercase braces are not placeholders",
			content:  "{{name}} {{ NAME }}",
			bindings: Bindings{},
			want:     "{{name}} {{ NAME }}",
		},
		{
			name:       "unbound tokens stay and are reported",
			content:    "{{PROJECT_NAME}} {{UNKNOWN}} {{ALSO_UNKNOWN}} {{UNKNOWN}}",
			bindings:   Bindings{"PROJECT_NAME": "Weather"},
			want:       "Weather {{UNKNOWN}} {{ALSO_UNKNOWN}} {{UNKNOWN}}",
			unresolved: []string{"ALSO_UNKNOWN", "UNKNOWN"},
		},
		{
			name:     "empty values are valid",
			content:  "xcodebuild {{PROJECT_ARGS}} build",
			bindings: Bindings{"PROJECT_ARGS": ""},
			want:     "xcodebuild  build",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.content, tt.bindings)
			assert.Equal(t, tt.want, got)

			if tt.unresolved == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
			assert.Equal(t, tt.unresolved, UnresolvedTokens(err))
		})
	}
}

func TestFindTokens(t *testing.T) {
	assert.Equal(t, []string{"A", "B_2"}, FindTokens("{{B_2}} {{A}} {{A}} {{lower}} {{2X}}"))
	assert.Empty(t, FindTokens("no placeholders"))
	assert.Nil(t, UnresolvedTokens(nil))
}

func TestBindingsMissing(t *testing.T) {
	b := Bindings{}
	for _, name := range Vocabulary {
		b[name] = "x"
	}
	assert.Empty(t, b.Missing())

	delete(b, TokenScheme)
	assert.Equal(t, []string{TokenScheme}, b.Missing())
	assert.True(t, InVocabulary(TokenProjectName))
	assert.False(t, InVocabulary("HOME"))
}
