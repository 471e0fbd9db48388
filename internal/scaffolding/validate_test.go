package scaffolding

import (
	"testing"

	"github.com/conneroisu/xcboot/internal/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullBindings() Bindings {
	b := Bindings{}
	for _, name := range Vocabulary {
		b[name] = "value-" + name
	}
	return b
}

func TestShippedTemplatesAreClosed(t *testing.T) {
	catalog := NewCatalog(NewEmbeddedSource())

	names, err := catalog.Templates()
	require.NoError(t, err)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			report, err := ValidateTemplates(catalog, name)
			require.NoError(t, err)
			assert.True(t, report.Valid(), report.String())

			files, err := catalog.List(name)
			require.NoError(t, err)
			for _, f := range files {
				data, err := catalog.Read(name, f)
				require.NoError(t, err)

				rendered, err := Render(string(data), fullBindings())
				require.NoError(t, err, f)
				assert.Empty(t, FindTokens(rendered), f)
			}
		})
	}
}

func TestValidateTemplatesReportsIssues(t *testing.T) {
	src := NewCatalog(newMapSource(map[string]string{
		"partial/scripts/build.sh": "#!/bin/sh\n{{PROJECT_NAME}} {{SECRET_TOKEN}}\n",
	}))

	report, err := ValidateTemplates(src, "partial")
	require.NoError(t, err)
	assert.False(t, report.Valid())

	var tokenIssue *TemplateIssue
	missing := 0
	for i := range report.Issues {
		if report.Issues[i].Path == "scripts/build.sh" {
			tokenIssue = &report.Issues[i]
		} else {
			missing++
		}
	}
	require.NotNil(t, tokenIssue)
	assert.Equal(t, []string{"SECRET_TOKEN"}, tokenIssue.Tokens)
	assert.Equal(t, len(Targets)-1, missing)
	assert.Contains(t, report.String(), "SECRET_TOKEN")
}

func TestTargetsFor(t *testing.T) {
	github := TargetsFor(KindCI, probe.ProviderGitHub)
	require.Len(t, github, 1)
	assert.Equal(t, ".github/workflows/ci.yml", github[0].Destination)

	gitlab := TargetsFor(KindCI, probe.ProviderGitLab)
	require.Len(t, gitlab, 1)
	assert.Equal(t, ".gitlab-ci.yml", gitlab[0].Destination)

	assert.Empty(t, TargetsFor(KindCI, probe.ProviderNone))

	scripts := TargetsFor(KindScript, probe.ProviderNone)
	assert.Len(t, scripts, 5)
	for _, s := range scripts {
		assert.True(t, s.Executable, s.Destination)
	}

	hooks := TargetsFor(KindHook, probe.ProviderGitHub)
	require.Len(t, hooks, 1)
	assert.True(t, hooks[0].Executable)
}
