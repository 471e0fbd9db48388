package version

import (
	"runtime/debug"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBuild(t *testing.T, version, commit string, info *debug.BuildInfo) {
	t.Helper()
	oldVersion, oldCommit, oldRead := Version, GitCommit, readBuildInfo
	t.Cleanup(func() {
		Version, GitCommit, readBuildInfo = oldVersion, oldCommit, oldRead
	})
	Version, GitCommit = version, commit
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
}

func TestGetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		info    *debug.BuildInfo
		want    string
		release bool
	}{
		{name: "linker flag wins", version: "v1.4.0", want: "v1.4.0", release: true},
		{
			name:    "module version",
			version: "dev",
			info:    &debug.BuildInfo{Main: debug.Module{Version: "v1.3.2"}},
			want:    "v1.3.2",
			release: true,
		},
		{
			name:    "vcs revision",
			version: "dev",
			info: &debug.BuildInfo{
				Main:     debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}},
			},
			want: "dev-0123456",
		},
		{name: "nothing known", version: "", want: "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuild(t, tt.version, "unknown", tt.info)
			assert.Equal(t, tt.want, GetVersion())
			assert.Equal(t, tt.release, IsRelease())
		})
	}
}

func TestGetShortVersion(t *testing.T) {
	withBuild(t, "v1.4.0", "abcdef123456", nil)
	assert.Equal(t, "v1.4.0 (abcdef1)", GetShortVersion())

	withBuild(t, "dev", "abcdef123456", nil)
	assert.Equal(t, "dev-abcdef1", GetShortVersion())
}

func TestGetDetailedVersion(t *testing.T) {
	withBuild(t, "v1.4.0", "abcdef123456", &debug.BuildInfo{
		Settings: []debug.BuildSetting{{Key: "vcs.modified", Value: "true"}},
	})

	out := GetDetailedVersion()
	assert.Contains(t, out, "Version: v1.4.0")
	assert.Contains(t, out, "Commit: abcdef123456 (modified)")
	assert.Contains(t, out, "Platform: ")
}

func TestParseBuildTime(t *testing.T) {
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), parseBuildTime("2024-05-01T12:00:00Z"))
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("yesterday").IsZero())
}
