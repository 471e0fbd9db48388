package cmd

import (
	"fmt"

	"github.com/conneroisu/xcboot/internal/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for xcboot including:

- Semantic version number
- Git commit hash
- Build timestamp
- Go version and target platform

The version is also written into every generated file.

Examples:
  xcboot version              # Show version
  xcboot version --short      # Version only
  xcboot version --detailed   # Every build fact
  xcboot version --format json`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

var versionFormat *formatValue

func init() {
	rootCmd.AddCommand(versionCmd)

	versionFormat = addFormatFlag(versionCmd, formatText, formatText, formatJSON, formatYAML)
	versionCmd.Flags().Bool("short", false, "Show short version only")
	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	short, _ := cmd.Flags().GetBool("short")
	detailed, _ := cmd.Flags().GetBool("detailed")

	if f := versionFormat.String(); f != formatText {
		info := version.GetBuildInfo()
		return writeStructured(out, f, map[string]interface{}{
			"version":    info.Version,
			"git_commit": info.GitCommit,
			"build_time": info.BuildTime,
			"go_version": info.GoVersion,
			"platform":   info.Platform,
			"is_release": version.IsRelease(),
			"is_dirty":   info.Dirty,
		})
	}

	switch {
	case short:
		fmt.Fprintln(out, version.GetShortVersion())
	case detailed:
		fmt.Fprintln(out, version.GetDetailedVersion())
		if version.IsRelease() {
			fmt.Fprintln(out, "Build type: release")
		} else {
			fmt.Fprintln(out, "Build type: development")
		}
	default:
		info := version.GetBuildInfo()
		fmt.Fprintf(out, "xcboot %s", info.Version)
		if info.GitCommit != "unknown" && len(info.GitCommit) >= 7 {
			fmt.Fprintf(out, " (%s)", info.GitCommit[:7])
		}
		if info.Dirty {
			fmt.Fprint(out, " (dirty)")
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Go: %s\nPlatform: %s\n", info.GoVersion, info.Platform)
	}
	return nil
}
