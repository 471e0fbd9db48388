package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/conneroisu/xcboot/internal/profile"
	"github.com/conneroisu/xcboot/internal/services"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect test simulator profiles",
}

var profileResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the simulator profile an install would use",
	Long: `Resolve the test profile without writing anything.

Examples:
  xcboot profile resolve
  xcboot profile resolve --device "iPhone 15 Pro" --os 17.0
  xcboot profile resolve --format json`,
	Args: cobra.NoArgs,
	RunE: runProfileResolve,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the iOS simulators available on this machine",
	Args:  cobra.NoArgs,
	RunE:  runProfileList,
}

var (
	profileResolveFormat *formatValue
	profileListFormat    *formatValue
)

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileResolveCmd, profileListCmd)

	profileResolveCmd.Flags().String("device", "", "Simulator device name")
	profileResolveCmd.Flags().String("os", "", "iOS runtime version")
	profileResolveCmd.Flags().String("arch", "", "Simulator architecture (arm64 or x86_64)")
	AddFlagValidation(profileResolveCmd, "arch", ValidateArch)
	profileResolveFormat = addFormatFlag(profileResolveCmd, formatText, formatText, formatJSON, formatYAML)

	profileListFormat = addFormatFlag(profileListCmd, formatTable, formatTable, formatJSON, formatYAML)
}

func runProfileResolve(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	opts := services.ConfigureOptions{ProjectDir: a.dir}
	opts.Device, _ = cmd.Flags().GetString("device")
	opts.OS, _ = cmd.Flags().GetString("os")
	opts.Arch, _ = cmd.Flags().GetString("arch")

	result, err := services.NewConfigureService(a.runner, a.inventory, a.logger).Resolve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f := profileResolveFormat.String(); f != formatText {
		return writeStructured(out, f, result)
	}

	p := result.Profile
	fmt.Fprintf(out, "device: %s\nos:     %s\narch:   %s\n", p.Device, p.DottedOS(), p.Arch)
	fmt.Fprintf(out, "destination: %s\n", p.Destination())
	if result.FromConfig {
		fmt.Fprintln(out, "source: .xcboot/config.local.yml")
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(out, "warning:", w)
	}
	return nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	entries, err := a.inventory.ListAvailableProfiles(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f := profileListFormat.String(); f != formatTable {
		if entries == nil {
			entries = []profile.Entry{}
		}
		return writeStructured(out, f, entries)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tIOS\tUDID")
	for _, e := range entries {
		osVersion := e.OSVersion
		if v, err := profile.ParseVersion(e.OSVersion); err == nil {
			osVersion = v.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Device, osVersion, e.UDID)
	}
	return tw.Flush()
}
