package cmd

import (
	"fmt"

	"github.com/conneroisu/xcboot/internal/config"
	"github.com/conneroisu/xcboot/internal/services"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Pin the test simulator in .xcboot/config.local.yml",
	Long: `Resolve a simulator profile against the runtimes installed on this machine
and save it in the user document. Later installs use it as-is.

Without --os the project's deployment target picks the runtime: the same
version when installed, else the newest one on that major line, else the
newest runtime available (with a warning).

Examples:
  xcboot configure --device "iPhone 15 Pro"
  xcboot configure --device "iPad Air (5th generation)" --os 17.5 --arch arm64
  xcboot configure --interactive`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)

	configureCmd.Flags().String("device", "", "Simulator device name")
	configureCmd.Flags().String("os", "", "iOS runtime version (e.g. 17.5)")
	configureCmd.Flags().String("arch", "", "Simulator architecture (arm64 or x86_64)")
	configureCmd.Flags().BoolP("interactive", "i", false, "Ask for every value")
	AddFlagValidation(configureCmd, "arch", ValidateArch)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	opts := services.ConfigureOptions{ProjectDir: a.dir}
	opts.Device, _ = flags.GetString("device")
	opts.OS, _ = flags.GetString("os")
	opts.Arch, _ = flags.GetString("arch")
	interactive, _ := flags.GetBool("interactive")

	svc := services.NewConfigureService(a.runner, a.inventory, a.logger)
	out := cmd.OutOrStdout()

	var wizard *config.ConfigWizard
	var answers *config.Answers
	if interactive {
		layered, err := config.Open(a.dir)
		if err != nil {
			return err
		}
		wizard = config.NewConfigWizard(cmd.InOrStdin(), out, layered)
		answers, err = wizard.Run()
		if err != nil {
			return err
		}
		if !answers.Accepted {
			fmt.Fprintln(out, "Nothing written.")
			return nil
		}
		opts.Device = answers.Device
		opts.OS = answers.OS
		opts.Arch = answers.Arch
	}

	result, err := svc.Configure(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if answers != nil {
		// The profile was resolved and saved above; only the remaining
		// answers are applied here.
		answers.Device, answers.OS, answers.Arch = "", "", ""
		layered, err := config.Open(a.dir)
		if err != nil {
			return err
		}
		if err := config.NewConfigWizard(nil, out, layered).Apply(answers); err != nil {
			return err
		}
	}

	for _, w := range result.Warnings {
		fmt.Fprintln(out, "warning:", w)
	}
	p := result.Profile
	fmt.Fprintf(out, "Saved %s, iOS %s, %s to %s\n", p.Device, p.DottedOS(), p.Arch, result.Path)
	return nil
}
