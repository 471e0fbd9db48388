package cmd

import (
	"github.com/conneroisu/xcboot/internal/services"
	"github.com/conneroisu/xcboot/internal/version"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:     "install",
	Aliases: []string{"i"},
	Short:   "Install developer tooling into the project (default command)",
	Long: `Probe the project, resolve a test simulator and write the generated files.

Existing files are left alone unless --force is given. CI configuration is
written only for the detected provider (GitHub, GitLab or Bitbucket), and the
pre-commit hook only when the project has a .git directory.

Examples:
  xcboot install
  xcboot install --force
  xcboot install --template spm --no-status
  xcboot install --template-dir ./team-templates --format json`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
	addInstallFlags(installCmd)
}

func addInstallFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("force", false, "Overwrite existing generated files")
	cmd.Flags().String("template", "", "Template set to install (default \"default\")")
	cmd.Flags().String("template-dir", "", "Directory of template sets overlaid on the built-in ones")
	cmd.Flags().Bool("no-status", false, "Do not write XCBOOT.md")
	cmd.Flags().String("structure", "", "Reserved; accepted and ignored")
	addFormatFlag(cmd, formatText, formatText, formatJSON, formatYAML)
	AddFlagValidation(cmd, "template-dir", ValidateDirExists)
}

func runInstall(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	force, _ := flags.GetBool("force")
	noStatus, _ := flags.GetBool("no-status")
	structure, _ := flags.GetString("structure")
	template, _ := flags.GetString("template")
	if template == "" {
		template = a.settings.Template
	}
	templateDir, _ := flags.GetString("template-dir")
	if templateDir == "" {
		templateDir = a.settings.TemplateDir
	}

	svc := services.NewInstallService(a.runner, a.inventory, a.logger,
		services.WithToolVersion(version.GetVersion()))

	report, installErr := svc.Install(cmd.Context(), services.InstallOptions{
		ProjectDir:  a.dir,
		Force:       force,
		Template:    template,
		TemplateDir: templateDir,
		NoStatus:    noStatus,
		Structure:   structure,
	})
	if report != nil {
		if err := printReport(cmd, report); err != nil {
			return err
		}
	}
	return installErr
}

func printReport(cmd *cobra.Command, report *services.Report) error {
	format := cmd.Flags().Lookup("format").Value.String()
	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, report)
	}
	_, err := cmd.OutOrStdout().Write([]byte(report.String()))
	return err
}
