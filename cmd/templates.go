package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/logging"
	"github.com/conneroisu/xcboot/internal/scaffolding"
	"github.com/conneroisu/xcboot/internal/watcher"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"t"},
	Short:   "List, validate and watch template sets",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available template sets",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesValidateCmd = &cobra.Command{
	Use:   "validate [name...]",
	Short: "Check template sets for missing files and unknown placeholders",
	Long: `Every template set must provide a source for each generated file and may only
use placeholders xcboot knows how to fill.

Examples:
  xcboot templates validate
  xcboot templates validate spm --template-dir ./team-templates`,
	RunE: runTemplatesValidate,
}

var templatesWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Revalidate a template directory whenever it changes",
	Long: `Watch --template-dir and validate the template sets after each burst of
changes. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runTemplatesWatch,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd, templatesValidateCmd, templatesWatchCmd)

	for _, c := range []*cobra.Command{templatesListCmd, templatesValidateCmd, templatesWatchCmd} {
		c.Flags().String("template-dir", "", "Directory of template sets overlaid on the built-in ones")
		AddFlagValidation(c, "template-dir", ValidateDirExists)
	}
	templatesWatchCmd.Flags().Duration("debounce", watcher.DefaultDelay, "Quiet period before revalidating")
}

// catalogFor builds the catalog from the built-in sets and an optional
// directory overlay.
func catalogFor(cmd *cobra.Command) (*scaffolding.Catalog, error) {
	var src scaffolding.Source = scaffolding.NewEmbeddedSource()
	dir, _ := cmd.Flags().GetString("template-dir")
	if dir != "" {
		overlay, err := scaffolding.NewDirSource(dir)
		if err != nil {
			return nil, err
		}
		src = scaffolding.NewOverlaySource(overlay, src)
	}
	return scaffolding.NewCatalog(src), nil
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	catalog, err := catalogFor(cmd)
	if err != nil {
		return err
	}
	names, err := catalog.Templates()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEXTENDS\tDESCRIPTION")
	for _, name := range names {
		m, err := catalog.Manifest(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, m.Extends, m.Description)
	}
	return tw.Flush()
}

func runTemplatesValidate(cmd *cobra.Command, args []string) error {
	catalog, err := catalogFor(cmd)
	if err != nil {
		return err
	}
	return validateCatalog(cmd.OutOrStdout(), catalog, args)
}

// validateCatalog validates names, or every set when names is empty, and
// returns an error when any set has issues.
func validateCatalog(out io.Writer, catalog *scaffolding.Catalog, names []string) error {
	if len(names) == 0 {
		all, err := catalog.Templates()
		if err != nil {
			return err
		}
		names = all
	}

	invalid := 0
	for _, name := range names {
		if err := catalog.Check(name); err != nil {
			return err
		}
		report, err := scaffolding.ValidateTemplates(catalog, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, report.String())
		if !report.Valid() {
			invalid++
		}
	}

	if invalid > 0 {
		return errors.NewValidationError(errors.ErrCodeValidationFailed,
			fmt.Sprintf("%d of %d template sets have issues", invalid, len(names)))
	}
	return nil
}

func runTemplatesWatch(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("template-dir")
	if dir == "" {
		return errors.NewValidationError(errors.ErrCodeValidationFailed, "--template-dir is required").
			WithHint("xcboot templates watch --template-dir ./team-templates")
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")

	return watchTemplates(cmd.Context(), cmd, dir, debounce, a.logger)
}

func watchTemplates(ctx context.Context, cmd *cobra.Command, dir string, debounce time.Duration, logger logging.Logger) error {
	out := cmd.OutOrStdout()

	w, err := watcher.New(debounce, logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	w.AddFilter(watcher.NoHiddenFilter)
	w.AddFilter(watcher.NoEditorTempFilter)
	w.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		for _, e := range events {
			fmt.Fprintf(out, "%s %s\n", e.Type, e.Path)
		}
		catalog, err := catalogFor(cmd)
		if err != nil {
			return err
		}
		if err := validateCatalog(out, catalog, nil); err != nil {
			fmt.Fprintln(out, "error:", errors.FormatErrorWithHint(err))
		}
		return nil
	})
	if err := w.AddRecursive(dir); err != nil {
		return err
	}

	catalog, err := catalogFor(cmd)
	if err != nil {
		return err
	}
	if err := validateCatalog(out, catalog, nil); err != nil {
		fmt.Fprintln(out, "error:", errors.FormatErrorWithHint(err))
	}
	fmt.Fprintf(out, "watching %s (Ctrl-C to stop)\n", dir)

	w.Start(ctx)
	<-ctx.Done()
	return nil
}
