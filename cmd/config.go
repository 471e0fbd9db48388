package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/conneroisu/xcboot/internal/config"
	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and edit the project configuration documents",
	Long: `Project configuration lives in two documents resolved key by key:

  .xcboot/config.local.yml   user overrides (not committed)
  .xcboot/config.yml         shared project settings

A key missing from the user document falls through to the shared one, then
to the built-in default.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the resolved value of a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show every key with its value and the layer it came from",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a key into .xcboot/config.local.yml",
	Long: `Write a scalar into the user document. Comments, key order and other keys
are preserved.

Examples:
  xcboot config set lint.strict true
  xcboot config set test.device "iPhone 15 Pro"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check both documents for shape errors and unknown keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configShowFormat *formatValue

// configEntry is one row of config show.
type configEntry struct {
	Key   string      `json:"key" yaml:"key"`
	Value interface{} `json:"value" yaml:"value"`
	Layer string      `json:"layer" yaml:"layer"`
}

// boolKeys are stored as YAML booleans by config set.
var boolKeys = map[string]bool{
	config.KeyLintStrict:     true,
	config.KeyHooksPreCommit: true,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd, configShowCmd, configSetCmd, configValidateCmd)

	configGetCmd.Flags().Bool("layer", false, "Also print the layer the value came from")
	configShowFormat = addFormatFlag(configShowCmd, formatTable, formatTable, formatJSON, formatYAML)
}

func openLayered(cmd *cobra.Command) (*config.Layered, error) {
	dir, _ := cmd.Flags().GetString("dir")
	return config.Open(dir)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	layered, err := openLayered(cmd)
	if err != nil {
		return err
	}

	value, layer, found, err := layered.Resolve(args[0])
	if err != nil {
		return err
	}
	if !found {
		return errors.NewValidationError(errors.ErrCodeValidationFailed, "key "+args[0]+" is not set").
			WithHint("known keys: " + strings.Join(config.KnownKeys, ", "))
	}

	out := cmd.OutOrStdout()
	showLayer, _ := cmd.Flags().GetBool("layer")
	if showLayer {
		fmt.Fprintf(out, "%s\t(%s)\n", cast.ToString(value), layer)
		return nil
	}
	fmt.Fprintln(out, cast.ToString(value))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	layered, err := openLayered(cmd)
	if err != nil {
		return err
	}

	entries := []configEntry{}
	for _, key := range layered.Keys() {
		value, layer, found, err := layered.Resolve(key)
		if err != nil {
			return err
		}
		if found {
			entries = append(entries, configEntry{Key: key, Value: value, Layer: layer})
		}
	}

	out := cmd.OutOrStdout()
	if f := configShowFormat.String(); f != formatTable {
		return writeStructured(out, f, entries)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tLAYER")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, cast.ToString(e.Value), e.Layer)
	}
	return tw.Flush()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	layered, err := openLayered(cmd)
	if err != nil {
		return err
	}

	key := strings.ToLower(args[0])
	var value interface{} = args[1]
	if boolKeys[key] {
		b, err := cast.ToBoolE(args[1])
		if err != nil {
			return errors.NewValidationError(errors.ErrCodeValidationFailed, key+" expects true or false")
		}
		value = b
	}

	if err := layered.Set(key, value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %v (%s)\n", key, value, layered.User().Path())
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	layered, err := openLayered(cmd)
	if err != nil {
		return err
	}

	result := config.ValidateLayers(layered)
	out := cmd.OutOrStdout()
	if !result.HasErrors() && !result.HasWarnings() {
		fmt.Fprintln(out, "configuration ok")
		return nil
	}
	fmt.Fprint(out, result.String())
	if !result.Valid {
		return errors.NewConfigStructureError(result.Errors[0].Field,
			fmt.Sprintf("%d configuration errors", len(result.Errors)))
	}
	return nil
}
