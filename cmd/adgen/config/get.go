package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adgenius/adgen/pkg/cliui"
)

const getLongDesc string = `Get a configuration value.

Reads the value for the given key from the config.toml file stored in the
.adgen/ directory. Unset keys fall back to the built-in defaults at runtime.

Examples:
  adgen config get llm.provider
  adgen config get editor.history_capacity`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(cmd.OutOrStdout(), args[0], configDir)
		},
		ValidArgsFunction: completeKeys,
	}
}

func runGet(w io.Writer, key, configDir string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	cfger, err := openConfig(w, configDir)
	if err != nil {
		return err
	}

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	if value == "" {
		value = cliui.DimStyle.Render("<not set>")
	} else {
		value = cliui.ValueStyle.Render(value)
	}
	fmt.Fprintf(w, "  %s  %s\n\n", cliui.KeyStyle.Render(key), value)
	return nil
}
