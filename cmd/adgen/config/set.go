package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adgenius/adgen/pkg/cliui"
)

const setLongDesc string = `Set a configuration value.

Sets the given key in the config.toml file stored in the .adgen/ directory,
creating the file if needed. Numeric, duration and boolean keys are
validated before anything is written.

Examples:
  adgen config set storage.provider sqlite
  adgen config set eventstream.brokers localhost:9092,localhost:9093
  adgen config set editor.gesture_coalescing false`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd.OutOrStdout(), args[0], args[1], configDir)
		},
		ValidArgsFunction: completeKeys,
	}
}

func runSet(w io.Writer, key, value, configDir string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	cfger, err := openConfig(w, configDir)
	if err != nil {
		return err
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}
