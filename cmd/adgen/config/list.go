package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adgenius/adgen/pkg/cliui"
	"github.com/adgenius/adgen/pkg/config"
)

const listLongDesc string = `List all configuration values.

Displays every configuration key with its value from the config.toml file
stored in the .adgen/ directory.

Examples:
  adgen config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(cmd.OutOrStdout(), configDir)
		},
	}
}

func runList(w io.Writer, configDir string) error {
	cfger, err := openConfig(w, configDir)
	if err != nil {
		return err
	}

	keys := config.ValidConfigKeys()
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}
		if value == "" {
			value = "<not set>"
		}
		rows = append(rows, []string{key, value})
	}

	fmt.Fprintln(w, cliui.Table([]string{"Key", "Value"}, rows))
	return nil
}
