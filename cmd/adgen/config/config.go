// Package configcmder provides the config command for managing persistent
// adgen configuration stored in the .adgen/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adgenius/adgen/pkg/cliui"
	"github.com/adgenius/adgen/pkg/config"
)

const configLongDesc string = `Manage persistent adgen configuration.

Configuration is stored as config.toml in the .adgen/ directory and provides
default values for command flags. CLI flags and ADGEN_* environment variables
always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  api.listen, client.api_target,
  llm.provider, llm.model, llm.base_url,
  editor.history_capacity, editor.autosave_interval,
  editor.image_workers, editor.gesture_coalescing,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  ratelimit.chat_per_minute

Examples:
  adgen config set llm.provider anthropic
  adgen config set editor.autosave_interval 30s
  adgen config get llm.provider
  adgen config list`

const configShortDesc string = "Manage persistent adgen configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func validateKey(key string) error {
	if config.IsValidConfigKey(key) {
		return nil
	}
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

// openConfig resolves the config file and prints which one is in use.
func openConfig(w io.Writer, configDir string) (*config.Configer, error) {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
	return cfger, nil
}
