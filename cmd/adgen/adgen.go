// Package adgencmder
package adgencmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/adgenius/adgen/cmd/adgen/auth"
	chatcmder "github.com/adgenius/adgen/cmd/adgen/chat"
	configcmder "github.com/adgenius/adgen/cmd/adgen/config"
	eventscmder "github.com/adgenius/adgen/cmd/adgen/events"
	presetscmder "github.com/adgenius/adgen/cmd/adgen/presets"
	reflowcmder "github.com/adgenius/adgen/cmd/adgen/reflow"
	rendercmder "github.com/adgenius/adgen/cmd/adgen/render"
	servecmder "github.com/adgenius/adgen/cmd/adgen/serve"
	versioncmder "github.com/adgenius/adgen/cmd/version"
)

const adgenLongDesc string = `adgen is an ad creative editor with an AI design assistant.

Run the editing server, resize and render documents, or chat with the
assistant about a design:
  adgen serve                       Run the API and MCP server
  adgen chat                        Chat with the design assistant
  adgen events                      Follow live document changes
  adgen reflow ad.json --preset 9:16
  adgen render ad.json -o ad.svg --watch`

const adgenShortDesc string = "adgen - AI ad creative editor"

func NewAdgenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "adgen",
		Short:         adgenShortDesc,
		Long:          adgenLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .adgen/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(eventscmder.NewEventsCmd())
	cmd.AddCommand(reflowcmder.NewReflowCmd())
	cmd.AddCommand(rendercmder.NewRenderCmd())
	cmd.AddCommand(presetscmder.NewPresetsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
