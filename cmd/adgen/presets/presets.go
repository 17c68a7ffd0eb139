// Package presetscmder provides the presets command listing canvas sizes.
package presetscmder

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/adgenius/adgen/pkg/cliui"
	"github.com/adgenius/adgen/pkg/layout"
)

const presetsLongDesc string = `List the canvas size presets.

Preset ids can be passed to "adgen reflow --preset" and to the API when
creating or resizing a session.`

const presetsShortDesc string = "List canvas size presets"

func NewPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: presetsShortDesc,
		Long:  presetsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout())
		},
	}

	return cmd
}

func run(w io.Writer) error {
	rows := make([][]string, 0, len(layout.Presets))
	for _, p := range layout.Presets {
		rows = append(rows, []string{
			p.ID,
			p.Label,
			p.Platform,
			strconv.Itoa(p.Width) + "×" + strconv.Itoa(p.Height),
			string(layout.ClassifyAspect(p.Width, p.Height)),
		})
	}

	_, err := fmt.Fprintln(w, cliui.Table([]string{"ID", "Name", "Platform", "Size", "Layout"}, rows))
	return err
}
