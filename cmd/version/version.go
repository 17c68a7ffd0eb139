// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/adgenius/adgen/pkg/cliui"
	"github.com/adgenius/adgen/pkg/utils"
)

type VersionCommander struct {
	short bool
}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display the adgen version",
		Long:  "Display the version, commit and build time of the adgen binary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&cmder.short, "short", false, "Print only the version number")

	return cmd
}

func (c *VersionCommander) run(w io.Writer) error {
	if c.short {
		fmt.Fprintln(w, utils.Version)
		return nil
	}

	for _, kv := range [][2]string{
		{"Version:", utils.Version},
		{"Sha:", utils.Sha},
		{"Built at:", utils.Buildtime},
		{"Go:", runtime.Version()},
	} {
		fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-9s", kv[0])), cliui.ValueStyle.Render(kv[1]))
	}
	return nil
}
