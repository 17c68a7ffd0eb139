// Package reflowcmder provides the reflow command that resizes a saved
// document to a new canvas size.
package reflowcmder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/layout"
)

type reflowCommander struct {
	preset string
	width  int
	height int
	output string
}

const reflowLongDesc string = `Resize a document to a new canvas size.

Every element is repositioned into the layout zone its role belongs to on
the new canvas: logos near the top, headlines and call-to-actions below the
product, backgrounds stretched to fill. The result is written as JSON to
--output, or to stdout.

Examples:
  adgen reflow ad.json --preset 9:16 -o story.json
  adgen reflow ad.json --width 1200 --height 628`

const reflowShortDesc string = "Resize a document to a new canvas size"

func NewReflowCmd() *cobra.Command {
	cmder := &reflowCommander{}

	cmd := &cobra.Command{
		Use:   "reflow <document.json>",
		Short: reflowShortDesc,
		Long:  reflowLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&cmder.preset, "preset", "p", "", "Preset id to resize to (see adgen presets)")
	cmd.Flags().IntVar(&cmder.width, "width", 0, "New canvas width")
	cmd.Flags().IntVar(&cmder.height, "height", 0, "New canvas height")
	cmd.Flags().StringVarP(&cmder.output, "output", "o", "", "Write the result to this file instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("preset", "width")
	cmd.MarkFlagsMutuallyExclusive("preset", "height")

	return cmd
}

func (c *reflowCommander) run(path string, stdout io.Writer) error {
	width, height, err := c.size()
	if err != nil {
		return err
	}

	doc, err := ReadDocument(path)
	if err != nil {
		return err
	}

	out, err := layout.Reflow(doc, width, height)
	if err != nil {
		return err
	}

	data, err := EncodeDocument(out)
	if err != nil {
		return err
	}

	if c.output == "" {
		_, err = stdout.Write(data)
		return err
	}
	return os.WriteFile(c.output, data, 0o644)
}

func (c *reflowCommander) size() (int, int, error) {
	if c.preset != "" {
		p, ok := layout.LookupPreset(c.preset)
		if !ok {
			return 0, 0, fmt.Errorf("unknown preset: %q", c.preset)
		}
		return p.Width, p.Height, nil
	}
	if c.width == 0 && c.height == 0 {
		return 0, 0, errors.New("one of --preset or --width/--height is required")
	}
	return c.width, c.height, nil
}

// ReadDocument loads a document snapshot from a JSON file.
func ReadDocument(path string) (*canvas.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	doc, err := canvas.Unmarshal(canvas.Snapshot(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// EncodeDocument serializes doc as indented JSON.
func EncodeDocument(doc *canvas.Document) ([]byte, error) {
	snap, err := doc.Marshal()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, snap, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
