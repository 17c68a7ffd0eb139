// Package rendercmder provides the render command that turns a document
// into an SVG image, optionally re-rendering whenever the document changes.
package rendercmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	reflowcmder "github.com/adgenius/adgen/cmd/adgen/reflow"
	"github.com/adgenius/adgen/pkg/cliui"
	"github.com/adgenius/adgen/pkg/export"
)

type renderCommander struct {
	output string
	watch  bool
}

const renderLongDesc string = `Render a document as an SVG image.

With --watch the document file is watched and the SVG is rewritten every
time it changes, until interrupted.

Examples:
  adgen render ad.json -o ad.svg
  adgen render ad.json -o ad.svg --watch`

const renderShortDesc string = "Render a document as SVG"

func NewRenderCmd() *cobra.Command {
	cmder := &renderCommander{}

	cmd := &cobra.Command{
		Use:   "render <document.json>",
		Short: renderShortDesc,
		Long:  renderLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmder.watch && cmder.output == "" {
				return errors.New("--watch requires --output")
			}
			if !cmder.watch {
				return Render(args[0], cmder.output, cmd.OutOrStdout())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return Watch(ctx, args[0], cmder.output, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&cmder.output, "output", "o", "", "Write the SVG to this file instead of stdout")
	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Re-render whenever the document changes")

	return cmd
}

// Render writes the SVG of the document at path to output, or to stdout
// when output is empty.
func Render(path, output string, stdout io.Writer) error {
	doc, err := reflowcmder.ReadDocument(path)
	if err != nil {
		return err
	}

	svg, err := export.SVG(doc)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}

	if output == "" {
		_, err = io.WriteString(stdout, svg)
		return err
	}
	return os.WriteFile(output, []byte(svg), 0o644)
}

// Watch renders once and then again after every write to path until ctx
// is done. Render failures are reported to status and watching continues,
// since editors often write a file in several steps.
func Watch(ctx context.Context, path, output string, status io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating document watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching document dir: %w", err)
	}

	render := func() {
		err := Render(path, output, io.Discard)
		if err != nil {
			fmt.Fprintf(status, "  %s %v\n", cliui.FailMark, err)
			return
		}
		fmt.Fprintf(status, "  %s Rendered %s\n", cliui.SuccessMark, cliui.NameStyle.Render(output))
	}

	render()
	fmt.Fprintf(status, "  %s\n", cliui.DimStyle.Render("Watching "+path+" for changes. Ctrl+C to stop."))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			render()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("document watcher error: %w", err)
		}
	}
}
