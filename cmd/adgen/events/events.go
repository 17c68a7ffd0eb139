// Package eventscmder provides the events command that follows a session's
// live document events.
package eventscmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adgenius/adgen/api"
	"github.com/adgenius/adgen/pkg/cliui"
	"github.com/adgenius/adgen/pkg/config"
	"github.com/adgenius/adgen/pkg/dotdir"
	"github.com/adgenius/adgen/pkg/eventstream"
	"github.com/adgenius/adgen/pkg/sse"
)

type eventsCommander struct {
	apiTarget string
	asJSON    bool
	configDir string
}

const eventsLongDesc string = `Follow the document events of an editing session.

Every change committed to the session (actions, reflows, undo and redo,
images finishing loading) is printed as it happens, until the session is
deleted or the command is interrupted. Without an argument the session of
the last "adgen chat" is followed.

Examples:
  adgen events
  adgen events 5f0c7d2e-3b7a-4d8e-9a51-0c1e2f3a4b5c --json`

const eventsShortDesc string = "Follow a session's document events"

func NewEventsCmd() *cobra.Command {
	cmder := &eventsCommander{}

	cmd := &cobra.Command{
		Use:   "events [session-id]",
		Short: eventsShortDesc,
		Long:  eventsLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagAPITarget})
			cmder.apiTarget = v.GetString("client.api_target")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return cmder.run(ctx, id, cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print raw event JSON, one per line")

	return cmd
}

func (c *eventsCommander) run(ctx context.Context, id string, w io.Writer) error {
	if id == "" {
		state, err := dotdir.NewManager().LoadChatState(c.configDir)
		if err != nil {
			return fmt.Errorf("loading chat state: %w", err)
		}
		if state == nil {
			return errors.New("no session given and no chat session to follow")
		}
		id = state.SessionID
	}

	return Follow(ctx, strings.TrimRight(c.apiTarget, "/"), id, func(ev *eventstream.DocumentEvent, raw string) {
		if c.asJSON {
			fmt.Fprintln(w, raw)
			return
		}
		fmt.Fprintln(w, Describe(ev))
	})
}

// Follow streams the events of session id from the API at base, calling fn
// for each, until the stream ends or ctx is done.
func Follow(ctx context.Context, base, id string, fn func(ev *eventstream.DocumentEvent, raw string)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/sessions/"+id+"/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connecting to %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	r := sse.NewReader(resp.Body)
	for {
		ev, err := r.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading events: %w", err)
		}
		if ev == nil {
			return nil
		}

		var doc eventstream.DocumentEvent
		if err := json.Unmarshal([]byte(ev.Data), &doc); err != nil {
			return fmt.Errorf("decoding event %s: %w", ev.ID, err)
		}
		fn(&doc, ev.Data)
	}
}

// Describe renders one event as a single terminal line.
func Describe(ev *eventstream.DocumentEvent) string {
	return fmt.Sprintf("  %s %s %s %s",
		cliui.DimStyle.Render(ev.EmittedAt.Local().Format("15:04:05")),
		cliui.NameStyle.Render(fmt.Sprintf("%-12s", ev.Operation)),
		cliui.ValueStyle.Render(fmt.Sprintf("%d×%d, %d elements", ev.Width, ev.Height, ev.ElementCount)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d undo, %d redo)", ev.UndoDepth, ev.RedoDepth)),
	)
}
