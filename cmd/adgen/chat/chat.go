// Package chatcmder provides the chat command for talking to the adgen
// design assistant about a live editing session.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adgenius/adgen/api"
	"github.com/adgenius/adgen/pkg/chat"
	"github.com/adgenius/adgen/pkg/cliui"
	"github.com/adgenius/adgen/pkg/config"
	"github.com/adgenius/adgen/pkg/dotdir"
	"github.com/adgenius/adgen/pkg/utils"
)

var (
	userPrompt      = cliui.NameStyle.Render("you> ")
	assistantPrompt = cliui.DimStyle.Render("adgen> ")
)

type chatCommander struct {
	apiTarget string
	preset    string
	brand     string
	platform  string
	fresh     bool
	dryRun    bool
	configDir string

	client *apiClient
	dotdir *dotdir.Manager
	state  *dotdir.ChatState

	in  io.Reader
	out io.Writer
}

const chatLongDesc string = `Chat with the adgen design assistant about an ad.

The chat command opens an editing session on a running adgen server (see
"adgen serve") and sends each message to the assistant together with a
summary of the current design. Changes the assistant suggests are applied
to the session right away.

The session and conversation are remembered in .adgen/chat.json, so running
"adgen chat" again resumes where you left off. If the server restarted, the
session is restored from its last autosave. Use --new to start over.

Commands inside the chat:
  /undo     Undo the last change
  /redo     Redo the last undone change
  /check    Run the brand compliance check
  /new      Start a new session
  /exit     Quit (or Ctrl+D)

Examples:
  adgen chat
  adgen chat --preset 9:16 --brand Aldi --platform TikTok
  adgen chat --api-target http://localhost:9000 --new`

const chatShortDesc string = "Chat with the design assistant"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
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
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().StringVarP(&cmder.preset, "preset", "p", "", "Canvas preset for a new session (see adgen presets)")
	cmd.Flags().StringVarP(&cmder.brand, "brand", "b", "", "Brand the ad is for (default: Tesco)")
	cmd.Flags().StringVar(&cmder.platform, "platform", "", "Platform the ad is for (default: Instagram)")
	cmd.Flags().BoolVar(&cmder.fresh, "new", false, "Start a new session instead of resuming")
	cmd.Flags().BoolVar(&cmder.dryRun, "dry-run", false, "Show suggested changes without applying them")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.client = newAPIClient(c.apiTarget)
	c.dotdir = dotdir.NewManager()

	state, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	c.state = state

	fmt.Fprintf(c.out, "  %s %s\n",
		cliui.KeyStyle.Render("Session:"),
		cliui.NameStyle.Render(utils.Truncate(state.SessionID, 16)),
	)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := c.command(ctx, input)
			if err != nil {
				fmt.Fprintf(c.out, "  %s %v\n", cliui.FailMark, err)
			}
			if quit {
				break
			}
			continue
		}

		if err := c.send(ctx, input); err != nil {
			fmt.Fprintf(c.out, "  %s %v\n", cliui.FailMark, err)
		}
	}

	fmt.Fprintln(c.out)
	return scanner.Err()
}

// openSession resumes the remembered session when possible, restoring it
// from its autosave when the server no longer has it, and otherwise starts
// a new one.
func (c *chatCommander) openSession(ctx context.Context) (*dotdir.ChatState, error) {
	var prev *dotdir.ChatState
	if !c.fresh {
		var err error
		prev, err = c.dotdir.LoadChatState(c.configDir)
		if err != nil {
			return nil, fmt.Errorf("loading chat state: %w", err)
		}
	}

	if prev != nil && prev.APITarget == c.apiTarget {
		if _, err := c.client.getSession(ctx, prev.SessionID); err == nil {
			fmt.Fprintf(c.out, "\n  %s Resuming conversation %s\n", cliui.SuccessMark,
				cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(prev.Messages))))
			return c.withFlags(prev), nil
		} else if !isNotFound(err) {
			return nil, err
		}

		sess, err := c.client.createSession(ctx, api.CreateSessionRequest{Restore: prev.SessionID})
		if err == nil {
			fmt.Fprintf(c.out, "\n  %s Restored session from autosave\n", cliui.SuccessMark)
			prev.SessionID = sess.ID
			return c.withFlags(prev), c.save(prev)
		}
		if !isNotFound(err) {
			return nil, err
		}
		fmt.Fprintf(c.out, "\n  %s Previous session is gone, starting a new one\n", cliui.WarnMark)
	}

	return c.newSession(ctx)
}

func (c *chatCommander) newSession(ctx context.Context) (*dotdir.ChatState, error) {
	sess, err := c.client.createSession(ctx, api.CreateSessionRequest{Preset: c.preset})
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	if sess.Document != nil {
		fmt.Fprintf(c.out, "\n  %s New %d×%d design\n", cliui.SuccessMark, sess.Document.Width, sess.Document.Height)
	}
	state := c.withFlags(&dotdir.ChatState{
		SessionID: sess.ID,
		APITarget: c.apiTarget,
	})
	return state, c.save(state)
}

// withFlags lets --brand and --platform override the remembered values.
func (c *chatCommander) withFlags(s *dotdir.ChatState) *dotdir.ChatState {
	if c.brand != "" {
		s.Brand = c.brand
	}
	if c.platform != "" {
		s.Platform = c.platform
	}
	return s
}

func (c *chatCommander) save(s *dotdir.ChatState) error {
	if err := c.dotdir.SaveChatState(s, c.configDir); err != nil {
		return fmt.Errorf("saving chat state: %w", err)
	}
	return nil
}

func (c *chatCommander) send(ctx context.Context, message string) error {
	history := make([]chat.Turn, 0, len(c.state.Messages))
	for _, m := range c.state.Messages {
		history = append(history, chat.Turn{Role: m.Role, Content: m.Content})
	}

	var resp *api.ChatResponse
	err := cliui.Step(c.out, "Thinking", func() error {
		var err error
		resp, err = c.client.chat(ctx, c.state.SessionID, api.ChatRequest{
			Message:  message,
			Brand:    c.state.Brand,
			Platform: c.state.Platform,
			History:  history,
			DryRun:   c.dryRun,
		})
		return err
	})
	if err != nil {
		return err
	}

	rendered, err := cliui.RenderMarkdown(resp.Reply)
	if err != nil {
		rendered = resp.Reply + "\n"
	}
	fmt.Fprintf(c.out, "%s\n%s", assistantPrompt, rendered)

	switch {
	case c.dryRun && len(resp.Actions) > 0:
		fmt.Fprintf(c.out, "  %s %d suggested change(s) not applied (dry run)\n", cliui.WarnMark, len(resp.Actions))
	case resp.Applied > 0:
		fmt.Fprintf(c.out, "  %s Applied %d change(s)\n", cliui.SuccessMark, resp.Applied)
	}
	if resp.Ignored > 0 {
		fmt.Fprintf(c.out, "  %s %d change(s) matched nothing in the design\n", cliui.WarnMark, resp.Ignored)
	}
	fmt.Fprintln(c.out)

	c.state.Messages = append(c.state.Messages,
		dotdir.ChatMessage{Role: chat.RoleUser, Content: message},
		dotdir.ChatMessage{Role: chat.RoleAssistant, Content: resp.Reply},
	)
	return c.save(c.state)
}

// command runs a slash command and reports whether the chat should end.
func (c *chatCommander) command(ctx context.Context, input string) (bool, error) {
	switch input {
	case "/exit", "/quit":
		return true, nil

	case "/undo", "/redo":
		step := strings.TrimPrefix(input, "/")
		resp, err := c.client.history(ctx, c.state.SessionID, step)
		if err != nil {
			return false, err
		}
		if !resp.Changed {
			fmt.Fprintf(c.out, "  %s Nothing to %s\n\n", cliui.WarnMark, step)
			return false, nil
		}
		fmt.Fprintf(c.out, "  %s %s %s\n\n", cliui.SuccessMark, step,
			cliui.DimStyle.Render(fmt.Sprintf("(%d undo, %d redo)",
				resp.Session.History.UndoDepth, resp.Session.History.RedoDepth)))
		return false, nil

	case "/check":
		res, err := c.client.compliance(ctx, c.state.SessionID, c.state.Brand)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "  %s %s %s\n", cliui.KeyStyle.Render(res.Brand+":"),
			cliui.ValueStyle.Render(string(res.Status)),
			cliui.DimStyle.Render(fmt.Sprintf("(%d/100)", res.Score)))
		for _, p := range res.Passed {
			fmt.Fprintf(c.out, "    %s %s\n", cliui.SuccessMark, p)
		}
		for _, i := range res.Issues {
			fmt.Fprintf(c.out, "    %s %s: %s\n", cliui.FailMark, i.Rule, i.Issue)
		}
		fmt.Fprintln(c.out)
		return false, nil

	case "/new":
		state, err := c.newSession(ctx)
		if err != nil {
			return false, err
		}
		c.state = state
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s", input)
	}
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}
