// Package authcmder provides the auth command for storing chat model API
// keys.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/adgenius/adgen/pkg/cliui"
	"github.com/adgenius/adgen/pkg/credentials"
)

const authLongDesc string = `Store API keys for the chat model providers.

Keys are stored in credentials.toml in the .adgen/ directory and used by
"adgen serve" when the provider's environment variable is not set.

Supported providers: anthropic, openai

Examples:
  adgen auth anthropic              Prompt for an Anthropic API key
  adgen auth --list                 List stored keys
  adgen auth --remove openai        Remove the stored OpenAI key
  echo $KEY | adgen auth openai     Read the key from stdin`

const authShortDesc string = "Store chat model API keys"

type authCommander struct {
	list      bool
	remove    string
	configDir string

	in  io.Reader
	out io.Writer
}

func NewAuthCmd() *cobra.Command {
	cmder := &authCommander{}

	cmd := &cobra.Command{
		Use:   "auth [provider]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()

			mgr, err := credentials.NewManager(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading credentials: %w", err)
			}

			switch {
			case cmder.list:
				return cmder.runList(mgr)
			case cmder.remove != "":
				return cmder.runRemove(mgr, cmder.remove)
			case len(args) == 0:
				return fmt.Errorf("provider argument required\n\nSupported providers: %s",
					strings.Join(credentials.SupportedProviders(), ", "))
			default:
				return cmder.runAuth(mgr, args[0])
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedProviders(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&cmder.list, "list", false, "List stored keys")
	cmd.Flags().StringVar(&cmder.remove, "remove", "", "Remove the stored key for a provider")
	cmd.MarkFlagsMutuallyExclusive("list", "remove")

	return cmd
}

func (c *authCommander) runAuth(mgr *credentials.Manager, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !credentials.IsSupportedProvider(provider) {
		return fmt.Errorf("unsupported provider: %q\n\nSupported providers: %s",
			provider, strings.Join(credentials.SupportedProviders(), ", "))
	}

	key, err := c.readAPIKey(provider)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key cannot be empty")
	}

	if err := mgr.SetKey(provider, key); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Stored %s key %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(provider),
		cliui.DimStyle.Render("("+credentials.EnvVarForProvider(provider)+" still takes precedence)"),
	)
	return nil
}

func (c *authCommander) runList(mgr *credentials.Manager) error {
	providers, err := mgr.ListProviders()
	if err != nil {
		return err
	}

	if len(providers) == 0 {
		fmt.Fprintf(c.out, "\n  %s No stored keys.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(c.out, "  Use 'adgen auth <provider>' to store one. Supported providers: %s\n\n",
			strings.Join(credentials.SupportedProviders(), ", "))
		return nil
	}

	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Stored keys"))
	for _, p := range providers {
		_, source, err := mgr.Lookup(p)
		if err != nil {
			return err
		}
		note := ""
		if source == credentials.SourceEnv {
			note = cliui.DimStyle.Render("(overridden by " + credentials.EnvVarForProvider(p) + ")")
		}
		fmt.Fprintf(c.out, "  %s  %s  %s\n", cliui.SuccessMark, cliui.NameStyle.Render(p), note)
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *authCommander) runRemove(mgr *credentials.Manager, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if err := mgr.RemoveKey(provider); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\n  %s Removed %s key.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(provider))
	return nil
}

// readAPIKey prompts with hidden input on a terminal and otherwise reads
// the first line of input.
func (c *authCommander) readAPIKey(provider string) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(c.out, "Enter API key for %s (%s): ", provider, credentials.EnvVarForProvider(provider))
		key, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return string(key), nil
	}

	scanner := bufio.NewScanner(c.in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
