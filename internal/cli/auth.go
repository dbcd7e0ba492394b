package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/componentscope/pkg/errors"
	"github.com/matzehuels/componentscope/pkg/integrations/figma"
	"github.com/matzehuels/componentscope/pkg/session"
)

// tokenSettingsURL is where personal access tokens are created.
const tokenSettingsURL = "https://www.figma.com/settings"

// verifyTimeout bounds the token check against the API.
const verifyTimeout = 30 * time.Second

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored API token",
		Long: `Store a personal access token so analyze and canvases work without
FIGMA_API_TOKEN. The token is kept in <user config dir>/componentscope/sessions/
with owner-only permissions. FIGMA_API_TOKEN, when set, takes precedence.`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authStatusCommand())

	return cmd
}

func (c *CLI) authLoginCommand() *cobra.Command {
	var token string
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify and store a personal access token",
		Long: `Verify a personal access token against the API and store it.

Without --token the token settings page is opened and the token is read
from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := newPrinter(cmd.OutOrStdout())
			if existing, _ := c.loadSession(ctx); existing != nil {
				p.info("Already logged in as %s", existing.Handle())
				p.detail("Run '%s auth logout' first to store a different token", appName)
				return nil
			}

			if token == "" {
				if !noBrowser {
					if err := openBrowser(tokenSettingsURL); err == nil {
						p.detail("Opening browser...")
					}
				}
				p.keyValue("Create one at", StyleLink.Render(tokenSettingsURL))
				t, err := readToken(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				token = t
			}

			sess, err := c.login(ctx, token)
			if err != nil {
				return err
			}
			p.success("Logged in as %s", sess.Handle())
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "personal access token (read from stdin when empty)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open the token settings page")
	return cmd
}

func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.NewCLIStore(c.sessionDir)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if err := store.DeleteSession(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			newPrinter(cmd.OutOrStdout()).success("Logged out")
			return nil
		},
	}
}

func (c *CLI) authStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the account the stored token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.loadSession(ctx)
			if err != nil {
				return err
			}
			if sess == nil {
				return fmt.Errorf("not logged in (run '%s auth login' first)", appName)
			}

			ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Verifying token...")
			spinner.Start()
			user, err := figma.NewClient(sess.Token, c.Config.Figma.BaseURL, nil).FetchMe(ctx)
			if err != nil {
				spinner.StopWithError("Token invalid")
				return fmt.Errorf("verify token: %w", err)
			}
			spinner.Stop()

			p := newPrinter(cmd.OutOrStdout())
			p.success("Figma Session")
			p.keyValue("Handle", user.Handle)
			if user.Email != "" {
				p.keyValue("Email", user.Email)
			}
			p.keyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			if !sess.ExpiresAt.IsZero() {
				p.keyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			}
			if c.Config.Figma.Token != "" {
				p.detail("%s is set and overrides the stored token", "FIGMA_API_TOKEN")
			}
			return nil
		},
	}
}

// =============================================================================
// Session Management
// =============================================================================

func (c *CLI) loadSession(ctx context.Context) (*session.Session, error) {
	store, err := session.NewCLIStore(c.sessionDir)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	sess, err := store.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// login verifies token against the API and stores it. Tokens carry their
// own expiry on the server, so the session does not expire locally.
func (c *CLI) login(ctx context.Context, token string) (*session.Session, error) {
	if err := apperrors.ValidateToken(token); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	spinner := newSpinnerWithContext(ctx, "Verifying token...")
	spinner.Start()
	user, err := figma.NewClient(token, c.Config.Figma.BaseURL, nil).FetchMe(ctx)
	spinner.Stop()
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}

	store, err := session.NewCLIStore(c.sessionDir)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	sess, err := session.New(token, user, 0)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// readToken prompts on w and reads one line from r.
func readToken(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, StyleDim.Render("Token: "))
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func openBrowser(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
