package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/shokodash/internal/api"
	"github.com/Dicklesworthstone/shokodash/internal/session"
)

type loginResult struct {
	Path     string `json:"path"`
	Username string `json:"username"`
	Device   string `json:"device"`
}

func newLoginCmd() *cobra.Command {
	var (
		user          string
		password      string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange a username and password for an API key",
		Long: `Log in to the Shoko server and store the returned API key.

The password is read from --password, from SHOKO_PASSWORD, or from the first
line of stdin (--password-stdin, or whenever no other source is given).

Examples:
  shokodash login --user admin
  echo "$PASS" | shokodash login --user admin --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				user = cfg.Server.Username
			}
			if user == "" {
				return errors.New("--user is required")
			}
			if password == "" && !passwordStdin {
				password = os.Getenv("SHOKO_PASSWORD")
			}
			if password == "" {
				line, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), passwordStdin)
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = line
			}
			return runLogin(cmd, user, password)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "username (default server.username)")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// promptPassword reads the password without echo when in is a terminal.
// Piped input and --password-stdin read one plain line.
func promptPassword(in io.Reader, prompt io.Writer, fromStdin bool) (string, error) {
	if f, ok := in.(*os.File); ok && !fromStdin && isTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := readPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return readLine(in)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmd *cobra.Command, user, password string) error {
	var device string
	if existing, err := session.Load(); err == nil {
		device = existing.Device
	}
	device = session.DeviceName(device)

	client := api.NewClient(
		api.WithBaseURL(cfg.Server.URL),
		api.WithTimeout(cfg.Server.Timeout()),
	)
	key, err := client.Login(cmd.Context(), user, password, device)
	if err != nil {
		if api.IsUnauthorized(err) {
			return fmt.Errorf("login rejected for %q: %w", user, err)
		}
		return err
	}

	path, err := session.Save(session.Credentials{APIKey: key, Username: user, Device: device})
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), loginResult{Path: path, Username: user, Device: device})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. API key saved to %s\n", user, path)
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.Delete(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stored credentials removed.")
			return nil
		},
	}
}
