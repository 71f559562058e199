package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/blacktop/multipost/internal/config"
	"github.com/blacktop/multipost/internal/logutil"
)

func newLoginCommand() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the backend",
		Long: "Log into the content backend. The access token is stored in " +
			"~/.multipost/session and attached to every authenticated call until logout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			name, err := resolveUsername(username, out)
			if err != nil {
				return err
			}
			password, err := promptPassword(out, "Password: ")
			if err != nil {
				return err
			}

			client, _, err := buildClient()
			if err != nil {
				return err
			}
			creds, err := client.Login(cmd.Context(), name, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			if err := config.SaveSession(config.Session{Token: creds.AccessToken, Username: creds.User.Username}); err != nil {
				return err
			}
			fmt.Fprintf(out, "Logged in as %s\n", creds.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when omitted)")
	return cmd
}

func newRegisterCommand() *cobra.Command {
	var (
		username string
		email    string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log into it",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			name, err := resolveUsername(username, out)
			if err != nil {
				return err
			}
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			password, err := promptPassword(out, "Password: ")
			if err != nil {
				return err
			}

			client, _, err := buildClient()
			if err != nil {
				return err
			}
			creds, err := client.Register(cmd.Context(), name, email, password)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			if err := config.SaveSession(config.Session{Token: creds.AccessToken, Username: creds.User.Username}); err != nil {
				return err
			}
			fmt.Fprintf(out, "Registered and logged in as %s\n", creds.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when omitted)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the session and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := buildClient()
			if err != nil {
				return err
			}

			// Best effort: the local session is cleared even when the
			// backend call fails.
			if client.Token() != "" {
				if err := client.Logout(cmd.Context()); err != nil {
					logutil.Errorf("server logout failed: %v", err)
				}
			}
			if err := config.ClearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func resolveUsername(flagValue string, out io.Writer) (string, error) {
	name := strings.TrimSpace(flagValue)
	if name != "" {
		return name, nil
	}
	fmt.Fprint(out, "Username: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read username: %w", err)
	}
	name = strings.TrimSpace(line)
	if name == "" {
		return "", errors.New("username is required")
	}
	return name, nil
}

// promptPassword reads a password with terminal echo disabled, falling back
// to plain input when stdin is not a terminal.
func promptPassword(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
