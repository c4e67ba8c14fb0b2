// ABOUTME: Register, login and logout commands
// ABOUTME: Validate credentials locally, then store the returned session

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/validate"
)

var (
	authName          string
	authEmail         string
	authPassword      string
	authPasswordStdin bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create a SchAIdule account and log in with it.

Example:
  schaidule register --name "Ada Lovelace" --email ada@example.edu --password-stdin`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		password, err := readPassword(cmd.InOrStdin())
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(1)
		}
		input := &client.RegisterInput{Name: authName, Email: authEmail, Password: password}
		if exitCode := runRegister(ctx, os.Stdout, input); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	Long: `Log in to SchAIdule. The session is saved so later commands are authenticated.

Example:
  echo "$PASSWORD" | schaidule login --email ada@example.edu --password-stdin`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		password, err := readPassword(cmd.InOrStdin())
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(1)
		}
		input := &client.LoginInput{Email: authEmail, Password: password}
		if exitCode := runLogin(ctx, os.Stdout, input); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		if exitCode := runLogout(os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (prefer --password-stdin)")
		c.Flags().BoolVar(&authPasswordStdin, "password-stdin", false, "Read the password from stdin")
	}
	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd)
}

// readPassword returns the --password flag or the first line of r
func readPassword(r io.Reader) (string, error) {
	if !authPasswordStdin {
		return authPassword, nil
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// runRegister creates the account and returns exit code
func runRegister(ctx context.Context, w io.Writer, input *client.RegisterInput) int {
	if err := validate.Struct(input); err != nil {
		return failure(w, fmt.Errorf("%w: %v", errValidation, err), "")
	}

	a, err := openApp()
	if err != nil {
		return failure(w, err, "")
	}
	defer a.Close()

	resp, err := a.api.Register(ctx, input)
	if err != nil {
		return failure(w, err, "Registration failed")
	}
	if err := a.session.Login(&resp.User, resp.AccessToken); err != nil {
		return failure(w, err, "")
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]interface{}{"registered": true, "user": resp.User})
	} else {
		fmt.Fprintf(w, "Account created. Logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
		fmt.Fprintln(w, "Next: add completed courses with 'schaidule profile add-course'")
	}
	return 0
}

// runLogin authenticates and returns exit code
func runLogin(ctx context.Context, w io.Writer, input *client.LoginInput) int {
	if err := validate.Struct(input); err != nil {
		return failure(w, fmt.Errorf("%w: %v", errValidation, err), "")
	}

	a, err := openApp()
	if err != nil {
		return failure(w, err, "")
	}
	defer a.Close()

	resp, err := a.api.Login(ctx, input)
	if err != nil {
		return failure(w, err, "Login failed")
	}
	if err := a.session.Login(&resp.User, resp.AccessToken); err != nil {
		return failure(w, err, "")
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]interface{}{"logged_in": true, "user": resp.User})
	} else {
		fmt.Fprintf(w, "Logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
		fmt.Fprintln(w, "Next: generate a schedule with 'schaidule schedule'")
	}
	return 0
}

// runLogout clears the saved session and returns exit code
func runLogout(w io.Writer) int {
	a, err := openApp()
	if err != nil {
		return failure(w, err, "")
	}
	defer a.Close()

	wasLoggedIn := a.session.LoggedIn()
	if err := a.session.Logout(); err != nil {
		return failure(w, err, "")
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]bool{"logged_out": true})
	} else if wasLoggedIn {
		fmt.Fprintln(w, "Logged out")
	} else {
		fmt.Fprintln(w, "Not logged in")
	}
	return 0
}
