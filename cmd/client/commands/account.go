package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harrylevesque/rentnest/internal/models"
)

// readPassword prompts without echo on a terminal and reads a line otherwise.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func registerCmd() *cobra.Command {
	var reg models.Registration
	var role string
	cmd := &cobra.Command{
		Use:   "register [email]",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg.Email = args[0]
			reg.Role = models.Role(role)
			pw, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			reg.Password = pw

			ctx, cancel := requestContext(cmd)
			defer cancel()
			u, err := api.Register(ctx, reg)
			if err != nil {
				return err
			}
			out.Message("Registered %s as %s. Run `rentctl login %s` next.", u.Email, u.Role, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Name, "name", "", "display name")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "contact phone shared with landlords")
	cmd.Flags().StringVar(&role, "role", string(models.RoleTenant), "tenant or landlord")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			res, err := api.Login(ctx, args[0], pw)
			if err != nil {
				return err
			}
			if err := store.SetSession(api.Base, res.Token, res.User.ID, res.User.Email); err != nil {
				return err
			}
			out.Message("Signed in as %s (%s).", res.User.Name, res.User.Role)
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !saved.LoggedIn() {
				out.Message("Not signed in.")
				return nil
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			// The local session is forgotten even if the server already dropped it.
			remoteErr := api.Logout(ctx)
			if err := store.ClearSession(); err != nil {
				return err
			}
			if remoteErr != nil {
				return fmt.Errorf("signed out locally: %w", remoteErr)
			}
			out.Message("Signed out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			u, err := api.Me(ctx)
			if err != nil {
				return err
			}
			out.Message("%s <%s> %s", u.Name, u.Email, u.Role)
			return nil
		},
	}
}
