// Package commands is the rentctl command tree.
package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/rentnest/internal/client"
	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/prefs"
	"github.com/harrylevesque/rentnest/internal/ui"
)

const requestTimeout = 30 * time.Second

var (
	prefsPath string
	serverURL string

	store *prefs.Store
	saved models.Preferences
	api   *client.HTTP
	out   *ui.Printer
)

func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		if out == nil {
			out = ui.NewPrinter(os.Stderr, ui.ForTheme(models.ThemeSystem))
		}
		out.Error(err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rentctl",
		Short:         "Browse, shortlist and post rental listings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if prefsPath == "" {
				p, err := prefs.DefaultPath()
				if err != nil {
					return err
				}
				prefsPath = p
			}
			store = prefs.NewStore(prefsPath)
			var err error
			saved, err = store.Load()
			if err != nil {
				return err
			}
			out = ui.NewPrinter(cmd.OutOrStdout(), ui.ForTheme(saved.Theme))

			base := saved.ServerURL
			if env := os.Getenv("RENTNEST_SERVER"); env != "" {
				base = env
			}
			if serverURL != "" {
				base = serverURL
			}
			api = client.NewHTTP(base, saved.Token, nil)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&prefsPath, "prefs", "", "preferences file (default ~/.rentnest/prefs.cbor)")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (e.g. http://127.0.0.1:8080)")

	root.AddCommand(
		registerCmd(), loginCmd(), logoutCmd(), whoamiCmd(),
		searchCmd(), showCmd(), historyCmd(),
		postCmd(), statusCmd(), mineCmd(), uploadCmd(),
		shortlistCmd(),
		enquireCmd(), leadsCmd(), inboxCmd(), leadStatusCmd(), dashboardCmd(),
		themeCmd(), serverCmd(),
	)
	return root
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}
