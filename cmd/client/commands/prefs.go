package commands

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/rentnest/internal/ui"
	"github.com/harrylevesque/rentnest/internal/utils"
)

func themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|system]",
		Short:     "Show or set the colour theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "system"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				out.Message("Theme: %s", saved.Theme)
				return nil
			}
			t, err := store.SetTheme(args[0])
			if err != nil {
				return err
			}
			out = ui.NewPrinter(cmd.OutOrStdout(), ui.ForTheme(t))
			out.Message("Theme set to %s.", t)
			return nil
		},
	}
}

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [url]",
		Short: "Show or set the server URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				out.Message("Server: %s", api.Base)
				return nil
			}
			u, err := url.Parse(args[0])
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return utils.Invalid("server URL must be http(s)://host[:port], got %q", args[0])
			}
			if err := store.SetServerURL(args[0]); err != nil {
				return err
			}
			out.Message("Server set to %s.", args[0])
			return nil
		},
	}
}
