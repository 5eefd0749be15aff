package commands

import (
	"github.com/spf13/cobra"
)

func listShortlist(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()
	props, err := api.Shortlist(ctx)
	if err != nil {
		return err
	}
	out.Properties(props)
	return nil
}

func shortlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shortlist",
		Aliases: []string{"sl"},
		Short:   "Show your shortlisted listings",
		Args:    cobra.NoArgs,
		RunE:    listShortlist,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "Show your shortlisted listings",
		Args:  cobra.NoArgs,
		RunE:  listShortlist,
	}, &cobra.Command{
		Use:   "add [listing-id]",
		Short: "Shortlist a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			if err := api.AddToShortlist(ctx, args[0]); err != nil {
				return err
			}
			out.Message("Shortlisted %s.", args[0])
			return nil
		},
	}, &cobra.Command{
		Use:     "rm [listing-id]",
		Aliases: []string{"remove"},
		Short:   "Remove a listing from your shortlist",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			if err := api.RemoveFromShortlist(ctx, args[0]); err != nil {
				return err
			}
			out.Message("Removed %s from your shortlist.", args[0])
			return nil
		},
	})
	return cmd
}
