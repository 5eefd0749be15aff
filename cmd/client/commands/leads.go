package commands

import (
	"github.com/spf13/cobra"

	"github.com/harrylevesque/rentnest/internal/models"
)

func enquireCmd() *cobra.Command {
	var req models.LeadRequest
	cmd := &cobra.Command{
		Use:   "enquire [listing-id]",
		Short: "Contact the landlord of a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			l, err := api.CreateLead(ctx, args[0], req)
			if err != nil {
				return err
			}
			out.Message("Enquiry %s sent.", l.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Message, "message", "m", "", "message for the landlord")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "contact phone (defaults to your profile phone)")
	return cmd
}

func leadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leads",
		Short: "List enquiries you have sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			leads, err := api.SentLeads(ctx)
			if err != nil {
				return err
			}
			out.Leads(leads)
			return nil
		},
	}
}

func inboxCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List enquiries on your listings (landlords)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			leads, err := api.Inbox(ctx, models.LeadStatus(status))
			if err != nil {
				return err
			}
			out.Leads(leads)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only new, contacted or closed leads")
	return cmd
}

func leadStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "lead-status [lead-id] [contacted|closed]",
		Short:     "Move a lead along new, contacted, closed",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"contacted", "closed"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			l, err := api.UpdateLeadStatus(ctx, args[0], models.LeadStatus(args[1]))
			if err != nil {
				return err
			}
			out.Leads([]models.Lead{*l})
			return nil
		},
	}
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarise your listings and leads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			d, err := api.Dashboard(ctx)
			if err != nil {
				return err
			}
			out.Dashboard(d)
			return nil
		},
	}
}
