package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/rentnest/internal/models"
)

func searchCmd() *cobra.Command {
	var f models.Filter
	var types, furnishing []string
	var tenant, sort string
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search active listings",
		Long:  "Search active listings. Without text or filters this browses the newest listings.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Query = strings.Join(args, " ")
			for _, t := range types {
				f.Types = append(f.Types, models.PropertyType(t))
			}
			for _, fu := range furnishing {
				f.Furnishing = append(f.Furnishing, models.Furnishing(fu))
			}
			f.TenantPreference = models.TenantPreference(tenant)
			f.Sort = models.SortOrder(sort)

			ctx, cancel := requestContext(cmd)
			defer cancel()
			page, err := api.Search(ctx, f)
			if err != nil {
				return err
			}
			out.PropertyPage(page)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.City, "city", "", "city")
	fl.StringVar(&f.Locality, "locality", "", "locality or neighbourhood")
	fl.Int64Var(&f.MinRent, "min-rent", 0, "minimum monthly rent")
	fl.Int64Var(&f.MaxRent, "max-rent", 0, "maximum monthly rent")
	fl.IntSliceVar(&f.BHK, "bhk", nil, "bedroom counts, e.g. --bhk 2,3")
	fl.StringSliceVar(&types, "type", nil, "apartment, house, villa, studio or pg")
	fl.StringSliceVar(&furnishing, "furnishing", nil, "furnished, semi-furnished or unfurnished")
	fl.StringVar(&tenant, "tenants", "", "family, bachelors or any")
	fl.StringSliceVar(&f.Amenities, "amenity", nil, "required amenities")
	fl.StringVar(&sort, "sort", "", "newest, rent_asc, rent_desc or popular")
	fl.IntVar(&f.Page, "page", 1, "page number")
	fl.IntVar(&f.PageSize, "page-size", 0, "results per page")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [listing-id]",
		Short: "Show one listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			p, err := api.Property(ctx, args[0])
			if err != nil {
				return err
			}
			out.PropertyDetail(p)
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List your recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			entries, err := api.RecentSearches(ctx)
			if err != nil {
				return err
			}
			out.Searches(entries)
			return nil
		},
	}
}

func postCmd() *cobra.Command {
	var p models.Property
	var kind, furnishing, tenant, available string
	cmd := &cobra.Command{
		Use:   "post [title]",
		Short: "Post a new listing (landlords)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Title = args[0]
			p.Type = models.PropertyType(kind)
			p.Furnishing = models.Furnishing(furnishing)
			p.TenantPreference = models.TenantPreference(tenant)
			if available != "" {
				t, err := time.Parse(time.DateOnly, available)
				if err != nil {
					return fmt.Errorf("--available wants YYYY-MM-DD: %w", err)
				}
				p.AvailableFrom = t
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			created, err := api.Post(ctx, p)
			if err != nil {
				return err
			}
			out.Message("Posted %s.", created.ID)
			out.PropertyDetail(created)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&p.Description, "description", "", "description (markdown)")
	fl.StringVar(&kind, "type", string(models.TypeApartment), "apartment, house, villa, studio or pg")
	fl.IntVar(&p.BHK, "bhk", 1, "bedrooms")
	fl.Int64Var(&p.Rent, "rent", 0, "monthly rent")
	fl.Int64Var(&p.Deposit, "deposit", 0, "security deposit")
	fl.IntVar(&p.AreaSqft, "area", 0, "carpet area in sqft")
	fl.StringVar(&furnishing, "furnishing", string(models.Unfurnished), "furnished, semi-furnished or unfurnished")
	fl.StringVar(&tenant, "tenants", string(models.TenantAny), "family, bachelors or any")
	fl.StringVar(&p.City, "city", "", "city")
	fl.StringVar(&p.Locality, "locality", "", "locality")
	fl.StringVar(&p.Address, "address", "", "street address")
	fl.StringSliceVar(&p.Amenities, "amenity", nil, "amenities, repeatable")
	fl.StringVar(&available, "available", "", "available from (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("rent")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "status [listing-id] [active|rented|inactive]",
		Short:     "Change a listing's status",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"active", "rented", "inactive"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			p, err := api.SetStatus(ctx, args[0], models.PropertyStatus(args[1]))
			if err != nil {
				return err
			}
			out.PropertyLine(p)
			return nil
		},
	}
}

func mineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your own listings in every status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			page, err := api.MyListings(ctx)
			if err != nil {
				return err
			}
			out.PropertyPage(page)
			return nil
		},
	}
}

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload [listing-id] [image-file]",
		Short: "Attach a JPEG, PNG or WebP photo to a listing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			img, err := api.UploadImage(ctx, args[0], data)
			if err != nil {
				return err
			}
			out.Message("Uploaded %s (%s, %d bytes).", img.ID, img.ContentType, img.Size)
			return nil
		},
	}
}
