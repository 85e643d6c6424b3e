package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"crowdfund-backend/internal/features/campaign/models"
)

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "List every campaign",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if _, err := store.ListAllCampaigns(ctx).Wait(ctx); err != nil {
			return err
		}
		return printJSON(store.Snapshot().AllCampaigns)
	},
}

var campaignCmd = &cobra.Command{
	Use:   "campaign <id>",
	Short: "Show one campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if _, err := store.GetCampaign(ctx, args[0]).Wait(ctx); err != nil {
			return err
		}
		return printJSON(store.Snapshot().CurrentCampaign)
	},
}

var topLimit int

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List campaigns ranked by amount raised",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		records, err := client.TopCampaigns(ctx, topLimit)
		if err != nil {
			return err
		}
		return printJSON(records)
	},
}

var ownerCmd = &cobra.Command{
	Use:   "owner <user-id>",
	Short: "List campaigns created by a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if _, err := store.ListCampaignsByOwner(ctx, args[0]).Wait(ctx); err != nil {
			return err
		}
		return printJSON(store.Snapshot().UserCampaigns)
	},
}

var donorCmd = &cobra.Command{
	Use:   "donor <user-id>",
	Short: "List campaigns a user donated to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if _, err := store.ListDonationsByDonor(ctx, args[0]).Wait(ctx); err != nil {
			return err
		}
		return printJSON(store.Snapshot().UserDonations)
	},
}

var donateCmd = &cobra.Command{
	Use:   "donate <campaign-id> <amount>",
	Short: "Donate to a campaign",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("amount must be a whole number: %w", err)
		}
		store, err := newStore()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		record, err := store.Donate(ctx, models.DonationCreate{
			DonorID:    donorID(),
			CampaignID: args[0],
			Amount:     amount,
		}).Wait(ctx)
		if err != nil {
			return err
		}
		if record == nil {
			fmt.Fprintln(os.Stderr, "campaign not found, nothing donated")
		}
		return printJSON(record)
	},
}

var form struct {
	name     string
	goal     int64
	about    string
	category string
	file     string
	start    string
	end      string
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		media, err := loadMedia(form.file)
		if err != nil {
			return err
		}
		in := models.CampaignCreate{
			OwnerID:     donorID(),
			ProjectName: form.name,
			Goal:        form.goal,
			About:       form.about,
			Category:    form.category,
			Media:       media,
		}
		if in.StartDate, err = optionalDate(form.start); err != nil {
			return err
		}
		if in.EndDate, err = optionalDate(form.end); err != nil {
			return err
		}

		store, err := newStore()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if _, err := store.CreateCampaign(ctx, in).Wait(ctx); err != nil {
			return err
		}
		return printJSON(store.Snapshot().CurrentCampaign)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <campaign-id>",
	Short: "Edit a campaign you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		media, err := loadMedia(form.file)
		if err != nil {
			return err
		}
		store, err := newStore()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		record, err := store.UpdateCampaign(ctx, models.CampaignUpdate{
			CampaignID:  args[0],
			OwnerID:     donorID(),
			ProjectName: form.name,
			About:       form.about,
			Category:    form.category,
			Media:       media,
		}).Wait(ctx)
		if err != nil {
			return err
		}
		if record == nil {
			fmt.Fprintln(os.Stderr, "campaign not found, nothing changed")
		}
		return printJSON(store.Snapshot().CurrentCampaign)
	},
}

func init() {
	topCmd.Flags().IntVar(&topLimit, "limit", 10, "Number of campaigns")

	for _, c := range []*cobra.Command{createCmd, editCmd} {
		c.Flags().StringVar(&form.name, "name", "", "Project name")
		c.Flags().StringVar(&form.about, "about", "", "Description")
		c.Flags().StringVar(&form.category, "category", "", "Category")
		c.Flags().StringVar(&form.file, "file", "", "Path of the campaign image")
		_ = c.MarkFlagRequired("name")
		_ = c.MarkFlagRequired("about")
		_ = c.MarkFlagRequired("file")
	}
	createCmd.Flags().Int64Var(&form.goal, "goal", 0, "Funding goal")
	createCmd.Flags().StringVar(&form.start, "start", "", "Start date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&form.end, "end", "", "End date (YYYY-MM-DD)")
	_ = createCmd.MarkFlagRequired("goal")
}

// donorID is the caller's id as the server will see it. The server derives
// identity from the init data; this only feeds client-side validation.
func donorID() string {
	if rawInit != "" {
		if parsed, err := initdata.Parse(rawInit); err == nil && parsed.User.ID != 0 {
			return strconv.FormatInt(parsed.User.ID, 10)
		}
	}
	if userID != 0 {
		return strconv.FormatInt(userID, 10)
	}
	return ""
}

func loadMedia(path string) (*models.MediaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &models.MediaFile{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("date %q must be YYYY-MM-DD", raw)
	}
	return &t, nil
}
