package models

import (
	"time"

	apperrors "crowdfund-backend/internal/common/errors"
	"crowdfund-backend/internal/common/validation"
)

// MediaFile is an uploaded campaign image.
type MediaFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (m *MediaFile) validate() *apperrors.AppError {
	if m == nil {
		return apperrors.NewValidationError("file", "media file is required")
	}
	if err := validation.ValidateFileName(m.Name); err != nil {
		return apperrors.NewValidationError("file", err.Error())
	}
	if len(m.Data) == 0 {
		return apperrors.NewValidationError("file", "media file is empty")
	}
	return nil
}

// CampaignCreate is the input of a campaign submission.
type CampaignCreate struct {
	OwnerName   string
	OwnerID     string
	ProjectName string
	Goal        int64
	About       string
	Category    string
	Media       *MediaFile
	StartDate   *time.Time
	EndDate     *time.Time
}

// Validate rejects malformed input before any remote call is made. The
// timeline is checked after defaults are applied for now.
func (in *CampaignCreate) Validate(now time.Time) error {
	if err := validation.ValidateNonEmpty(in.OwnerID, "owner id"); err != nil {
		return apperrors.NewValidationError("owner_id", err.Error())
	}
	if err := validation.ValidateProjectName(in.ProjectName); err != nil {
		return apperrors.NewValidationError("project_name", err.Error())
	}
	if err := validation.ValidatePositiveInt(in.Goal, "goal"); err != nil {
		return apperrors.NewValidationError("goal", err.Error())
	}
	if err := validation.ValidateAbout(in.About); err != nil {
		return apperrors.NewValidationError("about", err.Error())
	}
	if err := validation.ValidateCategory(in.Category); err != nil {
		return apperrors.NewValidationError("category", err.Error())
	}
	if err := in.Media.validate(); err != nil {
		return err
	}
	if err := validation.ValidateTimeline(in.Timeline(now)); err != nil {
		return apperrors.NewValidationError("end_date", err.Error())
	}
	return nil
}

// Timeline resolves the start and end dates. Each missing date takes its
// own default: today for the start, one month from today for the end.
func (in *CampaignCreate) Timeline(now time.Time) (time.Time, time.Time) {
	start, end := DefaultTimeline(now)
	if in.StartDate != nil {
		start = DateOnly(*in.StartDate)
	}
	if in.EndDate != nil {
		end = DateOnly(*in.EndDate)
	}
	return start, end
}

// CampaignUpdate edits the presentational fields of a campaign.
type CampaignUpdate struct {
	CampaignID  string
	OwnerID     string
	ProjectName string
	About       string
	Category    string
	Media       *MediaFile
}

func (in *CampaignUpdate) Validate() error {
	if err := validation.ValidateNonEmpty(in.CampaignID, "campaign id"); err != nil {
		return apperrors.NewValidationError("campaign_id", err.Error())
	}
	if err := validation.ValidateNonEmpty(in.OwnerID, "owner id"); err != nil {
		return apperrors.NewValidationError("owner_id", err.Error())
	}
	if err := validation.ValidateProjectName(in.ProjectName); err != nil {
		return apperrors.NewValidationError("project_name", err.Error())
	}
	if err := validation.ValidateAbout(in.About); err != nil {
		return apperrors.NewValidationError("about", err.Error())
	}
	if err := validation.ValidateCategory(in.Category); err != nil {
		return apperrors.NewValidationError("category", err.Error())
	}
	if err := in.Media.validate(); err != nil {
		return err
	}
	return nil
}

// CampaignEdit is the set of fields an edit may overwrite.
type CampaignEdit struct {
	ProjectName string
	About       string
	Image       string
	Category    string
}

// DonationCreate is a donation of Amount by DonorID to CampaignID.
type DonationCreate struct {
	DonorID    string
	CampaignID string
	Amount     int64
}

func (in *DonationCreate) Validate() error {
	if err := validation.ValidateNonEmpty(in.DonorID, "donor id"); err != nil {
		return apperrors.NewValidationError("donor_id", err.Error())
	}
	if err := validation.ValidateNonEmpty(in.CampaignID, "campaign id"); err != nil {
		return apperrors.NewValidationError("campaign_id", err.Error())
	}
	if err := validation.ValidatePositiveInt(in.Amount, "amount"); err != nil {
		return apperrors.NewValidationError("amount", err.Error())
	}
	return nil
}
