package models

import (
	"fmt"
	"time"
)

// DefaultCampaignMonths is added to the start date when no end date is given.
const DefaultCampaignMonths = 1

// Campaign is a fundable project record.
// @Description Crowdfunding campaign
type Campaign struct {
	Owner       string    `json:"owner" example:"Jane Doe"`
	OwnerID     string    `json:"owner_id" example:"123456789"`
	ProjectName string    `json:"project_name" example:"Build a cat shelter"`
	About       string    `json:"about" example:"Warm beds for stray cats"`
	Goal        int64     `json:"goal" example:"1000"`
	Raised      int64     `json:"raised" example:"250"`
	Category    string    `json:"category" example:"animals"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Image       string    `json:"image" example:"http://localhost:8080/media/folder/cat.png"`
	Donors      []string  `json:"donors"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CampaignRecord pairs a campaign with its document id.
type CampaignRecord struct {
	ID   string   `json:"id" example:"5f1d7c1e-8a4b-4c53-9d6e-1f0b7a0f3c2a"`
	Data Campaign `json:"data"`
}

// Normalize fills defaults for fields a stored document may omit.
func (c *Campaign) Normalize() {
	if c.Donors == nil {
		c.Donors = []string{}
	}
}

// Clone returns a deep copy.
func (c Campaign) Clone() Campaign {
	out := c
	out.Donors = append([]string{}, c.Donors...)
	return out
}

// Clone returns a deep copy.
func (r CampaignRecord) Clone() CampaignRecord {
	return CampaignRecord{ID: r.ID, Data: r.Data.Clone()}
}

// Progress returns the raised share of the goal in percent, capped at 100.
func (c *Campaign) Progress() int {
	if c.Goal <= 0 {
		return 0
	}
	p := c.Raised * 100 / c.Goal
	if p > 100 {
		p = 100
	}
	return int(p)
}

// IsActive reports whether now falls inside the campaign timeline.
func (c *Campaign) IsActive(now time.Time) bool {
	return !now.Before(c.StartDate) && !now.After(c.EndDate.AddDate(0, 0, 1))
}

// HasDonor reports whether donorID appears in the donor list.
func (c *Campaign) HasDonor(donorID string) bool {
	for _, d := range c.Donors {
		if d == donorID {
			return true
		}
	}
	return false
}

// MediaKey derives the object storage key for a campaign image. The key is
// not unique: the same file name, owner and project name map to one object.
func MediaKey(fileName, ownerID, projectName string) string {
	return fmt.Sprintf("folder/%s %s %s", fileName, ownerID, projectName)
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultTimeline returns the (today, today + 1 month) pair used when the
// caller picks no dates.
func DefaultTimeline(now time.Time) (time.Time, time.Time) {
	start := DateOnly(now)
	return start, start.AddDate(0, DefaultCampaignMonths, 0)
}
