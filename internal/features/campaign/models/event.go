package models

import "time"

type EventType string

const (
	EventCampaignCreated  EventType = "campaign_created"
	EventCampaignUpdated  EventType = "campaign_updated"
	EventDonationReceived EventType = "donation_received"
)

// Event describes a change to a campaign. Raised is the campaign total after
// the change.
type Event struct {
	Type       EventType `json:"type"`
	CampaignID string    `json:"campaign_id"`
	OwnerID    string    `json:"owner_id,omitempty"`
	DonorID    string    `json:"donor_id,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	Raised     int64     `json:"raised"`
	OccurredAt time.Time `json:"occurred_at"`
}
