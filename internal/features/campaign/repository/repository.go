package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crowdfund-backend/internal/features/campaign/models"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrUnsupportedQuery = errors.New("unsupported query")
	ErrConcurrentUpdate = errors.New("campaign was modified concurrently, retries exhausted")
	ErrEmptyMutation    = errors.New("empty mutation")
)

// CampaignRepository is the document store holding campaign records.
type CampaignRepository interface {
	GetAll(ctx context.Context) ([]models.CampaignRecord, error)
	GetByID(ctx context.Context, id string) (*models.CampaignRecord, error)
	// Insert stores a new campaign under a generated id and returns the id.
	Insert(ctx context.Context, campaign *models.Campaign) (string, error)
	// Update applies every part of m to the campaign as one atomic change.
	Update(ctx context.Context, id string, m Mutation) (*models.CampaignRecord, error)
	QueryWhere(ctx context.Context, q Query) ([]models.CampaignRecord, error)
}

// Mutation is a partial update of a campaign. Edit overwrites the
// presentational fields, RaisedDelta is added to Raised and AppendDonors is
// appended to Donors without deduplication.
type Mutation struct {
	Edit         *models.CampaignEdit
	RaisedDelta  int64
	AppendDonors []string
}

// Donation builds the increment-and-append mutation of a donation.
func Donation(donorID string, amount int64) Mutation {
	return Mutation{RaisedDelta: amount, AppendDonors: []string{donorID}}
}

// EditFields builds a mutation that only overwrites presentational fields.
func EditFields(edit models.CampaignEdit) Mutation {
	return Mutation{Edit: &edit}
}

func (m Mutation) IsEmpty() bool {
	return m.Edit == nil && m.RaisedDelta == 0 && len(m.AppendDonors) == 0
}

func (m Mutation) Validate() error {
	if m.IsEmpty() {
		return ErrEmptyMutation
	}
	if m.RaisedDelta < 0 {
		return fmt.Errorf("raised cannot decrease: delta %d", m.RaisedDelta)
	}
	return nil
}

// Apply mutates c in place.
func (m Mutation) Apply(c *models.Campaign, now time.Time) {
	c.Normalize()
	if m.Edit != nil {
		c.ProjectName = m.Edit.ProjectName
		c.About = m.Edit.About
		c.Image = m.Edit.Image
		c.Category = m.Edit.Category
	}
	c.Raised += m.RaisedDelta
	c.Donors = append(c.Donors, m.AppendDonors...)
	c.UpdatedAt = now
}

type Operator string

const (
	OpEqual         Operator = "=="
	OpArrayContains Operator = "array-contains"
)

const (
	FieldOwnerID  = "owner_id"
	FieldOwner    = "owner"
	FieldCategory = "category"
	FieldDonors   = "donors"
)

// Query is a single-field filter over the campaign collection.
type Query struct {
	Field string
	Op    Operator
	Value string
}

func WhereOwner(ownerID string) Query {
	return Query{Field: FieldOwnerID, Op: OpEqual, Value: ownerID}
}

func WhereDonor(donorID string) Query {
	return Query{Field: FieldDonors, Op: OpArrayContains, Value: donorID}
}

func (q Query) Validate() error {
	switch {
	case q.Op == OpEqual && (q.Field == FieldOwnerID || q.Field == FieldOwner || q.Field == FieldCategory):
		return nil
	case q.Op == OpArrayContains && q.Field == FieldDonors:
		return nil
	}
	return fmt.Errorf("%w: %s %s", ErrUnsupportedQuery, q.Field, q.Op)
}

// Matches reports whether c satisfies q. q must be valid.
func (q Query) Matches(c *models.Campaign) bool {
	switch q.Field {
	case FieldOwnerID:
		return c.OwnerID == q.Value
	case FieldOwner:
		return c.Owner == q.Value
	case FieldCategory:
		return c.Category == q.Value
	case FieldDonors:
		return c.HasDonor(q.Value)
	}
	return false
}
