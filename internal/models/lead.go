package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type LeadStatus string

const (
	StatusNew         LeadStatus = "new"
	StatusContacted   LeadStatus = "contacted"
	StatusFollowUp    LeadStatus = "follow_up"
	StatusNegotiating LeadStatus = "negotiating"
	StatusWon         LeadStatus = "won"
	StatusLost        LeadStatus = "lost"
)

var ErrUnknownStatus = errors.New("unknown lead status")

func ParseStatus(s string) (LeadStatus, error) {
	st := LeadStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusNew, StatusContacted, StatusFollowUp, StatusNegotiating, StatusWon, StatusLost:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Lead links one listing to one dealer. One lead is created per matched
// dealer at ingestion time.
type Lead struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ListingID uint           `gorm:"not null;index" json:"listing_id"`
	Listing   *CarListing    `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
	DealerID  uint           `gorm:"not null;index" json:"dealer_id"`
	Dealer    *DealerProfile `gorm:"foreignKey:DealerID;constraint:OnDelete:CASCADE" json:"-"`
	Status    LeadStatus     `gorm:"size:20;not null;index;default:new" json:"status"`

	AIEstimatedValue float64 `json:"ai_estimated_value"`
	AIOfferLow       float64 `json:"ai_offer_low"`
	AIOfferFair      float64 `json:"ai_offer_fair"`
	AIOfferHigh      float64 `json:"ai_offer_high"`
	AIRationale      string  `gorm:"type:text" json:"ai_rationale"`

	DealerOfferAmount *float64 `json:"dealer_offer_amount"`

	FirstContactSent bool       `gorm:"default:false" json:"first_contact_sent"`
	FirstContactAt   *time.Time `json:"first_contact_at"`
	LastContactAt    *time.Time `json:"last_contact_at"`
	NextFollowupAt   *time.Time `json:"next_followup_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Offer is one entry of the dealer's offer history on a lead.
type Offer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LeadID    uint      `gorm:"not null;index" json:"lead_id"`
	Lead      *Lead     `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE" json:"-"`
	DealerID  uint      `gorm:"not null;index" json:"dealer_id"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Note      string    `gorm:"type:text" json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
