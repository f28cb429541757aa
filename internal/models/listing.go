package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// LeadSource is where a listing came from. Everything other than hot_lead is
// a third-party marketplace.
type LeadSource string

const (
	SourceHotLead    LeadSource = "hot_lead"
	SourceFacebook   LeadSource = "facebook"
	SourceOfferUp    LeadSource = "offerup"
	SourceCraigslist LeadSource = "craigslist"
	SourceAutotrader LeadSource = "autotrader"
	SourceCarsCom    LeadSource = "carscom"
)

var ErrUnknownSource = errors.New("unknown marketplace")

var sourceAliases = map[string]LeadSource{
	"hot_lead":   SourceHotLead,
	"hotlead":    SourceHotLead,
	"direct":     SourceHotLead,
	"facebook":   SourceFacebook,
	"offerup":    SourceOfferUp,
	"craigslist": SourceCraigslist,
	"autotrader": SourceAutotrader,
	"carscom":    SourceCarsCom,
	"cars.com":   SourceCarsCom,
	"cars_com":   SourceCarsCom,
}

// ParseSource maps a marketplace name to a LeadSource. Unrecognized names
// return ErrUnknownSource instead of silently falling back to hot_lead.
func ParseSource(s string) (LeadSource, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if src, ok := sourceAliases[key]; ok {
		return src, nil
	}
	names := []string{string(SourceHotLead)}
	for _, m := range Marketplaces() {
		names = append(names, string(m))
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownSource, s, strings.Join(names, ", "))
}

// Marketplaces lists every non-direct source.
func Marketplaces() []LeadSource {
	return []LeadSource{SourceFacebook, SourceOfferUp, SourceCraigslist, SourceAutotrader, SourceCarsCom}
}

// CarListing is created by the ingestion webhook and never changed afterwards.
type CarListing struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Title        string   `gorm:"size:255;not null" json:"title"`
	Year         int      `gorm:"not null" json:"year"`
	Make         string   `gorm:"size:100;not null;index" json:"make"`
	Model        string   `gorm:"size:100;not null" json:"model"`
	Trim         string   `gorm:"size:100" json:"trim"`
	Mileage      int      `gorm:"not null" json:"mileage"`
	Condition    string   `gorm:"size:50" json:"condition"`
	VIN          string   `gorm:"column:vin;size:17" json:"vin"`
	Color        string   `gorm:"size:50" json:"color"`
	Transmission string   `gorm:"size:50" json:"transmission"`
	FuelType     string   `gorm:"size:50" json:"fuel_type"`
	AskingPrice  *float64 `json:"asking_price"`
	Description  string   `gorm:"type:text" json:"description"`

	Region  string `gorm:"size:100" json:"region"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:50" json:"state"`
	ZipCode string `gorm:"size:20" json:"zip_code"`

	Source            LeadSource `gorm:"size:30;not null;index;default:hot_lead" json:"source"`
	ExternalListingID string     `gorm:"size:255" json:"external_listing_id"`
	ExternalURL       string     `gorm:"size:500" json:"external_url"`

	SellerName  string `gorm:"size:255" json:"seller_name"`
	SellerEmail string `gorm:"size:255" json:"seller_email"`
	SellerPhone string `gorm:"size:50" json:"seller_phone"`

	Photos     []string       `gorm:"type:jsonb;serializer:json" json:"photos"`
	RawPayload datatypes.JSON `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
