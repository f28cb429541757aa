package models

import "time"

const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// DealerProfile is created at signup for role=dealer and is the owner of
// leads, messages, filters and documents.
type DealerProfile struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	UserID             uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	User               *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CompanyName        string `gorm:"size:255;not null" json:"company_name"`
	DealershipName     string `gorm:"size:255" json:"dealership_name"`
	LicenseNumber      string `gorm:"size:100" json:"license_number"`
	Phone              string `gorm:"size:50" json:"phone"`
	Address            string `gorm:"type:text" json:"address"`
	City               string `gorm:"size:100" json:"city"`
	State              string `gorm:"size:50" json:"state"`
	ZipCode            string `gorm:"size:20" json:"zip_code"`
	Website            string `gorm:"size:255" json:"website"`
	VerificationStatus string `gorm:"size:50;index;default:pending" json:"verification_status"`

	// Follow-up preferences.
	AutoFollowupEnabled bool `gorm:"default:true" json:"auto_followup_enabled"`
	FollowupDay1        bool `gorm:"default:true" json:"followup_day_1"`
	FollowupDay3        bool `gorm:"default:true" json:"followup_day_3"`
	FollowupDay7        bool `gorm:"default:true" json:"followup_day_7"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DealerMarketplaceFilter describes which listings a dealer wants to receive.
type DealerMarketplaceFilter struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	DealerID uint           `gorm:"not null;index" json:"dealer_id"`
	Dealer   *DealerProfile `gorm:"foreignKey:DealerID;constraint:OnDelete:CASCADE" json:"-"`

	Makes      []string `gorm:"type:jsonb;serializer:json" json:"makes"`
	Models     []string `gorm:"type:jsonb;serializer:json" json:"models"`
	YearMin    *int     `json:"year_min"`
	YearMax    *int     `json:"year_max"`
	MileageMax *int     `json:"mileage_max"`
	PriceMin   *float64 `json:"price_min"`
	PriceMax   *float64 `json:"price_max"`

	ZipCodes    []string `gorm:"type:jsonb;serializer:json" json:"zip_codes"`
	RadiusMiles int      `gorm:"default:50" json:"radius_miles"`

	FacebookEnabled   bool `json:"facebook_enabled"`
	OfferupEnabled    bool `json:"offerup_enabled"`
	CraigslistEnabled bool `json:"craigslist_enabled"`
	AutotraderEnabled bool `json:"autotrader_enabled"`
	CarscomEnabled    bool `json:"carscom_enabled"`

	IsActive  bool      `gorm:"index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SourceEnabled reports whether the filter accepts listings from src.
// Hot leads are never excluded by marketplace toggles.
func (f DealerMarketplaceFilter) SourceEnabled(src LeadSource) bool {
	switch src {
	case SourceFacebook:
		return f.FacebookEnabled
	case SourceOfferUp:
		return f.OfferupEnabled
	case SourceCraigslist:
		return f.CraigslistEnabled
	case SourceAutotrader:
		return f.AutotraderEnabled
	case SourceCarsCom:
		return f.CarscomEnabled
	}
	return true
}

type DealerDocument struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	DealerID     uint           `gorm:"not null;index" json:"dealer_id"`
	Dealer       *DealerProfile `gorm:"foreignKey:DealerID;constraint:OnDelete:CASCADE" json:"-"`
	DocumentType string         `gorm:"size:50;not null" json:"document_type"`
	DocumentName string         `gorm:"size:255;not null" json:"document_name"`
	FileURL      string         `gorm:"size:500" json:"file_url"`
	StorageKey   string         `gorm:"size:500" json:"-"`
	ContentType  string         `gorm:"size:100" json:"content_type,omitempty"`
	ExpiresAt    *time.Time     `json:"expires_at"`
	Verified     bool           `gorm:"default:false" json:"verified"`
	UploadedAt   time.Time      `gorm:"autoCreateTime" json:"uploaded_at"`
}
