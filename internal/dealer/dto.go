package dealer

import (
	"time"

	"github.com/revomotors/api-leads/internal/models"
)

const dateLayout = "2006-01-02"

type PreferencesDTO struct {
	AutoFollowupEnabled bool `json:"auto_followup_enabled"`
	FollowupDay1        bool `json:"followup_day_1"`
	FollowupDay3        bool `json:"followup_day_3"`
	FollowupDay7        bool `json:"followup_day_7"`
}

type ProfileDTO struct {
	ID                       uint           `json:"id"`
	UserID                   uint           `json:"user_id"`
	CompanyName              string         `json:"company_name"`
	DealershipName           string         `json:"dealership_name"`
	LicenseNumber            string         `json:"license_number"`
	Phone                    string         `json:"phone"`
	Address                  string         `json:"address"`
	City                     string         `json:"city"`
	State                    string         `json:"state"`
	ZipCode                  string         `json:"zip_code"`
	Website                  string         `json:"website"`
	VerificationStatus       string         `json:"verification_status"`
	CommunicationPreferences PreferencesDTO `json:"communication_preferences"`
	CreatedAt                time.Time      `json:"created_at"`
}

type VehicleFiltersDTO struct {
	Makes      []string `json:"makes"`
	Models     []string `json:"models"`
	YearMin    *int     `json:"year_min"`
	YearMax    *int     `json:"year_max"`
	MileageMax *int     `json:"mileage_max"`
	PriceMin   *float64 `json:"price_min"`
	PriceMax   *float64 `json:"price_max"`
}

type LocationFiltersDTO struct {
	ZipCodes    []string `json:"zip_codes"`
	RadiusMiles int      `json:"radius_miles"`
}

type MarketplacesDTO struct {
	Facebook   bool `json:"facebook"`
	Offerup    bool `json:"offerup"`
	Craigslist bool `json:"craigslist"`
	Autotrader bool `json:"autotrader"`
	Carscom    bool `json:"carscom"`
}

type FilterDTO struct {
	ID              uint               `json:"id"`
	VehicleFilters  VehicleFiltersDTO  `json:"vehicle_filters"`
	LocationFilters LocationFiltersDTO `json:"location_filters"`
	Marketplaces    MarketplacesDTO    `json:"marketplaces"`
	IsActive        bool               `json:"is_active"`
	CreatedAt       time.Time          `json:"created_at"`
}

type FilterListResponse struct {
	Total   int         `json:"total"`
	Filters []FilterDTO `json:"filters"`
}

type DocumentDTO struct {
	ID           uint      `json:"id"`
	DocumentType string    `json:"document_type"`
	DocumentName string    `json:"document_name"`
	FileURL      string    `json:"file_url"`
	ContentType  string    `json:"content_type,omitempty"`
	ExpiresAt    *string   `json:"expires_at"`
	Verified     bool      `json:"verified"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type DocumentListResponse struct {
	Total     int           `json:"total"`
	Documents []DocumentDTO `json:"documents"`
}

type StatsResponse struct {
	TotalLeads       int64   `json:"total_leads"`
	HotLeads         int64   `json:"hot_leads"`
	MarketplaceLeads int64   `json:"marketplace_leads"`
	NewLeads         int64   `json:"new_leads"`
	ContactedLeads   int64   `json:"contacted_leads"`
	WonDeals         int64   `json:"won_deals"`
	ConversionRate   float64 `json:"conversion_rate"`
}

// ActionResponse is the acknowledgement returned by mutating endpoints.
type ActionResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	FilterID    uint            `json:"filter_id,omitempty"`
	DocumentID  uint            `json:"document_id,omitempty"`
	Preferences *PreferencesDTO `json:"preferences,omitempty"`
}

func toPreferences(d *models.DealerProfile) PreferencesDTO {
	return PreferencesDTO{
		AutoFollowupEnabled: d.AutoFollowupEnabled,
		FollowupDay1:        d.FollowupDay1,
		FollowupDay3:        d.FollowupDay3,
		FollowupDay7:        d.FollowupDay7,
	}
}

func toProfile(d *models.DealerProfile) ProfileDTO {
	return ProfileDTO{
		ID:                       d.ID,
		UserID:                   d.UserID,
		CompanyName:              d.CompanyName,
		DealershipName:           d.DealershipName,
		LicenseNumber:            d.LicenseNumber,
		Phone:                    d.Phone,
		Address:                  d.Address,
		City:                     d.City,
		State:                    d.State,
		ZipCode:                  d.ZipCode,
		Website:                  d.Website,
		VerificationStatus:       d.VerificationStatus,
		CommunicationPreferences: toPreferences(d),
		CreatedAt:                d.CreatedAt,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toFilter(f models.DealerMarketplaceFilter) FilterDTO {
	return FilterDTO{
		ID: f.ID,
		VehicleFilters: VehicleFiltersDTO{
			Makes:      orEmpty(f.Makes),
			Models:     orEmpty(f.Models),
			YearMin:    f.YearMin,
			YearMax:    f.YearMax,
			MileageMax: f.MileageMax,
			PriceMin:   f.PriceMin,
			PriceMax:   f.PriceMax,
		},
		LocationFilters: LocationFiltersDTO{
			ZipCodes:    orEmpty(f.ZipCodes),
			RadiusMiles: f.RadiusMiles,
		},
		Marketplaces: MarketplacesDTO{
			Facebook:   f.FacebookEnabled,
			Offerup:    f.OfferupEnabled,
			Craigslist: f.CraigslistEnabled,
			Autotrader: f.AutotraderEnabled,
			Carscom:    f.CarscomEnabled,
		},
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
	}
}

func toDocument(doc models.DealerDocument) DocumentDTO {
	out := DocumentDTO{
		ID:           doc.ID,
		DocumentType: doc.DocumentType,
		DocumentName: doc.DocumentName,
		FileURL:      doc.FileURL,
		ContentType:  doc.ContentType,
		Verified:     doc.Verified,
		UploadedAt:   doc.UploadedAt,
	}
	if doc.ExpiresAt != nil {
		s := doc.ExpiresAt.Format(dateLayout)
		out.ExpiresAt = &s
	}
	return out
}
