package lead

import (
	"time"

	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/outreach"
)

type LocationDTO struct {
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

type SellerDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ListingDTO struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Year         int               `json:"year"`
	Make         string            `json:"make"`
	Model        string            `json:"model"`
	Trim         string            `json:"trim"`
	Mileage      int               `json:"mileage"`
	Condition    string            `json:"condition"`
	VIN          string            `json:"vin"`
	Color        string            `json:"color"`
	Transmission string            `json:"transmission,omitempty"`
	FuelType     string            `json:"fuel_type,omitempty"`
	AskingPrice  *float64          `json:"asking_price"`
	Description  string            `json:"description,omitempty"`
	Source       models.LeadSource `json:"source"`
	ExternalURL  string            `json:"external_url"`
	Location     LocationDTO       `json:"location"`
	Seller       SellerDTO         `json:"seller"`
	Photos       []string          `json:"photos"`
}

type AIEstimateDTO struct {
	EstimatedValue float64 `json:"estimated_value"`
	OfferLow       float64 `json:"offer_low"`
	OfferFair      float64 `json:"offer_fair"`
	OfferHigh      float64 `json:"offer_high"`
	Rationale      string  `json:"rationale"`
}

type LatestMessageDTO struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Sent    bool   `json:"sent"`
}

type CommunicationDTO struct {
	FirstContactSent bool              `json:"first_contact_sent"`
	LastContactAt    *time.Time        `json:"last_contact_at"`
	NextFollowupAt   *time.Time        `json:"next_followup_at"`
	LatestMessage    *LatestMessageDTO `json:"latest_message"`
}

type SummaryDTO struct {
	LeadID        uint              `json:"lead_id"`
	Status        models.LeadStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	Listing       ListingDTO        `json:"listing"`
	AIEstimate    AIEstimateDTO     `json:"ai_estimate"`
	Communication CommunicationDTO  `json:"communication"`
}

type ListResponse struct {
	Total int          `json:"total"`
	Leads []SummaryDTO `json:"leads"`
}

type DetailDTO struct {
	LeadID      uint              `json:"lead_id"`
	Status      models.LeadStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	Listing     ListingDTO        `json:"listing"`
	AIEstimate  AIEstimateDTO     `json:"ai_estimate"`
	DealerOffer *float64          `json:"dealer_offer"`
	Messages    []models.Message  `json:"messages"`
	// FollowUps is empty until the first message goes out.
	FollowUps []outreach.FollowUpStage `json:"followup_schedule"`
}

func listingDTO(l *models.CarListing, full bool) ListingDTO {
	if l == nil {
		return ListingDTO{Photos: []string{}}
	}
	photos := l.Photos
	if photos == nil {
		photos = []string{}
	}
	dto := ListingDTO{
		ID:          l.ID,
		Title:       l.Title,
		Year:        l.Year,
		Make:        l.Make,
		Model:       l.Model,
		Trim:        l.Trim,
		Mileage:     l.Mileage,
		Condition:   l.Condition,
		VIN:         l.VIN,
		Color:       l.Color,
		AskingPrice: l.AskingPrice,
		Source:      l.Source,
		ExternalURL: l.ExternalURL,
		Location:    LocationDTO{City: l.City, State: l.State, ZipCode: l.ZipCode},
		Seller:      SellerDTO{Name: l.SellerName, Email: l.SellerEmail, Phone: l.SellerPhone},
		Photos:      photos,
	}
	if full {
		dto.Transmission = l.Transmission
		dto.FuelType = l.FuelType
		dto.Description = l.Description
	}
	return dto
}

func aiEstimateDTO(l *models.Lead) AIEstimateDTO {
	return AIEstimateDTO{
		EstimatedValue: l.AIEstimatedValue,
		OfferLow:       l.AIOfferLow,
		OfferFair:      l.AIOfferFair,
		OfferHigh:      l.AIOfferHigh,
		Rationale:      l.AIRationale,
	}
}

func summaryDTO(l *models.Lead, latest *models.Message) SummaryDTO {
	comm := CommunicationDTO{
		FirstContactSent: l.FirstContactSent,
		LastContactAt:    l.LastContactAt,
		NextFollowupAt:   l.NextFollowupAt,
	}
	if latest != nil {
		comm.LatestMessage = &LatestMessageDTO{Subject: latest.Subject, Body: latest.Body, Sent: latest.Sent}
	}
	return SummaryDTO{
		LeadID:        l.ID,
		Status:        l.Status,
		CreatedAt:     l.CreatedAt,
		Listing:       listingDTO(l.Listing, false),
		AIEstimate:    aiEstimateDTO(l),
		Communication: comm,
	}
}

func detailDTO(l *models.Lead, thread []models.Message) DetailDTO {
	if thread == nil {
		thread = []models.Message{}
	}
	followUps := []outreach.FollowUpStage{}
	if l.FirstContactAt != nil {
		followUps = outreach.FollowUpSchedule(l.ID, *l.FirstContactAt)
	}
	return DetailDTO{
		LeadID:      l.ID,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt,
		Listing:     listingDTO(l.Listing, true),
		AIEstimate:  aiEstimateDTO(l),
		DealerOffer: l.DealerOfferAmount,
		Messages:    thread,
		FollowUps:   followUps,
	}
}
