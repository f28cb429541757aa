package lead

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/revomotors/api-leads/internal/estimator"
	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxWebhookBody = 1 << 20

// ListingPayload is what marketplaces and the direct intake form post.
type ListingPayload struct {
	Marketplace  string   `json:"marketplace"`
	Title        string   `json:"title"`
	Year         *int     `json:"year" validate:"required,gte=1900,lte=2100"`
	Make         string   `json:"make" validate:"required"`
	Model        string   `json:"model" validate:"required"`
	Trim         string   `json:"trim"`
	Mileage      *int     `json:"mileage" validate:"required,gte=0"`
	Condition    string   `json:"condition"`
	VIN          string   `json:"vin"`
	Color        string   `json:"color"`
	Transmission string   `json:"transmission"`
	FuelType     string   `json:"fuel_type"`
	Price        *float64 `json:"price"`
	AskingPrice  *float64 `json:"asking_price"`
	Region       string   `json:"region"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ZipCode      string   `json:"zip_code"`
	ExternalID   string   `json:"external_id"`
	URL          string   `json:"url"`
	SellerName   string   `json:"seller_contact_name"`
	SellerEmail  string   `json:"seller_contact_email"`
	SellerPhone  string   `json:"seller_contact_phone"`
	Description  string   `json:"description"`
	Photos       []string `json:"photos"`
}

type WebhookResponse struct {
	Status       string             `json:"status"`
	ListingID    uint               `json:"listing_id"`
	LeadsCreated int                `json:"leads_created"`
	AIDraftOffer estimator.Estimate `json:"ai_draft_offer"`
}

// toListing applies the intake defaults. An empty marketplace is a hot
// lead; an unrecognized one is rejected.
func (p ListingPayload) toListing(raw []byte) (*models.CarListing, error) {
	source := models.SourceHotLead
	if strings.TrimSpace(p.Marketplace) != "" {
		src, err := models.ParseSource(p.Marketplace)
		if err != nil {
			return nil, err
		}
		source = src
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = fmt.Sprintf("%d %s %s", *p.Year, p.Make, p.Model)
	}
	condition := strings.TrimSpace(p.Condition)
	if condition == "" {
		condition = "good"
	}
	region := strings.TrimSpace(p.Region)
	if region == "" {
		region = "normal"
	}
	price := p.Price
	if price == nil {
		price = p.AskingPrice
	}
	photos := p.Photos
	if photos == nil {
		photos = []string{}
	}
	return &models.CarListing{
		Title:             title,
		Year:              *p.Year,
		Make:              p.Make,
		Model:             p.Model,
		Trim:              p.Trim,
		Mileage:           *p.Mileage,
		Condition:         condition,
		VIN:               p.VIN,
		Color:             p.Color,
		Transmission:      p.Transmission,
		FuelType:          p.FuelType,
		AskingPrice:       price,
		Description:       p.Description,
		Region:            region,
		City:              p.City,
		State:             p.State,
		ZipCode:           p.ZipCode,
		Source:            source,
		ExternalListingID: p.ExternalID,
		ExternalURL:       p.URL,
		SellerName:        p.SellerName,
		SellerEmail:       p.SellerEmail,
		SellerPhone:       p.SellerPhone,
		Photos:            photos,
		RawPayload:        datatypes.JSON(raw),
	}, nil
}

// ReceiveLead ingests a listing, prices it and fans a lead out to every
// matching dealer in one transaction.
func (h *Handler) ReceiveLead(w http.ResponseWriter, r *http.Request) {
	if h.Options.WebhookSecret != "" {
		got := r.Header.Get("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Options.WebhookSecret)) != 1 {
			utils.Error(w, http.StatusUnauthorized, "Invalid webhook secret")
			return
		}
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "could not read body")
		return
	}
	var payload ListingPayload
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&payload); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := utils.Validate(payload); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	listing, err := payload.toListing(raw)
	if errors.Is(err, models.ErrUnknownSource) {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		utils.InternalError(w, r, "build listing", err)
		return
	}

	est := h.Estimator.Estimate(estimator.Input{
		Year:      listing.Year,
		Make:      listing.Make,
		Model:     listing.Model,
		Mileage:   listing.Mileage,
		Condition: listing.Condition,
		Region:    listing.Region,
	})

	var created int
	err = h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(listing).Error; err != nil {
			return err
		}
		dealers, err := MatchDealers(tx, listing, h.Options.Matching)
		if err != nil {
			return err
		}
		if len(dealers) == 0 {
			return nil
		}
		leads := make([]models.Lead, 0, len(dealers))
		for _, d := range dealers {
			leads = append(leads, models.Lead{
				ListingID:        listing.ID,
				DealerID:         d.ID,
				Status:           models.StatusNew,
				AIEstimatedValue: est.Fair,
				AIOfferLow:       est.Low,
				AIOfferFair:      est.Fair,
				AIOfferHigh:      est.Max,
				AIRationale:      est.Rationale,
			})
		}
		if err := tx.Create(&leads).Error; err != nil {
			return err
		}
		created = len(leads)
		return nil
	})
	if err != nil {
		utils.InternalError(w, r, "ingest listing", err)
		return
	}

	slog.Info("lead webhook received",
		"listing_id", listing.ID,
		"source", listing.Source,
		"leads_created", created,
	)
	utils.JSON(w, http.StatusOK, WebhookResponse{
		Status:       "received",
		ListingID:    listing.ID,
		LeadsCreated: created,
		AIDraftOffer: est,
	})
}
