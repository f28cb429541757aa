package dealer

import (
	"errors"
	"net/http"

	"github.com/revomotors/api-leads/internal/auth"
	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/utils"
	"gorm.io/gorm"
)

const defaultRadiusMiles = 50

// filterRequest serves both create and update; nil means "not provided".
type filterRequest struct {
	Makes      *[]string `json:"makes"`
	Models     *[]string `json:"models"`
	YearMin    *int      `json:"year_min" validate:"omitempty,gte=1900,lte=2100"`
	YearMax    *int      `json:"year_max" validate:"omitempty,gte=1900,lte=2100"`
	MileageMax *int      `json:"mileage_max" validate:"omitempty,gte=0"`
	PriceMin   *float64  `json:"price_min" validate:"omitempty,gte=0"`
	PriceMax   *float64  `json:"price_max" validate:"omitempty,gte=0"`
	ZipCodes   *[]string `json:"zip_codes"`
	Radius     *int      `json:"radius_miles" validate:"omitempty,gte=0"`

	Facebook   *bool `json:"facebook_enabled"`
	Offerup    *bool `json:"offerup_enabled"`
	Craigslist *bool `json:"craigslist_enabled"`
	Autotrader *bool `json:"autotrader_enabled"`
	Carscom    *bool `json:"carscom_enabled"`
	IsActive   *bool `json:"is_active"`
}

func (req filterRequest) applyTo(f *models.DealerMarketplaceFilter) {
	if req.Makes != nil {
		f.Makes = *req.Makes
	}
	if req.Models != nil {
		f.Models = *req.Models
	}
	if req.YearMin != nil {
		f.YearMin = req.YearMin
	}
	if req.YearMax != nil {
		f.YearMax = req.YearMax
	}
	if req.MileageMax != nil {
		f.MileageMax = req.MileageMax
	}
	if req.PriceMin != nil {
		f.PriceMin = req.PriceMin
	}
	if req.PriceMax != nil {
		f.PriceMax = req.PriceMax
	}
	if req.ZipCodes != nil {
		f.ZipCodes = *req.ZipCodes
	}
	if req.Radius != nil {
		f.RadiusMiles = *req.Radius
	}
	setBool(&f.FacebookEnabled, req.Facebook)
	setBool(&f.OfferupEnabled, req.Offerup)
	setBool(&f.CraigslistEnabled, req.Craigslist)
	setBool(&f.AutotraderEnabled, req.Autotrader)
	setBool(&f.CarscomEnabled, req.Carscom)
	setBool(&f.IsActive, req.IsActive)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// NewFilter returns a filter with the defaults a dealer starts from: the
// three free marketplaces on, paid ones off, 50 mile radius, active.
func NewFilter(dealerID uint) models.DealerMarketplaceFilter {
	return models.DealerMarketplaceFilter{
		DealerID:          dealerID,
		Makes:             []string{},
		Models:            []string{},
		ZipCodes:          []string{},
		RadiusMiles:       defaultRadiusMiles,
		FacebookEnabled:   true,
		OfferupEnabled:    true,
		CraigslistEnabled: true,
		IsActive:          true,
	}
}

func (h *Handler) decodeFilter(w http.ResponseWriter, r *http.Request) (filterRequest, bool) {
	var req filterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

// GET /api/dealers/filters
func (h *Handler) ListFilters(w http.ResponseWriter, r *http.Request) {
	d, _ := auth.DealerFromContext(r.Context())
	filters, err := h.Repository.ActiveFilters(h.DB.WithContext(r.Context()), d.ID)
	if err != nil {
		utils.InternalError(w, r, "list filters", err)
		return
	}
	out := FilterListResponse{Total: len(filters), Filters: make([]FilterDTO, 0, len(filters))}
	for _, f := range filters {
		out.Filters = append(out.Filters, toFilter(f))
	}
	utils.JSON(w, http.StatusOK, out)
}

// POST /api/dealers/filters
func (h *Handler) CreateFilter(w http.ResponseWriter, r *http.Request) {
	d, _ := auth.DealerFromContext(r.Context())
	req, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}
	f := NewFilter(d.ID)
	req.applyTo(&f)
	// New filters start active whatever the payload says.
	f.IsActive = true

	// Create skips zero values that carry a column default, so the row is
	// saved in full afterwards to keep explicit false toggles.
	db := h.DB.WithContext(r.Context())
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := h.Repository.CreateFilter(tx, &f); err != nil {
			return err
		}
		return h.Repository.SaveFilter(tx, &f)
	})
	if err != nil {
		utils.InternalError(w, r, "create filter", err)
		return
	}
	utils.JSON(w, http.StatusCreated, ActionResponse{Success: true, Message: "Filter created successfully", FilterID: f.ID})
}

// PUT /api/dealers/filters/{id}
func (h *Handler) UpdateFilter(w http.ResponseWriter, r *http.Request) {
	f, ok := h.loadFilter(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}
	req.applyTo(f)
	if err := h.Repository.SaveFilter(h.DB.WithContext(r.Context()), f); err != nil {
		utils.InternalError(w, r, "update filter", err)
		return
	}
	utils.JSON(w, http.StatusOK, ActionResponse{Success: true, Message: "Filter updated successfully"})
}

// DELETE /api/dealers/filters/{id}
func (h *Handler) DeleteFilter(w http.ResponseWriter, r *http.Request) {
	f, ok := h.loadFilter(w, r)
	if !ok {
		return
	}
	if err := h.Repository.DeleteFilter(h.DB.WithContext(r.Context()), f); err != nil {
		utils.InternalError(w, r, "delete filter", err)
		return
	}
	utils.JSON(w, http.StatusOK, ActionResponse{Success: true, Message: "Filter deleted successfully"})
}

func (h *Handler) loadFilter(w http.ResponseWriter, r *http.Request) (*models.DealerMarketplaceFilter, bool) {
	d, _ := auth.DealerFromContext(r.Context())
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Filter not found")
		return nil, false
	}
	f, err := h.Repository.FindFilter(h.DB.WithContext(r.Context()), d.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, http.StatusNotFound, "Filter not found")
		return nil, false
	}
	if err != nil {
		utils.InternalError(w, r, "load filter", err)
		return nil, false
	}
	return f, true
}
