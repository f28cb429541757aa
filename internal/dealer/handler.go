// Package dealer serves the dealer's own account: profile, follow-up
// preferences, marketplace filters, documents and dashboard stats.
package dealer

import (
	"math"
	"net/http"
	"strings"

	"github.com/revomotors/api-leads/internal/auth"
	"github.com/revomotors/api-leads/internal/blob"
	"github.com/revomotors/api-leads/internal/lead"
	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/utils"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Leads      lead.Repository
	Blobs      blob.Store
}

func NewHandler(db *gorm.DB, blobs blob.Store) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Leads:      lead.NewRepository(),
		Blobs:      blobs,
	}
}

type profileRequest struct {
	CompanyName    string `json:"company_name" validate:"max=255"`
	DealershipName string `json:"dealership_name" validate:"max=255"`
	LicenseNumber  string `json:"license_number" validate:"max=100"`
	Phone          string `json:"phone" validate:"max=50"`
	Address        string `json:"address"`
	City           string `json:"city" validate:"max=100"`
	State          string `json:"state" validate:"max=50"`
	ZipCode        string `json:"zip_code" validate:"max=20"`
	Website        string `json:"website" validate:"max=255"`
}

// fields keeps only the non-empty values; blanks never clear a column.
func (p profileRequest) fields() map[string]any {
	out := map[string]any{}
	set := func(col, v string) {
		if v = strings.TrimSpace(v); v != "" {
			out[col] = v
		}
	}
	set("company_name", p.CompanyName)
	set("dealership_name", p.DealershipName)
	set("license_number", p.LicenseNumber)
	set("phone", p.Phone)
	set("address", p.Address)
	set("city", p.City)
	set("state", p.State)
	set("zip_code", p.ZipCode)
	set("website", p.Website)
	return out
}

type preferencesRequest struct {
	AutoFollowupEnabled *bool `json:"auto_followup_enabled"`
	FollowupDay1        *bool `json:"followup_day_1"`
	FollowupDay3        *bool `json:"followup_day_3"`
	FollowupDay7        *bool `json:"followup_day_7"`
}

// GET /api/dealers/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	d, _ := auth.DealerFromContext(r.Context())
	utils.JSON(w, http.StatusOK, toProfile(d))
}

// PUT /api/dealers/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	d, _ := auth.DealerFromContext(r.Context())
	var req profileRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Repository.Update(h.DB.WithContext(r.Context()), d, req.fields()); err != nil {
		utils.InternalError(w, r, "update dealer profile", err)
		return
	}
	utils.JSON(w, http.StatusOK, ActionResponse{Success: true, Message: "Profile updated successfully"})
}

// GET /api/dealers/communication-preferences
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	d, _ := auth.DealerFromContext(r.Context())
	utils.JSON(w, http.StatusOK, toPreferences(d))
}

// PUT /api/dealers/communication-preferences
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	d, _ := auth.DealerFromContext(r.Context())
	var req preferencesRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	fields := map[string]any{}
	if req.AutoFollowupEnabled != nil {
		fields["auto_followup_enabled"] = *req.AutoFollowupEnabled
	}
	if req.FollowupDay1 != nil {
		fields["followup_day_1"] = *req.FollowupDay1
	}
	if req.FollowupDay3 != nil {
		fields["followup_day_3"] = *req.FollowupDay3
	}
	if req.FollowupDay7 != nil {
		fields["followup_day_7"] = *req.FollowupDay7
	}
	if err := h.Repository.Update(h.DB.WithContext(r.Context()), d, fields); err != nil {
		utils.InternalError(w, r, "update communication preferences", err)
		return
	}

	prefs := toPreferences(d)
	utils.JSON(w, http.StatusOK, ActionResponse{
		Success:     true,
		Message:     "Communication preferences updated",
		Preferences: &prefs,
	})
}

// GET /api/dealers/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	d, _ := auth.DealerFromContext(r.Context())
	db := h.DB.WithContext(r.Context())

	byStatus, err := h.Leads.CountByStatus(db, d.ID)
	if err != nil {
		utils.InternalError(w, r, "count leads by status", err)
		return
	}
	hot, marketplace, err := h.Repository.CountBySource(db, d.ID)
	if err != nil {
		utils.InternalError(w, r, "count leads by source", err)
		return
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}
	won := byStatus[models.StatusWon]
	utils.JSON(w, http.StatusOK, StatsResponse{
		TotalLeads:       total,
		HotLeads:         hot,
		MarketplaceLeads: marketplace,
		NewLeads:         byStatus[models.StatusNew],
		ContactedLeads:   byStatus[models.StatusContacted],
		WonDeals:         won,
		ConversionRate:   ConversionRate(won, total),
	})
}

// ConversionRate is won/total as a percentage rounded to two decimals, or 0
// with no leads.
func ConversionRate(won, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(won)/float64(total)*100*100) / 100
}
