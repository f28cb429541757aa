package offer

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/revomotors/api-leads/internal/auth"
	"github.com/revomotors/api-leads/internal/estimator"
	"github.com/revomotors/api-leads/internal/lead"
	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/utils"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Leads      lead.Repository
	Estimator  *estimator.Estimator
}

func NewHandler(db *gorm.DB, est *estimator.Estimator) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Leads:      lead.NewRepository(),
		Estimator:  est,
	}
}

type createRequest struct {
	LeadID uint    `json:"lead_id" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
	Note   string  `json:"note"`
}

type updateRequest struct {
	Amount *float64 `json:"amount" validate:"omitempty,gt=0"`
	Note   *string  `json:"note"`
}

// List handles GET /api/offers?lead_id=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	dealer, _ := auth.DealerFromContext(r.Context())
	var leadID uint
	if raw := strings.TrimSpace(r.URL.Query().Get("lead_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			utils.Error(w, http.StatusBadRequest, "invalid lead_id")
			return
		}
		leadID = uint(id)
	}
	offers, err := h.Repository.ListForDealer(h.DB.WithContext(r.Context()), dealer.ID, leadID)
	if err != nil {
		utils.InternalError(w, r, "list offers", err)
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	utils.JSON(w, http.StatusOK, offers)
}

// Get handles GET /api/offers/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, ok := h.load(w, r)
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, o)
}

// Create records a new offer and makes it the lead's current dealer offer.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	dealer, _ := auth.DealerFromContext(r.Context())
	var req createRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	db := h.DB.WithContext(r.Context())
	l, err := h.Leads.FindForDealer(db, dealer.ID, req.LeadID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, http.StatusNotFound, "Lead not found")
		return
	}
	if err != nil {
		utils.InternalError(w, r, "load lead", err)
		return
	}
	o, err := lead.RecordOffer(db, l, dealer.ID, req.Amount, req.Note)
	if err != nil {
		utils.InternalError(w, r, "create offer", err)
		return
	}
	utils.JSON(w, http.StatusCreated, o)
}

// Update edits an offer. Changing the amount of the lead's latest offer also
// moves the lead's current dealer offer.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	o, ok := h.load(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		if req.Note != nil {
			updates["note"] = *req.Note
			o.Note = *req.Note
		}
		if req.Amount != nil {
			updates["amount"] = *req.Amount
			o.Amount = *req.Amount
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(o).Updates(updates).Error; err != nil {
			return err
		}
		if req.Amount == nil {
			return nil
		}
		latest, err := h.Repository.Latest(tx, o.LeadID)
		if err != nil {
			return err
		}
		if latest.ID != o.ID {
			return nil
		}
		return tx.Model(&models.Lead{}).Where("id = ?", o.LeadID).Update("dealer_offer_amount", o.Amount).Error
	})
	if err != nil {
		utils.InternalError(w, r, "update offer", err)
		return
	}
	utils.JSON(w, http.StatusOK, o)
}

// Estimate prices a vehicle without creating anything.
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	var in estimator.Input
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(in); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, h.Estimator.Estimate(in))
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*models.Offer, bool) {
	dealer, _ := auth.DealerFromContext(r.Context())
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid offer id")
		return nil, false
	}
	o, err := h.Repository.FindForDealer(h.DB.WithContext(r.Context()), dealer.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, http.StatusNotFound, "Offer not found")
		return nil, false
	}
	if err != nil {
		utils.InternalError(w, r, "load offer", err)
		return nil, false
	}
	return o, true
}
