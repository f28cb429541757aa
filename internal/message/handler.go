package message

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/revomotors/api-leads/internal/auth"
	"github.com/revomotors/api-leads/internal/lead"
	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/utils"
	"gorm.io/gorm"
)

// TypeCustom marks drafts written by the dealer instead of a template.
const TypeCustom = "custom"

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Leads      lead.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Leads:      lead.NewRepository(),
	}
}

type createRequest struct {
	LeadID      uint   `json:"lead_id" validate:"required"`
	Subject     string `json:"subject"`
	Content     string `json:"content" validate:"required"`
	MessageType string `json:"message_type"`
}

type updateRequest struct {
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

// List handles GET /api/messages?lead_id=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	dealer, _ := auth.DealerFromContext(r.Context())
	db := h.DB.WithContext(r.Context())

	var leadID uint
	if raw := strings.TrimSpace(r.URL.Query().Get("lead_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			utils.Error(w, http.StatusBadRequest, "invalid lead_id")
			return
		}
		if _, err := h.Leads.FindForDealer(db, dealer.ID, uint(id)); err != nil {
			h.leadError(w, r, err)
			return
		}
		leadID = uint(id)
	}

	msgs, err := h.Repository.ListForDealer(db, dealer.ID, leadID)
	if err != nil {
		utils.InternalError(w, r, "list messages", err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	utils.JSON(w, http.StatusOK, msgs)
}

// Create stores a dealer-written draft on one of the dealer's leads.
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
	if _, err := h.Leads.FindForDealer(db, dealer.ID, req.LeadID); err != nil {
		h.leadError(w, r, err)
		return
	}

	msgType := strings.TrimSpace(req.MessageType)
	if msgType == "" {
		msgType = TypeCustom
	}
	m := &models.Message{
		LeadID:      req.LeadID,
		DealerID:    dealer.ID,
		MessageType: msgType,
		Subject:     req.Subject,
		Body:        req.Content,
		Channel:     models.ChannelEmail,
	}
	if err := h.Repository.Create(db, m); err != nil {
		utils.InternalError(w, r, "create message", err)
		return
	}
	utils.JSON(w, http.StatusCreated, m)
}

// Get handles GET /api/messages/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, m)
}

// Update edits an unsent draft.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	if m.Sent {
		utils.Error(w, http.StatusBadRequest, "Message already sent")
		return
	}
	var req updateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Repository.UpdateDraft(h.DB.WithContext(r.Context()), m, req.Subject, req.Body); err != nil {
		utils.InternalError(w, r, "update message", err)
		return
	}
	utils.JSON(w, http.StatusOK, m)
}

// Delete removes an unsent draft. Sent messages are part of the lead history
// and cannot be deleted.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	if m.Sent {
		utils.Error(w, http.StatusBadRequest, "Message already sent")
		return
	}
	if err := h.Repository.Delete(h.DB.WithContext(r.Context()), m.ID); err != nil {
		utils.InternalError(w, r, "delete message", err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*models.Message, bool) {
	dealer, _ := auth.DealerFromContext(r.Context())
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid message id")
		return nil, false
	}
	m, err := h.Repository.FindForDealer(h.DB.WithContext(r.Context()), dealer.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, http.StatusNotFound, "Message not found")
		return nil, false
	}
	if err != nil {
		utils.InternalError(w, r, "load message", err)
		return nil, false
	}
	return m, true
}

func (h *Handler) leadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, http.StatusNotFound, "Lead not found")
		return
	}
	utils.InternalError(w, r, "load lead", err)
}
