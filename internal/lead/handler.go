package lead

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/revomotors/api-leads/internal/auth"
	"github.com/revomotors/api-leads/internal/estimator"
	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/notification"
	"github.com/revomotors/api-leads/internal/outreach"
	"github.com/revomotors/api-leads/internal/utils"
	"gorm.io/gorm"
)

type Options struct {
	Matching      string
	WebhookSecret string
}

// Handler serves the dealer lead endpoints and the ingestion webhook.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Estimator  *estimator.Estimator
	Sender     notification.Sender
	Options    Options

	now func() time.Time
}

func NewHandler(db *gorm.DB, est *estimator.Estimator, sender notification.Sender, opts Options) *Handler {
	if opts.Matching == "" {
		opts.Matching = MatchVerified
	}
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Estimator:  est,
		Sender:     sender,
		Options:    opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// parseListFilter reads ?source= and ?status=. Unknown values are errors.
func parseListFilter(r *http.Request) (ListFilter, error) {
	var f ListFilter
	switch source := strings.TrimSpace(r.URL.Query().Get("source")); source {
	case "":
	case "marketplace":
		f.MarketplaceOnly = true
	case string(models.SourceHotLead):
		f.HotOnly = true
	default:
		src, err := models.ParseSource(source)
		if err != nil {
			return f, err
		}
		f.Source = src
	}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		st, err := models.ParseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	return f, nil
}

// ListLeads returns the caller's leads, newest first.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	dealer, _ := auth.DealerFromContext(r.Context())
	filter, err := parseListFilter(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	db := h.DB.WithContext(r.Context())
	leads, err := h.Repository.ListForDealer(db, dealer.ID, filter)
	if err != nil {
		utils.InternalError(w, r, "list leads", err)
		return
	}
	ids := make([]uint, len(leads))
	for i, l := range leads {
		ids[i] = l.ID
	}
	latest, err := h.Repository.LatestMessages(db, ids)
	if err != nil {
		utils.InternalError(w, r, "latest messages", err)
		return
	}

	out := make([]SummaryDTO, 0, len(leads))
	for i := range leads {
		var msg *models.Message
		if m, ok := latest[leads[i].ID]; ok {
			msg = &m
		}
		out = append(out, summaryDTO(&leads[i], msg))
	}
	utils.JSON(w, http.StatusOK, ListResponse{Total: len(out), Leads: out})
}

// loadLead resolves {id} to a lead owned by the caller, writing 400/404 on
// failure.
func (h *Handler) loadLead(w http.ResponseWriter, r *http.Request) (*models.DealerProfile, *models.Lead, bool) {
	dealer, _ := auth.DealerFromContext(r.Context())
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid lead id")
		return nil, nil, false
	}
	l, err := h.Repository.FindForDealer(h.DB.WithContext(r.Context()), dealer.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, http.StatusNotFound, "Lead not found")
		return nil, nil, false
	}
	if err != nil {
		utils.InternalError(w, r, "load lead", err)
		return nil, nil, false
	}
	return dealer, l, true
}

// GetLead returns the lead with its full message thread.
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	_, l, ok := h.loadLead(w, r)
	if !ok {
		return
	}
	thread, err := h.Repository.Thread(h.DB.WithContext(r.Context()), l.ID)
	if err != nil {
		utils.InternalError(w, r, "load thread", err)
		return
	}
	utils.JSON(w, http.StatusOK, detailDTO(l, thread))
}

type generateRequest struct {
	MessageType string `json:"message_type"`
}

type DraftResponse struct {
	MessageID     uint   `json:"message_id"`
	Type          string `json:"type"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	GeneratedByAI bool   `json:"generated_by_ai"`
}

// GenerateMessage returns the unsent draft of the requested type, creating
// it from the template when none exists.
func (h *Handler) GenerateMessage(w http.ResponseWriter, r *http.Request) {
	dealer, l, ok := h.loadLead(w, r)
	if !ok {
		return
	}
	var req generateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.MessageType == "" {
		req.MessageType = r.URL.Query().Get("message_type")
	}
	messageType := outreach.ResolveType(req.MessageType)

	db := h.DB.WithContext(r.Context())
	existing, err := h.Repository.FindUnsentDraft(db, l.ID, messageType)
	if err == nil {
		utils.JSON(w, http.StatusOK, draftResponse(existing))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalError(w, r, "find draft", err)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	draft, err := outreach.Render(messageType, leadContext(l, dealer, user))
	if err != nil {
		utils.InternalError(w, r, "render template", err)
		return
	}
	msg := &models.Message{
		LeadID:        l.ID,
		DealerID:      dealer.ID,
		MessageType:   messageType,
		Subject:       draft.Subject,
		Body:          draft.Body,
		GeneratedByAI: true,
		Channel:       models.ChannelEmail,
	}
	if err := db.Create(msg).Error; err != nil {
		utils.InternalError(w, r, "save draft", err)
		return
	}
	utils.JSON(w, http.StatusOK, draftResponse(msg))
}

func draftResponse(m *models.Message) DraftResponse {
	return DraftResponse{
		MessageID:     m.ID,
		Type:          m.MessageType,
		Subject:       m.Subject,
		Body:          m.Body,
		GeneratedByAI: m.GeneratedByAI,
	}
}

// leadContext prefers the dealer's own offer over the computed fair value.
func leadContext(l *models.Lead, dealer *models.DealerProfile, user *models.User) outreach.LeadContext {
	ctx := outreach.LeadContext{
		OfferAmount:    l.AIOfferFair,
		DealershipName: dealer.CompanyName,
		DealerPhone:    dealer.Phone,
	}
	if l.DealerOfferAmount != nil {
		ctx.OfferAmount = *l.DealerOfferAmount
	}
	if user != nil {
		ctx.DealerName = user.FullName()
	}
	if l.Listing != nil {
		ctx.Year = l.Listing.Year
		ctx.Make = l.Listing.Make
		ctx.Model = l.Listing.Model
		ctx.Mileage = l.Listing.Mileage
		ctx.SellerName = l.Listing.SellerName
	}
	return ctx
}

type sendRequest struct {
	MessageID   uint    `json:"message_id"`
	UpdatedBody *string `json:"updated_body"`
}

type SendResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// SendMessage marks a draft as sent, advances the lead to contacted and
// hands the message to the configured sender.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	dealer, l, ok := h.loadLead(w, r)
	if !ok {
		return
	}
	var req sendRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	if req.MessageID == 0 {
		if id, err := strconv.ParseUint(q.Get("message_id"), 10, 64); err == nil {
			req.MessageID = uint(id)
		}
	}
	if req.UpdatedBody == nil && q.Has("updated_body") {
		body := q.Get("updated_body")
		req.UpdatedBody = &body
	}
	if req.MessageID == 0 {
		utils.Error(w, http.StatusBadRequest, "message_id is required")
		return
	}

	now := h.now()
	var msg *models.Message
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		msg, err = h.Repository.FindMessage(tx, l.ID, req.MessageID)
		if err != nil {
			return err
		}
		if req.UpdatedBody != nil && *req.UpdatedBody != "" && *req.UpdatedBody != msg.Body {
			msg.Body = *req.UpdatedBody
			msg.ModifiedByDealer = true
		}
		msg.Sent = true
		msg.SentAt = &now
		if err := tx.Save(msg).Error; err != nil {
			return err
		}

		if !l.FirstContactSent {
			l.FirstContactSent = true
			l.FirstContactAt = &now
		}
		first := now
		if l.FirstContactAt != nil {
			first = *l.FirstContactAt
		}
		l.LastContactAt = &now
		l.Status = models.StatusContacted
		l.NextFollowupAt = outreach.NextFollowUp(preferences(dealer), first, now)
		return tx.Model(l).Select(
			"first_contact_sent", "first_contact_at", "last_contact_at", "status", "next_followup_at", "updated_at",
		).Updates(l).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		utils.InternalError(w, r, "send message", err)
		return
	}

	out := notification.Outbound{
		MessageID: msg.ID,
		LeadID:    l.ID,
		DealerID:  dealer.ID,
		Channel:   msg.Channel,
		Subject:   msg.Subject,
		Body:      msg.Body,
		SentAt:    now,
	}
	if l.Listing != nil {
		out.To = l.Listing.SellerEmail
	}
	if err := h.Sender.Send(r.Context(), out); err != nil {
		slog.Warn("message dispatch failed", "lead_id", l.ID, "message_id", msg.ID, "error", err)
	}

	utils.JSON(w, http.StatusOK, SendResponse{Success: true, Message: "Message sent successfully", SentAt: now})
}

func preferences(d *models.DealerProfile) outreach.Preferences {
	return outreach.Preferences{
		AutoFollowupEnabled: d.AutoFollowupEnabled,
		Day1:                d.FollowupDay1,
		Day3:                d.FollowupDay3,
		Day7:                d.FollowupDay7,
	}
}

type offerRequest struct {
	OfferAmount float64 `json:"offer_amount" validate:"gt=0"`
	Note        string  `json:"note"`
}

type OfferResponse struct {
	Success           bool    `json:"success"`
	LeadID            uint    `json:"lead_id"`
	OfferID           uint    `json:"offer_id"`
	DealerOfferAmount float64 `json:"dealer_offer_amount"`
}

// UpdateOffer stores the dealer's counter-offer and appends it to the
// offer history.
func (h *Handler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	dealer, l, ok := h.loadLead(w, r)
	if !ok {
		return
	}
	var req offerRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OfferAmount == 0 {
		if v, err := strconv.ParseFloat(r.URL.Query().Get("offer_amount"), 64); err == nil {
			req.OfferAmount = v
		}
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	offer, err := RecordOffer(h.DB.WithContext(r.Context()), l, dealer.ID, req.OfferAmount, req.Note)
	if err != nil {
		utils.InternalError(w, r, "update offer", err)
		return
	}
	utils.JSON(w, http.StatusOK, OfferResponse{
		Success:           true,
		LeadID:            l.ID,
		OfferID:           offer.ID,
		DealerOfferAmount: req.OfferAmount,
	})
}

// RecordOffer sets the lead's current dealer offer and appends it to the
// offer history in one transaction.
func RecordOffer(db *gorm.DB, l *models.Lead, dealerID uint, amount float64, note string) (*models.Offer, error) {
	offer := &models.Offer{LeadID: l.ID, DealerID: dealerID, Amount: amount, Note: note}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(l).Update("dealer_offer_amount", amount).Error; err != nil {
			return err
		}
		return tx.Create(offer).Error
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus moves a lead to any status of the pipeline.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	_, l, ok := h.loadLead(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.DB.WithContext(r.Context()).Model(l).Update("status", status).Error; err != nil {
		utils.InternalError(w, r, "update status", err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"success": true, "lead_id": l.ID, "status": status})
}
