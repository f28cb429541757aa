package lead

import (
	"github.com/revomotors/api-leads/internal/models"
	"gorm.io/gorm"
)

// ListFilter narrows a dealer's lead list. Zero values mean "any".
type ListFilter struct {
	HotOnly         bool
	MarketplaceOnly bool
	Source          models.LeadSource
	Status          models.LeadStatus
}

type Repository interface {
	ListForDealer(db *gorm.DB, dealerID uint, f ListFilter) ([]models.Lead, error)
	FindForDealer(db *gorm.DB, dealerID, leadID uint) (*models.Lead, error)
	LatestMessages(db *gorm.DB, leadIDs []uint) (map[uint]models.Message, error)
	Thread(db *gorm.DB, leadID uint) ([]models.Message, error)
	FindUnsentDraft(db *gorm.DB, leadID uint, messageType string) (*models.Message, error)
	FindMessage(db *gorm.DB, leadID, messageID uint) (*models.Message, error)
	CountByStatus(db *gorm.DB, dealerID uint) (map[models.LeadStatus]int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) ListForDealer(db *gorm.DB, dealerID uint, f ListFilter) ([]models.Lead, error) {
	q := db.Preload("Listing").Where("dealer_id = ?", dealerID)

	listings := db.Session(&gorm.Session{NewDB: true}).Model(&models.CarListing{}).Select("id")
	switch {
	case f.Source != "":
		q = q.Where("listing_id IN (?)", listings.Where("source = ?", f.Source))
	case f.HotOnly:
		q = q.Where("listing_id IN (?)", listings.Where("source = ?", models.SourceHotLead))
	case f.MarketplaceOnly:
		q = q.Where("listing_id IN (?)", listings.Where("source <> ?", models.SourceHotLead))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var leads []models.Lead
	err := q.Order("created_at DESC").Order("id DESC").Find(&leads).Error
	return leads, err
}

func (r *repositoryImpl) FindForDealer(db *gorm.DB, dealerID, leadID uint) (*models.Lead, error) {
	var l models.Lead
	err := db.Preload("Listing").
		Where("id = ? AND dealer_id = ?", leadID, dealerID).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// LatestMessages returns the newest message of each lead, keyed by lead id.
func (r *repositoryImpl) LatestMessages(db *gorm.DB, leadIDs []uint) (map[uint]models.Message, error) {
	out := make(map[uint]models.Message, len(leadIDs))
	if len(leadIDs) == 0 {
		return out, nil
	}
	var msgs []models.Message
	err := db.Where("lead_id IN ?", leadIDs).
		Order("created_at DESC").Order("id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		if _, seen := out[m.LeadID]; !seen {
			out[m.LeadID] = m
		}
	}
	return out, nil
}

// Thread returns every message of a lead, oldest first.
func (r *repositoryImpl) Thread(db *gorm.DB, leadID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := db.Where("lead_id = ?", leadID).
		Order("created_at ASC").Order("id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *repositoryImpl) FindUnsentDraft(db *gorm.DB, leadID uint, messageType string) (*models.Message, error) {
	var m models.Message
	err := db.Where("lead_id = ? AND message_type = ? AND sent = ?", leadID, messageType, false).
		Order("id ASC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repositoryImpl) FindMessage(db *gorm.DB, leadID, messageID uint) (*models.Message, error) {
	var m models.Message
	err := db.Where("id = ? AND lead_id = ?", messageID, leadID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repositoryImpl) CountByStatus(db *gorm.DB, dealerID uint) (map[models.LeadStatus]int64, error) {
	var rows []struct {
		Status models.LeadStatus
		Count  int64
	}
	err := db.Model(&models.Lead{}).
		Select("status, COUNT(*) AS count").
		Where("dealer_id = ?", dealerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[models.LeadStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
