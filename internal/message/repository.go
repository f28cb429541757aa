package message

import (
	"github.com/revomotors/api-leads/internal/models"
	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, m *models.Message) error
	ListForDealer(db *gorm.DB, dealerID uint, leadID uint) ([]models.Message, error)
	FindForDealer(db *gorm.DB, dealerID, id uint) (*models.Message, error)
	UpdateDraft(db *gorm.DB, m *models.Message, subject, body *string) error
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, m *models.Message) error {
	return db.Create(m).Error
}

// ListForDealer returns the dealer's messages oldest first; leadID 0 means
// every lead.
func (r *repositoryImpl) ListForDealer(db *gorm.DB, dealerID uint, leadID uint) ([]models.Message, error) {
	q := db.Where("dealer_id = ?", dealerID)
	if leadID != 0 {
		q = q.Where("lead_id = ?", leadID)
	}
	var msgs []models.Message
	err := q.Order("created_at ASC").Order("id ASC").Find(&msgs).Error
	return msgs, err
}

func (r *repositoryImpl) FindForDealer(db *gorm.DB, dealerID, id uint) (*models.Message, error) {
	var m models.Message
	if err := db.Where("id = ? AND dealer_id = ?", id, dealerID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repositoryImpl) UpdateDraft(db *gorm.DB, m *models.Message, subject, body *string) error {
	updates := map[string]any{}
	if subject != nil {
		updates["subject"] = *subject
		m.Subject = *subject
	}
	if body != nil && *body != m.Body {
		updates["body"] = *body
		updates["modified_by_dealer"] = true
		m.Body = *body
		m.ModifiedByDealer = true
	}
	if len(updates) == 0 {
		return nil
	}
	return db.Model(m).Updates(updates).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&models.Message{}, id).Error
}
