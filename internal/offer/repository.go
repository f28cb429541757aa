package offer

import (
	"github.com/revomotors/api-leads/internal/models"
	"gorm.io/gorm"
)

type Repository interface {
	ListForDealer(db *gorm.DB, dealerID, leadID uint) ([]models.Offer, error)
	FindForDealer(db *gorm.DB, dealerID, id uint) (*models.Offer, error)
	Latest(db *gorm.DB, leadID uint) (*models.Offer, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// ListForDealer returns offers newest first; leadID 0 means every lead.
func (r *repositoryImpl) ListForDealer(db *gorm.DB, dealerID, leadID uint) ([]models.Offer, error) {
	q := db.Where("dealer_id = ?", dealerID)
	if leadID != 0 {
		q = q.Where("lead_id = ?", leadID)
	}
	var offers []models.Offer
	err := q.Order("created_at DESC").Order("id DESC").Find(&offers).Error
	return offers, err
}

func (r *repositoryImpl) FindForDealer(db *gorm.DB, dealerID, id uint) (*models.Offer, error) {
	var o models.Offer
	if err := db.Where("id = ? AND dealer_id = ?", id, dealerID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repositoryImpl) Latest(db *gorm.DB, leadID uint) (*models.Offer, error) {
	var o models.Offer
	if err := db.Where("lead_id = ?", leadID).Order("created_at DESC").Order("id DESC").First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}
