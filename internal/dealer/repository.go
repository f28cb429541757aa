package dealer

import (
	"github.com/revomotors/api-leads/internal/models"
	"gorm.io/gorm"
)

type Repository interface {
	Update(db *gorm.DB, d *models.DealerProfile, fields map[string]any) error

	ActiveFilters(db *gorm.DB, dealerID uint) ([]models.DealerMarketplaceFilter, error)
	FindFilter(db *gorm.DB, dealerID, id uint) (*models.DealerMarketplaceFilter, error)
	CreateFilter(db *gorm.DB, f *models.DealerMarketplaceFilter) error
	SaveFilter(db *gorm.DB, f *models.DealerMarketplaceFilter) error
	DeleteFilter(db *gorm.DB, f *models.DealerMarketplaceFilter) error

	Documents(db *gorm.DB, dealerID uint) ([]models.DealerDocument, error)
	FindDocument(db *gorm.DB, dealerID, id uint) (*models.DealerDocument, error)
	CreateDocument(db *gorm.DB, doc *models.DealerDocument) error
	DeleteDocument(db *gorm.DB, doc *models.DealerDocument) error

	CountBySource(db *gorm.DB, dealerID uint) (hot, marketplace int64, err error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// Update writes through a map so false booleans are not skipped.
func (r *repositoryImpl) Update(db *gorm.DB, d *models.DealerProfile, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := db.Model(d).Updates(fields).Error; err != nil {
		return err
	}
	return db.First(d, d.ID).Error
}

func (r *repositoryImpl) ActiveFilters(db *gorm.DB, dealerID uint) ([]models.DealerMarketplaceFilter, error) {
	var filters []models.DealerMarketplaceFilter
	err := db.Where("dealer_id = ? AND is_active = ?", dealerID, true).Order("id ASC").Find(&filters).Error
	return filters, err
}

func (r *repositoryImpl) FindFilter(db *gorm.DB, dealerID, id uint) (*models.DealerMarketplaceFilter, error) {
	var f models.DealerMarketplaceFilter
	if err := db.Where("id = ? AND dealer_id = ?", id, dealerID).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repositoryImpl) CreateFilter(db *gorm.DB, f *models.DealerMarketplaceFilter) error {
	return db.Create(f).Error
}

// SaveFilter writes every column; the list columns need their serializer,
// which map based updates bypass.
func (r *repositoryImpl) SaveFilter(db *gorm.DB, f *models.DealerMarketplaceFilter) error {
	return db.Save(f).Error
}

func (r *repositoryImpl) DeleteFilter(db *gorm.DB, f *models.DealerMarketplaceFilter) error {
	return db.Delete(f).Error
}

func (r *repositoryImpl) Documents(db *gorm.DB, dealerID uint) ([]models.DealerDocument, error) {
	var docs []models.DealerDocument
	err := db.Where("dealer_id = ?", dealerID).Order("uploaded_at ASC").Order("id ASC").Find(&docs).Error
	return docs, err
}

func (r *repositoryImpl) FindDocument(db *gorm.DB, dealerID, id uint) (*models.DealerDocument, error) {
	var doc models.DealerDocument
	if err := db.Where("id = ? AND dealer_id = ?", id, dealerID).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repositoryImpl) CreateDocument(db *gorm.DB, doc *models.DealerDocument) error {
	return db.Create(doc).Error
}

func (r *repositoryImpl) DeleteDocument(db *gorm.DB, doc *models.DealerDocument) error {
	return db.Delete(doc).Error
}

// CountBySource splits a dealer's leads into hot leads and marketplace leads.
func (r *repositoryImpl) CountBySource(db *gorm.DB, dealerID uint) (int64, int64, error) {
	var row struct {
		Hot         int64
		Marketplace int64
	}
	err := db.Model(&models.Lead{}).
		Select("COALESCE(SUM(CASE WHEN car_listings.source = ? THEN 1 ELSE 0 END), 0) AS hot, "+
			"COALESCE(SUM(CASE WHEN car_listings.source <> ? THEN 1 ELSE 0 END), 0) AS marketplace",
			models.SourceHotLead, models.SourceHotLead).
		Joins("JOIN car_listings ON car_listings.id = leads.listing_id").
		Where("leads.dealer_id = ?", dealerID).
		Scan(&row).Error
	return row.Hot, row.Marketplace, err
}
