package db

import (
	"github.com/revomotors/api-leads/internal/models"
	"gorm.io/gorm"
)

// AllModels lists every table owned by the service, parents first.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.SellerProfile{},
		&models.DealerProfile{},
		&models.DealerMarketplaceFilter{},
		&models.DealerDocument{},
		&models.CarListing{},
		&models.Lead{},
		&models.Offer{},
		&models.Message{},
		&models.Make{},
		&models.VehicleModel{},
		&models.Trim{},
		&models.BodyType{},
		&models.Transmission{},
		&models.FuelType{},
	}
}

func AutoMigrate(database *gorm.DB) error {
	return database.AutoMigrate(AllModels()...)
}
