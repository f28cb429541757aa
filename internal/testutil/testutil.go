// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/utils"
	"github.com/revomotors/api-leads/internal/utils/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory sqlite database unique to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the shared-cache database free of table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return database
}

// CreateDealer inserts a dealer user with its profile.
func CreateDealer(t *testing.T, database *gorm.DB, email, status string) (*models.User, *models.DealerProfile) {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{Email: email, PasswordHash: hash, Role: models.RoleDealer, FirstName: "Dana", LastName: "Dealer"}
	if err := database.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := &models.DealerProfile{
		UserID:              user.ID,
		CompanyName:         "Dana Motors",
		DealershipName:      "Dana Motors LLC",
		Phone:               "555-0100",
		VerificationStatus:  status,
		AutoFollowupEnabled: true,
		FollowupDay1:        true,
		FollowupDay3:        true,
		FollowupDay7:        true,
	}
	if err := database.Create(profile).Error; err != nil {
		t.Fatalf("create dealer profile: %v", err)
	}
	return user, profile
}

// CreateSeller inserts a seller user with its profile.
func CreateSeller(t *testing.T, database *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Role: models.RoleSeller, FirstName: "Sam"}
	if err := database.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := database.Create(&models.SellerProfile{UserID: user.ID}).Error; err != nil {
		t.Fatalf("create seller profile: %v", err)
	}
	return user
}

// CreateListing inserts a 2020 Toyota Camry listing from src.
func CreateListing(t *testing.T, database *gorm.DB, src models.LeadSource) *models.CarListing {
	t.Helper()
	price := 18000.0
	listing := &models.CarListing{
		Title:       "2020 Toyota Camry",
		Year:        2020,
		Make:        "Toyota",
		Model:       "Camry",
		Trim:        "SE",
		Mileage:     30000,
		Condition:   "good",
		AskingPrice: &price,
		Region:      "normal",
		ZipCode:     "90210",
		Source:      src,
		SellerName:  "Pat",
	}
	if err := database.Create(listing).Error; err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return listing
}

// CreateLead inserts a lead for listing and dealer in the given status.
func CreateLead(t *testing.T, database *gorm.DB, listing *models.CarListing, dealer *models.DealerProfile, status models.LeadStatus) *models.Lead {
	t.Helper()
	lead := &models.Lead{
		ListingID:        listing.ID,
		DealerID:         dealer.ID,
		Status:           status,
		AIEstimatedValue: 15000,
		AIOfferLow:       12750,
		AIOfferFair:      15000,
		AIOfferHigh:      17250,
		AIRationale:      "test",
	}
	if err := database.Create(lead).Error; err != nil {
		t.Fatalf("create lead: %v", err)
	}
	return lead
}
