package lead

import (
	"slices"
	"strings"

	"github.com/revomotors/api-leads/internal/models"
	"gorm.io/gorm"
)

const (
	MatchVerified = "verified"
	MatchFilters  = "filters"
)

// MatchDealers returns the dealers that should receive a lead for listing.
// Only verified dealers are ever matched. In filters mode a dealer is kept
// when it has no active filter or at least one active filter accepts the
// listing.
func MatchDealers(db *gorm.DB, listing *models.CarListing, mode string) ([]models.DealerProfile, error) {
	var dealers []models.DealerProfile
	err := db.Where("verification_status = ?", models.VerificationVerified).
		Order("id ASC").
		Find(&dealers).Error
	if err != nil || mode != MatchFilters || len(dealers) == 0 {
		return dealers, err
	}

	ids := make([]uint, len(dealers))
	for i, d := range dealers {
		ids[i] = d.ID
	}
	var filters []models.DealerMarketplaceFilter
	if err := db.Where("dealer_id IN ? AND is_active = ?", ids, true).Find(&filters).Error; err != nil {
		return nil, err
	}
	byDealer := make(map[uint][]models.DealerMarketplaceFilter)
	for _, f := range filters {
		byDealer[f.DealerID] = append(byDealer[f.DealerID], f)
	}

	matched := dealers[:0]
	for _, d := range dealers {
		fs := byDealer[d.ID]
		if len(fs) == 0 || slices.ContainsFunc(fs, func(f models.DealerMarketplaceFilter) bool { return Accepts(f, listing) }) {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

// Accepts reports whether a single filter lets listing through. Empty
// criteria match anything. Radius is not evaluated; zip codes must match
// exactly.
func Accepts(f models.DealerMarketplaceFilter, l *models.CarListing) bool {
	if !f.SourceEnabled(l.Source) {
		return false
	}
	if len(f.Makes) > 0 && !containsFold(f.Makes, l.Make) {
		return false
	}
	if len(f.Models) > 0 && !containsFold(f.Models, l.Model) {
		return false
	}
	if f.YearMin != nil && l.Year < *f.YearMin {
		return false
	}
	if f.YearMax != nil && l.Year > *f.YearMax {
		return false
	}
	if f.MileageMax != nil && l.Mileage > *f.MileageMax {
		return false
	}
	if l.AskingPrice != nil {
		if f.PriceMin != nil && *l.AskingPrice < *f.PriceMin {
			return false
		}
		if f.PriceMax != nil && *l.AskingPrice > *f.PriceMax {
			return false
		}
	}
	if len(f.ZipCodes) > 0 && !slices.Contains(f.ZipCodes, strings.TrimSpace(l.ZipCode)) {
		return false
	}
	return true
}

func containsFold(list []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}
