package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/revomotors/api-leads/internal/models"
	"gorm.io/gorm"
)

// Database serves the catalog from the taxonomy tables filled by Seed.
type Database struct {
	DB *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{DB: db}
}

func (d *Database) Makes(ctx context.Context) ([]string, error) {
	var names []string
	if err := d.DB.WithContext(ctx).Model(&models.Make{}).Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return sorted(names), nil
}

func (d *Database) findMake(db *gorm.DB, name string) (*models.Make, error) {
	var mk models.Make
	err := db.Where("LOWER(name) = LOWER(?)", name).First(&mk).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mk, nil
}

func (d *Database) Models(ctx context.Context, makeName string) ([]string, error) {
	db := d.DB.WithContext(ctx)
	mk, err := d.findMake(db, makeName)
	if err != nil || mk == nil {
		return nil, err
	}
	var names []string
	if err := db.Model(&models.VehicleModel{}).Where("make_id = ?", mk.ID).Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return sorted(names), nil
}

func byID(db *gorm.DB) *gorm.DB { return db.Order("id") }

func (d *Database) Vehicle(ctx context.Context, makeName, model string) (Vehicle, bool, error) {
	db := d.DB.WithContext(ctx)
	mk, err := d.findMake(db, makeName)
	if err != nil || mk == nil {
		return Vehicle{}, false, err
	}
	var m models.VehicleModel
	err = db.Preload("Trims", byID).
		Preload("BodyTypes", byID).
		Preload("Transmissions", byID).
		Preload("FuelTypes", byID).
		Where("make_id = ? AND LOWER(name) = LOWER(?)", mk.ID, model).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Vehicle{}, false, nil
	}
	if err != nil {
		return Vehicle{}, false, err
	}

	v := Vehicle{
		Make:          mk.Name,
		Model:         m.Name,
		Years:         YearRange{From: m.YearMin, To: m.YearMax}.Descending(),
		Trims:         make([]string, 0, len(m.Trims)),
		BodyTypes:     make([]string, 0, len(m.BodyTypes)),
		Transmissions: make([]string, 0, len(m.Transmissions)),
		FuelTypes:     make([]string, 0, len(m.FuelTypes)),
	}
	for _, t := range m.Trims {
		v.Trims = append(v.Trims, t.Name)
	}
	for _, b := range m.BodyTypes {
		v.BodyTypes = append(v.BodyTypes, b.Name)
	}
	for _, t := range m.Transmissions {
		v.Transmissions = append(v.Transmissions, t.Name)
	}
	for _, f := range m.FuelTypes {
		v.FuelTypes = append(v.FuelTypes, f.Name)
	}
	return v, true, nil
}

// Search walks makes and models in insertion order, which Seed keeps equal
// to the YAML order.
func (d *Database) Search(ctx context.Context, query string) ([]Match, error) {
	var makes []models.Make
	err := d.DB.WithContext(ctx).Preload("Models", byID).Order("id").Find(&makes).Error
	if err != nil {
		return nil, err
	}
	entries := make([]MakeEntry, 0, len(makes))
	for _, mk := range makes {
		e := MakeEntry{Name: mk.Name, Models: make([]ModelEntry, 0, len(mk.Models))}
		for _, m := range mk.Models {
			e.Models = append(e.Models, ModelEntry{Name: m.Name})
		}
		entries = append(entries, e)
	}
	return search(entries, query), nil
}

// Attribute lists only values attached to at least one model.
func (d *Database) Attribute(ctx context.Context, attr Attribute) ([]string, error) {
	var table, join, fk string
	switch attr {
	case BodyTypes:
		table, join, fk = "body_types", "model_body_types", "body_type_id"
	case Transmissions:
		table, join, fk = "transmissions", "model_transmissions", "transmission_id"
	case FuelTypes:
		table, join, fk = "fuel_types", "model_fuel_types", "fuel_type_id"
	default:
		return nil, fmt.Errorf("unknown catalog attribute %q", attr)
	}
	var names []string
	err := d.DB.WithContext(ctx).Table(table).
		Where(fmt.Sprintf("id IN (SELECT %s FROM %s)", fk, join)).
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return distinctSorted(names), nil
}
