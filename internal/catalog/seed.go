package catalog

import (
	"context"
	"fmt"

	"github.com/revomotors/api-leads/internal/models"
	"gorm.io/gorm"
)

type SeedResult struct {
	Makes  int
	Models int
}

// Seed upserts every make, model and attribute of f. Running it twice leaves
// the tables unchanged; a model's attribute sets are replaced by the file's.
func Seed(ctx context.Context, db *gorm.DB, f *File) (SeedResult, error) {
	var res SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, me := range f.Makes {
			mk := models.Make{Name: me.Name}
			if err := tx.Where(models.Make{Name: me.Name}).FirstOrCreate(&mk).Error; err != nil {
				return fmt.Errorf("seed make %s: %w", me.Name, err)
			}
			res.Makes++
			for _, e := range me.Models {
				if err := seedModel(tx, mk.ID, e); err != nil {
					return fmt.Errorf("seed model %s %s: %w", me.Name, e.Name, err)
				}
				res.Models++
			}
		}
		return nil
	})
	return res, err
}

func seedModel(tx *gorm.DB, makeID uint, e ModelEntry) error {
	m := models.VehicleModel{MakeID: makeID, Name: e.Name}
	err := tx.Where(models.VehicleModel{MakeID: makeID, Name: e.Name}).
		Assign(models.VehicleModel{YearMin: e.Years.From, YearMax: e.Years.To}).
		FirstOrCreate(&m).Error
	if err != nil {
		return err
	}

	trims := make([]models.Trim, 0, len(e.Trims))
	for _, name := range e.Trims {
		t := models.Trim{Name: name}
		if err := tx.Where(models.Trim{Name: name}).FirstOrCreate(&t).Error; err != nil {
			return err
		}
		trims = append(trims, t)
	}
	bodies := make([]models.BodyType, 0, len(e.BodyTypes))
	for _, name := range e.BodyTypes {
		b := models.BodyType{Name: name}
		if err := tx.Where(models.BodyType{Name: name}).FirstOrCreate(&b).Error; err != nil {
			return err
		}
		bodies = append(bodies, b)
	}
	gearboxes := make([]models.Transmission, 0, len(e.Transmissions))
	for _, name := range e.Transmissions {
		t := models.Transmission{Name: name}
		if err := tx.Where(models.Transmission{Name: name}).FirstOrCreate(&t).Error; err != nil {
			return err
		}
		gearboxes = append(gearboxes, t)
	}
	fuels := make([]models.FuelType, 0, len(e.FuelTypes))
	for _, name := range e.FuelTypes {
		f := models.FuelType{Name: name}
		if err := tx.Where(models.FuelType{Name: name}).FirstOrCreate(&f).Error; err != nil {
			return err
		}
		fuels = append(fuels, f)
	}

	if err := tx.Model(&m).Association("Trims").Replace(trims); err != nil {
		return err
	}
	if err := tx.Model(&m).Association("BodyTypes").Replace(bodies); err != nil {
		return err
	}
	if err := tx.Model(&m).Association("Transmissions").Replace(gearboxes); err != nil {
		return err
	}
	return tx.Model(&m).Association("FuelTypes").Replace(fuels)
}
