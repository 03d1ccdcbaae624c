package migrations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kendall-kelly/box-erp-api/models"
	"gorm.io/gorm"
)

// MoldPreset is a catalog entry for a standard box mold.
type MoldPreset struct {
	BoxType string
	Shape   string
	Length  float64
	Width   float64
	Height  float64
	Name    string
}

// MoldCatalog is the built-in list of mold presets, in millimetres.
var MoldCatalog = []MoldPreset{
	{BoxType: "kilitli_dip", Shape: "dikdortgen", Length: 200, Width: 150, Height: 100, Name: "Kilitli Dip 200x150x100"},
	{BoxType: "kilitli_dip", Shape: "dikdortgen", Length: 300, Width: 200, Height: 150, Name: "Kilitli Dip 300x200x150"},
	{BoxType: "kilitli_dip", Shape: "kare", Length: 150, Width: 150, Height: 150, Name: "Kilitli Dip 150x150x150"},
	{BoxType: "amerikan", Shape: "dikdortgen", Length: 400, Width: 300, Height: 300, Name: "Amerikan Koli 400x300x300"},
	{BoxType: "amerikan", Shape: "dikdortgen", Length: 600, Width: 400, Height: 400, Name: "Amerikan Koli 600x400x400"},
	{BoxType: "amerikan", Shape: "kare", Length: 300, Width: 300, Height: 300, Name: "Amerikan Koli 300x300x300"},
	{BoxType: "pizza", Shape: "kare", Length: 330, Width: 330, Height: 40, Name: "Pizza Kutusu 33cm"},
	{BoxType: "pizza", Shape: "kare", Length: 400, Width: 400, Height: 45, Name: "Pizza Kutusu 40cm"},
	{BoxType: "hamburger", Shape: "kare", Length: 120, Width: 120, Height: 80, Name: "Hamburger Kutusu"},
	{BoxType: "tepsi", Shape: "dikdortgen", Length: 250, Width: 180, Height: 50, Name: "Tepsi 250x180"},
	{BoxType: "cekmece", Shape: "dikdortgen", Length: 220, Width: 160, Height: 60, Name: "Çekmece Kutu 220x160x60"},
	{BoxType: "kapakli", Shape: "dikdortgen", Length: 280, Width: 200, Height: 90, Name: "Kapaklı Kutu 280x200x90"},
}

// SeedMolds inserts catalog presets that are not present yet.
// Presets are matched on box type, shape and dimensions.
func SeedMolds(ctx context.Context, db *gorm.DB, log *slog.Logger, catalog []MoldPreset) (int, error) {
	inserted := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, preset := range catalog {
			var count int64
			err := tx.Model(&models.ProductMold{}).
				Where("box_type = ? AND shape = ? AND length = ? AND width = ? AND height = ?",
					preset.BoxType, preset.Shape, preset.Length, preset.Width, preset.Height).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			mold := models.ProductMold{
				BoxType: preset.BoxType,
				Shape:   preset.Shape,
				Length:  preset.Length,
				Width:   preset.Width,
				Height:  preset.Height,
				Unit:    "mm",
				Name:    preset.Name,
			}
			if err := tx.Create(&mold).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed molds: %w", err)
	}

	if inserted > 0 {
		log.Info("mold presets seeded", slog.Int("inserted", inserted))
	}
	return inserted, nil
}
