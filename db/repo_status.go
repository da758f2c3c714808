package db

import (
	"context"
	"fmt"

	"invensys/lifecycle"
	"invensys/models"

	"gorm.io/gorm"
)

// SeedStatuses inserts any missing vocabulary rows. Existing rows keep their ids.
func SeedStatuses(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range lifecycle.All {
			row := models.LaptopStatus{Name: string(s)}
			if err := tx.Where("name = ?", row.Name).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed status %q: %w", s, err)
			}
		}
		return nil
	})
}

// LoadVocabulary resolves the status rows into stable ids. It fails if any
// lifecycle status is missing, which must stop the process.
func LoadVocabulary(ctx context.Context, db *gorm.DB) (*lifecycle.Vocabulary, error) {
	var rows []models.LaptopStatus
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]uint, len(rows))
	for _, row := range rows {
		byName[row.Name] = row.ID
	}
	return lifecycle.NewVocabulary(byName)
}

func (r *Repo) ListStatuses(ctx context.Context) ([]models.LaptopStatus, error) {
	var rows []models.LaptopStatus
	err := r.DB.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func (r *Repo) statusID(s lifecycle.Status) (uint, error) {
	id, err := r.Vocab.ID(s)
	if err != nil {
		return 0, translate(err, "status "+string(s))
	}
	return id, nil
}
