// db/repo_laptop.go
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invensys/lifecycle"
	"invensys/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateLaptopInput struct {
	Brand          string
	Model          string
	SerialNumber   string
	Name           string
	AssetTag       string
	StatusID       *uint // 为空时默认 Available
	BusinessUnitID *string
}

func (r *Repo) CreateLaptop(ctx context.Context, actorID string, in CreateLaptopInput) (*models.Laptop, error) {
	var statusID uint
	if in.StatusID != nil {
		if _, err := r.Vocab.Status(*in.StatusID); err != nil {
			return nil, translate(err, "status")
		}
		statusID = *in.StatusID
	} else {
		id, err := r.statusID(lifecycle.Available)
		if err != nil {
			return nil, err
		}
		statusID = id
	}

	lp := &models.Laptop{
		ID:             uuid.NewString(),
		Brand:          strings.TrimSpace(in.Brand),
		Model:          strings.TrimSpace(in.Model),
		SerialNumber:   strings.TrimSpace(in.SerialNumber),
		Name:           strings.ToLower(strings.TrimSpace(in.Name)),
		AssetTag:       strings.TrimSpace(in.AssetTag),
		StatusID:       statusID,
		BusinessUnitID: in.BusinessUnitID,
	}
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(lp).Error; err != nil {
		return nil, translate(err, "laptop "+lp.SerialNumber)
	}
	r.Log.Info("laptop added",
		zap.String("actor_id", actorID),
		zap.String("laptop_id", lp.ID),
		zap.String("laptop", describeLaptop(lp)))
	return r.GetLaptop(ctx, lp.ID)
}

func (r *Repo) GetLaptop(ctx context.Context, id string) (*models.Laptop, error) {
	var lp models.Laptop
	if err := r.DB.WithContext(ctx).Preload("Status").First(&lp, "id = ?", id).Error; err != nil {
		return nil, translate(err, "laptop")
	}
	return &lp, nil
}

func (r *Repo) FindLaptopBySerial(ctx context.Context, serial string) (*models.Laptop, error) {
	var lp models.Laptop
	if err := r.DB.WithContext(ctx).Preload("Status").First(&lp, "serial_number = ?", strings.TrimSpace(serial)).Error; err != nil {
		return nil, translate(err, "laptop "+serial)
	}
	return &lp, nil
}

type LaptopFilter struct {
	Status         *lifecycle.Status
	BusinessUnitID string
}

func (r *Repo) ListLaptops(ctx context.Context, f LaptopFilter) ([]models.Laptop, error) {
	q := r.DB.WithContext(ctx).Model(&models.Laptop{}).Preload("Status").Order("created_at DESC")
	if f.Status != nil {
		id, err := r.statusID(*f.Status)
		if err != nil {
			return nil, err
		}
		q = q.Where("status_id = ?", id)
	}
	if f.BusinessUnitID != "" {
		q = q.Where("business_unit_id = ?", f.BusinessUnitID)
	}
	var laptops []models.Laptop
	if err := q.Find(&laptops).Error; err != nil {
		return nil, err
	}
	return laptops, nil
}

// ChangeLaptopStatus is the operator-driven transition. It consults the
// policy's CheckChange guard; the permissive policy does not look at open
// allocations.
func (r *Repo) ChangeLaptopStatus(ctx context.Context, actorID, laptopID string, newStatusID uint) (*models.Laptop, error) {
	var from, to lifecycle.Status
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lp, err := lockLaptop(tx, laptopID)
		if err != nil {
			return err
		}
		if to, err = r.Vocab.Status(newStatusID); err != nil {
			return translate(err, "status")
		}
		if from, err = r.Vocab.Status(lp.StatusID); err != nil {
			return translate(err, "current status")
		}
		if err := r.Policy.CheckChange(from, to); err != nil {
			return translate(err, "laptop "+lp.SerialNumber)
		}
		return setLaptopStatus(tx, lp.ID, newStatusID, r.Clock.Now())
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("laptop status changed",
		zap.String("actor_id", actorID),
		zap.String("laptop_id", laptopID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return r.GetLaptop(ctx, laptopID)
}

// DeleteLaptop is an administrative override and does not consult the
// lifecycle. Storage still refuses to drop a laptop referenced by ledger rows.
func (r *Repo) DeleteLaptop(ctx context.Context, actorID, id string) (*models.Laptop, error) {
	lp, err := r.GetLaptop(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Delete(&models.Laptop{ID: id}).Error; err != nil {
		return nil, translate(err, "laptop "+lp.SerialNumber)
	}
	r.Log.Info("laptop deleted",
		zap.String("actor_id", actorID),
		zap.String("laptop", describeLaptop(lp)))
	return lp, nil
}

// 锁住 laptop 行；SQLite 方言会忽略 FOR UPDATE
func lockLaptop(tx *gorm.DB, id string) (*models.Laptop, error) {
	var lp models.Laptop
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lp, "id = ?", id).Error; err != nil {
		return nil, translate(err, "laptop")
	}
	return &lp, nil
}

func setLaptopStatus(tx *gorm.DB, laptopID string, statusID uint, now time.Time) error {
	res := tx.Model(&models.Laptop{}).
		Where("id = ?", laptopID).
		Updates(map[string]any{"status_id": statusID, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("laptop")
	}
	return nil
}

func describeLaptop(lp *models.Laptop) string {
	return fmt.Sprintf("%s %s %s", lp.Brand, lp.Model, lp.SerialNumber)
}
