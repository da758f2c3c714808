// db/repo_repair.go
package db

import (
	"context"
	"strings"
	"time"

	"invensys/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

type CreateRepairInput struct {
	LaptopID        string
	Details         string
	FaultReportedAt time.Time
	RepairedAt      *time.Time
	Cost            decimal.Decimal
	Vendor          string
	RepairedBy      string
	WarrantyCovered bool
	InvoiceNumber   string
}

// CreateRepair records history only; the laptop status is left alone.
func (r *Repo) CreateRepair(ctx context.Context, actorID string, in CreateRepairInput) (*models.RepairEntry, error) {
	if _, err := r.GetLaptop(ctx, in.LaptopID); err != nil {
		return nil, err
	}
	e := &models.RepairEntry{
		ID:              uuid.NewString(),
		LaptopID:        in.LaptopID,
		Details:         in.Details,
		FaultReportedAt: in.FaultReportedAt.UTC(),
		RepairedAt:      in.RepairedAt,
		Cost:            in.Cost.Round(2),
		Vendor:          strings.TrimSpace(in.Vendor),
		RepairedBy:      in.RepairedBy,
		WarrantyCovered: in.WarrantyCovered,
		InvoiceNumber:   strings.TrimSpace(in.InvoiceNumber),
	}
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(e).Error; err != nil {
		return nil, translate(err, "repair entry")
	}
	r.Log.Info("repair recorded",
		zap.String("actor_id", actorID),
		zap.String("repair_id", e.ID),
		zap.String("laptop_id", e.LaptopID))
	return e, nil
}

func (r *Repo) GetRepair(ctx context.Context, id string) (*models.RepairEntry, error) {
	var e models.RepairEntry
	if err := r.DB.WithContext(ctx).Preload("Laptop").First(&e, "id = ?", id).Error; err != nil {
		return nil, translate(err, "repair entry")
	}
	return &e, nil
}

func (r *Repo) ListRepairs(ctx context.Context, laptopID string) ([]models.RepairEntry, error) {
	q := r.DB.WithContext(ctx).Order("fault_reported_at DESC")
	if laptopID != "" {
		q = q.Where("laptop_id = ?", laptopID)
	}
	var out []models.RepairEntry
	return out, q.Find(&out).Error
}
