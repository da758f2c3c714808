// db/repo_procurement.go
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"invensys/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 采购台账：每个操作都写审计，包括查不到的情况

type CreatePurchaseInput struct {
	LaptopID       string
	PurchaseDate   time.Time
	PurchaseOrder  string
	Vendor         string
	WarrantyExpiry time.Time
	Cost           decimal.Decimal
}

// Actor 审计需要的最少身份信息
type Actor struct {
	ID       string
	Username string
	IsAdmin  bool
}

func (r *Repo) CreatePurchase(ctx context.Context, actor Actor, in CreatePurchaseInput) (*models.Procurement, error) {
	rec := &models.Procurement{
		ID:             uuid.NewString(),
		LaptopID:       in.LaptopID,
		PurchaseDate:   in.PurchaseDate.UTC(),
		PurchaseOrder:  strings.TrimSpace(in.PurchaseOrder),
		Vendor:         strings.TrimSpace(in.Vendor),
		WarrantyExpiry: in.WarrantyExpiry.UTC(),
		Cost:           in.Cost.Round(2),
	}
	laptopMissing := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lp models.Laptop
		if err := tx.First(&lp, "id = ?", in.LaptopID).Error; err != nil {
			laptopMissing = errors.Is(err, gorm.ErrRecordNotFound)
			return translate(err, "laptop")
		}
		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return translate(err, "procurement record")
		}
		return r.writeAudit(tx, AuditInput{
			ActorID:  actor.ID,
			Action:   ActionCreatePurchase,
			Subject:  models.ProcurementTable,
			RecordID: rec.ID,
			Details:  fmt.Sprintf("%s: added procurement details of laptop (%s)", actor.Username, describeLaptop(&lp)),
		})
	})
	if laptopMissing {
		return nil, r.auditMiss(ctx, actor, ActionCreatePurchase, in.LaptopID,
			fmt.Sprintf("%s: failed to add procurement details, laptop %s not found", actor.Username, in.LaptopID),
			"laptop "+in.LaptopID)
	}
	if err != nil {
		return nil, err
	}
	r.Log.Info("procurement recorded",
		zap.String("actor_id", actor.ID),
		zap.String("record_id", rec.ID),
		zap.String("purchase_order", rec.PurchaseOrder))
	return rec, nil
}

// RecordExists is the quiet search run before a purchase-order upload. A miss
// is audited and committed before NotFound is returned.
func (r *Repo) RecordExists(ctx context.Context, actor Actor, id string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Procurement{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	return false, r.failedSearch(ctx, actor, id)
}

func (r *Repo) GetRecord(ctx context.Context, actor Actor, id string) (*models.Procurement, error) {
	var rec models.Procurement
	err := r.DB.WithContext(ctx).Preload("Laptop").First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, r.failedSearch(ctx, actor, id)
	}
	if err != nil {
		return nil, err
	}
	err = r.writeAudit(r.DB.WithContext(ctx), AuditInput{
		ActorID:  actor.ID,
		Action:   ActionRecordSearch,
		Subject:  models.ProcurementTable,
		RecordID: id,
		Details:  fmt.Sprintf("%s: selected record %s", actor.Username, id),
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) failedSearch(ctx context.Context, actor Actor, id string) error {
	return r.auditMiss(ctx, actor, ActionRecordSearch, id,
		fmt.Sprintf("%s: failed record search", actor.Username), "procurement record "+id)
}

// auditMiss 先提交审计，再返回 NotFound。业务事务已回滚，这里单独写
func (r *Repo) auditMiss(ctx context.Context, actor Actor, action, id, details, what string) error {
	err := r.writeAudit(r.DB.WithContext(ctx), AuditInput{
		ActorID:  actor.ID,
		Action:   action,
		Subject:  models.ProcurementTable,
		RecordID: id,
		Details:  details,
	})
	if err != nil {
		return err
	}
	r.Log.Warn("procurement lookup missed",
		zap.String("actor_id", actor.ID),
		zap.String("action", action),
		zap.String("id", id))
	return notFound(what)
}

type RecordSearch struct {
	PurchaseOrder string
	PurchaseDate  *time.Time // 按天匹配
	Vendor        string
}

func (r *Repo) SearchRecords(ctx context.Context, actor Actor, s RecordSearch) ([]models.Procurement, error) {
	details := actor.Username + " searched through the procurement records:"
	var recs []models.Procurement
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Procurement{}).Order("purchase_date DESC")
		if po := strings.TrimSpace(s.PurchaseOrder); po != "" {
			q = q.Where("purchase_order = ?", po)
			details += " purchase order = " + po
		}
		if s.PurchaseDate != nil {
			day := s.PurchaseDate.UTC().Truncate(24 * time.Hour)
			q = q.Where("purchase_date >= ? AND purchase_date < ?", day, day.Add(24*time.Hour))
			details += " purchase date = " + day.Format(time.DateOnly)
		}
		if v := strings.TrimSpace(s.Vendor); v != "" {
			q = q.Where("vendor = ?", v)
			details += " vendor = " + v
		}
		if err := q.Find(&recs).Error; err != nil {
			return err
		}
		return r.writeAudit(tx, AuditInput{
			ActorID:  actor.ID,
			Action:   ActionRecordSearch,
			Subject:  models.ProcurementTable,
			RecordID: uuid.NewString(),
			Details:  details,
		})
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *Repo) AttachPurchaseOrder(ctx context.Context, actor Actor, id, key string) (*models.Procurement, error) {
	var rec models.Procurement
	missing := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, "id = ?", id).Error; err != nil {
			missing = errors.Is(err, gorm.ErrRecordNotFound)
			return translate(err, "procurement record")
		}
		if err := tx.Model(&rec).Updates(map[string]any{
			"purchase_order_file": key,
			"updated_at":          r.Clock.Now(),
		}).Error; err != nil {
			return err
		}
		return r.writeAudit(tx, AuditInput{
			ActorID:  actor.ID,
			Action:   ActionUploadPurchase,
			Subject:  models.ProcurementTable,
			RecordID: rec.ID,
			Details:  fmt.Sprintf("%s: uploaded PO %s", actor.Username, rec.PurchaseOrder),
		})
	})
	if missing {
		return nil, r.failedSearch(ctx, actor, id)
	}
	if err != nil {
		return nil, err
	}
	rec.PurchaseOrderFile = key
	return &rec, nil
}

// PurchaseOrderURL presigns the stored purchase order. The download entry only
// commits when presigning succeeds; a missing record is audited as a failed
// search.
func (r *Repo) PurchaseOrderURL(ctx context.Context, actor Actor, id string, presign func(key string) (string, error)) (string, error) {
	var url string
	missing := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.Procurement
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			missing = errors.Is(err, gorm.ErrRecordNotFound)
			return translate(err, "procurement record")
		}
		if rec.PurchaseOrderFile == "" {
			return fmt.Errorf("record %s does not have a PO attached: %w", rec.ID, ErrNotFound)
		}
		var err error
		if url, err = presign(rec.PurchaseOrderFile); err != nil {
			return fmt.Errorf("presign purchase order: %w", err)
		}
		return r.writeAudit(tx, AuditInput{
			ActorID:  actor.ID,
			Action:   ActionDownloadPurchase,
			Subject:  models.ProcurementTable,
			RecordID: rec.ID,
			Details:  fmt.Sprintf("%s: downloaded PO %s", actor.Username, rec.PurchaseOrder),
		})
	})
	if missing {
		return "", r.failedSearch(ctx, actor, id)
	}
	if err != nil {
		return "", err
	}
	return url, nil
}
