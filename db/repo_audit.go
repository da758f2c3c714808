// db/repo_audit.go
package db

import (
	"context"
	"fmt"

	"invensys/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Audit actions. Labels are stored verbatim.
const (
	ActionCreatePurchase     = "Added laptop to procurement table"
	ActionUploadPurchase     = "File Upload"
	ActionDownloadPurchase   = "File Download"
	ActionRecordSearch       = "Record Search"
	ActionUnauthorizedAccess = "Unauthorized Access"
)

type AuditInput struct {
	ActorID  string
	Action   string
	Subject  string
	RecordID string
	Details  string
}

// writeAudit 只追加；调用方传入事务，和业务写入一起提交
func (r *Repo) writeAudit(tx *gorm.DB, in AuditInput) error {
	e := &models.AuditEntry{
		ActorID:   in.ActorID,
		Action:    in.Action,
		Subject:   in.Subject,
		RecordID:  in.RecordID,
		Details:   in.Details,
		Timestamp: r.Clock.Now(),
	}
	if err := tx.Create(e).Error; err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// RecordAudit writes a standalone entry, for events with no business write of
// their own (rejected access).
func (r *Repo) RecordAudit(ctx context.Context, in AuditInput) error {
	return r.writeAudit(r.DB.WithContext(ctx), in)
}

func (r *Repo) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []models.AuditEntry
	err := r.DB.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
