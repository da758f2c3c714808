// db/repo_laptops_admin.go
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invensys/lifecycle"
	"invensys/models"

	"gorm.io/gorm"
)

// LaptopOverviewRow 电脑 + 当前持有人（可为空）
type LaptopOverviewRow struct {
	ID           string    `json:"id"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	SerialNumber string    `json:"serialNumber"`
	Name         string    `json:"name"`
	AssetTag     string    `json:"assetTag"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`

	// Current active allocation (nullable)
	AllocationID   *string    `json:"allocationId,omitempty"`
	HolderID       *string    `json:"holderId,omitempty"`
	HolderUsername *string    `json:"holderUsername,omitempty"`
	AllocationDate *time.Time `json:"allocationDate,omitempty"`
}

type LaptopOverviewQuery struct {
	Q      string // 模糊搜索：serial/name/brand/model
	Status *lifecycle.Status
	Page   int
	Size   int
}

type PagedLaptopOverview struct {
	Total int64               `json:"total"`
	Items []LaptopOverviewRow `json:"items"`
}

// ListLaptopOverview joins each laptop to its newest active allocation. Under
// the permissive policy a laptop may have several; only the newest is shown.
func (r *Repo) ListLaptopOverview(ctx context.Context, q LaptopOverviewQuery) (*PagedLaptopOverview, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}
	offset := (q.Page - 1) * q.Size

	db := r.DB.WithContext(ctx)
	base := db.Table(models.LaptopTable + " l")

	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		base = base.Where("LOWER(l.serial_number) LIKE ? OR LOWER(l.name) LIKE ? OR LOWER(l.brand) LIKE ? OR LOWER(l.model) LIKE ?",
			pat, pat, pat, pat)
	}
	if q.Status != nil {
		id, err := r.statusID(*q.Status)
		if err != nil {
			return nil, err
		}
		base = base.Where("l.status_id = ?", id)
	}

	// 统计总数
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []LaptopOverviewRow
	err := base.Session(&gorm.Session{}).
		Select(`
			l.id, l.brand, l.model, l.serial_number, l.name, l.asset_tag, l.created_at,
			s.name            AS status,
			a.id              AS allocation_id,
			a.user_id         AS holder_id,
			u.username        AS holder_username,
			a.allocation_date AS allocation_date
		`).
		Joins(fmt.Sprintf("JOIN %s s ON s.id = l.status_id", models.StatusTable)).
		Joins(fmt.Sprintf(`LEFT JOIN %[1]s a ON a.id = (
			SELECT a2.id FROM %[1]s a2
			WHERE a2.laptop_id = l.id AND a2.is_active
			ORDER BY a2.allocation_date DESC LIMIT 1)`, models.AllocationTable)).
		Joins(fmt.Sprintf("LEFT JOIN %s u ON u.id = a.user_id", models.UserTable)).
		Order("l.created_at DESC").
		Offset(offset).Limit(q.Size).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return &PagedLaptopOverview{Total: total, Items: rows}, nil
}
