// db/repo_allocation.go
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

type CreateAllocationInput struct {
	LaptopID    string
	UserID      string
	AllocatorID string
	Date        time.Time // 为零值时取当前时间
	Condition   string
	Reason      string
}

// 分配：原子操作 = 锁住 laptop → 策略检查 → 新建 allocation → 状态改为 Allocated
func (r *Repo) CreateAllocation(ctx context.Context, in CreateAllocationInput) (*models.Allocation, error) {
	allocatedID, err := r.statusID(lifecycle.Target(lifecycle.EventAllocate))
	if err != nil {
		return nil, err
	}

	var (
		rec *models.Allocation
		lp  *models.Laptop
	)
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住该电脑
		if lp, err = lockLaptop(tx, in.LaptopID); err != nil {
			return err
		}
		var u models.User
		if err := tx.Select("id").First(&u, "id = ?", in.UserID).Error; err != nil {
			return translate(err, "user")
		}

		// 2) 策略：宽松模式什么都不查
		current, err := r.Vocab.Status(lp.StatusID)
		if err != nil {
			return translate(err, "current status")
		}
		var open int64
		if err := tx.Model(&models.Allocation{}).
			Where("laptop_id = ? AND is_active", lp.ID).
			Count(&open).Error; err != nil {
			return err
		}
		if err := r.Policy.CheckAllocate(current, open); err != nil {
			return translate(err, "laptop "+lp.SerialNumber)
		}

		// 3) 新建记录
		date := in.Date
		if date.IsZero() {
			date = r.Clock.Now()
		}
		rec = &models.Allocation{
			ID:                  uuid.NewString(),
			LaptopID:            lp.ID,
			UserID:              in.UserID,
			AllocatedBy:         in.AllocatorID,
			AllocationDate:      date.UTC(),
			AllocationCondition: in.Condition,
			Reason:              in.Reason,
			IsActive:            true,
		}
		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return translate(err, "allocation for laptop "+lp.SerialNumber)
		}

		// 4) 状态翻转，与记录同一事务
		return setLaptopStatus(tx, lp.ID, allocatedID, r.Clock.Now())
	})
	if err != nil {
		return nil, err
	}

	r.Log.Info("laptop allocated",
		zap.String("actor_id", in.AllocatorID),
		zap.String("allocation_id", rec.ID),
		zap.String("laptop", describeLaptop(lp)),
		zap.String("user_id", in.UserID))
	return r.ShowAllocation(ctx, rec.ID)
}

type ReturnLaptopInput struct {
	AllocationID      string
	ReturnDate        time.Time
	Comment           string
	ConditionOnReturn string
	ReturnerID        string
}

// 归还：原子操作 = 关闭 allocation → 状态改回 Available
// 已归还的记录直接返回，不会再翻转 is_active 或 laptop 状态
func (r *Repo) ReturnLaptop(ctx context.Context, in ReturnLaptopInput) (*models.Allocation, error) {
	availableID, err := r.statusID(lifecycle.Target(lifecycle.EventReturn))
	if err != nil {
		return nil, err
	}

	var (
		rec      models.Allocation
		returned bool
	)
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rec, "id = ?", in.AllocationID).Error; err != nil {
			return translate(err, "allocation")
		}
		// 幂等：已归还直接返回
		if !rec.IsActive {
			return nil
		}
		lp, err := lockLaptop(tx, rec.LaptopID)
		if err != nil {
			return err
		}
		current, err := r.Vocab.Status(lp.StatusID)
		if err != nil {
			return translate(err, "current status")
		}
		if err := r.Policy.CheckReturn(current); err != nil {
			return translate(err, "laptop "+lp.SerialNumber)
		}

		date := in.ReturnDate
		if date.IsZero() {
			date = r.Clock.Now()
		}
		date = date.UTC()
		returner := in.ReturnerID
		res := tx.Model(&models.Allocation{}).
			Where("id = ? AND is_active", rec.ID).
			Updates(map[string]any{
				"is_active":           false,
				"return_date":         date,
				"returned_by":         returner,
				"return_comment":      in.Comment,
				"condition_on_return": in.ConditionOnReturn,
				"updated_at":          r.Clock.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 另一请求抢先归还
			return nil
		}
		returned = true
		return setLaptopStatus(tx, lp.ID, availableID, r.Clock.Now())
	})
	if err != nil {
		return nil, err
	}

	if returned {
		r.Log.Info("laptop returned",
			zap.String("actor_id", in.ReturnerID),
			zap.String("allocation_id", rec.ID),
			zap.String("laptop_id", rec.LaptopID))
	} else {
		r.Log.Info("allocation already returned", zap.String("allocation_id", rec.ID))
	}
	return r.ShowAllocation(ctx, rec.ID)
}

func (r *Repo) ShowAllocation(ctx context.Context, id string) (*models.Allocation, error) {
	var rec models.Allocation
	if err := r.DB.WithContext(ctx).
		Preload("Laptop.Status").
		Preload("User").
		First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err, "allocation")
	}
	return &rec, nil
}

type AllocationFilter struct {
	IsActive     *bool
	Username     string
	SerialNumber string
	LaptopID     string
}

// ListAllocations 过滤条件之间是 AND
func (r *Repo) ListAllocations(ctx context.Context, f AllocationFilter) ([]models.Allocation, error) {
	a := models.AllocationTable
	q := r.DB.WithContext(ctx).Model(&models.Allocation{}).
		Preload("Laptop.Status").
		Preload("User").
		Order(a + ".allocation_date DESC")

	if f.IsActive != nil {
		if *f.IsActive {
			q = q.Where(a + ".is_active")
		} else {
			q = q.Where("NOT " + a + ".is_active")
		}
	}
	if s := strings.TrimSpace(f.Username); s != "" {
		q = q.Joins(fmt.Sprintf("JOIN %s u ON u.id = %s.user_id", models.UserTable, a)).
			Where("u.username = ?", strings.ToLower(s))
	}
	if s := strings.TrimSpace(f.SerialNumber); s != "" {
		q = q.Joins(fmt.Sprintf("JOIN %s l ON l.id = %s.laptop_id", models.LaptopTable, a)).
			Where("l.serial_number = ?", s)
	}
	if f.LaptopID != "" {
		q = q.Where(a+".laptop_id = ?", f.LaptopID)
	}

	var recs []models.Allocation
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// CountActiveAllocations 用于状态/台账一致性检查
func (r *Repo) CountActiveAllocations(ctx context.Context, laptopID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Allocation{}).
		Where("laptop_id = ? AND is_active", laptopID).
		Count(&n).Error
	return n, err
}

// LoadAllocation 只读取记录本身，供文档流程做前置检查
func (r *Repo) LoadAllocation(ctx context.Context, id string) (*models.Allocation, error) {
	var rec models.Allocation
	if err := r.DB.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err, "allocation")
	}
	return &rec, nil
}

// AttachAllocationForm only records the document key. Lifecycle fields are
// never touched here.
func (r *Repo) AttachAllocationForm(ctx context.Context, allocationID, key string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.Allocation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&rec, "id = ?", allocationID).Error; err != nil {
			return translate(err, "allocation")
		}
		return tx.Model(&models.Allocation{}).
			Where("id = ?", allocationID).
			Updates(map[string]any{"allocation_form": key, "updated_at": r.Clock.Now()}).Error
	})
}

// AttachReturnForm re-checks the gate under lock: the allocation must be
// closed before a return form can be attached.
func (r *Repo) AttachReturnForm(ctx context.Context, allocationID, key string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.Allocation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rec, "id = ?", allocationID).Error; err != nil {
			return translate(err, "allocation")
		}
		if err := CheckReturnFormUpload(&rec); err != nil {
			return err
		}
		return tx.Model(&models.Allocation{}).
			Where("id = ?", allocationID).
			Updates(map[string]any{"return_form": key, "updated_at": r.Clock.Now()}).Error
	})
}

// CheckReturnFormUpload is the one ordering guard on uploads.
func CheckReturnFormUpload(rec *models.Allocation) error {
	if rec.IsActive {
		return fmt.Errorf("laptop still in use, return it before uploading a return form: %w", ErrForbidden)
	}
	return nil
}

// CheckReturnFormGeneration rejects a return form while no allocation form
// has been attached, whatever the allocation state.
func CheckReturnFormGeneration(rec *models.Allocation) error {
	if rec.AllocationForm == "" {
		return fmt.Errorf("cannot generate return form before allocation form: %w", ErrPrecedenceViolation)
	}
	return nil
}
