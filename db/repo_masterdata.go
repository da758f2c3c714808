// db/repo_masterdata.go
package db

import (
	"context"
	"strings"

	"invensys/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// 主数据：没有生命周期，只是普通的增删查

// Business units

func (r *Repo) CreateBusinessUnit(ctx context.Context, actorID, name string) (*models.BusinessUnit, error) {
	bu := &models.BusinessUnit{ID: uuid.NewString(), Name: strings.ToLower(strings.TrimSpace(name)), IsActive: true}
	if err := r.DB.WithContext(ctx).Create(bu).Error; err != nil {
		return nil, translate(err, "business unit "+bu.Name)
	}
	r.Log.Info("business unit added", zap.String("actor_id", actorID), zap.String("name", bu.Name))
	return bu, nil
}

func (r *Repo) GetBusinessUnit(ctx context.Context, id string) (*models.BusinessUnit, error) {
	var bu models.BusinessUnit
	if err := r.DB.WithContext(ctx).First(&bu, "id = ?", id).Error; err != nil {
		return nil, translate(err, "business unit")
	}
	return &bu, nil
}

func (r *Repo) ListBusinessUnits(ctx context.Context, name string) ([]models.BusinessUnit, error) {
	q := r.DB.WithContext(ctx).Order("name")
	if s := strings.TrimSpace(name); s != "" {
		q = q.Where("name = ?", strings.ToLower(s))
	}
	var out []models.BusinessUnit
	return out, q.Find(&out).Error
}

func (r *Repo) RenameBusinessUnit(ctx context.Context, actorID, id, name string) (*models.BusinessUnit, error) {
	bu, err := r.GetBusinessUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	old := bu.Name
	bu.Name = strings.ToLower(strings.TrimSpace(name))
	if err := r.DB.WithContext(ctx).Model(bu).Update("name", bu.Name).Error; err != nil {
		return nil, translate(err, "business unit "+bu.Name)
	}
	r.Log.Info("business unit renamed", zap.String("actor_id", actorID), zap.String("from", old), zap.String("to", bu.Name))
	return bu, nil
}

func (r *Repo) DeleteBusinessUnit(ctx context.Context, actorID, id string) error {
	bu, err := r.GetBusinessUnit(ctx, id)
	if err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Delete(bu).Error; err != nil {
		return translate(err, "business unit "+bu.Name)
	}
	r.Log.Info("business unit deleted", zap.String("actor_id", actorID), zap.String("name", bu.Name))
	return nil
}

// Departments

func (r *Repo) CreateDepartment(ctx context.Context, actorID, name string) (*models.Department, error) {
	d := &models.Department{ID: uuid.NewString(), Name: strings.ToLower(strings.TrimSpace(name)), IsActive: true}
	if err := r.DB.WithContext(ctx).Create(d).Error; err != nil {
		return nil, translate(err, "department "+d.Name)
	}
	r.Log.Info("department added", zap.String("actor_id", actorID), zap.String("name", d.Name))
	return d, nil
}

func (r *Repo) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	var d models.Department
	if err := r.DB.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate(err, "department")
	}
	return &d, nil
}

func (r *Repo) ListDepartments(ctx context.Context, name string) ([]models.Department, error) {
	q := r.DB.WithContext(ctx).Order("name")
	if s := strings.TrimSpace(name); s != "" {
		q = q.Where("name = ?", strings.ToLower(s))
	}
	var out []models.Department
	return out, q.Find(&out).Error
}

func (r *Repo) DeleteDepartment(ctx context.Context, actorID, id string) error {
	d, err := r.GetDepartment(ctx, id)
	if err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Delete(d).Error; err != nil {
		return translate(err, "department "+d.Name)
	}
	r.Log.Info("department deleted", zap.String("actor_id", actorID), zap.String("name", d.Name))
	return nil
}

// Organization

// GetOrganization returns the single organization row. When none exists the
// fallback name is returned unsaved so form headers still render.
func (r *Repo) GetOrganization(ctx context.Context, fallbackName string) (*models.Organization, error) {
	var org models.Organization
	err := r.DB.WithContext(ctx).Order("created_at").Limit(1).Find(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == "" {
		return &models.Organization{Name: fallbackName}, nil
	}
	return &org, nil
}

type OrganizationInput struct {
	Name          string
	StreetAddress string
	POBox         string
}

func (r *Repo) UpsertOrganization(ctx context.Context, actorID string, in OrganizationInput) (*models.Organization, error) {
	var org models.Organization
	if err := r.DB.WithContext(ctx).Order("created_at").Limit(1).Find(&org).Error; err != nil {
		return nil, err
	}
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	org.Name = strings.TrimSpace(in.Name)
	org.StreetAddress = strings.TrimSpace(in.StreetAddress)
	org.POBox = strings.TrimSpace(in.POBox)
	if err := r.DB.WithContext(ctx).Save(&org).Error; err != nil {
		return nil, err
	}
	r.Log.Info("organization details updated", zap.String("actor_id", actorID), zap.String("name", org.Name))
	return &org, nil
}

// Accessories

func (r *Repo) CreateAccessory(ctx context.Context, actorID, name, serial string) (*models.Accessory, error) {
	a := &models.Accessory{ID: uuid.NewString(), Name: strings.TrimSpace(name), SerialNumber: strings.TrimSpace(serial)}
	if err := r.DB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, translate(err, "accessory "+a.SerialNumber)
	}
	r.Log.Info("accessory added", zap.String("actor_id", actorID), zap.String("accessory_id", a.ID), zap.String("name", a.Name))
	return a, nil
}

func (r *Repo) GetAccessory(ctx context.Context, id string) (*models.Accessory, error) {
	var a models.Accessory
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err, "accessory")
	}
	return &a, nil
}

func (r *Repo) ListAccessories(ctx context.Context) ([]models.Accessory, error) {
	var out []models.Accessory
	return out, r.DB.WithContext(ctx).Order("created_at DESC").Find(&out).Error
}

// AssignAccessory links an accessory to an allocation; an empty allocationID
// unlinks it.
func (r *Repo) AssignAccessory(ctx context.Context, actorID, id, allocationID string) (*models.Accessory, error) {
	a, err := r.GetAccessory(ctx, id)
	if err != nil {
		return nil, err
	}
	var target *string
	if allocationID != "" {
		if _, err := r.LoadAllocation(ctx, allocationID); err != nil {
			return nil, err
		}
		target = &allocationID
	}
	if err := r.DB.WithContext(ctx).Model(a).Omit(clause.Associations).Update("allocation_id", target).Error; err != nil {
		return nil, err
	}
	a.AllocationID = target
	r.Log.Info("accessory assignment changed",
		zap.String("actor_id", actorID),
		zap.String("accessory_id", a.ID),
		zap.String("allocation_id", allocationID))
	return a, nil
}
