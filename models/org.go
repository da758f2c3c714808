package models

import "time"

const (
	BusinessUnitTable = "is_business_units"
	DepartmentTable   = "is_departments"
	OrganizationTable = "is_organization"
	AccessoryTable    = "is_accessories"
)

type BusinessUnit struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:200;uniqueIndex;not null" json:"unitName"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Department struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:200;uniqueIndex;not null" json:"departmentName"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Organization 单行表：表单页眉用
type Organization struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"size:200;not null" json:"organizationName"`
	StreetAddress string    `gorm:"size:255" json:"streetAddress"`
	POBox         string    `gorm:"size:120" json:"poBox"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Accessory struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	SerialNumber string    `gorm:"size:120;uniqueIndex;not null" json:"serialNumber"`
	AllocationID *string   `gorm:"type:uuid;index" json:"assignedToAllocation,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (BusinessUnit) TableName() string { return BusinessUnitTable }
func (Department) TableName() string   { return DepartmentTable }
func (Organization) TableName() string { return OrganizationTable }
func (Accessory) TableName() string    { return AccessoryTable }
