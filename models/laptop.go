// models/laptop.go
package models

import "time"

const (
	LaptopTable = "is_laptops"
	StatusTable = "is_laptop_statuses"
)

// LaptopStatus 状态字典：启动时播种一次，之后不允许改名
type LaptopStatus struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:40;uniqueIndex;not null" json:"name"`
}

type Laptop struct {
	ID             string        `gorm:"type:uuid;primaryKey" json:"id"`
	Brand          string        `gorm:"size:120;not null" json:"brand"`
	Model          string        `gorm:"size:120;not null" json:"model"`
	SerialNumber   string        `gorm:"size:120;uniqueIndex;not null" json:"serialNumber"` // 全局唯一
	Name           string        `gorm:"size:120;uniqueIndex;not null" json:"name"`
	AssetTag       string        `gorm:"size:120" json:"assetTag"`
	StatusID       uint          `gorm:"index;not null" json:"statusId"` // 只通过状态机修改
	Status         *LaptopStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	BusinessUnitID *string       `gorm:"type:uuid;index" json:"businessUnitId,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func (LaptopStatus) TableName() string { return StatusTable }
func (Laptop) TableName() string       { return LaptopTable }
