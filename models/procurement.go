// models/procurement.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const ProcurementTable = "is_procurements"

// Procurement 采购记录；与分配状态无关，同一台电脑可以有多条
type Procurement struct {
	ID                string          `gorm:"type:uuid;primaryKey" json:"id"`
	LaptopID          string          `gorm:"type:uuid;index;not null" json:"laptopId"`
	Laptop            *Laptop         `gorm:"foreignKey:LaptopID" json:"laptop,omitempty"`
	PurchaseDate      time.Time       `gorm:"index;not null" json:"purchaseDate"`
	PurchaseOrder     string          `gorm:"size:120;index;not null" json:"purchaseOrder"`
	Vendor            string          `gorm:"size:200;index" json:"vendor"`
	WarrantyExpiry    time.Time       `json:"warrantyExpiry"`
	Cost              decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost"`
	PurchaseOrderFile string          `gorm:"size:512" json:"purchaseOrderFile,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (Procurement) TableName() string { return ProcurementTable }
