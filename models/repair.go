package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const RepairTable = "is_repairs"

type RepairEntry struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	LaptopID        string          `gorm:"type:uuid;index;not null" json:"laptopId"`
	Laptop          *Laptop         `gorm:"foreignKey:LaptopID" json:"laptop,omitempty"`
	Details         string          `gorm:"type:text" json:"repairDetails"`
	FaultReportedAt time.Time       `gorm:"not null" json:"dateFaultReported"`
	RepairedAt      *time.Time      `json:"dateLaptopRepaired,omitempty"`
	Cost            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"costOfRepair"`
	Vendor          string          `gorm:"size:200" json:"repairVendor"`
	RepairedBy      string          `gorm:"type:uuid" json:"repairedBy"`
	WarrantyCovered bool            `gorm:"not null" json:"warrantyCovered"`
	InvoiceNumber   string          `gorm:"size:120" json:"invoiceNumber"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (RepairEntry) TableName() string { return RepairTable }
