// models/allocation.go
package models

import "time"

const AllocationTable = "is_allocations"

// Allocation 一台电脑 ↔ 一个用户；同一台电脑最多一条 is_active=true
type Allocation struct {
	ID       string  `gorm:"type:uuid;primaryKey" json:"id"`
	LaptopID string  `gorm:"type:uuid;index;not null" json:"laptopId"`
	Laptop   *Laptop `gorm:"foreignKey:LaptopID" json:"laptop,omitempty"`
	UserID   string  `gorm:"type:uuid;index;not null" json:"userId"`
	User     *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	AllocatedBy         string    `gorm:"type:uuid;not null" json:"allocatedBy"`
	AllocationDate      time.Time `gorm:"index;not null" json:"allocationDate"`
	AllocationCondition string    `gorm:"type:text" json:"allocationCondition"`
	Reason              string    `gorm:"type:text" json:"reasonForAllocation"`
	IsActive            bool      `gorm:"index;not null" json:"isActive"`
	AllocationForm      string    `gorm:"size:512" json:"allocationForm,omitempty"`

	// 归还后填写；归还是终态，再次分配会新建记录
	ReturnDate        *time.Time `json:"returnDate,omitempty"`
	ReturnedBy        *string    `gorm:"type:uuid" json:"returnedBy,omitempty"`
	ReturnComment     string     `gorm:"type:text" json:"returnComment,omitempty"`
	ConditionOnReturn string     `gorm:"size:255" json:"conditionOnReturn,omitempty"`
	ReturnForm        string     `gorm:"size:512" json:"returnForm,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Allocation) TableName() string { return AllocationTable }
