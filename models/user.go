package models

import (
	"time"
)

const UserTable = "is_users"

type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	FirstName    string `gorm:"size:120;not null" json:"firstName"`
	LastName     string `gorm:"size:120;not null" json:"lastName"`
	Username     string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"emailAddress"`
	PasswordHash string `gorm:"size:255" json:"-"`
	IsActive     bool   `gorm:"not null" json:"isActive"`
	IsAdmin      bool   `gorm:"not null" json:"isAdmin"`

	BusinessUnitID *string `gorm:"type:uuid;index" json:"businessUnitId,omitempty"`
	DepartmentID   *string `gorm:"type:uuid;index" json:"departmentId,omitempty"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return UserTable
}

// FullName 表单上显示的姓名
func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}
