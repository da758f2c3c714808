// models/audit.go
package models

import "time"

const AuditTable = "is_audit_logs"

// AuditEntry 只追加，不更新、不删除
type AuditEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   string    `gorm:"size:64;index" json:"actorId"`
	Action    string    `gorm:"size:120;not null" json:"action"`
	Subject   string    `gorm:"column:table_name;size:64;not null" json:"tableName"`
	RecordID  string    `gorm:"size:64;index" json:"recordId"`
	Details   string    `gorm:"type:text" json:"details"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
}

func (AuditEntry) TableName() string { return AuditTable }
