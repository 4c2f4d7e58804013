package models

import "time"

// KVEntry is one durable client-side value (access token, refresh cookie).
type KVEntry struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name.
func (KVEntry) TableName() string {
	return "kv_entries"
}
