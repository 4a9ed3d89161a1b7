package kv

import "time"

// Entry is one key of the SQL-backed key/value store.
type Entry struct {
	Key       string    `gorm:"column:storage_key;primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Entry) TableName() string {
	return "kv_entries"
}
