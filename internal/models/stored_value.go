package models

import "time"

// StoredValue is a row of the string key-value table backing the database favorites store.
type StoredValue struct {
	Key       string    `gorm:"column:store_key;primaryKey;size:255" json:"key"`
	Value     string    `gorm:"column:value;type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StoredValue) TableName() string {
	return "favorite_values"
}
