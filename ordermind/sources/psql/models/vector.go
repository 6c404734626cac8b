package models

import "time"

// VectorRecord is one embedded text chunk in a named index.
type VectorRecord struct {
	ID        string    `json:"id" gorm:"type:varchar(255);primaryKey"`
	IndexName string    `json:"index_name" gorm:"type:varchar(255);primaryKey"`
	Values    []float64 `json:"values" gorm:"column:embedding;type:text;serializer:json;not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (VectorRecord) TableName() string {
	return "vectors"
}
