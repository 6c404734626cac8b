package models

import "time"

type Order struct {
	ID          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductName string    `json:"product_name" gorm:"type:varchar(255);not null"`
	Price       float64   `json:"price" gorm:"not null;default:0"`
	OrderDate   time.Time `json:"order_date" gorm:"autoCreateTime"`
	Status      string    `json:"status" gorm:"type:varchar(50);not null;default:'pending'"`
}

func (Order) TableName() string {
	return "orders"
}
