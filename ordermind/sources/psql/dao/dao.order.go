package dao

import (
	"context"
	"errors"

	"ordermind/ordermind/sources/psql/models"

	"gorm.io/gorm"
)

type OrderDAO struct {
	DB *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{DB: db}
}

func (dao *OrderDAO) CreateOrder(ctx context.Context, order *models.Order) error {
	return dao.DB.WithContext(ctx).Create(order).Error
}

func (dao *OrderDAO) GetOrderByID(ctx context.Context, id int) (*models.Order, error) {
	var order models.Order
	err := dao.DB.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (dao *OrderDAO) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := dao.DB.WithContext(ctx).Order("id asc").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrder applies column updates and returns ErrNotFound when no row matched.
func (dao *OrderDAO) UpdateOrder(ctx context.Context, id int, updates map[string]interface{}) error {
	res := dao.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (dao *OrderDAO) DeleteOrder(ctx context.Context, id int) error {
	res := dao.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
