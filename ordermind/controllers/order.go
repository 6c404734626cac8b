package controllers

import (
	"context"
	"errors"
	"strings"

	"ordermind/ordermind/sources/psql/dao"
	"ordermind/ordermind/sources/psql/models"
	"ordermind/ordermind/types"
)

var ErrInvalidOrder = errors.New("product_name is required and price must not be negative")

type OrderController struct {
	dao *dao.OrderDAO
}

func NewOrderController(dao *dao.OrderDAO) *OrderController {
	return &OrderController{dao: dao}
}

func (c *OrderController) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return c.dao.GetAllOrders(ctx)
}

// GetOrder returns dao.ErrNotFound when the order does not exist.
func (c *OrderController) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	order, err := c.dao.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, dao.ErrNotFound
	}
	return order, nil
}

func (c *OrderController) CreateOrder(ctx context.Context, req types.CreateOrderRequest) (*models.Order, error) {
	if strings.TrimSpace(req.ProductName) == "" || req.Price < 0 {
		return nil, ErrInvalidOrder
	}
	order := &models.Order{ProductName: req.ProductName, Price: req.Price, Status: req.Status}
	if order.Status == "" {
		order.Status = "pending"
	}
	if err := c.dao.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *OrderController) UpdateOrder(ctx context.Context, id int, req types.UpdateOrderRequest) (*models.Order, error) {
	updates := map[string]interface{}{}
	if req.ProductName != nil {
		if strings.TrimSpace(*req.ProductName) == "" {
			return nil, ErrInvalidOrder
		}
		updates["product_name"] = *req.ProductName
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, ErrInvalidOrder
		}
		updates["price"] = *req.Price
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := c.dao.UpdateOrder(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return c.GetOrder(ctx, id)
}

func (c *OrderController) DeleteOrder(ctx context.Context, id int) error {
	return c.dao.DeleteOrder(ctx, id)
}
