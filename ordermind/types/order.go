package types

type CreateOrderRequest struct {
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Status      string  `json:"status,omitempty"`
}

// UpdateOrderRequest only changes the fields that are set.
type UpdateOrderRequest struct {
	ProductName *string  `json:"product_name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Status      *string  `json:"status,omitempty"`
}
