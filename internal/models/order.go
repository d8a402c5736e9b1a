package models

import "time"

// Order 订单（完成购物车后的终态产物，本地视为不可变）
type Order struct {
	ID            string     `json:"id"`
	DisplayID     int64      `json:"display_id,omitempty"`
	CartID        string     `json:"cart_id,omitempty"`
	Email         string     `json:"email,omitempty"`
	Status        string     `json:"status,omitempty"`
	Currency      string     `json:"currency_code,omitempty"`
	Items         []LineItem `json:"items,omitempty"`
	Subtotal      int64      `json:"subtotal"`
	ShippingTotal int64      `json:"shipping_total"`
	TaxTotal      int64      `json:"tax_total"`
	Total         int64      `json:"total"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}
