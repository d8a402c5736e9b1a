package models

import "time"

// Cart 服务端购物车（外部商城后端所有，本地仅保存只读副本）
type Cart struct {
	ID              string           `json:"id"`
	Email           string           `json:"email,omitempty"`
	CustomerID      string           `json:"customer_id,omitempty"`
	RegionID        string           `json:"region_id,omitempty"`
	Items           []LineItem       `json:"items"`
	ShippingAddress *Address         `json:"shipping_address,omitempty"`
	ShippingMethods []ShippingMethod `json:"shipping_methods,omitempty"`
	PaymentSessions []PaymentSession `json:"payment_sessions,omitempty"`
	PaymentSession  *PaymentSession  `json:"payment_session,omitempty"` // 当前选中的支付会话
	Subtotal        int64            `json:"subtotal"`                  // 最小货币单位
	ShippingTotal   int64            `json:"shipping_total"`
	TaxTotal        int64            `json:"tax_total"`
	Total           int64            `json:"total"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
}

// HasShippingMethod 判断是否已选择配送方式
func (c *Cart) HasShippingMethod() bool {
	return c != nil && len(c.ShippingMethods) > 0
}

// HasPaymentSessions 判断是否已创建支付会话
func (c *Cart) HasPaymentSessions() bool {
	return c != nil && len(c.PaymentSessions) > 0
}

// FindPaymentSession 按提供方查找支付会话
func (c *Cart) FindPaymentSession(providerID string) *PaymentSession {
	if c == nil {
		return nil
	}
	for i := range c.PaymentSessions {
		if c.PaymentSessions[i].ProviderID == providerID {
			return &c.PaymentSessions[i]
		}
	}
	return nil
}

// LineItem 服务端购物车行项目
type LineItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	VariantID string `json:"variant_id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	UnitPrice int64  `json:"unit_price"` // 最小货币单位
	Quantity  int    `json:"quantity"`
	Total     int64  `json:"total"`
}

// PaymentSession 支付会话（提供方标识 + 不透明数据）
type PaymentSession struct {
	ID         string `json:"id,omitempty"`
	ProviderID string `json:"provider_id"`
	Status     string `json:"status,omitempty"`
	Data       JSON   `json:"data,omitempty"`
}

// Address 收货地址
type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address_1,omitempty"`
	Address2    string `json:"address_2,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Province    string `json:"province,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// ShippingMethod 已选配送方式
type ShippingMethod struct {
	ID               string `json:"id"`
	ShippingOptionID string `json:"shipping_option_id"`
	Price            int64  `json:"price"`
}
