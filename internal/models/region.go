package models

// Region 地区定价上下文（币种、税率、可用配送方式）
type Region struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	CurrencyCode string   `json:"currency_code"`
	TaxRate      float64  `json:"tax_rate"`
	Countries    []string `json:"countries,omitempty"`
}

// ShippingOption 可选配送方式
type ShippingOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RegionID string `json:"region_id,omitempty"`
	Amount   int64  `json:"amount"` // 最小货币单位
}
