package models

// Product 商品（外部后端只读副本）
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle,omitempty"`
	Description string    `json:"description,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
}

// Variant 商品变体
type Variant struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	SKU    string  `json:"sku,omitempty"`
	Prices []Price `json:"prices,omitempty"`
}

// Price 变体区域价格
type Price struct {
	CurrencyCode string `json:"currency_code"`
	Amount       int64  `json:"amount"` // 最小货币单位
}

// ProductCategory 商品分类
type ProductCategory struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle,omitempty"`
}

// Collection 商品合集
type Collection struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle,omitempty"`
}
