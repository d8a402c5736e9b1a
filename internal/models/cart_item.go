package models

// CartItem 本地购物车项（服务端购物车创建之前由浏览会话持有）
type CartItem struct {
	ID        string `json:"id"`                   // 商品标识
	VariantID string `json:"variant_id,omitempty"` // 变体标识（优先作为唯一键）
	Title     string `json:"title,omitempty"`      // 展示名称
	UnitPrice int64  `json:"unit_price"`           // 单价（最小货币单位）
	Quantity  int    `json:"quantity"`             // 数量，恒 >= 1
}
