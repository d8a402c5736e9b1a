package store

import (
	"strings"

	"github.com/goobits/storefront/internal/cartstore"
	"github.com/goobits/storefront/internal/http/handlers/shared"
	"github.com/goobits/storefront/internal/http/response"
	"github.com/goobits/storefront/internal/models"
	"github.com/goobits/storefront/internal/pricing"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// CartItemResponse 购物车项响应
type CartItemResponse struct {
	Key       string `json:"key"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Title     string `json:"title,omitempty"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
}

// CartResponse 购物车响应
type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Count int                `json:"count"`
	Total string             `json:"total"`
}

// GetCart 获取本地购物车
func (h *Handler) GetCart(c *gin.Context) {
	response.Success(c, h.buildCartResponse())
}

// AddCartItem 添加购物车项
func (h *Handler) AddCartItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	item := models.CartItem{
		ID:        strings.TrimSpace(req.ProductID),
		VariantID: strings.TrimSpace(req.VariantID),
		Title:     strings.TrimSpace(req.Title),
		UnitPrice: req.UnitPrice,
	}
	if err := h.Cart.Add(c.Request.Context(), item, req.Quantity); err != nil {
		shared.RespondError(c, response.CodeInternal, "error.category.cart", err)
		return
	}
	response.Success(c, h.buildCartResponse())
}

// UpdateCartItem 更新购物车项数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", nil)
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	if err := h.Cart.UpdateQuantity(c.Request.Context(), key, req.Quantity); err != nil {
		shared.RespondError(c, response.CodeInternal, "error.category.cart", err)
		return
	}
	response.Success(c, h.buildCartResponse())
}

// RemoveCartItem 删除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", nil)
		return
	}
	if err := h.Cart.Remove(c.Request.Context(), key); err != nil {
		shared.RespondError(c, response.CodeInternal, "error.category.cart", err)
		return
	}
	response.Success(c, h.buildCartResponse())
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.Cart.Clear(c.Request.Context()); err != nil {
		shared.RespondError(c, response.CodeInternal, "error.category.cart", err)
		return
	}
	response.Success(c, h.buildCartResponse())
}

func (h *Handler) buildCartResponse() CartResponse {
	items := h.Cart.Items()
	out := CartResponse{
		Items: make([]CartItemResponse, 0, len(items)),
		Count: h.Cart.Count(),
		Total: pricing.FormatPrice(h.Cart.Total()),
	}
	for _, item := range items {
		total, err := pricing.LineItemTotal(item.UnitPrice, item.Quantity)
		if err != nil {
			total = pricing.FormatPrice(0)
		}
		out.Items = append(out.Items, CartItemResponse{
			Key:       cartstore.ItemKey(item),
			ProductID: item.ID,
			VariantID: item.VariantID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Total:     total,
		})
	}
	return out
}
