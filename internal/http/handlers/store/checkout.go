package store

import (
	"strings"

	"github.com/goobits/storefront/internal/http/handlers/shared"
	"github.com/goobits/storefront/internal/http/response"
	"github.com/goobits/storefront/internal/models"
	"github.com/goobits/storefront/internal/pricing"

	"github.com/gin-gonic/gin"
)

// CheckoutCartView 结账页购物车摘要（金额已格式化）
type CheckoutCartView struct {
	Cart          *models.Cart `json:"cart"`
	Subtotal      string       `json:"subtotal"`
	ShippingTotal string       `json:"shipping_total"`
	TaxTotal      string       `json:"tax_total"`
	Total         string       `json:"total"`
}

func buildCartView(cart *models.Cart) *CheckoutCartView {
	if cart == nil {
		return nil
	}
	return &CheckoutCartView{
		Cart:          cart,
		Subtotal:      pricing.CartSubtotal(cart),
		ShippingTotal: pricing.CartShippingTotal(cart),
		TaxTotal:      pricing.CartTaxTotal(cart),
		Total:         pricing.CartTotal(cart),
	}
}

// LoadCheckout 装载结账页
func (h *Handler) LoadCheckout(c *gin.Context) {
	cartID := h.resolveCartID(c)
	result := h.Checkout.LoadCheckout(c.Request.Context(), cartID)
	if result.Error != nil {
		respondFailure(c, result.Error)
		return
	}
	if result.Redirect {
		response.Success(c, gin.H{"redirect": true})
		return
	}
	response.Success(c, gin.H{
		"redirect":         false,
		"step":             result.Step,
		"cart":             buildCartView(result.Cart),
		"regions":          result.Regions,
		"region":           result.Region,
		"shipping_options": result.ShippingOptions,
	})
}

// CheckoutCustomerRequest 客户信息步骤请求
type CheckoutCustomerRequest struct {
	CartID    string `json:"cart_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UpdateCustomer 客户信息步骤
func (h *Handler) UpdateCustomer(c *gin.Context) {
	var req CheckoutCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	cartID := h.fallbackCartID(c, req.CartID)
	result := h.Checkout.UpdateCustomer(c.Request.Context(), cartID, req.Email, req.FirstName, req.LastName)
	if !result.Success {
		respondFailure(c, result.Error)
		return
	}
	response.Success(c, buildCartView(result.Cart))
}

// CheckoutAddressRequest 配送地址步骤请求
type CheckoutAddressRequest struct {
	CartID  string         `json:"cart_id"`
	Address models.Address `json:"address"`
}

// AddShippingAddress 配送地址步骤
func (h *Handler) AddShippingAddress(c *gin.Context) {
	var req CheckoutAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	cartID := h.fallbackCartID(c, req.CartID)
	result := h.Checkout.AddShippingAddress(c.Request.Context(), cartID, req.Address)
	if !result.Success {
		respondFailure(c, result.Error)
		return
	}
	response.Success(c, buildCartView(result.Cart))
}

// CheckoutShippingRequest 配送方案步骤请求
type CheckoutShippingRequest struct {
	CartID   string `json:"cart_id"`
	OptionID string `json:"option_id"`
}

// AddShippingMethod 配送方案步骤
func (h *Handler) AddShippingMethod(c *gin.Context) {
	var req CheckoutShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	cartID := h.fallbackCartID(c, req.CartID)
	result := h.Checkout.AddShippingMethod(c.Request.Context(), cartID, req.OptionID)
	if !result.Success {
		respondFailure(c, result.Error)
		return
	}
	response.Success(c, buildCartView(result.Cart))
}

// CheckoutPaymentRequest 支付方式步骤请求
type CheckoutPaymentRequest struct {
	CartID     string `json:"cart_id"`
	ProviderID string `json:"provider_id"`
}

// UpdatePayment 支付方式步骤
func (h *Handler) UpdatePayment(c *gin.Context) {
	var req CheckoutPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	cartID := h.fallbackCartID(c, req.CartID)
	result := h.Checkout.UpdatePayment(c.Request.Context(), cartID, req.ProviderID)
	if !result.Success {
		respondFailure(c, result.Error)
		return
	}
	response.Success(c, buildCartView(result.Cart))
}

// CompleteCart 完成购物车
func (h *Handler) CompleteCart(c *gin.Context) {
	var req struct {
		CartID string `json:"cart_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	ctx := c.Request.Context()
	cartID := h.fallbackCartID(c, req.CartID)
	outcome := h.Checkout.CompleteCart(ctx, cartID)
	if outcome.Success {
		// 下单成功后清理本地购物车
		if err := h.Cart.Clear(ctx); err != nil {
			shared.RequestLog(c).Warnw("cart_clear_after_order_failed", "error", err)
		}
		response.Success(c, gin.H{
			"type":  "order",
			"order": outcome.Order,
			"total": pricing.FormatPrice(outcome.Order.Total),
		})
		return
	}
	if outcome.RequiresAction {
		response.Success(c, gin.H{
			"type":            "cart",
			"requires_action": true,
			"cart":            buildCartView(outcome.Cart),
		})
		return
	}
	respondFailure(c, outcome.Error)
}

// resolveCartID 请求参数优先，其次取已持久化的购物车标识
func (h *Handler) resolveCartID(c *gin.Context) string {
	if cartID := strings.TrimSpace(c.Query("cart_id")); cartID != "" {
		return cartID
	}
	if cartID, ok := h.Cart.CartID(c.Request.Context()); ok {
		return cartID
	}
	return ""
}

func (h *Handler) fallbackCartID(c *gin.Context, cartID string) string {
	if cartID = strings.TrimSpace(cartID); cartID != "" {
		return cartID
	}
	if stored, ok := h.Cart.CartID(c.Request.Context()); ok {
		return stored
	}
	return ""
}
