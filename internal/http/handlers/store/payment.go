package store

import (
	"errors"
	"strings"

	"github.com/goobits/storefront/internal/http/handlers/shared"
	"github.com/goobits/storefront/internal/http/response"
	"github.com/goobits/storefront/internal/payment/processor"

	"github.com/gin-gonic/gin"
)

// PaymentElements 支付组件装载参数：从购物车支付会话提取
// client_secret 并交给处理器适配层。
func (h *Handler) PaymentElements(c *gin.Context) {
	cartID := h.resolveCartID(c)
	if cartID == "" {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", nil)
		return
	}
	cart, err := h.Commerce.Carts.Retrieve(c.Request.Context(), cartID)
	if err != nil {
		respondCommerceError(c, err)
		return
	}

	providerID := strings.TrimSpace(c.Query("provider_id"))
	data := processor.SessionData(cart, providerID)
	secret := processor.ClientSecret(data)
	if secret == "" {
		shared.RespondError(c, response.CodeNotFound, "error.category.payment", nil)
		return
	}

	options, err := h.Processor.ElementsOptions(secret)
	if err != nil {
		if errors.Is(err, processor.ErrConfigInvalid) {
			shared.RespondError(c, response.CodeInternal, "error.category.processor", err)
			return
		}
		shared.RespondError(c, response.CodeBadGateway, "error.category.processor", err)
		return
	}
	response.Success(c, gin.H{"elements": options})
}

// ListPaymentProviders 购物车可用的支付提供方
func (h *Handler) ListPaymentProviders(c *gin.Context) {
	cartID := h.resolveCartID(c)
	if cartID == "" {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", nil)
		return
	}
	providers, err := h.Commerce.Carts.ListPaymentProviders(c.Request.Context(), cartID)
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	response.Success(c, gin.H{"payment_providers": providers})
}

// ConfirmPaymentRequest 确认支付请求
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	PaymentMethodID string `json:"payment_method_id"`
}

// ConfirmPayment 服务端确认支付意图
func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	result, err := h.Processor.ConfirmPayment(c.Request.Context(), req.PaymentIntentID, req.PaymentMethodID)
	if err != nil {
		if errors.Is(err, processor.ErrConfigInvalid) {
			shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
			return
		}
		shared.RespondError(c, response.CodeBadGateway, "error.category.processor", err)
		return
	}
	response.Success(c, gin.H{
		"payment_intent_id": result.PaymentIntentID,
		"status":            result.Status,
	})
}
