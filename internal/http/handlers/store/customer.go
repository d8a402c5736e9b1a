package store

import (
	"strings"

	"github.com/goobits/storefront/internal/commerce"
	"github.com/goobits/storefront/internal/http/handlers/shared"
	"github.com/goobits/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register 注册顾客
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	customer, err := h.Commerce.Customers.Create(c.Request.Context(), commerce.CreateCustomerInput{
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	})
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	response.Success(c, gin.H{"customer": customer})
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录：换取后端令牌，签发店面会话令牌，
// 持久化令牌并尽力关联已有服务端购物车。
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	ctx := c.Request.Context()

	backendToken, err := h.Commerce.Auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	customer, err := h.Commerce.Auth.GetSession(ctx, backendToken)
	if err != nil {
		respondCommerceError(c, err)
		return
	}

	sessionToken, expiresAt, err := h.Auth.GenerateSessionToken(customer, backendToken)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.category.server", err)
		return
	}
	if err := h.Cart.SetAuthToken(ctx, backendToken); err != nil {
		shared.RequestLog(c).Warnw("auth_token_persist_failed", "error", err)
	}
	h.Cart.AssociateWithCustomer(ctx)

	response.Success(c, gin.H{
		"token":      sessionToken,
		"expires_at": expiresAt,
		"customer":   customer,
	})
}

// Me 当前顾客信息
func (h *Handler) Me(c *gin.Context) {
	claims, ok := getSessionClaims(c)
	if !ok {
		shared.RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return
	}
	customer, err := h.Commerce.Auth.GetSession(c.Request.Context(), claims.BackendToken)
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	response.Success(c, gin.H{"customer": customer})
}

// UpdateMe 更新当前顾客信息
func (h *Handler) UpdateMe(c *gin.Context) {
	claims, ok := getSessionClaims(c)
	if !ok {
		shared.RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return
	}
	var req commerce.UpdateCustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	customer, err := h.Commerce.Customers.Update(c.Request.Context(), claims.BackendToken, req)
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	response.Success(c, gin.H{"customer": customer})
}

// Logout 登出：销毁后端会话并清理本地状态
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if claims, ok := getSessionClaims(c); ok {
		if err := h.Commerce.Auth.DeleteSession(ctx, claims.BackendToken); err != nil {
			shared.RequestLog(c).Warnw("backend_session_delete_failed", "error", err)
		}
	}
	if err := h.Cart.Reset(ctx); err != nil {
		shared.RequestLog(c).Warnw("cart_reset_failed", "error", err)
	}
	response.Success(c, nil)
}
