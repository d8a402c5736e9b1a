package store

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goobits/storefront/internal/cache"
	"github.com/goobits/storefront/internal/commerce"
	"github.com/goobits/storefront/internal/http/handlers/shared"
	"github.com/goobits/storefront/internal/http/response"
	"github.com/goobits/storefront/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	regionsCacheKey = "regions"
	regionsCacheTTL = 5 * time.Minute
)

func listFilterFromQuery(c *gin.Context) commerce.ListFilter {
	filter := commerce.ListFilter{
		Handle:     strings.TrimSpace(c.Query("handle")),
		CategoryID: strings.TrimSpace(c.Query("category_id")),
		Collection: strings.TrimSpace(c.Query("collection_id")),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	return filter
}

// ListProducts 商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.Commerce.Products.List(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	response.Success(c, gin.H{"products": products})
}

// ListCategories 商品分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Commerce.ProductCategories.List(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	response.Success(c, gin.H{"product_categories": categories})
}

// ListCollections 商品系列列表
func (h *Handler) ListCollections(c *gin.Context) {
	collections, err := h.Commerce.Collections.List(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	response.Success(c, gin.H{"collections": collections})
}

// ListRegions 区域列表。区域变动极少，短 TTL 缓存
func (h *Handler) ListRegions(c *gin.Context) {
	ctx := c.Request.Context()
	var regions []models.Region
	if hit, err := cache.GetJSON(ctx, regionsCacheKey, &regions); err == nil && hit {
		response.Success(c, gin.H{"regions": regions})
		return
	}
	regions, err := h.Commerce.Regions.List(ctx)
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	if err := cache.SetJSON(ctx, regionsCacheKey, regions, regionsCacheTTL); err != nil {
		shared.RequestLog(c).Warnw("regions_cache_write_failed", "error", err)
	}
	response.Success(c, gin.H{"regions": regions})
}

// ListShippingOptions 购物车可用配送方案
func (h *Handler) ListShippingOptions(c *gin.Context) {
	cartID := strings.TrimSpace(c.Query("cart_id"))
	if cartID == "" {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", nil)
		return
	}
	options, err := h.Commerce.ShippingOptions.ListForCart(c.Request.Context(), cartID)
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	response.Success(c, gin.H{"shipping_options": options})
}

// CreateServerCart 创建服务端购物车并记录其标识
func (h *Handler) CreateServerCart(c *gin.Context) {
	var req struct {
		RegionID string `json:"region_id"`
	}
	// body 可为空，但非空时必须是合法 JSON
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", err)
		return
	}
	regionID := strings.TrimSpace(req.RegionID)
	if regionID == "" {
		regionID = h.DefaultRegion
	}
	ctx := c.Request.Context()
	cart, err := h.Commerce.Carts.Create(ctx, regionID)
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	if err := h.Cart.SetCartID(ctx, cart.ID); err != nil {
		shared.RequestLog(c).Warnw("cart_id_persist_failed", "cart_id", cart.ID, "error", err)
	}
	response.Success(c, gin.H{"cart": cart})
}

// SyncServerCart 将本地购物车行项同步到服务端购物车
func (h *Handler) SyncServerCart(c *gin.Context) {
	ctx := c.Request.Context()
	cartID, ok := h.Cart.CartID(ctx)
	if !ok {
		shared.RespondError(c, response.CodeBadRequest, "error.category.cart", nil)
		return
	}
	var cartErr error
	for _, item := range h.Cart.Items() {
		variantID := item.VariantID
		if variantID == "" {
			variantID = item.ID
		}
		if _, err := h.Commerce.Carts.AddLineItem(ctx, cartID, variantID, item.Quantity); err != nil {
			cartErr = err
			break
		}
	}
	if cartErr != nil {
		respondCommerceError(c, cartErr)
		return
	}
	cart, err := h.Commerce.Carts.Retrieve(ctx, cartID)
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	response.Success(c, gin.H{"cart": buildCartView(cart)})
}
