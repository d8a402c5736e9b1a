package commerce

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goobits/storefront/internal/constants"
	"github.com/goobits/storefront/internal/models"
)

// RegionsService 地区接口
type RegionsService struct {
	client *Client
}

// List 列出全部地区
func (s *RegionsService) List(ctx context.Context) ([]models.Region, error) {
	var envelope struct {
		Regions []models.Region `json:"regions"`
	}
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/store/regions",
		kind:   constants.ErrorKindCheckout,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Regions, nil
}

// ShippingOptionsService 配送方式接口
type ShippingOptionsService struct {
	client *Client
}

// ListForCart 按购物车过滤可用配送方式
func (s *ShippingOptionsService) ListForCart(ctx context.Context, cartID string) ([]models.ShippingOption, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, ErrCartIDRequired
	}
	query := url.Values{}
	query.Set("cart_id", cartID)
	var envelope struct {
		ShippingOptions []models.ShippingOption `json:"shipping_options"`
	}
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/store/shipping-options",
		query:  query,
		kind:   constants.ErrorKindShipping,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.ShippingOptions, nil
}

// ListFilter 列表过滤条件
type ListFilter struct {
	Limit      int
	Offset     int
	Handle     string
	CategoryID string
	Collection string
}

func (f ListFilter) query() url.Values {
	query := url.Values{}
	if f.Limit > 0 {
		query.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		query.Set("offset", strconv.Itoa(f.Offset))
	}
	if strings.TrimSpace(f.Handle) != "" {
		query.Set("handle", strings.TrimSpace(f.Handle))
	}
	if strings.TrimSpace(f.CategoryID) != "" {
		query.Set("category_id", strings.TrimSpace(f.CategoryID))
	}
	if strings.TrimSpace(f.Collection) != "" {
		query.Set("collection_id", strings.TrimSpace(f.Collection))
	}
	return query
}

// ProductsService 商品接口
type ProductsService struct {
	client *Client
}

// List 列出商品
func (s *ProductsService) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	var envelope struct {
		Products []models.Product `json:"products"`
	}
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/store/products",
		query:  filter.query(),
		kind:   constants.ErrorKindProduct,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Products, nil
}

// ProductCategoriesService 商品分类接口
type ProductCategoriesService struct {
	client *Client
}

// List 列出商品分类
func (s *ProductCategoriesService) List(ctx context.Context, filter ListFilter) ([]models.ProductCategory, error) {
	var envelope struct {
		ProductCategories []models.ProductCategory `json:"product_categories"`
	}
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/store/product-categories",
		query:  filter.query(),
		kind:   constants.ErrorKindProduct,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.ProductCategories, nil
}

// CollectionsService 商品合集接口
type CollectionsService struct {
	client *Client
}

// List 列出商品合集
func (s *CollectionsService) List(ctx context.Context, filter ListFilter) ([]models.Collection, error) {
	var envelope struct {
		Collections []models.Collection `json:"collections"`
	}
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/store/collections",
		query:  filter.query(),
		kind:   constants.ErrorKindProduct,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Collections, nil
}
