package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/goobits/storefront/internal/constants"
	"github.com/goobits/storefront/internal/models"
)

// CartsService 购物车接口
type CartsService struct {
	client *Client
}

// cartEnvelope 购物车响应包裹
type cartEnvelope struct {
	Cart *models.Cart `json:"cart"`
}

// CartUpdate 购物车更新补丁；nil 字段不下发
type CartUpdate struct {
	Email           string          `json:"email,omitempty"`
	CustomerID      string          `json:"customer_id,omitempty"`
	RegionID        string          `json:"region_id,omitempty"`
	ShippingAddress *models.Address `json:"shipping_address,omitempty"`
}

// CompleteResult 完成购物车的判别结果：type 为 order 或 cart
type CompleteResult struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Order 当 type 为 order 时解码订单
func (r *CompleteResult) Order() (*models.Order, error) {
	if r == nil || r.Type != constants.CompletionTypeOrder {
		return nil, ErrResponseInvalid
	}
	var order models.Order
	if err := json.Unmarshal(r.Data, &order); err != nil {
		return nil, ErrResponseInvalid
	}
	return &order, nil
}

// Cart 当 type 为 cart 时解码仍在等待的购物车
func (r *CompleteResult) Cart() (*models.Cart, error) {
	if r == nil || r.Type != constants.CompletionTypeCart {
		return nil, ErrResponseInvalid
	}
	var cart models.Cart
	if err := json.Unmarshal(r.Data, &cart); err != nil {
		return nil, ErrResponseInvalid
	}
	return &cart, nil
}

// PaymentProvider 可用支付提供方
type PaymentProvider struct {
	ID string `json:"id"`
}

// Create 创建服务端购物车
func (s *CartsService) Create(ctx context.Context, regionID string) (*models.Cart, error) {
	body := map[string]interface{}{}
	if strings.TrimSpace(regionID) != "" {
		body["region_id"] = strings.TrimSpace(regionID)
	}
	var envelope cartEnvelope
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/carts",
		body:   body,
		kind:   constants.ErrorKindCart,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Cart, nil
}

// Retrieve 获取购物车
func (s *CartsService) Retrieve(ctx context.Context, cartID string) (*models.Cart, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, ErrCartIDRequired
	}
	var envelope cartEnvelope
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/store/carts/" + url.PathEscape(cartID),
		kind:   constants.ErrorKindCart,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	if envelope.Cart == nil {
		return nil, ErrCartNotFound
	}
	return envelope.Cart, nil
}

// Update 更新购物车（空补丁用于把购物车关联到当前顾客）
func (s *CartsService) Update(ctx context.Context, cartID string, patch CartUpdate) (*models.Cart, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, ErrCartIDRequired
	}
	var envelope cartEnvelope
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/carts/" + url.PathEscape(cartID),
		body:   patch,
		kind:   constants.ErrorKindCart,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Cart, nil
}

// AddLineItem 添加行项目
func (s *CartsService) AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*models.Cart, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, ErrCartIDRequired
	}
	var envelope cartEnvelope
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/carts/" + url.PathEscape(cartID) + "/line-items",
		body: map[string]interface{}{
			"variant_id": strings.TrimSpace(variantID),
			"quantity":   quantity,
		},
		kind: constants.ErrorKindCart,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Cart, nil
}

// CreatePaymentSessions 为购物车创建支付会话
func (s *CartsService) CreatePaymentSessions(ctx context.Context, cartID string) (*models.Cart, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, ErrCartIDRequired
	}
	var envelope cartEnvelope
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/carts/" + url.PathEscape(cartID) + "/payment-sessions",
		kind:   constants.ErrorKindPayment,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Cart, nil
}

// SetPaymentSession 选择支付提供方
func (s *CartsService) SetPaymentSession(ctx context.Context, cartID, providerID string) (*models.Cart, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, ErrCartIDRequired
	}
	var envelope cartEnvelope
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/carts/" + url.PathEscape(cartID) + "/payment-session",
		body: map[string]interface{}{
			"provider_id": strings.TrimSpace(providerID),
		},
		kind: constants.ErrorKindPayment,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Cart, nil
}

// AddShippingMethod 绑定配送方式
func (s *CartsService) AddShippingMethod(ctx context.Context, cartID, optionID string) (*models.Cart, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, ErrCartIDRequired
	}
	var envelope cartEnvelope
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/carts/" + url.PathEscape(cartID) + "/shipping-methods",
		body: map[string]interface{}{
			"option_id": strings.TrimSpace(optionID),
		},
		kind: constants.ErrorKindShipping,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Cart, nil
}

// Complete 完成购物车；返回 order 或仍需客户端动作的 cart
func (s *CartsService) Complete(ctx context.Context, cartID string) (*CompleteResult, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, ErrCartIDRequired
	}
	var result CompleteResult
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/carts/" + url.PathEscape(cartID) + "/complete",
		kind:   constants.ErrorKindCheckout,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListPaymentProviders 列出购物车可用的支付提供方
func (s *CartsService) ListPaymentProviders(ctx context.Context, cartID string) ([]PaymentProvider, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, ErrCartIDRequired
	}
	var envelope struct {
		PaymentProviders []PaymentProvider `json:"payment_providers"`
	}
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/store/carts/" + url.PathEscape(cartID) + "/payment-providers",
		kind:   constants.ErrorKindPayment,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.PaymentProviders, nil
}
