package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goobits/storefront/internal/constants"
)

const (
	defaultTimeout       = 12 * time.Second
	publishableKeyHeader = "x-publishable-api-key"
)

// Config 商城后端客户端配置
type Config struct {
	BaseURL        string
	PublishableKey string
	Timeout        time.Duration
}

// Client 商城后端 HTTP 客户端
type Client struct {
	cfg        Config
	httpClient *http.Client

	Carts             *CartsService
	Regions           *RegionsService
	ShippingOptions   *ShippingOptionsService
	Products          *ProductsService
	ProductCategories *ProductCategoriesService
	Collections       *CollectionsService
	Customers         *CustomersService
	Auth              *AuthService
}

// NewClient 创建商城后端客户端
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.PublishableKey = strings.TrimSpace(cfg.PublishableKey)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	c.Carts = &CartsService{client: c}
	c.Regions = &RegionsService{client: c}
	c.ShippingOptions = &ShippingOptionsService{client: c}
	c.Products = &ProductsService{client: c}
	c.ProductCategories = &ProductCategoriesService{client: c}
	c.Collections = &CollectionsService{client: c}
	c.Customers = &CustomersService{client: c}
	c.Auth = &AuthService{client: c}
	return c
}

// request 请求描述
type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	token  string // 可选的顾客会话令牌
	kind   string // 失败时的领域错误分类
}

// do 执行请求并解码响应；所有失败都转换为带分类的 *APIError
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.cfg.BaseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var reader io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return newAPIError(constants.ErrorKindValidation, 0, "", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, reader)
	if err != nil {
		return newAPIError(constants.ErrorKindNetwork, 0, "", err)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.PublishableKey != "" {
		httpReq.Header.Set(publishableKeyHeader, c.cfg.PublishableKey)
	}
	if strings.TrimSpace(req.token) != "" {
		httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(req.token))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return newAPIError(constants.ErrorKindNetwork, 0, "", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newAPIError(constants.ErrorKindNetwork, resp.StatusCode, "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(req.kind, resp.StatusCode, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return newAPIError(constants.ErrorKindServer, resp.StatusCode, "", ErrResponseInvalid)
	}
	return nil
}

// statusError 将非 2xx 响应转换为分类错误
func (c *Client) statusError(kind string, status int, body []byte) *APIError {
	message := decodeErrorMessage(body)
	switch {
	case status == http.StatusTooManyRequests:
		return newAPIError(constants.ErrorKindRateLimit, status, message, nil)
	case status >= 500:
		return newAPIError(constants.ErrorKindServer, status, message, nil)
	}
	if kind == "" {
		kind = constants.ErrorKindValidation
	}
	return newAPIError(kind, status, message, nil)
}

// decodeErrorMessage 解析后端错误响应里的 message 字段
func decodeErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}
