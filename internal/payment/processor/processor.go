package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goobits/storefront/internal/constants"
	"github.com/goobits/storefront/internal/logger"
	"github.com/goobits/storefront/internal/models"
)

var (
	ErrConfigInvalid   = errors.New("processor config invalid")
	ErrNotReady        = errors.New("processor not initialized")
	ErrRequestFailed   = errors.New("processor request failed")
	ErrResponseInvalid = errors.New("processor response invalid")
)

const (
	defaultAPIBaseURL = "https://api.stripe.com"
	defaultTimeout    = 12 * time.Second
)

// Config 支付处理器配置。
type Config struct {
	PublishableKey string
	SecretKey      string
	APIBaseURL     string
	Timeout        time.Duration
}

func (c *Config) normalize() {
	c.PublishableKey = strings.TrimSpace(c.PublishableKey)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// ElementsConfig 支付组件装载参数。
type ElementsConfig struct {
	PublishableKey string `json:"publishable_key"`
	ClientSecret   string `json:"client_secret"`
	Locale         string `json:"locale,omitempty"`
}

// ConfirmResult 确认支付返回。
type ConfirmResult struct {
	PaymentIntentID string
	Status          string
	Raw             map[string]interface{}
}

// PaymentMethodResult 创建支付方式返回。
type PaymentMethodResult struct {
	ID   string
	Type string
	Raw  map[string]interface{}
}

// CardInput 卡支付方式输入。
type CardInput struct {
	Number   string
	ExpMonth int
	ExpYear  int
	CVC      string
}

// SessionData 从购物车提取指定提供方的支付会话数据；
// providerID 为空时取默认处理器。找不到会话时返回 nil。
func SessionData(cart *models.Cart, providerID string) models.JSON {
	if cart == nil {
		return nil
	}
	if strings.TrimSpace(providerID) == "" {
		providerID = constants.PaymentProviderProcessor
	}
	if cart.PaymentSession != nil && cart.PaymentSession.ProviderID == providerID {
		return cart.PaymentSession.Data
	}
	if session := cart.FindPaymentSession(providerID); session != nil {
		return session.Data
	}
	return nil
}

// ClientSecret 从支付会话数据提取 client_secret，不存在时为空串。
func ClientSecret(data models.JSON) string {
	if data == nil {
		return ""
	}
	return strings.TrimSpace(data.String("client_secret"))
}

// Adapter 支付处理器适配。配置持有在实例上，进程内不设全局单例；
// 初始化惰性执行且可在补齐配置后重试。
type Adapter struct {
	mu      sync.Mutex
	cfg     Config
	once    *sync.Once
	initErr error
	ready   bool
}

// New 创建适配器；缺失的配置项可稍后通过 Configure 补齐。
func New(cfg Config) *Adapter {
	cfg.normalize()
	return &Adapter{cfg: cfg, once: new(sync.Once)}
}

// Configure 更新配置并允许重新初始化。
func (a *Adapter) Configure(cfg Config) {
	cfg.normalize()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = cfg
	a.once = new(sync.Once)
	a.initErr = nil
	a.ready = false
}

// Init 惰性初始化：校验可发布密钥。密钥缺失不致命，
// 记录状态后端上可经 Configure 补齐并重试。
func (a *Adapter) Init() error {
	a.mu.Lock()
	once := a.once
	a.mu.Unlock()

	once.Do(func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.cfg.PublishableKey == "" {
			a.initErr = fmt.Errorf("%w: publishable key missing", ErrConfigInvalid)
			logger.Warnw("processor_init_skipped", "reason", "publishable_key_missing")
			return
		}
		a.ready = true
		logger.Infow("processor_initialized", "api_base_url", a.cfg.APIBaseURL)
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initErr
}

// Ready 判断适配器是否完成初始化。
func (a *Adapter) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

// InitErr 返回最近一次初始化失败的原因。
func (a *Adapter) InitErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initErr
}

// PublishableKey 返回当前可发布密钥。
func (a *Adapter) PublishableKey() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.PublishableKey
}

// ElementsOptions 构建支付组件装载参数。
func (a *Adapter) ElementsOptions(clientSecret string) (*ElementsConfig, error) {
	if err := a.Init(); err != nil {
		return nil, err
	}
	clientSecret = strings.TrimSpace(clientSecret)
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret is required", ErrConfigInvalid)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return &ElementsConfig{
		PublishableKey: a.cfg.PublishableKey,
		ClientSecret:   clientSecret,
	}, nil
}

// ConfirmPayment 确认支付意图。处理器错误记录后原样返回。
func (a *Adapter) ConfirmPayment(ctx context.Context, paymentIntentID, paymentMethodID string) (*ConfirmResult, error) {
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	if paymentIntentID == "" {
		return nil, fmt.Errorf("%w: payment_intent id is required", ErrConfigInvalid)
	}
	form := url.Values{}
	if pm := strings.TrimSpace(paymentMethodID); pm != "" {
		form.Set("payment_method", pm)
	}

	raw, err := a.doFormRequest(ctx, http.MethodPost, "/v1/payment_intents/"+paymentIntentID+"/confirm", form)
	if err != nil {
		logger.Warnw("processor_confirm_failed",
			"payment_intent_id", paymentIntentID,
			"error", err,
		)
		return nil, err
	}
	return &ConfirmResult{
		PaymentIntentID: strings.TrimSpace(readString(raw, "id")),
		Status:          strings.TrimSpace(readString(raw, "status")),
		Raw:             raw,
	}, nil
}

// CreatePaymentMethod 创建卡支付方式。处理器错误记录后原样返回。
func (a *Adapter) CreatePaymentMethod(ctx context.Context, card CardInput) (*PaymentMethodResult, error) {
	if strings.TrimSpace(card.Number) == "" {
		return nil, fmt.Errorf("%w: card number is required", ErrConfigInvalid)
	}
	form := url.Values{}
	form.Set("type", "card")
	form.Set("card[number]", strings.TrimSpace(card.Number))
	form.Set("card[exp_month]", strconv.Itoa(card.ExpMonth))
	form.Set("card[exp_year]", strconv.Itoa(card.ExpYear))
	form.Set("card[cvc]", strings.TrimSpace(card.CVC))

	raw, err := a.doFormRequest(ctx, http.MethodPost, "/v1/payment_methods", form)
	if err != nil {
		logger.Warnw("processor_payment_method_failed", "error", err)
		return nil, err
	}
	return &PaymentMethodResult{
		ID:   strings.TrimSpace(readString(raw, "id")),
		Type: strings.TrimSpace(readString(raw, "type")),
		Raw:  raw,
	}, nil
}

func (a *Adapter) doFormRequest(ctx context.Context, method, path string, form url.Values) (map[string]interface{}, error) {
	if err := a.Init(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	cfg := a.cfg
	a.mu.Unlock()
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: secret key missing", ErrConfigInvalid)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint := cfg.APIBaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := (&http.Client{Timeout: cfg.Timeout}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	raw, err := decodeRawMap(body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := readErrorMessage(raw)
		if message == "" {
			message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, message)
	}
	return raw, nil
}
