package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goobits/storefront/internal/commerce"
	"github.com/goobits/storefront/internal/constants"
	"github.com/goobits/storefront/internal/logger"
	"github.com/goobits/storefront/internal/models"
	"github.com/goobits/storefront/internal/queue"

	"github.com/hibiken/asynq"
)

// CartsAPI 结账流程依赖的购物车接口
type CartsAPI interface {
	Retrieve(ctx context.Context, cartID string) (*models.Cart, error)
	Update(ctx context.Context, cartID string, patch commerce.CartUpdate) (*models.Cart, error)
	CreatePaymentSessions(ctx context.Context, cartID string) (*models.Cart, error)
	SetPaymentSession(ctx context.Context, cartID, providerID string) (*models.Cart, error)
	AddShippingMethod(ctx context.Context, cartID, optionID string) (*models.Cart, error)
	Complete(ctx context.Context, cartID string) (*commerce.CompleteResult, error)
}

// RegionsAPI 区域列表接口
type RegionsAPI interface {
	List(ctx context.Context) ([]models.Region, error)
}

// ShippingOptionsAPI 配送方案接口
type ShippingOptionsAPI interface {
	ListForCart(ctx context.Context, cartID string) ([]models.ShippingOption, error)
}

// Notifier 订单通知推送接口（由 queue.Client 实现）
type Notifier interface {
	EnqueueOrderConfirmation(payload queue.OrderConfirmationPayload, opts ...asynq.Option) error
}

// Failure 结构化失败：后端拒绝不会以裸错误形式外泄
type Failure struct {
	Kind    string `json:"kind"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

// Result 单步操作结果
type Result struct {
	Success bool         `json:"success"`
	Cart    *models.Cart `json:"cart,omitempty"`
	Error   *Failure     `json:"error,omitempty"`
}

// LoadResult 结账页装载结果
type LoadResult struct {
	Redirect        bool                    `json:"redirect"`
	Step            string                  `json:"step,omitempty"`
	Cart            *models.Cart            `json:"cart,omitempty"`
	Regions         []models.Region         `json:"regions,omitempty"`
	Region          *models.Region          `json:"region,omitempty"`
	ShippingOptions []models.ShippingOption `json:"shipping_options,omitempty"`
	Error           *Failure                `json:"error,omitempty"`
}

// CompleteOutcome 完成购物车的判别结果
type CompleteOutcome struct {
	Success        bool          `json:"success"`
	RequiresAction bool          `json:"requires_action"`
	Step           string        `json:"step,omitempty"`
	Order          *models.Order `json:"order,omitempty"`
	Cart           *models.Cart  `json:"cart,omitempty"`
	Error          *Failure      `json:"error,omitempty"`
}

// Orchestrator 结账编排：客户信息 → 配送 → 支付 → 确认的线性可恢复流程
type Orchestrator struct {
	carts           CartsAPI
	regions         RegionsAPI
	shipping        ShippingOptionsAPI
	notifier        Notifier
	defaultProvider string
}

// New 创建结账编排器；notifier 可为 nil
func New(carts CartsAPI, regions RegionsAPI, shipping ShippingOptionsAPI, notifier Notifier) *Orchestrator {
	return &Orchestrator{
		carts:           carts,
		regions:         regions,
		shipping:        shipping,
		notifier:        notifier,
		defaultProvider: constants.PaymentProviderProcessor,
	}
}

// LoadCheckout 装载结账页：无购物车标识或购物车不存在时给出跳转信号，
// 传输层或服务端错误转换为 500 级结构化失败。
func (o *Orchestrator) LoadCheckout(ctx context.Context, cartID string) *LoadResult {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return &LoadResult{Redirect: true}
	}

	cart, err := o.carts.Retrieve(ctx, cartID)
	if err != nil {
		if commerce.IsKind(err, constants.ErrorKindCart) ||
			isSentinel(err) {
			logger.Infow("checkout_cart_missing", "cart_id", cartID)
			return &LoadResult{Redirect: true}
		}
		logger.Errorw("checkout_load_failed", "cart_id", cartID, "error", err)
		return &LoadResult{Error: serverFailure(err)}
	}

	result := &LoadResult{Cart: cart}

	regions, err := o.regions.List(ctx)
	if err != nil {
		logger.Warnw("checkout_regions_unavailable", "error", err)
	} else {
		result.Regions = regions
		if len(regions) > 0 {
			result.Region = &regions[0]
		}
	}

	options, err := o.shipping.ListForCart(ctx, cartID)
	if err != nil {
		// 配送方案获取失败时降级为空列表
		logger.Warnw("checkout_shipping_options_unavailable", "cart_id", cartID, "error", err)
	} else {
		result.ShippingOptions = options
	}

	if cart.HasShippingMethod() && !cart.HasPaymentSessions() {
		if refreshed := o.bootstrapPaymentSessions(ctx, cartID); refreshed != nil {
			result.Cart = refreshed
		}
	}
	result.Step = currentStep(result.Cart)
	return result
}

// currentStep 根据购物车进度推断当前结账步骤
func currentStep(cart *models.Cart) string {
	switch {
	case cart == nil || strings.TrimSpace(cart.Email) == "":
		return constants.CheckoutStepCustomer
	case !cart.HasShippingMethod():
		return constants.CheckoutStepShipping
	case cart.PaymentSession == nil:
		return constants.CheckoutStepPayment
	default:
		return constants.CheckoutStepReview
	}
}

// UpdateCustomer 提交客户信息步骤
func (o *Orchestrator) UpdateCustomer(ctx context.Context, cartID, email, firstName, lastName string) *Result {
	cartID = strings.TrimSpace(cartID)
	email = strings.TrimSpace(email)
	if cartID == "" {
		return validationResult("cart id is required")
	}
	if email == "" {
		return validationResult("email is required")
	}
	patch := commerce.CartUpdate{Email: email}
	if addr := customerAddressPatch(firstName, lastName); addr != nil {
		patch.ShippingAddress = addr
	}
	cart, err := o.carts.Update(ctx, cartID, patch)
	if err != nil {
		logger.Warnw("checkout_customer_update_failed", "cart_id", cartID, "error", err)
		return failureResult(err)
	}
	return &Result{Success: true, Cart: cart}
}

// AddShippingAddress 提交配送地址步骤
func (o *Orchestrator) AddShippingAddress(ctx context.Context, cartID string, addr models.Address) *Result {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return validationResult("cart id is required")
	}
	cart, err := o.carts.Update(ctx, cartID, commerce.CartUpdate{ShippingAddress: &addr})
	if err != nil {
		logger.Warnw("checkout_shipping_address_failed", "cart_id", cartID, "error", err)
		return failureResult(err)
	}
	return &Result{Success: true, Cart: cart}
}

// AddShippingMethod 选定配送方案，随后尽力初始化支付会话。
// 支付会话初始化失败时返回已挂载配送方案的购物车，不作为错误。
func (o *Orchestrator) AddShippingMethod(ctx context.Context, cartID, optionID string) *Result {
	cartID = strings.TrimSpace(cartID)
	optionID = strings.TrimSpace(optionID)
	if cartID == "" {
		return validationResult("cart id is required")
	}
	if optionID == "" {
		return validationResult("shipping option is required")
	}
	cart, err := o.carts.AddShippingMethod(ctx, cartID, optionID)
	if err != nil {
		logger.Warnw("checkout_shipping_method_failed",
			"cart_id", cartID,
			"option_id", optionID,
			"error", err,
		)
		return failureResult(err)
	}
	if refreshed := o.bootstrapPaymentSessions(ctx, cartID); refreshed != nil {
		cart = refreshed
	}
	return &Result{Success: true, Cart: cart}
}

// UpdatePayment 选定支付提供方；providerID 为空时使用默认处理器。
// 购物车尚无支付会话时先行创建。
func (o *Orchestrator) UpdatePayment(ctx context.Context, cartID, providerID string) *Result {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return validationResult("cart id is required")
	}
	if strings.TrimSpace(providerID) == "" {
		providerID = o.defaultProvider
	}

	cart, err := o.carts.Retrieve(ctx, cartID)
	if err != nil {
		logger.Warnw("checkout_payment_load_failed", "cart_id", cartID, "error", err)
		return failureResult(err)
	}
	if !cart.HasPaymentSessions() {
		if _, err := o.carts.CreatePaymentSessions(ctx, cartID); err != nil {
			logger.Warnw("checkout_payment_sessions_create_failed", "cart_id", cartID, "error", err)
			return failureResult(err)
		}
	}
	cart, err = o.carts.SetPaymentSession(ctx, cartID, providerID)
	if err != nil {
		logger.Warnw("checkout_payment_select_failed",
			"cart_id", cartID,
			"provider_id", providerID,
			"error", err,
		)
		return failureResult(err)
	}
	return &Result{Success: true, Cart: cart}
}

// CompleteCart 完成购物车：type=order 为成功下单，type=cart 表示
// 支付仍需客户操作，其余一律视为失败。
func (o *Orchestrator) CompleteCart(ctx context.Context, cartID string) *CompleteOutcome {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return &CompleteOutcome{Error: &Failure{
			Kind:    constants.ErrorKindValidation,
			Status:  http.StatusBadRequest,
			Message: "cart id is required",
		}}
	}

	result, err := o.carts.Complete(ctx, cartID)
	if err != nil {
		logger.Warnw("checkout_complete_failed", "cart_id", cartID, "error", err)
		return &CompleteOutcome{Error: failureFrom(err)}
	}

	switch result.Type {
	case constants.CompletionTypeOrder:
		order, err := result.Order()
		if err != nil {
			logger.Errorw("checkout_order_decode_failed", "cart_id", cartID, "error", err)
			return &CompleteOutcome{Error: serverFailure(err)}
		}
		o.notifyOrderConfirmation(cartID, order)
		return &CompleteOutcome{Success: true, Step: constants.CheckoutStepConfirmation, Order: order}
	case constants.CompletionTypeCart:
		cart, err := result.Cart()
		if err != nil {
			logger.Errorw("checkout_pending_cart_decode_failed", "cart_id", cartID, "error", err)
			return &CompleteOutcome{Error: serverFailure(err)}
		}
		return &CompleteOutcome{RequiresAction: true, Step: constants.CheckoutStepPayment, Cart: cart}
	default:
		logger.Warnw("checkout_complete_unexpected_type", "cart_id", cartID, "type", result.Type)
		return &CompleteOutcome{Error: &Failure{
			Kind:    constants.ErrorKindCheckout,
			Status:  http.StatusBadGateway,
			Message: "unexpected completion response",
		}}
	}
}

// bootstrapPaymentSessions 尽力创建并预选默认支付会话；失败返回 nil
func (o *Orchestrator) bootstrapPaymentSessions(ctx context.Context, cartID string) *models.Cart {
	cart, err := o.carts.CreatePaymentSessions(ctx, cartID)
	if err != nil {
		logger.Warnw("checkout_payment_bootstrap_failed", "cart_id", cartID, "error", err)
		return nil
	}
	if cart.FindPaymentSession(o.defaultProvider) != nil {
		selected, err := o.carts.SetPaymentSession(ctx, cartID, o.defaultProvider)
		if err != nil {
			logger.Warnw("checkout_payment_preselect_failed", "cart_id", cartID, "error", err)
			return cart
		}
		return selected
	}
	return cart
}

// notifyOrderConfirmation 下单成功后尽力推送确认通知，绝不影响主流程
func (o *Orchestrator) notifyOrderConfirmation(cartID string, order *models.Order) {
	if o.notifier == nil || order == nil {
		return
	}
	err := o.notifier.EnqueueOrderConfirmation(queue.OrderConfirmationPayload{
		OrderID:   order.ID,
		DisplayID: order.DisplayID,
		CartID:    cartID,
		Email:     order.Email,
	})
	if err != nil {
		logger.Warnw("order_confirmation_enqueue_failed",
			"order_id", order.ID,
			"error", err,
		)
	}
}

func customerAddressPatch(firstName, lastName string) *models.Address {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" && lastName == "" {
		return nil
	}
	return &models.Address{FirstName: firstName, LastName: lastName}
}

func validationResult(message string) *Result {
	return &Result{Error: &Failure{
		Kind:    constants.ErrorKindValidation,
		Status:  http.StatusBadRequest,
		Message: message,
	}}
}

func failureResult(err error) *Result {
	return &Result{Error: failureFrom(err)}
}

// failureFrom 将商城接口错误转换为结构化失败
func failureFrom(err error) *Failure {
	status := commerce.StatusOf(err)
	if status == 0 {
		status = http.StatusBadGateway
	}
	message := commerce.MessageOf(err)
	return &Failure{
		Kind:    commerce.Kind(err),
		Status:  status,
		Message: message,
	}
}

// serverFailure 500 级结构化失败
func serverFailure(err error) *Failure {
	f := failureFrom(err)
	if f.Status < http.StatusInternalServerError {
		f.Status = http.StatusInternalServerError
	}
	return f
}

func isSentinel(err error) bool {
	return errors.Is(err, commerce.ErrCartIDRequired) || errors.Is(err, commerce.ErrCartNotFound)
}
