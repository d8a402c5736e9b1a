package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/goobits/storefront/internal/commerce"
	"github.com/goobits/storefront/internal/constants"
	"github.com/goobits/storefront/internal/models"
	"github.com/goobits/storefront/internal/queue"

	"github.com/hibiken/asynq"
)

type fakeCarts struct {
	cart *models.Cart

	retrieveErr error
	updateErr   error
	sessionsErr error
	selectErr   error
	methodErr   error

	completeResult *commerce.CompleteResult
	completeErr    error

	updates        []commerce.CartUpdate
	sessionsCalls  int
	selectedID     string
	attachedOption string
}

func (f *fakeCarts) Retrieve(_ context.Context, cartID string) (*models.Cart, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	return f.cart, nil
}

func (f *fakeCarts) Update(_ context.Context, cartID string, patch commerce.CartUpdate) (*models.Cart, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates = append(f.updates, patch)
	if patch.Email != "" {
		f.cart.Email = patch.Email
	}
	if patch.ShippingAddress != nil {
		f.cart.ShippingAddress = patch.ShippingAddress
	}
	return f.cart, nil
}

func (f *fakeCarts) CreatePaymentSessions(_ context.Context, cartID string) (*models.Cart, error) {
	f.sessionsCalls++
	if f.sessionsErr != nil {
		return nil, f.sessionsErr
	}
	if !f.cart.HasPaymentSessions() {
		f.cart.PaymentSessions = []models.PaymentSession{
			{ID: "ps_1", ProviderID: constants.PaymentProviderProcessor, Status: constants.PaymentSessionStatusPending},
		}
	}
	return f.cart, nil
}

func (f *fakeCarts) SetPaymentSession(_ context.Context, cartID, providerID string) (*models.Cart, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	f.selectedID = providerID
	f.cart.PaymentSession = f.cart.FindPaymentSession(providerID)
	return f.cart, nil
}

func (f *fakeCarts) AddShippingMethod(_ context.Context, cartID, optionID string) (*models.Cart, error) {
	if f.methodErr != nil {
		return nil, f.methodErr
	}
	f.attachedOption = optionID
	f.cart.ShippingMethods = []models.ShippingMethod{{ID: "sm_1", ShippingOptionID: optionID}}
	return f.cart, nil
}

func (f *fakeCarts) Complete(_ context.Context, cartID string) (*commerce.CompleteResult, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.completeResult, nil
}

type fakeRegions struct {
	regions []models.Region
	err     error
}

func (f *fakeRegions) List(_ context.Context) ([]models.Region, error) {
	return f.regions, f.err
}

type fakeShipping struct {
	options []models.ShippingOption
	err     error
}

func (f *fakeShipping) ListForCart(_ context.Context, cartID string) ([]models.ShippingOption, error) {
	return f.options, f.err
}

type fakeNotifier struct {
	payloads []queue.OrderConfirmationPayload
	err      error
}

func (f *fakeNotifier) EnqueueOrderConfirmation(payload queue.OrderConfirmationPayload, _ ...asynq.Option) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

func newOrchestrator(carts *fakeCarts) (*Orchestrator, *fakeNotifier) {
	notifier := &fakeNotifier{}
	o := New(carts,
		&fakeRegions{regions: []models.Region{{ID: "reg_us", CurrencyCode: "usd"}}},
		&fakeShipping{options: []models.ShippingOption{{ID: "so_std", Amount: 599}}},
		notifier,
	)
	return o, notifier
}

func TestLoadCheckoutEmptyCartIDRedirects(t *testing.T) {
	o, _ := newOrchestrator(&fakeCarts{})
	result := o.LoadCheckout(context.Background(), "  ")
	if !result.Redirect {
		t.Fatalf("expected redirect signal for empty cart id")
	}
	if result.Error != nil {
		t.Fatalf("redirect must not carry an error: %+v", result.Error)
	}
}

func TestLoadCheckoutMissingCartRedirects(t *testing.T) {
	carts := &fakeCarts{retrieveErr: &commerce.APIError{
		Kind: constants.ErrorKindCart, Status: http.StatusNotFound, Message: "cart not found",
	}}
	o, _ := newOrchestrator(carts)
	result := o.LoadCheckout(context.Background(), "cart_x")
	if !result.Redirect {
		t.Fatalf("expected redirect for missing cart")
	}
}

func TestLoadCheckoutServerErrorIsStructured(t *testing.T) {
	carts := &fakeCarts{retrieveErr: &commerce.APIError{
		Kind: constants.ErrorKindServer, Status: http.StatusBadGateway,
	}}
	o, _ := newOrchestrator(carts)
	result := o.LoadCheckout(context.Background(), "cart_x")
	if result.Redirect {
		t.Fatalf("server error must not redirect")
	}
	if result.Error == nil || result.Error.Status < http.StatusInternalServerError {
		t.Fatalf("expected 500-class failure, got %+v", result.Error)
	}
}

func TestLoadCheckoutDefaultsToFirstRegion(t *testing.T) {
	carts := &fakeCarts{cart: &models.Cart{ID: "cart_1"}}
	o, _ := newOrchestrator(carts)
	result := o.LoadCheckout(context.Background(), "cart_1")
	if result.Region == nil || result.Region.ID != "reg_us" {
		t.Fatalf("expected first region as default, got %+v", result.Region)
	}
	if len(result.ShippingOptions) != 1 {
		t.Fatalf("expected shipping options, got %+v", result.ShippingOptions)
	}
}

func TestLoadCheckoutShippingOptionsDegradeToEmpty(t *testing.T) {
	carts := &fakeCarts{cart: &models.Cart{ID: "cart_1"}}
	notifier := &fakeNotifier{}
	o := New(carts,
		&fakeRegions{regions: []models.Region{{ID: "reg_us"}}},
		&fakeShipping{err: &commerce.APIError{Kind: constants.ErrorKindShipping, Status: 500}},
		notifier,
	)
	result := o.LoadCheckout(context.Background(), "cart_1")
	if result.Error != nil {
		t.Fatalf("shipping failure must degrade, got %+v", result.Error)
	}
	if len(result.ShippingOptions) != 0 {
		t.Fatalf("expected empty options on failure")
	}
}

func TestLoadCheckoutBootstrapsPaymentSessions(t *testing.T) {
	carts := &fakeCarts{cart: &models.Cart{
		ID:              "cart_1",
		ShippingMethods: []models.ShippingMethod{{ID: "sm_1"}},
	}}
	o, _ := newOrchestrator(carts)
	result := o.LoadCheckout(context.Background(), "cart_1")
	if carts.sessionsCalls != 1 {
		t.Fatalf("expected payment session bootstrap, calls=%d", carts.sessionsCalls)
	}
	if carts.selectedID != constants.PaymentProviderProcessor {
		t.Fatalf("expected default provider preselected, got %q", carts.selectedID)
	}
	if result.Cart == nil || !result.Cart.HasPaymentSessions() {
		t.Fatalf("expected refreshed cart with sessions")
	}
}

func TestLoadCheckoutBootstrapFailureKeepsOriginalCart(t *testing.T) {
	carts := &fakeCarts{
		cart: &models.Cart{
			ID:              "cart_1",
			ShippingMethods: []models.ShippingMethod{{ID: "sm_1"}},
		},
		sessionsErr: &commerce.APIError{Kind: constants.ErrorKindPayment, Status: 500},
	}
	o, _ := newOrchestrator(carts)
	result := o.LoadCheckout(context.Background(), "cart_1")
	if result.Error != nil {
		t.Fatalf("bootstrap failure must not fail the load: %+v", result.Error)
	}
	if result.Cart == nil || result.Cart.ID != "cart_1" {
		t.Fatalf("expected original cart returned")
	}
}

func TestUpdateCustomerValidation(t *testing.T) {
	o, _ := newOrchestrator(&fakeCarts{cart: &models.Cart{ID: "cart_1"}})

	if r := o.UpdateCustomer(context.Background(), "", "a@b.co", "", ""); r.Success || r.Error == nil ||
		r.Error.Kind != constants.ErrorKindValidation {
		t.Fatalf("expected validation failure for missing cart id, got %+v", r)
	}
	if r := o.UpdateCustomer(context.Background(), "cart_1", "", "", ""); r.Success || r.Error == nil {
		t.Fatalf("expected validation failure for missing email, got %+v", r)
	}
}

func TestUpdateCustomerSuccess(t *testing.T) {
	carts := &fakeCarts{cart: &models.Cart{ID: "cart_1"}}
	o, _ := newOrchestrator(carts)

	r := o.UpdateCustomer(context.Background(), "cart_1", "jane@example.com", "Jane", "Doe")
	if !r.Success || r.Error != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	if r.Cart.Email != "jane@example.com" {
		t.Fatalf("email not applied: %+v", r.Cart)
	}
	if len(carts.updates) != 1 || carts.updates[0].ShippingAddress == nil ||
		carts.updates[0].ShippingAddress.FirstName != "Jane" {
		t.Fatalf("expected name patch, got %+v", carts.updates)
	}
}

func TestUpdateCustomerBackendRejectionIsCaught(t *testing.T) {
	carts := &fakeCarts{
		cart: &models.Cart{ID: "cart_1"},
		updateErr: &commerce.APIError{
			Kind: constants.ErrorKindValidation, Status: http.StatusUnprocessableEntity, Message: "invalid email",
		},
	}
	o, _ := newOrchestrator(carts)
	r := o.UpdateCustomer(context.Background(), "cart_1", "bad", "", "")
	if r.Success || r.Error == nil {
		t.Fatalf("expected structured failure, got %+v", r)
	}
	if r.Error.Message != "invalid email" || r.Error.Status != http.StatusUnprocessableEntity {
		t.Fatalf("backend message not carried: %+v", r.Error)
	}
}

func TestAddShippingMethodBootstrapFailureStillSucceeds(t *testing.T) {
	carts := &fakeCarts{
		cart:        &models.Cart{ID: "cart_1"},
		sessionsErr: &commerce.APIError{Kind: constants.ErrorKindPayment, Status: 500},
	}
	o, _ := newOrchestrator(carts)

	r := o.AddShippingMethod(context.Background(), "cart_1", "so_std")
	if !r.Success || r.Error != nil {
		t.Fatalf("payment bootstrap failure must not fail the step: %+v", r)
	}
	if carts.attachedOption != "so_std" {
		t.Fatalf("shipping method not attached")
	}
	if !r.Cart.HasShippingMethod() {
		t.Fatalf("expected cart with shipping method")
	}
}

func TestUpdatePaymentDefaultsProvider(t *testing.T) {
	carts := &fakeCarts{cart: &models.Cart{ID: "cart_1"}}
	o, _ := newOrchestrator(carts)

	r := o.UpdatePayment(context.Background(), "cart_1", "")
	if !r.Success {
		t.Fatalf("expected success, got %+v", r)
	}
	if carts.selectedID != constants.PaymentProviderProcessor {
		t.Fatalf("expected default provider, got %q", carts.selectedID)
	}
	if carts.sessionsCalls != 1 {
		t.Fatalf("expected session creation for empty cart, calls=%d", carts.sessionsCalls)
	}
}

func TestUpdatePaymentSkipsCreateWhenSessionsExist(t *testing.T) {
	carts := &fakeCarts{cart: &models.Cart{
		ID: "cart_1",
		PaymentSessions: []models.PaymentSession{
			{ID: "ps_1", ProviderID: constants.PaymentProviderProcessor},
		},
	}}
	o, _ := newOrchestrator(carts)

	r := o.UpdatePayment(context.Background(), "cart_1", constants.PaymentProviderProcessor)
	if !r.Success {
		t.Fatalf("expected success, got %+v", r)
	}
	if carts.sessionsCalls != 0 {
		t.Fatalf("must not recreate existing sessions, calls=%d", carts.sessionsCalls)
	}
}

func TestCompleteCartOrder(t *testing.T) {
	order := models.Order{ID: "order_1", DisplayID: 1001, Email: "jane@example.com", Total: 4099}
	raw, _ := json.Marshal(order)
	carts := &fakeCarts{completeResult: &commerce.CompleteResult{
		Type: constants.CompletionTypeOrder,
		Data: raw,
	}}
	o, notifier := newOrchestrator(carts)

	outcome := o.CompleteCart(context.Background(), "cart_1")
	if !outcome.Success || outcome.Order == nil || outcome.Order.ID != "order_1" {
		t.Fatalf("expected order outcome, got %+v", outcome)
	}
	if len(notifier.payloads) != 1 || notifier.payloads[0].OrderID != "order_1" {
		t.Fatalf("expected confirmation enqueue, got %+v", notifier.payloads)
	}
}

func TestCompleteCartRequiresAction(t *testing.T) {
	pending := models.Cart{ID: "cart_1", PaymentSession: &models.PaymentSession{
		ID:         "ps_1",
		ProviderID: constants.PaymentProviderProcessor,
		Data:       models.JSON{"client_secret": "pi_secret"},
	}}
	raw, _ := json.Marshal(pending)
	carts := &fakeCarts{completeResult: &commerce.CompleteResult{
		Type: constants.CompletionTypeCart,
		Data: raw,
	}}
	o, notifier := newOrchestrator(carts)

	outcome := o.CompleteCart(context.Background(), "cart_1")
	if outcome.Success {
		t.Fatalf("pending payment must not be success")
	}
	if !outcome.RequiresAction || outcome.Cart == nil {
		t.Fatalf("expected requires-action outcome, got %+v", outcome)
	}
	if len(notifier.payloads) != 0 {
		t.Fatalf("must not notify before order exists")
	}
}

func TestCompleteCartUnexpectedType(t *testing.T) {
	carts := &fakeCarts{completeResult: &commerce.CompleteResult{Type: "swap"}}
	o, _ := newOrchestrator(carts)

	outcome := o.CompleteCart(context.Background(), "cart_1")
	if outcome.Success || outcome.RequiresAction || outcome.Error == nil {
		t.Fatalf("expected generic failure, got %+v", outcome)
	}
}

func TestCompleteCartNotifierFailureIsSwallowed(t *testing.T) {
	order := models.Order{ID: "order_1"}
	raw, _ := json.Marshal(order)
	carts := &fakeCarts{completeResult: &commerce.CompleteResult{
		Type: constants.CompletionTypeOrder,
		Data: raw,
	}}
	notifier := &fakeNotifier{err: context.DeadlineExceeded}
	o := New(carts, &fakeRegions{}, &fakeShipping{}, notifier)

	outcome := o.CompleteCart(context.Background(), "cart_1")
	if !outcome.Success {
		t.Fatalf("notifier failure must not fail completion: %+v", outcome)
	}
}

// 端到端步骤串联：客户信息 → 地址 → 配送 → 支付 → 完成
func TestCheckoutFlow(t *testing.T) {
	order := models.Order{ID: "order_9", Subtotal: 3500, ShippingTotal: 599, Total: 4099}
	raw, _ := json.Marshal(order)
	carts := &fakeCarts{
		cart:           &models.Cart{ID: "cart_9", Subtotal: 3500},
		completeResult: &commerce.CompleteResult{Type: constants.CompletionTypeOrder, Data: raw},
	}
	o, _ := newOrchestrator(carts)
	ctx := context.Background()

	if r := o.UpdateCustomer(ctx, "cart_9", "jane@example.com", "Jane", "Doe"); !r.Success {
		t.Fatalf("customer step failed: %+v", r)
	}
	if r := o.AddShippingAddress(ctx, "cart_9", models.Address{Address1: "1 Main St", City: "Austin"}); !r.Success {
		t.Fatalf("address step failed: %+v", r)
	}
	if r := o.AddShippingMethod(ctx, "cart_9", "so_std"); !r.Success {
		t.Fatalf("shipping step failed: %+v", r)
	}
	if r := o.UpdatePayment(ctx, "cart_9", ""); !r.Success {
		t.Fatalf("payment step failed: %+v", r)
	}
	outcome := o.CompleteCart(ctx, "cart_9")
	if !outcome.Success || outcome.Order.Total != 4099 {
		t.Fatalf("completion failed: %+v", outcome)
	}
}

func TestCurrentStepProgression(t *testing.T) {
	cases := []struct {
		name string
		cart *models.Cart
		want string
	}{
		{"nil cart", nil, constants.CheckoutStepCustomer},
		{"no email", &models.Cart{ID: "cart_1"}, constants.CheckoutStepCustomer},
		{"no shipping method", &models.Cart{ID: "cart_1", Email: "a@b.co"}, constants.CheckoutStepShipping},
		{"no selected session", &models.Cart{
			ID: "cart_1", Email: "a@b.co",
			ShippingMethods: []models.ShippingMethod{{ID: "sm_1"}},
		}, constants.CheckoutStepPayment},
		{"ready for review", &models.Cart{
			ID: "cart_1", Email: "a@b.co",
			ShippingMethods: []models.ShippingMethod{{ID: "sm_1"}},
			PaymentSession:  &models.PaymentSession{ID: "ps_1"},
		}, constants.CheckoutStepReview},
	}
	for _, tc := range cases {
		if got := currentStep(tc.cart); got != tc.want {
			t.Fatalf("%s: expected step %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestLoadCheckoutReportsStep(t *testing.T) {
	carts := &fakeCarts{cart: &models.Cart{ID: "cart_1", Email: "jane@example.com"}}
	o, _ := newOrchestrator(carts)
	result := o.LoadCheckout(context.Background(), "cart_1")
	if result.Step != constants.CheckoutStepShipping {
		t.Fatalf("expected shipping step, got %q", result.Step)
	}
}

func TestCompleteCartOrderReachesConfirmationStep(t *testing.T) {
	order := models.Order{ID: "order_1"}
	raw, _ := json.Marshal(order)
	carts := &fakeCarts{completeResult: &commerce.CompleteResult{
		Type: constants.CompletionTypeOrder,
		Data: raw,
	}}
	o, _ := newOrchestrator(carts)

	outcome := o.CompleteCart(context.Background(), "cart_1")
	if outcome.Step != constants.CheckoutStepConfirmation {
		t.Fatalf("expected confirmation step, got %q", outcome.Step)
	}
}
