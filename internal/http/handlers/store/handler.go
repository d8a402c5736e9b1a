package store

import (
	"github.com/goobits/storefront/internal/auth"
	"github.com/goobits/storefront/internal/cartstore"
	"github.com/goobits/storefront/internal/checkout"
	"github.com/goobits/storefront/internal/commerce"
	"github.com/goobits/storefront/internal/payment/processor"
)

// Handler 店面接口处理器
type Handler struct {
	Commerce  *commerce.Client
	Cart      *cartstore.Store
	Checkout  *checkout.Orchestrator
	Processor *processor.Adapter
	Auth      *auth.Service

	DefaultRegion string
}

// NewHandler 创建处理器
func NewHandler(
	client *commerce.Client,
	cart *cartstore.Store,
	orchestrator *checkout.Orchestrator,
	adapter *processor.Adapter,
	authService *auth.Service,
	defaultRegion string,
) *Handler {
	return &Handler{
		Commerce:      client,
		Cart:          cart,
		Checkout:      orchestrator,
		Processor:     adapter,
		Auth:          authService,
		DefaultRegion: defaultRegion,
	}
}
