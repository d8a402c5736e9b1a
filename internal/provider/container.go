package provider

import (
	"context"
	"time"

	"github.com/goobits/storefront/internal/auth"
	"github.com/goobits/storefront/internal/cache"
	"github.com/goobits/storefront/internal/cartstore"
	"github.com/goobits/storefront/internal/checkout"
	"github.com/goobits/storefront/internal/commerce"
	"github.com/goobits/storefront/internal/config"
	"github.com/goobits/storefront/internal/logger"
	"github.com/goobits/storefront/internal/payment/processor"
	"github.com/goobits/storefront/internal/queue"
	"github.com/goobits/storefront/internal/storage"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	Commerce  *commerce.Client
	SessionKV *storage.RedisKV
	DurableKV *storage.GormKV
	Cart      *cartstore.Store
	Watcher   *cartstore.Watcher
	Checkout  *checkout.Orchestrator
	Processor *processor.Adapter
	Auth      *auth.Service
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	if err := c.initStorage(); err != nil {
		return nil, err
	}
	c.initServices()

	return c, nil
}

func (c *Container) initStorage() error {
	durable, err := storage.OpenGorm(c.Config.Storage.Driver, c.Config.Storage.DSN, storage.PoolConfig{
		MaxOpenConns:           c.Config.Storage.Pool.MaxOpenConns,
		MaxIdleConns:           c.Config.Storage.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: c.Config.Storage.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: c.Config.Storage.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		return err
	}
	c.DurableKV = durable

	if cache.Enabled() {
		c.SessionKV = storage.NewRedisKV(cache.Client(), cache.Prefix())
	}
	return nil
}

func (c *Container) initServices() {
	cfg := c.Config

	c.Commerce = commerce.NewClient(commerce.Config{
		BaseURL:        cfg.Commerce.BaseURL,
		PublishableKey: cfg.Commerce.PublishableKey,
		Timeout:        time.Duration(cfg.Commerce.TimeoutMS) * time.Millisecond,
	})

	var session storage.KV
	if c.SessionKV != nil {
		session = c.SessionKV
	}
	c.Cart = cartstore.New(session, c.DurableKV, c.Commerce.Carts)
	if err := c.Cart.Load(context.Background()); err != nil {
		logger.Warnw("provider_cart_load_failed", "error", err)
	}
	if c.SessionKV != nil {
		c.Watcher = cartstore.NewWatcher(c.SessionKV, c.Cart)
	}

	c.Checkout = checkout.New(c.Commerce.Carts, c.Commerce.Regions, c.Commerce.ShippingOptions, c.QueueClient)

	c.Processor = processor.New(processor.Config{
		PublishableKey: cfg.Processor.PublishableKey,
		SecretKey:      cfg.Processor.SecretKey,
		APIBaseURL:     cfg.Processor.APIBaseURL,
		Timeout:        time.Duration(cfg.Processor.TimeoutMS) * time.Millisecond,
	})
	// 缺少可发布密钥时记录告警但不阻塞启动
	if err := c.Processor.Init(); err != nil {
		logger.Warnw("provider_init_processor_failed", "error", err)
	}

	c.Auth = auth.NewService(cfg.JWT)
}
