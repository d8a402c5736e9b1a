package app

import (
	"context"
	"errors"

	"github.com/goobits/storefront/internal/cartstore"
	"github.com/goobits/storefront/internal/config"
	"github.com/goobits/storefront/internal/provider"
	"github.com/goobits/storefront/internal/router"
	"github.com/goobits/storefront/internal/worker"
)

// watcherService 购物车快照同步服务
type watcherService struct {
	watcher *cartstore.Watcher
}

func (s *watcherService) Name() string { return "cart_watcher" }

func (s *watcherService) Start(ctx context.Context) error {
	return s.watcher.Run(ctx)
}

func (s *watcherService) Stop(ctx context.Context) error { return nil }

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, err
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))

		// 会话层启用时监听其他实例写入的购物车快照
		if container.Watcher != nil {
			services = append(services, &watcherService{watcher: container.Watcher})
		}
	}

	// 初始化 Worker 服务
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(nil, cfg.I18n.DefaultLocale)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
