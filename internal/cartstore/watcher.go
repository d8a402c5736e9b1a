package cartstore

import (
	"context"
	"errors"

	"github.com/goobits/storefront/internal/constants"
	"github.com/goobits/storefront/internal/logger"
	"github.com/goobits/storefront/internal/storage"
)

// Watcher 订阅会话层购物车变更通知，将其它上下文的写入同步到本地状态
type Watcher struct {
	session *storage.RedisKV
	store   *Store
}

// NewWatcher 创建跨上下文同步器；session 为 nil 时 Run 直接返回
func NewWatcher(session *storage.RedisKV, store *Store) *Watcher {
	return &Watcher{session: session, store: store}
}

// Run 阻塞监听直到 ctx 结束。收到购物车键的变更通知时，
// 以外部快照整体替换本地状态（不回写存储层）。
func (w *Watcher) Run(ctx context.Context) error {
	if w.session == nil || w.store == nil {
		return nil
	}
	err := w.session.Watch(ctx, constants.StorageKeyCart, func(value *string) {
		w.store.ApplyExternalSnapshot(value)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warnw("cart_watch_stopped", "error", err)
		return err
	}
	return nil
}
