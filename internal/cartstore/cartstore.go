package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/goobits/storefront/internal/commerce"
	"github.com/goobits/storefront/internal/constants"
	"github.com/goobits/storefront/internal/logger"
	"github.com/goobits/storefront/internal/models"
	"github.com/goobits/storefront/internal/storage"
)

// ErrStorageUnavailable 存储层不可用
var ErrStorageUnavailable = errors.New("cart storage unavailable")

// CartUpdater 服务端购物车关联接口（由 commerce.CartsService 实现）
type CartUpdater interface {
	Update(ctx context.Context, cartID string, patch commerce.CartUpdate) (*models.Cart, error)
}

// Subscriber 本地购物车变更回调，参数为变更后的快照
type Subscriber func(items []models.CartItem)

// snapshot 购物车序列化结构（保持插入顺序）
type snapshot struct {
	Items []models.CartItem `json:"items"`
}

// Store 本地购物车。服务端购物车创建前持有行项集合，
// 内存状态为准，每次变更同步落到会话层与持久层两级存储。
type Store struct {
	mu      sync.Mutex
	items   []models.CartItem
	session storage.KV
	durable storage.KV
	carts   CartUpdater
	subs    []Subscriber
}

// New 创建购物车存储。session、durable 任一级可为 nil。
func New(session, durable storage.KV, carts CartUpdater) *Store {
	return &Store{
		session: session,
		durable: durable,
		carts:   carts,
	}
}

// ItemKey 行项唯一键：优先变体标识，否则商品标识
func ItemKey(item models.CartItem) string {
	if key := strings.TrimSpace(item.VariantID); key != "" {
		return key
	}
	return strings.TrimSpace(item.ID)
}

// Load 从存储层恢复购物车：先会话层，其次持久层（并回填会话层），均无则为空
func (s *Store) Load(ctx context.Context) error {
	payload, found, err := s.readTiered(ctx, constants.StorageKeyCart)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !found || payload == "" {
		s.items = nil
		return nil
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		logger.Warnw("cart_snapshot_decode_failed", "error", err)
		s.items = nil
		return nil
	}
	s.items = sanitize(snap.Items)
	return nil
}

// Add 添加行项；键已存在则数量累加（qty<=0 时视为 1），否则追加到末尾
func (s *Store) Add(ctx context.Context, item models.CartItem, qty int) error {
	if qty <= 0 {
		qty = 1
	}
	key := ItemKey(item)
	if key == "" {
		return errors.New("cart item has no identity")
	}
	s.mu.Lock()
	merged := false
	for i := range s.items {
		if ItemKey(s.items[i]) == key {
			s.items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		item.Quantity = qty
		s.items = append(s.items, item)
	}
	snap := s.cloneLocked()
	err := s.persistLocked(ctx, snap)
	s.mu.Unlock()
	s.notify(snap)
	return err
}

// Remove 删除指定键的行项；键不存在时无操作
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	changed := s.removeLocked(key)
	if !changed {
		s.mu.Unlock()
		return nil
	}
	snap := s.cloneLocked()
	err := s.persistLocked(ctx, snap)
	s.mu.Unlock()
	s.notify(snap)
	return err
}

// UpdateQuantity 设置行项数量；qty <= 0 等价于删除；键不存在时无操作
func (s *Store) UpdateQuantity(ctx context.Context, key string, qty int) error {
	s.mu.Lock()
	changed := false
	if qty <= 0 {
		changed = s.removeLocked(key)
	} else {
		for i := range s.items {
			if ItemKey(s.items[i]) == key {
				s.items[i].Quantity = qty
				changed = true
				break
			}
		}
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}
	snap := s.cloneLocked()
	err := s.persistLocked(ctx, snap)
	s.mu.Unlock()
	s.notify(snap)
	return err
}

// Clear 清空所有行项
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	snap := s.cloneLocked()
	err := s.persistLocked(ctx, snap)
	s.mu.Unlock()
	s.notify(snap)
	return err
}

// Items 按插入顺序返回行项副本
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneLocked()
}

// Total 所有行项金额合计（最小货币单位）
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, item := range s.items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// Count 所有行项数量合计
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// CartID 读取已持久化的服务端购物车标识
func (s *Store) CartID(ctx context.Context) (string, bool) {
	id, found, err := s.readTiered(ctx, constants.StorageKeyCartID)
	if err != nil {
		logger.Warnw("cart_id_read_failed", "error", err)
		return "", false
	}
	return id, found && id != ""
}

// SetCartID 记录服务端购物车标识
func (s *Store) SetCartID(ctx context.Context, cartID string) error {
	return s.writeTiered(ctx, constants.StorageKeyCartID, cartID)
}

// AuthToken 读取已持久化的会话令牌
func (s *Store) AuthToken(ctx context.Context) (string, bool) {
	token, found, err := s.readTiered(ctx, constants.StorageKeyAuthToken)
	if err != nil {
		logger.Warnw("auth_token_read_failed", "error", err)
		return "", false
	}
	return token, found && token != ""
}

// SetAuthToken 记录会话令牌
func (s *Store) SetAuthToken(ctx context.Context, token string) error {
	return s.writeTiered(ctx, constants.StorageKeyAuthToken, token)
}

// AssociateWithCustomer 将已存在的服务端购物车关联到当前登录客户。
// 空补丁更新由后端按请求令牌完成关联；失败仅记录日志。
func (s *Store) AssociateWithCustomer(ctx context.Context) {
	if s.carts == nil {
		return
	}
	cartID, ok := s.CartID(ctx)
	if !ok {
		return
	}
	if _, err := s.carts.Update(ctx, cartID, commerce.CartUpdate{}); err != nil {
		logger.Warnw("cart_associate_failed",
			"cart_id", cartID,
			"error", err,
		)
	}
}

// Reset 登出清理：清空行项并移除购物车标识与会话令牌
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	snap := s.cloneLocked()
	persistErr := s.persistLocked(ctx, snap)
	s.mu.Unlock()
	s.notify(snap)

	var errs []error
	if persistErr != nil {
		errs = append(errs, persistErr)
	}
	for _, key := range []string{constants.StorageKeyCartID, constants.StorageKeyAuthToken} {
		if err := s.deleteTiered(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ApplyExternalSnapshot 应用来自其它上下文的快照：整体替换本地状态，
// 不回写存储层（后写覆盖，不合并）。nil 或空载荷等价于清空。
func (s *Store) ApplyExternalSnapshot(payload *string) {
	var items []models.CartItem
	if payload != nil && strings.TrimSpace(*payload) != "" {
		var snap snapshot
		if err := json.Unmarshal([]byte(*payload), &snap); err != nil {
			logger.Warnw("cart_external_snapshot_decode_failed", "error", err)
			return
		}
		items = sanitize(snap.Items)
	}
	s.mu.Lock()
	s.items = items
	snap := s.cloneLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Subscribe 注册进程内变更观察者；每次状态变化后按注册顺序回调
func (s *Store) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) removeLocked(key string) bool {
	for i := range s.items {
		if ItemKey(s.items[i]) == key {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) cloneLocked() []models.CartItem {
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// persistLocked 将快照写入两级存储。调用方须持有 s.mu，
// 否则并发变更可能以与内存更新相反的顺序落盘。
func (s *Store) persistLocked(ctx context.Context, items []models.CartItem) error {
	payload, err := json.Marshal(snapshot{Items: items})
	if err != nil {
		return err
	}
	return s.writeTiered(ctx, constants.StorageKeyCart, string(payload))
}

func (s *Store) notify(items []models.CartItem) {
	s.mu.Lock()
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(items)
	}
}

func (s *Store) readTiered(ctx context.Context, key string) (string, bool, error) {
	if s.session != nil {
		val, found, err := s.session.Get(ctx, key)
		if err != nil {
			logger.Warnw("cart_session_tier_read_failed", "key", key, "error", err)
		} else if found {
			return val, true, nil
		}
	}
	if s.durable != nil {
		val, found, err := s.durable.Get(ctx, key)
		if err != nil {
			return "", false, err
		}
		if found {
			// 回填会话层
			if s.session != nil {
				if err := s.session.Set(ctx, key, val); err != nil {
					logger.Warnw("cart_session_tier_seed_failed", "key", key, "error", err)
				}
			}
			return val, true, nil
		}
	}
	if s.session == nil && s.durable == nil {
		return "", false, ErrStorageUnavailable
	}
	return "", false, nil
}

func (s *Store) writeTiered(ctx context.Context, key, value string) error {
	var errs []error
	if s.session != nil {
		if err := s.session.Set(ctx, key, value); err != nil {
			logger.Warnw("cart_session_tier_write_failed", "key", key, "error", err)
			errs = append(errs, err)
		}
	}
	if s.durable != nil {
		if err := s.durable.Set(ctx, key, value); err != nil {
			logger.Warnw("cart_durable_tier_write_failed", "key", key, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) deleteTiered(ctx context.Context, key string) error {
	var errs []error
	if s.session != nil {
		if err := s.session.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if s.durable != nil {
		if err := s.durable.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sanitize 丢弃无效行项（无键或数量 <= 0）
func sanitize(items []models.CartItem) []models.CartItem {
	out := items[:0:0]
	for _, item := range items {
		if ItemKey(item) == "" || item.Quantity <= 0 {
			continue
		}
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
