package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goobits/storefront/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const changeChannelSuffix = "kv_change"

// ChangeNotice 跨进程存储变更通知；Value 为 nil 表示键被清除。
// Origin 标记写入方实例，订阅端据此忽略自身写入的回声。
type ChangeNotice struct {
	Key    string  `json:"key"`
	Value  *string `json:"value"`
	Origin string  `json:"origin,omitempty"`
}

// RedisKV Redis 会话层存储。每次写入都会在约定频道上发布变更通知，
// 其他进程/实例通过 Watch 订阅以保持本地状态同步。
type RedisKV struct {
	client *redis.Client
	prefix string
	origin string
}

// NewRedisKV 创建 Redis 键值存储
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "sf"
	}
	return &RedisKV{client: client, prefix: prefix, origin: uuid.NewString()}
}

// Get 读取键值
func (s *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.buildKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set 写入键值并广播变更
func (s *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.buildKey(key), value, 0).Err(); err != nil {
		return err
	}
	s.publish(ctx, ChangeNotice{Key: key, Value: &value, Origin: s.origin})
	return nil
}

// Delete 删除键并广播清除通知
func (s *RedisKV) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.buildKey(key)).Err(); err != nil {
		return err
	}
	s.publish(ctx, ChangeNotice{Key: key, Value: nil, Origin: s.origin})
	return nil
}

// Watch 订阅指定键的外部变更，每次收到通知时回调 fn。
// 阻塞直到 ctx 结束；仅分发其他来源的写入对应的通知。
func (s *RedisKV) Watch(ctx context.Context, key string, fn func(value *string)) error {
	if fn == nil {
		return nil
	}
	sub := s.client.Subscribe(ctx, s.changeChannel())
	defer func() { _ = sub.Close() }()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var notice ChangeNotice
			if err := json.Unmarshal([]byte(msg.Payload), &notice); err != nil {
				logger.Warnw("storage_change_notice_decode_failed", "error", err)
				continue
			}
			if !s.shouldDispatch(notice, key) {
				continue
			}
			fn(notice.Value)
		}
	}
}

// shouldDispatch 判定通知是否分发：键需匹配，且本实例发布的回声被忽略
func (s *RedisKV) shouldDispatch(notice ChangeNotice, key string) bool {
	if notice.Key != key {
		return false
	}
	if notice.Origin != "" && notice.Origin == s.origin {
		return false
	}
	return true
}

func (s *RedisKV) publish(ctx context.Context, notice ChangeNotice) {
	payload, err := json.Marshal(notice)
	if err != nil {
		logger.Warnw("storage_change_notice_encode_failed", "key", notice.Key, "error", err)
		return
	}
	if err := s.client.Publish(ctx, s.changeChannel(), payload).Err(); err != nil {
		logger.Warnw("storage_change_notice_publish_failed", "key", notice.Key, "error", err)
	}
}

func (s *RedisKV) buildKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *RedisKV) changeChannel() string {
	return fmt.Sprintf("%s:%s", s.prefix, changeChannelSuffix)
}
