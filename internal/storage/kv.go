package storage

import "context"

// KV 字符串键值存储层。购物车持久化协议在两个存储层上工作：
// 会话层（Redis）与持久层（数据库）。
type KV interface {
	// Get 读取键值；第二个返回值表示键是否存在
	Get(ctx context.Context, key string) (string, bool, error)
	// Set 写入键值
	Set(ctx context.Context, key, value string) error
	// Delete 删除键；键不存在时不报错
	Delete(ctx context.Context, key string) error
}
