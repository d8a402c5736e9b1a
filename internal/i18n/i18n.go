package i18n

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goobits/storefront/internal/config"

	"github.com/gin-gonic/gin"
)

var (
	mu            sync.RWMutex
	defaultLocale = "en"
	messages      = map[string]map[string]string{}
)

func init() {
	reset()
}

func reset() {
	messages = map[string]map[string]string{}
	for locale, table := range defaults {
		copied := make(map[string]string, len(table))
		for key, msg := range table {
			copied[key] = msg
		}
		messages[locale] = copied
	}
}

// Init 应用多语言配置：设置默认语言并将覆盖项合并到内置文案之上
func Init(cfg *config.I18nConfig) {
	mu.Lock()
	defer mu.Unlock()
	reset()
	if cfg == nil {
		defaultLocale = "en"
		return
	}
	if locale := normalizeLocale(cfg.DefaultLocale); locale != "" {
		defaultLocale = locale
	}
	for locale, overrides := range cfg.Overrides {
		locale = normalizeLocale(locale)
		if locale == "" {
			continue
		}
		table, ok := messages[locale]
		if !ok {
			table = map[string]string{}
			messages[locale] = table
		}
		for key, msg := range overrides {
			key = strings.TrimSpace(key)
			if key == "" || strings.TrimSpace(msg) == "" {
				continue
			}
			table[key] = msg
		}
	}
}

// T 查找指定语言文案：目标语言 → 默认语言 → 键本身
func T(locale, key string) string {
	mu.RLock()
	defer mu.RUnlock()
	locale = normalizeLocale(locale)
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if table, ok := messages[defaultLocale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	return key
}

// Sprintf 带参数的文案查找
func Sprintf(locale, key string, args ...interface{}) string {
	msg := T(locale, key)
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// ResolveLocale 从请求解析语言：query 参数优先，其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return defaultLocale
	}
	if locale := normalizeLocale(c.Query("locale")); locale != "" {
		return locale
	}
	header := c.GetHeader("Accept-Language")
	if header != "" {
		first := strings.Split(header, ",")[0]
		first = strings.Split(first, ";")[0]
		if locale := normalizeLocale(first); locale != "" {
			return locale
		}
	}
	return defaultLocale
}

// ErrorMessage 按错误分类返回对用户展示的固定文案，
// 未知分类回落到通用提示。
func ErrorMessage(locale, kind string) string {
	key := "error.category." + strings.TrimSpace(kind)
	msg := T(locale, key)
	if msg == key {
		return T(locale, "error.category.unknown")
	}
	return msg
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		return ""
	}
	// zh-CN / en-US 归并到主语言
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		locale = locale[:idx]
	}
	return locale
}
