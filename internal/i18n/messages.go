package i18n

// defaults 内置文案表。错误分类文案对用户只暴露固定句子，
// 不透出后端原始错误。
var defaults = map[string]map[string]string{
	"en": {
		"error.category.validation": "Please check the information you entered and try again.",
		"error.category.network":    "We could not reach the store. Please check your connection and try again.",
		"error.category.rate_limit": "Too many requests. Please wait a moment and try again.",
		"error.category.server":     "The store is temporarily unavailable. Please try again shortly.",
		"error.category.cart":       "There was a problem with your cart. Please refresh and try again.",
		"error.category.checkout":   "Checkout could not be completed. Please try again.",
		"error.category.payment":    "Your payment could not be processed. Please try another payment method.",
		"error.category.product":    "This product is currently unavailable.",
		"error.category.shipping":   "Shipping options could not be loaded. Please try again.",
		"error.category.price":      "Pricing information is temporarily unavailable.",
		"error.category.inventory":  "Some items in your cart are out of stock.",
		"error.category.processor":  "The payment service is temporarily unavailable. Please try again.",
		"error.category.unknown":    "An error occurred",

		"error.unauthorized":           "unauthorized",
		"error.token_invalid":          "invalid token",
		"error.auth_rate_limited":      "too many sign-in attempts, try again in %d seconds",
		"error.rate_limit_unavailable": "rate limiter unavailable",
		"error.not_found":              "not found",
		"error.invalid_request":        "invalid request",
		"checkout.order_confirmed":     "Your order has been confirmed.",
	},
	"zh": {
		"error.category.validation": "请检查输入的信息后重试。",
		"error.category.network":    "无法连接到商店，请检查网络后重试。",
		"error.category.rate_limit": "请求过于频繁，请稍后再试。",
		"error.category.server":     "商店暂时不可用，请稍后再试。",
		"error.category.cart":       "购物车出现问题，请刷新后重试。",
		"error.category.checkout":   "结账未能完成，请重试。",
		"error.category.payment":    "支付未能完成，请更换支付方式重试。",
		"error.category.product":    "该商品暂时不可用。",
		"error.category.shipping":   "配送方式加载失败，请重试。",
		"error.category.price":      "价格信息暂时不可用。",
		"error.category.inventory":  "购物车中部分商品已售罄。",
		"error.category.processor":  "支付服务暂时不可用，请稍后再试。",
		"error.category.unknown":    "发生错误",

		"error.unauthorized":           "未授权",
		"error.token_invalid":          "无效令牌",
		"error.auth_rate_limited":      "登录尝试过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable": "限流服务不可用",
		"error.not_found":              "未找到",
		"error.invalid_request":        "无效请求",
		"checkout.order_confirmed":     "您的订单已确认。",
	},
}
