package constants

// 本地购物车存储槽位常量
const (
	StorageKeyCart      = "cart"
	StorageKeyAuthToken = "auth_token"
	StorageKeyCartID    = "cart_id"
)

// 结账步骤常量
const (
	CheckoutStepCustomer     = "customer"
	CheckoutStepShipping     = "shipping"
	CheckoutStepPayment      = "payment"
	CheckoutStepReview       = "review"
	CheckoutStepConfirmation = "confirmation"
)

// 支付会话状态常量
const (
	PaymentSessionStatusPending    = "pending"
	PaymentSessionStatusAuthorized = "authorized"
	PaymentSessionStatusRequires   = "requires_more"
	PaymentSessionStatusError      = "error"
)

// 支付提供方常量
const (
	PaymentProviderProcessor = "processor-default"
	PaymentProviderManual    = "manual"
)

// 结账完成结果类型常量
const (
	CompletionTypeOrder = "order"
	CompletionTypeCart  = "cart"
)

// 错误分类常量（在外部调用源头打标）
const (
	ErrorKindValidation = "validation"
	ErrorKindNetwork    = "network"
	ErrorKindRateLimit  = "rate_limit"
	ErrorKindServer     = "server"
	ErrorKindCart       = "cart"
	ErrorKindCheckout   = "checkout"
	ErrorKindPayment    = "payment"
	ErrorKindProduct    = "product"
	ErrorKindShipping   = "shipping"
	ErrorKindPrice      = "price"
	ErrorKindInventory  = "inventory"
	ErrorKindProcessor  = "processor"
)

// 异步任务常量
const (
	QueueDefault          = "default"
	TaskOrderConfirmation = "order:confirmation"
)
