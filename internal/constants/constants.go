package constants

// 配送方式数据源
const (
	ShippingSourceDatabase = "database"
	ShippingSourceHTTP     = "http"
)

// 异步任务类型
const (
	TaskNewsletterWelcome = "newsletter:welcome"
)

// 队列名称
const (
	QueueDefault = "default"
)

// 结算会话
const (
	SessionHeader          = "X-Session-ID"
	CheckoutSelectionKey   = "checkout:shipping"
	DefaultSelectionTTLSec = 86400
)

// 订阅来源
const (
	NewsletterSourceFooter = "footer"
	NewsletterSourceHome   = "home"
)

// 账户菜单动作
const (
	MenuActionProfile  = "profile"
	MenuActionOrders   = "orders"
	MenuActionSignOut  = "sign_out"
	MenuActionSignIn   = "sign_in"
	MenuActionRegister = "register"
)
