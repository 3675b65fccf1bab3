package shared

import "fmt"

// 错误消息表，key 与业务语义一一对应
var messages = map[string]string{
	"error.bad_request":             "Invalid request",
	"error.unauthorized":            "Please sign in first",
	"error.token_invalid":           "Invalid or expired token",
	"error.auth_header_invalid":     "Authorization header is malformed",
	"error.session_missing":         "Checkout session is missing",
	"error.cart_item_invalid":       "Invalid cart item",
	"error.cart_fetch_failed":       "Failed to load cart",
	"error.cart_update_failed":      "Failed to update cart",
	"error.product_not_available":   "Product is not available",
	"error.amount_invalid":          "Cart contains an invalid amount",
	"error.shipping_unavailable":    "Shipping methods are unavailable",
	"error.shipping_fetch_failed":   "Failed to load shipping methods",
	"error.shipping_select_failed":  "Failed to select shipping method",
	"error.checkout_canceled":       "Request canceled",
	"error.checkout_summary_failed": "Failed to build order summary",
	"error.subscription_invalid":    "Please check the highlighted fields",
	"error.subscription_failed":     "Subscription failed, please retry later",
	"error.rate_limited":            "Too many requests, please retry in %d seconds",
	"error.rate_limit_unavailable":  "Rate limiter unavailable",
	"error.not_found":               "Resource not found",
	"error.internal":                "Internal server error",
}

// Message 根据 key 返回提示消息，未登记的 key 原样返回
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}

// Messagef 返回格式化后的提示消息
func Messagef(key string, args ...interface{}) string {
	return fmt.Sprintf(Message(key), args...)
}
