package public

import (
	"errors"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/pricing"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	handlershared.RespondAppError(c, resolveMappedError(err, rules, fallbackCode, fallbackKey))
}

// resolveMappedError 已包装的 AppError 原样使用，其次按规则表匹配，最后使用兜底错误。
func resolveMappedError(err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) *response.AppError {
	if appErr, ok := response.AsAppError(err); ok {
		return appErr
	}
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			return response.WrapError(rule.code, messageFor(rule.key), err)
		}
	}
	return response.WrapError(fallbackCode, messageFor(fallbackKey), err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartCommonErrorRules = []mappedHandlerError{
	{target: service.ErrCartOwnerRequired, code: response.CodeBadRequest, key: "error.session_missing"},
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
}

var amountErrorRules = []mappedHandlerError{
	{target: pricing.ErrInvalidLineItem, code: response.CodeUnprocessable, key: "error.amount_invalid"},
	{target: pricing.ErrInvalidAmount, code: response.CodeUnprocessable, key: "error.amount_invalid"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCartOwnerRequired, code: response.CodeBadRequest, key: "error.session_missing"},
	{target: service.ErrShippingUnavailable, code: response.CodeUnavailable, key: "error.shipping_unavailable"},
	{target: service.ErrCheckoutCanceled, code: response.CodeUnavailable, key: "error.checkout_canceled"},
}

func respondCartError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(cartCommonErrorRules, amountErrorRules), response.CodeInternal, fallbackKey)
}

func respondCheckoutError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(checkoutErrorRules, amountErrorRules), response.CodeInternal, fallbackKey)
}
