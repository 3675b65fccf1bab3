package service

import "errors"

var (
	ErrCartOwnerRequired   = errors.New("cart owner required")
	ErrInvalidCartItem     = errors.New("invalid cart item")
	ErrProductNotAvailable = errors.New("product not available")
	ErrShippingUnavailable = errors.New("shipping methods unavailable")
	ErrCheckoutCanceled    = errors.New("checkout request canceled")
	ErrSubscriptionInvalid = errors.New("subscription invalid")
	ErrSubscriberNotFound  = errors.New("subscriber not found")
	ErrQueueUnavailable    = errors.New("queue unavailable")
)
