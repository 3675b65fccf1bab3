package shipping

import (
	"errors"
	"fmt"
)

var (
	ErrFetcherMissing  = errors.New("shipping fetcher missing")
	ErrFetchFailed     = errors.New("shipping fetch failed")
	ErrFetchStatus     = errors.New("shipping fetch returned non-success status")
	ErrResponseInvalid = errors.New("shipping response invalid")
)

func describeFetchError(err error) string {
	switch {
	case errors.Is(err, ErrFetchStatus):
		return "Shipping methods are temporarily unavailable. Please try again later."
	case errors.Is(err, ErrResponseInvalid):
		return "Shipping methods could not be read. Please try again later."
	case err != nil:
		return fmt.Sprintf("Unable to load shipping methods: %v", err)
	default:
		return "Unable to load shipping methods."
	}
}
