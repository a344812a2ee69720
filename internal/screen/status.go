// Package screen holds the headless controllers behind the product list,
// product detail and cart screens. Each controller keeps only screen-local
// state and talks to the catalog and the cart store it was built with.
package screen

import "errors"

var (
	ErrCartEmpty = errors.New("cart is empty")
	ErrNotLoaded = errors.New("product not loaded")
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed // Err holds the cause; Retry repeats the last request
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
