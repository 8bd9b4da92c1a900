package checkout

import "errors"

var (
	ErrIllegalTransition = errors.New("illegal checkout transition")
	ErrNoSession         = errors.New("no checkout session")
	ErrEmptyOrderID      = errors.New("order id is required")
)
