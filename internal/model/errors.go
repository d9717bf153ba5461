package model

import "errors"

// ErrInvalidOrder is returned synchronously from a submission call when
// quantity <= 0, or a LIMIT order's price <= 0.
var ErrInvalidOrder = errors.New("invalid order: non-positive quantity or limit price")
