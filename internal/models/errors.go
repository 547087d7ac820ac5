package models

import "errors"

var (
	ErrEmptyName        = errors.New("subscription name is empty")
	ErrNonPositiveCost  = errors.New("subscription cost must be positive")
	ErrRenewalNotFuture = errors.New("renewal date must be in the future")
	ErrUnknownEnum      = errors.New("unknown enum value")
)
