package service

import (
	"github.com/dukerupert/coffee-delivery/internal/domain"
)

// Product/cart errors
var (
	ErrProductNotFound  = domain.ErrUnknownProduct
	ErrCartItemNotFound = domain.Errorf(domain.ENOTFOUND, "", "Cart item not found")
	ErrInvalidQuantity  = domain.Errorf(domain.EINVALID, "", "Quantity must be between 1 and %d", MaxItemQuantity)
)

// Order-related errors
var (
	ErrOrderNotFound = domain.ErrOrderNotFound
	ErrEmptyCart     = domain.ErrCartEmpty
)
