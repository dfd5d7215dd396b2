package domain

import "errors"

var (
	// Input validation errors
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidRate           = errors.New("exchange rate must be positive")
	ErrInvalidCommissionRate = errors.New("commission rate must be in [0, 1)")
	ErrInvalidDiscountRate   = errors.New("discount rate must be in [0, 1)")
	ErrInvalidKind           = errors.New("unknown transaction kind")
	ErrInvalidFeeBearer      = errors.New("fee bearer must be sender or beneficiary")

	// Business rule errors
	ErrNoCostBasis       = errors.New("no prior purchase to use as cost basis")
	ErrInsufficientFunds = errors.New("insufficient funds in register")

	// Lookup errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBalanceNotFound     = errors.New("register balance not found")

	// Collaborator errors
	ErrRateUnavailable = errors.New("reference rate unavailable")
	ErrPersistence     = errors.New("persistence failure")

	// Authentication errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
