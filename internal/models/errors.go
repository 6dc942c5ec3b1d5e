package models

import "errors"

// Business errors surfaced to callers. Handlers map these to HTTP
// statuses; services wrap them with context via fmt.Errorf("%w").
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrSelfTransfer        = errors.New("cannot transfer to the same user")
	ErrUserNotFound        = errors.New("user not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrIllegalTransition   = errors.New("illegal payment request state transition")
	ErrUnauthorized        = errors.New("acting user is not a party to this request")

	// ErrTransientStore marks failures (lock timeouts, deadlock aborts,
	// reference collisions that exhausted retries) that are safe to
	// retry with the same reference: nothing was committed.
	ErrTransientStore = errors.New("transient store error, retry safe")
)
