package ledger

import (
	"errors"
	"fmt"

	"branch-banking-go/internal/money"
)

// Sentinel errors for ledger operations. The structured variants below wrap
// these so callers can match with errors.Is and still pull context out with
// errors.As.
var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrExceedsWithdrawalLimit = errors.New("exceeds per-withdrawal limit")
)

// InsufficientFundsError carries the exact shortfall (amount minus balance)
// so the caller can report how much is missing.
type InsufficientFundsError struct {
	Shortfall money.Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: short %s", e.Shortfall)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// ExceedsLimitError carries the per-withdrawal cap that was breached.
type ExceedsLimitError struct {
	Limit money.Money
}

func (e *ExceedsLimitError) Error() string {
	return fmt.Sprintf("amount exceeds the %s per-withdrawal limit", e.Limit)
}

func (e *ExceedsLimitError) Unwrap() error {
	return ErrExceedsWithdrawalLimit
}
