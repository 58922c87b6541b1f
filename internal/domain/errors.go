package domain

import "errors"

// Sentinel errors shared by the ledger, sheet store and settlement packages.
// Handlers map these to distinct response codes.
var (
	// ErrConfirmLowBalance is recoverable: the caller may resubmit the
	// deduction with force=true to allow an overdraft.
	ErrConfirmLowBalance = errors.New("insufficient balance, confirmation required")

	// ErrInsufficientEarnings means a withdrawal exceeds accrued profit.
	ErrInsufficientEarnings = errors.New("not enough earnings")

	// ErrInsufficientCash means an operation exceeds physical cash on hand.
	ErrInsufficientCash = errors.New("not enough physical cash in the box")

	// ErrInsufficientBalance means a refund exceeds the rider's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrSheetLocked is returned on any write attempt to an approved sheet.
	ErrSheetLocked = errors.New("sheet is approved and locked")

	// ErrSheetAlreadyProcessed guards the one-time approval transition.
	ErrSheetAlreadyProcessed = errors.New("sheet already processed")
)
