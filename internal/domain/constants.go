package domain

// DefaultCurrency is the wallet currency used when none is specified.
const DefaultCurrency = "XOF"

// Ledger entry types.
const (
	EntryTypeTransferSent           = "transfer_sent"
	EntryTypeTransferReceived       = "transfer_received"
	EntryTypePaymentRequestSent     = "payment_request_sent"
	EntryTypePaymentRequestReceived = "payment_request_received"
	EntryTypeDeposit                = "deposit"
	EntryTypeWithdrawal             = "withdrawal"
)

// Ledger entry statuses.
const (
	EntryStatusPending   = "pending"
	EntryStatusCompleted = "completed"
	EntryStatusFailed    = "failed"
	EntryStatusCancelled = "cancelled"
)

var entryTypes = map[string]struct{}{
	EntryTypeTransferSent:           {},
	EntryTypeTransferReceived:       {},
	EntryTypePaymentRequestSent:     {},
	EntryTypePaymentRequestReceived: {},
	EntryTypeDeposit:                {},
	EntryTypeWithdrawal:             {},
}

var entryStatuses = map[string]struct{}{
	EntryStatusPending:   {},
	EntryStatusCompleted: {},
	EntryStatusFailed:    {},
	EntryStatusCancelled: {},
}

// ValidEntryType reports whether t is a known ledger entry type.
func ValidEntryType(t string) bool {
	_, ok := entryTypes[t]
	return ok
}

// ValidEntryStatus reports whether s is a known ledger entry status.
func ValidEntryStatus(s string) bool {
	_, ok := entryStatuses[s]
	return ok
}

// MoneyMovementTypes lists the entry types that represent actual balance
// movement. Payment request rows are excluded: when a request is
// accepted the funds travel in a separate transfer entry, so counting
// both would double the totals.
func MoneyMovementTypes() []string {
	return []string{EntryTypeTransferSent, EntryTypeDeposit, EntryTypeWithdrawal}
}
