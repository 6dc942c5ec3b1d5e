package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ReferencePrefix starts every transaction reference. The reference
// doubles as the idempotency key and the customer-facing receipt id.
const ReferencePrefix = "TXN"

// NewReference produces a reference of the form
// TXN-<unix-millis>-<random>. Global uniqueness is enforced by the
// UNIQUE constraint on ledger_entries.reference; the random suffix only
// has to make collisions rare enough that the insert retry never runs
// out of attempts.
func NewReference() string {
	var buf [6]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// the clock so a reference is still produced.
		return fmt.Sprintf("%s-%d-%012X", ReferencePrefix, time.Now().UnixMilli(), time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", ReferencePrefix, time.Now().UnixMilli(), strings.ToUpper(hex.EncodeToString(buf[:])))
}

// ValidReference reports whether s looks like a reference this system issued.
func ValidReference(s string) bool {
	parts := strings.SplitN(s, "-", 3)
	return len(parts) == 3 && parts[0] == ReferencePrefix && parts[1] != "" && parts[2] != ""
}
