package service

import "github.com/smdiabate/wallet-ledger/internal/domain"

// requestTransitions encodes the payment request state machine.
// pending is the only non-terminal state.
var requestTransitions = map[string]map[string]struct{}{
	domain.EntryStatusPending: {
		domain.EntryStatusCompleted: {},
		domain.EntryStatusCancelled: {},
	},
	domain.EntryStatusCompleted: {},
	domain.EntryStatusCancelled: {},
	domain.EntryStatusFailed:    {},
}

func canTransition(current, next string) bool {
	nextStates, ok := requestTransitions[current]
	if !ok {
		return false
	}
	_, ok = nextStates[next]
	return ok
}
