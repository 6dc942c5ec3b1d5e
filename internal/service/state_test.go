package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smdiabate/wallet-ledger/internal/domain"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, canTransition(domain.EntryStatusPending, domain.EntryStatusCompleted))
	assert.True(t, canTransition(domain.EntryStatusPending, domain.EntryStatusCancelled))

	assert.False(t, canTransition(domain.EntryStatusPending, domain.EntryStatusPending))
	assert.False(t, canTransition(domain.EntryStatusCompleted, domain.EntryStatusCancelled))
	assert.False(t, canTransition(domain.EntryStatusCompleted, domain.EntryStatusPending))
	assert.False(t, canTransition(domain.EntryStatusCancelled, domain.EntryStatusCompleted))
	assert.False(t, canTransition(domain.EntryStatusFailed, domain.EntryStatusCompleted))
	assert.False(t, canTransition("bogus", domain.EntryStatusCompleted))
}
