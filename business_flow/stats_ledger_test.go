package business_flow

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasend/wasend/models"
)

func TestLedgerCreatesRowOnFirstAttempt(t *testing.T) {
	statRepo := newFakePhoneStatRepo()
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	ledger := NewStatsLedger(statRepo, func() time.Time { return at }, log.Default())

	ledger.RecordAttempt(context.Background(), "+212612345678@c.us", true, "retail")

	stat := statRepo.stats["+212612345678@c.us"]
	require.NotNil(t, stat)
	assert.Equal(t, 1, stat.MessagesSent)
	assert.Equal(t, 1, stat.SuccessfulDeliveries)
	assert.Equal(t, 0, stat.FailedDeliveries)
	assert.Equal(t, models.MessageStatusSuccess, stat.LastMessageStatus)
	assert.Equal(t, "retail", stat.Niche)
	assert.Equal(t, "MA", stat.Region)
	assert.Equal(t, at, stat.LastUsed)
}

func TestLedgerFoldsRepeatAttempts(t *testing.T) {
	statRepo := newFakePhoneStatRepo()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	ledger := NewStatsLedger(statRepo, func() time.Time { return now }, log.Default())

	ledger.RecordAttempt(context.Background(), "+212612345678@c.us", true, "retail")
	now = now.Add(time.Hour)
	ledger.RecordAttempt(context.Background(), "+212612345678@c.us", false, "")

	require.Len(t, statRepo.stats, 1)
	stat := statRepo.stats["+212612345678@c.us"]
	assert.Equal(t, 2, stat.MessagesSent)
	assert.Equal(t, 1, stat.SuccessfulDeliveries)
	assert.Equal(t, 1, stat.FailedDeliveries)
	assert.Equal(t, models.MessageStatusFailed, stat.LastMessageStatus)
	// Blank niche keeps the previous value.
	assert.Equal(t, "retail", stat.Niche)
	assert.Equal(t, now, stat.LastUsed)
}

func TestLedgerSwallowsLookupErrors(t *testing.T) {
	statRepo := newFakePhoneStatRepo()
	statRepo.failLookup = true
	ledger := NewStatsLedger(statRepo, nil, log.Default())

	assert.NotPanics(t, func() {
		ledger.RecordAttempt(context.Background(), "+212612345678@c.us", true, "retail")
	})
	assert.Empty(t, statRepo.stats)
}
