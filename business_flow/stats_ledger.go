package business_flow

import (
	"context"
	"log"

	"github.com/wasend/wasend/models"
	"github.com/wasend/wasend/repository"
	"github.com/wasend/wasend/utils"
)

// StatsLedger folds delivery outcomes into the per-number statistics table.
// Ledger writes are best effort: a failed write is logged and swallowed so
// that bookkeeping can never abort a running batch.
type StatsLedger struct {
	statRepo repository.PhoneNumberStatRepository
	clock    Clock
	logger   *log.Logger
}

// NewStatsLedger creates a ledger. A nil clock falls back to utils.UTCNow.
func NewStatsLedger(statRepo repository.PhoneNumberStatRepository, clock Clock, logger *log.Logger) *StatsLedger {
	if clock == nil {
		clock = utils.UTCNow
	}
	if logger == nil {
		logger = log.Default()
	}
	return &StatsLedger{
		statRepo: statRepo,
		clock:    clock,
		logger:   logger,
	}
}

// RecordAttempt upserts the stat row for number with the outcome of one
// delivery attempt.
func (l *StatsLedger) RecordAttempt(ctx context.Context, number string, success bool, niche string) {
	now := l.clock()

	stat, err := l.statRepo.ByNumber(ctx, number)
	if err != nil {
		l.logger.Printf("stats ledger: lookup for %s failed: %v", number, err)
		return
	}

	if stat == nil {
		stat = &models.PhoneNumberStat{
			Number: number,
			Region: utils.NumberRegion(number),
		}
		stat.Apply(success, niche, now)
		if err := l.statRepo.Save(ctx, stat); err != nil {
			l.logger.Printf("stats ledger: create for %s failed: %v", number, err)
		}
		return
	}

	stat.Apply(success, niche, now)
	if stat.Region == "" {
		stat.Region = utils.NumberRegion(number)
	}
	if err := l.statRepo.Update(ctx, stat); err != nil {
		l.logger.Printf("stats ledger: update for %s failed: %v", number, err)
	}
}
