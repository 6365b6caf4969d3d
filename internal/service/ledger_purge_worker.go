package service

import (
	"context"
	"log"
	"time"

	"collisionos/internal/port"
)

// LedgerPurgeConfig holds settings for the ledger purge worker.
type LedgerPurgeConfig struct {
	Interval      time.Duration
	RetentionDays int
}

// LedgerPurgeWorker periodically drops ledger records past retention.
type LedgerPurgeWorker struct {
	ledger port.ImportLedger
	cfg    LedgerPurgeConfig
}

// NewLedgerPurgeWorker creates a new LedgerPurgeWorker.
func NewLedgerPurgeWorker(ledger port.ImportLedger, cfg LedgerPurgeConfig) *LedgerPurgeWorker {
	return &LedgerPurgeWorker{ledger: ledger, cfg: cfg}
}

// Start runs the purge loop until ctx is canceled. It returns immediately
// when retention is disabled.
func (w *LedgerPurgeWorker) Start(ctx context.Context) {
	if w.cfg.RetentionDays <= 0 || w.cfg.Interval <= 0 {
		log.Printf("ledgerPurgeWorker: disabled (retention=%d days, interval=%s)", w.cfg.RetentionDays, w.cfg.Interval)
		return
	}

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	log.Printf("ledgerPurgeWorker: started (interval=%s, retention=%d days)", w.cfg.Interval, w.cfg.RetentionDays)

	for {
		select {
		case <-ctx.Done():
			log.Printf("ledgerPurgeWorker: shutdown complete")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single purge pass.
func (w *LedgerPurgeWorker) RunOnce(ctx context.Context) int {
	removed, err := w.ledger.PurgeOlderThan(ctx, w.cfg.RetentionDays)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("ledgerPurgeWorker: PurgeOlderThan error: %v", err)
		}
		return 0
	}
	if removed > 0 {
		log.Printf("ledgerPurgeWorker: purged %d import records older than %d days", removed, w.cfg.RetentionDays)
	}
	return removed
}
