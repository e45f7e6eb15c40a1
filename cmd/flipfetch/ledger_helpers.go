package main

import (
	"context"
	"log/slog"

	"flipfetch/internal/book"
	"flipfetch/internal/config"
	"flipfetch/internal/download"
	"flipfetch/internal/ledger"
	"flipfetch/internal/logging"
)

// Ledger failures never abort a download; history is best effort.

func beginLedgerSession(ctx context.Context, cfg config.Ledger, b *book.Book, logger *slog.Logger) (*ledger.Store, int64) {
	if !cfg.Enabled {
		return nil, 0
	}
	store, err := ledger.Open(cfg.Path)
	if err != nil {
		logger.Warn("ledger unavailable", logging.Error(err))
		return nil, 0
	}
	sessionID, err := store.BeginSession(ctx, b.ID, b.Title, b.Encrypted, len(b.Pages))
	if err != nil {
		logger.Warn("could not record session", logging.Error(err))
		_ = store.Close()
		return nil, 0
	}
	return store, sessionID
}

func recordPageResults(ctx context.Context, store *ledger.Store, sessionID int64, results []download.PageResult, logger *slog.Logger) {
	if store == nil {
		return
	}
	for _, result := range results {
		errText := ""
		if result.Err != nil {
			errText = result.Err.Error()
		}
		err := store.RecordPage(ctx, sessionID, result.Page.Index, result.Page.OutputName(), result.Status.String(), errText)
		if err != nil {
			logger.Warn("could not record page outcome", logging.Error(err))
			return
		}
	}
}

func finishLedgerSession(ctx context.Context, store *ledger.Store, sessionID int64, summary download.Summary, pdfPath string, logger *slog.Logger) {
	if store == nil {
		return
	}
	if err := store.FinishSession(ctx, sessionID, summary.OK, summary.Skipped, summary.Failed, pdfPath); err != nil {
		logger.Warn("could not finalize session record", logging.Error(err))
	}
}
