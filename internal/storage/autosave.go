package storage

import (
	"context"
	"log/slog"

	"zakat/internal/ledger"
	"zakat/internal/notify"
)

// Autosave registers a change listener that writes every ledger mutation
// through to the repository. Write failures are reported on the notify side
// channel in addition to the log, so the user learns that local persistence
// is broken instead of silently losing edits.
func Autosave(ctx context.Context, store *ledger.Store, repo *Repository, notifier notify.Notifier) {
	if notifier == nil {
		notifier = notify.Discard
	}
	store.OnChange(func() {
		data, err := store.Snapshot().Encode()
		if err != nil {
			slog.Error("Encoding snapshot failed", "error", err)
			notifier.Notify(notify.LevelError, "Saving data locally failed")
			return
		}
		if err := repo.SaveSnapshot(ctx, data); err != nil {
			slog.Error("Saving local snapshot failed", "error", err)
			notifier.Notify(notify.LevelError, "Saving data locally failed")
		}
	})
}
