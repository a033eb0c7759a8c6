// Package sync keeps the local ledger and its remote mirror converged.
// The engine owns one rule above all: it never overwrites either side
// without knowing which one is newer, and when the remote is newer it
// stops and asks instead of guessing.
package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"zakat/internal/ledger"
	"zakat/internal/log"
	"zakat/internal/notify"
	"zakat/internal/remote"
)

// Status is the engine's externally visible state.
type Status string

const (
	// StatusOffline: no authenticated session; local edits stay local.
	StatusOffline Status = "offline"
	// StatusSyncing: an upload is pending, in flight, or a conflict awaits
	// resolution.
	StatusSyncing Status = "syncing"
	// StatusSynced: the last reconciliation or upload succeeded.
	StatusSynced Status = "synced"
	// StatusError: the last remote operation failed.
	StatusError Status = "error"
)

// DefaultDebounce is the trailing delay between a local edit and the
// upload it schedules.
const DefaultDebounce = 3 * time.Second

// AuthGate is the engine's view of the OAuth session.
type AuthGate interface {
	CurrentToken() (string, bool)
	SignIn(ctx context.Context) error
	OnTokenAvailable(func())
}

// MetaStore persists the snapshot and the sync watermark. The watermark is
// the remote modification time recorded after the last upload or accepted
// download; reconciliation compares against it to detect foreign writes.
type MetaStore interface {
	SaveSyncMeta(ctx context.Context, t time.Time) error
	LoadSyncMeta(ctx context.Context) (time.Time, bool, error)
	ClearSyncMeta(ctx context.Context) error
}

// Conflict describes a detected divergence: the remote file changed after
// the watermark this device last recorded.
type Conflict struct {
	RemoteModified time.Time
}

// Engine is the sync session. One engine runs per process; all methods are
// safe for concurrent use.
type Engine struct {
	ledger *ledger.Store
	meta   MetaStore
	remote remote.ObjectStore
	auth   AuthGate
	notify notify.Notifier
	log    *log.Logger

	debounce time.Duration

	mu       stdsync.Mutex
	status   Status
	conflict *Conflict
	handle   *remote.FileHandle
	timer    *time.Timer
	inFlight bool
	disposed bool
	onStatus []func(Status)
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebounce overrides the trailing upload delay.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithNotifier routes user-facing messages.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notify = n }
}

func New(store *ledger.Store, meta MetaStore, objects remote.ObjectStore, auth AuthGate, logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{
		ledger:   store,
		meta:     meta,
		remote:   objects,
		auth:     auth,
		notify:   notify.Discard,
		log:      logger.WithComponent("sync"),
		debounce: DefaultDebounce,
		status:   StatusOffline,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start wires the engine to its triggers: local edits schedule uploads and
// a session becoming available runs reconciliation. If a session already
// exists, reconciliation starts immediately.
func (e *Engine) Start(ctx context.Context) {
	e.ledger.OnChange(func() { e.ScheduleUpload(ctx) })
	e.auth.OnTokenAvailable(func() {
		go func() {
			if err := e.Reconcile(ctx); err != nil {
				e.log.Error("Reconciliation after sign-in failed", "error", err)
			}
		}()
	})
	if _, ok := e.auth.CurrentToken(); ok {
		go func() {
			if err := e.Reconcile(ctx); err != nil {
				e.log.Error("Initial reconciliation failed", "error", err)
			}
		}()
	}
}

// Dispose stops the engine. Pending timers are cancelled and results of
// any in-flight upload are discarded.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disposed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// Status returns the current engine status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Conflict returns the pending conflict, or nil.
func (e *Engine) Conflict() *Conflict {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conflict == nil {
		return nil
	}
	c := *e.conflict
	return &c
}

// OnStatus registers fn to run on every status transition. Callbacks run
// outside the engine lock.
func (e *Engine) OnStatus(fn func(Status)) {
	e.mu.Lock()
	e.onStatus = append(e.onStatus, fn)
	e.mu.Unlock()
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	if e.status == s {
		e.mu.Unlock()
		return
	}
	e.status = s
	fns := make([]func(Status), len(e.onStatus))
	copy(fns, e.onStatus)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// Reconcile runs the sign-in reconciliation: it locates the remote file
// and decides between first upload, normal upload, and conflict. Without a
// session it is a no-op.
func (e *Engine) Reconcile(ctx context.Context) error {
	if _, ok := e.auth.CurrentToken(); !ok {
		return nil
	}
	e.setStatus(StatusSyncing)

	handle, err := e.remote.Find(ctx)
	if err != nil {
		e.setStatus(StatusError)
		e.notify.Notify(notify.LevelError, "Cloud sync failed")
		return fmt.Errorf("locate remote file: %w", err)
	}

	if handle == nil {
		// First device: nothing remote to lose.
		return e.upload(ctx, nil)
	}

	e.mu.Lock()
	e.handle = handle
	e.mu.Unlock()

	watermark, ok, err := e.meta.LoadSyncMeta(ctx)
	if err != nil {
		e.log.Warn("Reading sync watermark failed, treating as absent", "error", err)
		ok = false
	}
	if !ok || handle.Modified.After(watermark) {
		// A remote file this device has no watermark for, or one written
		// after it, may hold data not present locally. Never overwrite it
		// silently.
		e.mu.Lock()
		e.conflict = &Conflict{RemoteModified: handle.Modified}
		e.mu.Unlock()
		e.log.Info("Remote ledger diverged, awaiting resolution",
			"remoteModified", handle.Modified)
		e.notify.Notify(notify.LevelWarning, "Cloud data differs from this device")
		return nil
	}

	// Local is current or ahead: push it.
	return e.upload(ctx, handle)
}

// ScheduleUpload (re)arms the debounced upload after a local edit. Each
// call restarts the trailing delay, so a burst of edits produces a single
// upload carrying the final state. Without a session it is a no-op.
func (e *Engine) ScheduleUpload(ctx context.Context) {
	if _, ok := e.auth.CurrentToken(); !ok {
		return
	}

	e.mu.Lock()
	if e.disposed || e.conflict != nil {
		e.mu.Unlock()
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, func() {
		e.mu.Lock()
		e.timer = nil
		disposed := e.disposed
		handle := e.handle
		e.mu.Unlock()
		if disposed {
			return
		}
		if err := e.upload(ctx, handle); err != nil {
			e.log.Error("Debounced upload failed", "error", err)
		}
	})
	e.mu.Unlock()

	e.setStatus(StatusSyncing)
}

// SyncNow forces an immediate sync, cancelling any pending debounce. When
// no session exists it starts the interactive sign-in instead; the upload
// then happens through the post-sign-in reconciliation. During a pending
// conflict a forced sync is the user choosing their local data: the
// conflict is cleared and the remote file overwritten.
func (e *Engine) SyncNow(ctx context.Context) error {
	if _, ok := e.auth.CurrentToken(); !ok {
		return e.auth.SignIn(ctx)
	}

	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.conflict = nil
	handle := e.handle
	e.mu.Unlock()

	if err := e.upload(ctx, handle); err != nil {
		return err
	}
	e.notify.Notify(notify.LevelSuccess, "Synced to cloud")
	return nil
}

// upload serializes the ledger and writes it remotely, recording the new
// watermark. It is the single upload path; concurrent calls collapse to
// one, the losers rescheduling through the next edit.
func (e *Engine) upload(ctx context.Context, handle *remote.FileHandle) error {
	e.mu.Lock()
	if e.inFlight || e.disposed {
		e.mu.Unlock()
		return nil
	}
	e.inFlight = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	e.setStatus(StatusSyncing)

	// Snapshot is taken after winning the in-flight slot so the upload
	// carries the latest state, not the one at schedule time.
	payload, err := e.ledger.Snapshot().Encode()
	if err != nil {
		e.setStatus(StatusError)
		return fmt.Errorf("encode snapshot: %w", err)
	}

	newHandle, err := e.remote.Upload(ctx, handle, payload)
	if err != nil {
		if errors.Is(err, remote.ErrUnauthenticated) {
			e.setStatus(StatusOffline)
		} else {
			e.setStatus(StatusError)
			e.notify.Notify(notify.LevelError, "Cloud sync failed")
		}
		return fmt.Errorf("upload ledger: %w", err)
	}

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return nil
	}
	e.handle = newHandle
	e.mu.Unlock()

	if err := e.meta.SaveSyncMeta(ctx, newHandle.Modified); err != nil {
		// The upload itself succeeded; a stale watermark only means the
		// next sign-in reconciliation asks the user once more.
		e.log.Warn("Persisting sync watermark failed", "error", err)
	}

	e.setStatus(StatusSynced)
	e.log.Debug("Ledger uploaded", "fileID", newHandle.ID, "modified", newHandle.Modified)
	return nil
}

// ResolveUseCloud resolves a pending conflict by downloading the remote
// ledger and merging it over the local one. The conflict is cleared even
// when the download or merge fails, so the user is never stuck.
func (e *Engine) ResolveUseCloud(ctx context.Context) error {
	e.mu.Lock()
	handle := e.handle
	e.conflict = nil
	e.mu.Unlock()

	e.setStatus(StatusSyncing)

	data, err := e.remote.Download(ctx, handle)
	if err != nil {
		e.setStatus(StatusError)
		e.notify.Notify(notify.LevelError, "Downloading cloud data failed")
		return fmt.Errorf("download remote ledger: %w", err)
	}

	outcome := e.ledger.ApplyJSON(data)
	if outcome.Result == ledger.Rejected {
		e.setStatus(StatusError)
		e.notify.Notify(notify.LevelError, "Cloud data could not be applied: "+outcome.Reason)
		return fmt.Errorf("apply remote ledger: %s", outcome.Reason)
	}
	if outcome.Result == ledger.PartiallyApplied {
		e.log.Warn("Remote ledger partially applied", "skipped", outcome.Skipped)
	}

	if handle != nil {
		if err := e.meta.SaveSyncMeta(ctx, handle.Modified); err != nil {
			e.log.Warn("Persisting sync watermark failed", "error", err)
		}
	}

	e.setStatus(StatusSynced)
	e.notify.Notify(notify.LevelSuccess, "Cloud data loaded")
	return nil
}

// ResolveKeepLocal resolves a pending conflict by overwriting the remote
// file with the local ledger.
func (e *Engine) ResolveKeepLocal(ctx context.Context) error {
	e.mu.Lock()
	handle := e.handle
	e.conflict = nil
	e.mu.Unlock()

	if err := e.upload(ctx, handle); err != nil {
		return err
	}
	e.notify.Notify(notify.LevelSuccess, "Local data kept and synced")
	return nil
}

// SignOut drops the session-scoped sync state: the cached handle, any
// pending conflict and the persisted watermark. Local ledger data and the
// remote file itself are untouched.
func (e *Engine) SignOut(ctx context.Context) {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.handle = nil
	e.conflict = nil
	e.mu.Unlock()

	if err := e.meta.ClearSyncMeta(ctx); err != nil {
		e.log.Warn("Clearing sync watermark failed", "error", err)
	}
	e.setStatus(StatusOffline)
}
