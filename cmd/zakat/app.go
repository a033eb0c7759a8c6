package main

import (
	"context"
	"errors"

	"zakat/internal/auth"
	"zakat/internal/cli"
	"zakat/internal/config"
	"zakat/internal/ledger"
	"zakat/internal/log"
	"zakat/internal/notify"
	"zakat/internal/remote"
	"zakat/internal/remote/drive"
	"zakat/internal/remote/memory"
	"zakat/internal/storage"
	appsync "zakat/internal/sync"
)

// errNoCloudSync rejects cloud operations when no OAuth client is
// configured.
var errNoCloudSync = errors.New("cloud sync is not configured: set GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON")

// app wires the shared object graph behind every subcommand.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	repo   *storage.Repository
	store  *ledger.Store
	gate   *auth.Gate // nil without cloud credentials
	engine *appsync.Engine
}

func newApp(ctx context.Context) (*app, error) {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	repo := cli.InitRepository(logger, cfg.SQLiteDBPath)

	store := ledger.NewStore()
	if data, ok, err := repo.LoadSnapshot(ctx); err != nil {
		logger.Warn("Loading local snapshot failed, starting empty", "error", err)
	} else if ok {
		if outcome := store.ApplyJSON(data); outcome.Result == ledger.Rejected {
			logger.Warn("Local snapshot unusable, starting empty", "reason", outcome.Reason)
		}
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		store:  store,
	}

	var objects remote.ObjectStore
	var gate appsync.AuthGate
	if cfg.CloudSyncConfigured() {
		clientJSON, err := cfg.OAuthClientJSON()
		if err != nil {
			repo.Close()
			return nil, err
		}
		g, err := auth.NewGate(clientJSON, cfg.GoogleOAuthTokenFile, cfg.OAuthRedirectPort)
		if err != nil {
			repo.Close()
			return nil, err
		}
		g.Restore(ctx)
		client, err := drive.New(ctx, g.TokenSource(ctx), cfg.DriveFileName)
		if err != nil {
			repo.Close()
			return nil, err
		}
		a.gate = g
		gate = g
		objects = client
	} else {
		gate = offlineGate{}
		objects = memory.New()
	}

	notifier := notify.NewLog(logger.Logger)
	a.engine = appsync.New(store, repo, objects, gate, logger,
		appsync.WithDebounce(cfg.SyncDebounce),
		appsync.WithNotifier(notifier))

	// Every ledger change is written through to the local database; the
	// engine picks up the same change for its debounced upload.
	storage.Autosave(context.Background(), store, repo, notifier)

	return a, nil
}

func (a *app) Close() {
	a.engine.Dispose()
	if err := a.repo.Close(); err != nil {
		a.logger.Warn("Closing local database failed", "error", err)
	}
}

// offlineGate is the AuthGate used when no OAuth client is configured: the
// engine stays permanently offline and manual sync explains why.
type offlineGate struct{}

func (offlineGate) CurrentToken() (string, bool) { return "", false }
func (offlineGate) SignIn(context.Context) error { return errNoCloudSync }
func (offlineGate) OnTokenAvailable(func())      {}
