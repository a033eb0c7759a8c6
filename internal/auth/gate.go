// Package auth supplies the bearer credential for cloud sync. The gate
// owns the OAuth session lifecycle: interactive sign-in through a local
// redirect listener, silent restoration from the cached token file, and
// sign-out. Consumers treat it as a capability: token present or absent.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
)

// ErrNoSession is returned by the token source when no token is cached.
var ErrNoSession = errors.New("no oauth session")

const signInTimeout = 5 * time.Minute

type Gate struct {
	cfg          *oauth2.Config
	tokenFile    string
	redirectPort string

	mu        sync.Mutex
	token     *oauth2.Token
	listeners []func()
}

// NewGate builds a gate from the OAuth client JSON, requesting only the
// drive.appdata scope.
func NewGate(clientJSON []byte, tokenFile, redirectPort string) (*Gate, error) {
	cfg, err := google.ConfigFromJSON(clientJSON, gdrive.DriveAppdataScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	if redirectPort == "" {
		redirectPort = "8085"
	}
	cfg.RedirectURL = "http://localhost:" + redirectPort + "/callback"

	return &Gate{
		cfg:          cfg,
		tokenFile:    tokenFile,
		redirectPort: redirectPort,
	}, nil
}

// CurrentToken reports the session capability: the access token and whether
// a usable session exists. A token past its expiry still counts while a
// refresh token is held; the token source refreshes it on first use.
func (g *Gate) CurrentToken() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token == nil {
		return "", false
	}
	if g.token.Valid() || g.token.RefreshToken != "" {
		return g.token.AccessToken, true
	}
	return "", false
}

// OnTokenAvailable registers fn to run when a session is established, both
// on interactive sign-in and on successful silent restoration.
func (g *Gate) OnTokenAvailable(fn func()) {
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}

// TokenSource returns a source that refreshes through the OAuth config and
// persists refreshed tokens, so a restart does not redo the consent flow.
func (g *Gate) TokenSource(ctx context.Context) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &gateSource{gate: g, ctx: ctx})
}

type gateSource struct {
	gate *Gate
	ctx  context.Context
}

func (s *gateSource) Token() (*oauth2.Token, error) {
	s.gate.mu.Lock()
	tok := s.gate.token
	s.gate.mu.Unlock()

	if tok == nil {
		return nil, ErrNoSession
	}
	if tok.Valid() {
		return tok, nil
	}
	fresh, err := s.gate.cfg.TokenSource(s.ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	s.gate.setToken(fresh, false)
	return fresh, nil
}

// Restore attempts silent session restoration from the token file. It
// reports whether a session is now available; failures are quiet because a
// missing or expired session is a normal state, not an error.
func (g *Gate) Restore(ctx context.Context) bool {
	tok, err := g.loadToken()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.WarnContext(ctx, "Discarding unreadable token file", "path", g.tokenFile, "error", err)
		}
		return false
	}

	g.mu.Lock()
	g.token = tok
	g.mu.Unlock()

	if !tok.Valid() {
		if _, err := g.TokenSource(ctx).Token(); err != nil {
			slog.InfoContext(ctx, "Silent session restore failed", "error", err)
			g.mu.Lock()
			g.token = nil
			g.mu.Unlock()
			return false
		}
	}

	slog.InfoContext(ctx, "Session restored from cached token")
	g.fireListeners()
	return true
}

// SignIn runs the interactive flow: it prints the consent URL, waits for
// the local redirect with the authorization code and exchanges it. Blocks
// until granted, denied or timed out.
func (g *Gate) SignIn(ctx context.Context) error {
	state, err := randomState()
	if err != nil {
		return err
	}

	type callbackResult struct {
		code string
		err  error
	}
	resultCh := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	srv := &http.Server{Addr: ":" + g.redirectPort, Handler: mux}
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			resultCh <- callbackResult{err: fmt.Errorf("authorization denied: %s", errStr)}
			return
		}
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			resultCh <- callbackResult{err: errors.New("oauth state mismatch")}
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the application.")
		resultCh <- callbackResult{code: r.URL.Query().Get("code")}
	})
	go func() { _ = srv.ListenAndServe() }()
	defer srv.Close()

	url := g.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Printf("Open this URL to authorize:\n%s\n", url)

	select {
	case res := <-resultCh:
		if res.err != nil {
			return res.err
		}
		tok, err := g.cfg.Exchange(ctx, res.code)
		if err != nil {
			return fmt.Errorf("token exchange: %w", err)
		}
		g.setToken(tok, true)
		return nil
	case <-time.After(signInTimeout):
		return errors.New("authorization timed out")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SignOut drops the in-memory token and the cached token file. Remote data
// is left untouched.
func (g *Gate) SignOut() {
	g.mu.Lock()
	g.token = nil
	g.mu.Unlock()
	if err := os.Remove(g.tokenFile); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove token file", "path", g.tokenFile, "error", err)
	}
}

func (g *Gate) setToken(tok *oauth2.Token, fire bool) {
	g.mu.Lock()
	g.token = tok
	g.mu.Unlock()

	if err := g.saveToken(tok); err != nil {
		slog.Warn("Failed to persist token", "path", g.tokenFile, "error", err)
	}
	if fire {
		g.fireListeners()
	}
}

func (g *Gate) fireListeners() {
	g.mu.Lock()
	fns := make([]func(), len(g.listeners))
	copy(fns, g.listeners)
	g.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (g *Gate) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(g.tokenFile), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(g.tokenFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}

func (g *Gate) loadToken() (*oauth2.Token, error) {
	f, err := os.Open(g.tokenFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
