package cli

import (
	"bufio"
	"context"
	"os"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	_ "modernc.org/sqlite"

	"github.com/asimjadoon/ledgerwallet/internal/logging"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/api"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/auth"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/config"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/localdb"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/profile"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/repositories/metadata"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/session"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/syncer"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/transfer"
)

// Mode reflects server reachability as seen by the health probe.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// App wires the wallet services behind the REPL commands. One sync engine
// exists per login; logout stops it before the session is cleared.
type App struct {
	config   *config.Config
	client   api.Client
	machine  *auth.Machine
	admin    *auth.AdminMachine
	pipeline *transfer.Pipeline
	profiles *profile.Manager
	pubsub   *gochannel.GoChannel
	log      logging.Logger
	reader   *bufio.Reader

	mu     sync.Mutex
	engine *syncer.Engine
	mode   Mode
}

// NewApp builds the full client stack: local database, session store, auth
// machines, ledger client, and the transfer/profile services.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := localdb.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "failed to open local database", "path", cfg.DatabasePath, "error", err)
		return nil, err
	}

	store := session.NewStore(metadata.NewSQLiteRepository(db), log)
	client := api.NewHTTPClient(cfg.ServerBaseURL)
	machine := auth.NewMachine(client, store, log, auth.WithMinPasswordLen(cfg.MinPasswordLen))
	admin := auth.NewAdminMachine(store, log, cfg.AdminUsername, []byte(cfg.AdminPasswordHash))
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})

	return &App{
		config:   cfg,
		client:   client,
		machine:  machine,
		admin:    admin,
		pipeline: transfer.NewPipeline(client, log),
		profiles: profile.NewManager(client, machine, log),
		pubsub:   pubsub,
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
		mode:     ModeOffline,
	}, nil
}

// Run restores any persisted sessions and enters the REPL. It returns when
// the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.machine.Restore(ctx); err != nil {
		return err
	}
	if err := a.admin.Restore(ctx); err != nil {
		return err
	}
	if a.isLoggedIn() {
		a.startSync(ctx)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	a.stopSync()
	return a.pubsub.Close()
}

func (a *App) isLoggedIn() bool {
	return a.machine.State() == auth.StateAuthenticated
}

func (a *App) isAdmin() bool {
	return a.admin.State() == auth.AdminAuthenticated
}

// status renders the prompt decoration: email (or wallet id), admin marker
// and connectivity mode.
func (a *App) status() string {
	s := ""
	if sess := a.machine.Session(); sess != nil {
		who := sess.Email
		if who == "" {
			who = shortID(sess.WalletID)
		}
		s = who + " "
	}
	if a.isAdmin() {
		s += "admin "
	}
	a.mu.Lock()
	s += string(a.mode)
	a.mu.Unlock()
	return "(" + s + ")"
}

// startSync builds and launches a sync engine for the current session. A
// previous engine, if any, is stopped first.
func (a *App) startSync(ctx context.Context) {
	sess := a.machine.Session()
	if sess == nil {
		return
	}
	a.stopSync()

	engine := syncer.NewEngine(a.client, a.pubsub, a.log, *sess,
		syncer.WithIntervals(a.config.BalanceInterval, a.config.HistoryInterval, a.config.ChainInterval),
		syncer.WithHistoryLimit(a.config.HistoryLimit))
	engine.Start(ctx)

	a.mu.Lock()
	a.engine = engine
	a.mu.Unlock()
}

// stopSync stops the running engine and waits for its in-flight fetches.
func (a *App) stopSync() {
	a.mu.Lock()
	engine := a.engine
	a.engine = nil
	a.mu.Unlock()
	if engine != nil {
		engine.Stop()
	}
}

func (a *App) syncEngine() *syncer.Engine {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// StartOnlineStatusWatcher probes the health endpoint on the given interval
// and flips the connectivity mode accordingly. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.client.Health(probeCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}
		case <-ctx.Done():
			return
		}
	}
}

// shortID abbreviates a wallet id for prompt display.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12] + "…"
}
