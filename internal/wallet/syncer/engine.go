// Package syncer keeps the local read model in step with the ledger service.
// One engine exists per authenticated session; it polls balance/UTXOs,
// history and chain state on independent intervals, replaces its cached
// projections wholesale on success, and publishes change events. A failed
// tick keeps the previous projection and raises a transient-error flag; the
// loop carries on.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/asimjadoon/ledgerwallet/internal/logging"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/api"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/models"
)

const (
	DefaultBalanceInterval = 5 * time.Second
	DefaultHistoryInterval = 10 * time.Second
	DefaultChainInterval   = 10 * time.Second

	defaultHistoryLimit = 50

	// pendingTTL bounds how long an optimistic record survives without the
	// server ever reporting it.
	pendingTTL = time.Minute

	// hydrateLimit caps per-tick detail lookups for the pending pool.
	hydrateLimit = 10
)

// Engine polls the ledger for one wallet session. Start launches the loops;
// Stop cancels them and waits, after which the cache is never written again.
type Engine struct {
	client api.Client
	pub    message.Publisher
	log    logging.Logger
	sess   models.Session

	balanceInterval time.Duration
	historyInterval time.Duration
	chainInterval   time.Duration
	historyLimit    int

	mu       sync.RWMutex
	snapshot *models.Snapshot
	history  []models.TransactionRecord
	local    []localPending
	chain    *models.ChainView
	pending  []models.PendingPoolEntry
	failing  map[string]string // resource -> last transient error

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type localPending struct {
	rec   models.TransactionRecord
	added time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithIntervals overrides the three poll cadences.
func WithIntervals(balance, history, chain time.Duration) Option {
	return func(e *Engine) {
		e.balanceInterval = balance
		e.historyInterval = history
		e.chainInterval = chain
	}
}

// WithHistoryLimit overrides how many history rows each poll requests.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) { e.historyLimit = n }
}

// NewEngine builds an engine bound to sess. The session is fixed for the
// engine's lifetime: a new login gets a new engine, so a late response from
// a previous session can never land in the current cache.
func NewEngine(client api.Client, pub message.Publisher, log logging.Logger, sess models.Session, opts ...Option) *Engine {
	e := &Engine{
		client:          client,
		pub:             pub,
		log:             log.With("component", "syncer", "wallet", sess.WalletID),
		sess:            sess,
		balanceInterval: DefaultBalanceInterval,
		historyInterval: DefaultHistoryInterval,
		chainInterval:   DefaultChainInterval,
		historyLimit:    defaultHistoryLimit,
		failing:         make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the refresh loops. Each loop performs its fetch inline, so
// there is never more than one outstanding request per resource: a tick that
// arrives while the previous fetch is still running is coalesced away by the
// ticker rather than queued.
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(3)
	go e.loop(ctx, "balance", e.balanceInterval, e.refreshBalance)
	go e.loop(ctx, "history", e.historyInterval, e.refreshHistory)
	go e.loop(ctx, "chain", e.chainInterval, e.refreshChain)
}

// Stop cancels all loops and waits for in-flight fetches to finish. Once it
// returns, no completion may write into the cache.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

func (e *Engine) loop(ctx context.Context, resource string, interval time.Duration, refresh func(context.Context) error) {
	defer e.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.tick(ctx, resource, refresh)
	for {
		select {
		case <-ticker.C:
			e.tick(ctx, resource, refresh)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) tick(ctx context.Context, resource string, refresh func(context.Context) error) {
	if ctx.Err() != nil {
		return
	}
	if err := refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		e.markFailing(resource, err)
		e.log.Warn(ctx, "refresh failed, keeping cached projection", "resource", resource, "error", err)
		if pubErr := publishJSON(e.pub, TopicError, SyncError{Resource: resource, Message: err.Error()}); pubErr != nil {
			e.log.Error(ctx, "failed to publish sync error", "error", pubErr)
		}
		return
	}
	e.clearFailing(resource)
}

func (e *Engine) refreshBalance(ctx context.Context) error {
	snap, err := e.client.GetBalance(ctx, e.sess.WalletID)
	if err != nil {
		return err
	}

	// Balance is defined as the sum of the UTXO set; recompute rather than
	// trust a separately tracked figure.
	if !snap.Consistent() {
		e.log.Warn(ctx, "server balance disagrees with utxo sum, recomputing",
			"reported", snap.Balance, "sum", snap.SumUTXOs())
		snap.Balance = snap.SumUTXOs()
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	e.mu.Lock()
	e.snapshot = snap
	e.mu.Unlock()

	return publishJSON(e.pub, TopicBalance, BalanceUpdated{
		WalletID:  e.sess.WalletID,
		Balance:   snap.Balance,
		UTXOCount: len(snap.UTXOs),
	})
}

func (e *Engine) refreshHistory(ctx context.Context) error {
	records, err := e.client.GetHistory(ctx, e.sess.WalletID, e.historyLimit)
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	e.mu.Lock()
	e.history = records
	e.reconcileLocked(records)
	count := len(records)
	e.mu.Unlock()

	return publishJSON(e.pub, TopicHistory, HistoryUpdated{WalletID: e.sess.WalletID, Count: count})
}

// reconcileLocked drops optimistic records the server now reports, and
// expires any the server never acknowledged. Caller holds e.mu.
func (e *Engine) reconcileLocked(server []models.TransactionRecord) {
	if len(e.local) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(server))
	for _, rec := range server {
		seen[rec.ID] = struct{}{}
	}

	kept := e.local[:0]
	now := time.Now()
	for _, lp := range e.local {
		if _, ok := seen[lp.rec.ID]; ok {
			continue
		}
		if now.Sub(lp.added) > pendingTTL {
			continue
		}
		kept = append(kept, lp)
	}
	e.local = kept
}

func (e *Engine) refreshChain(ctx context.Context) error {
	view, err := e.client.ListBlocks(ctx)
	if err != nil {
		return err
	}
	ids, err := e.client.ListPending(ctx)
	if err != nil {
		return err
	}

	// Hydrate pending ids into displayable entries, best effort: a missing
	// detail row (already mined, pruned) is skipped, not fatal.
	entries := make([]models.PendingPoolEntry, 0, len(ids))
	for i, id := range ids {
		if i >= hydrateLimit {
			break
		}
		details, err := e.client.GetTransactionDetails(ctx, id)
		if err != nil {
			if api.IsNotFound(err) {
				continue
			}
			return err
		}
		entries = append(entries, models.PendingPoolEntry{
			TxID:       details.ID,
			SenderID:   details.SenderID,
			ReceiverID: details.ReceiverID,
			Amount:     details.Amount,
			Note:       details.Note,
		})
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	e.mu.Lock()
	e.chain = view
	e.pending = entries
	e.mu.Unlock()

	return publishJSON(e.pub, TopicChain, ChainUpdated{Length: view.Length, PendingCount: len(entries)})
}

// NoteSubmitted records an optimistic pending transaction. It shows up in
// History() until the next poll returns the server's own row for it.
func (e *Engine) NoteSubmitted(rec models.TransactionRecord) {
	rec.Status = models.TxPending
	e.mu.Lock()
	e.local = append(e.local, localPending{rec: rec, added: time.Now()})
	e.mu.Unlock()
}

// Snapshot returns the current balance projection, or nil before the first
// successful refresh. Balance and UTXO set always originate from the same
// fetch.
func (e *Engine) Snapshot() *models.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snapshot == nil {
		return nil
	}
	copied := *e.snapshot
	copied.UTXOs = append([]models.UTXO(nil), e.snapshot.UTXOs...)
	return &copied
}

// History returns the merged view: server rows first, then optimistic local
// records the server has not reported yet.
func (e *Engine) History() []models.TransactionRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := append([]models.TransactionRecord(nil), e.history...)
	for _, lp := range e.local {
		out = append(out, lp.rec)
	}
	return out
}

// Chain returns the cached chain listing, or nil before the first refresh.
func (e *Engine) Chain() *models.ChainView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.chain
}

// Pending returns the hydrated pending-pool entries.
func (e *Engine) Pending() []models.PendingPoolEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]models.PendingPoolEntry(nil), e.pending...)
}

// Degraded reports whether the named resource's last tick failed, along with
// the error message. A degraded resource still serves its previous cache.
func (e *Engine) Degraded(resource string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	msg, ok := e.failing[resource]
	return msg, ok
}

func (e *Engine) markFailing(resource string, err error) {
	e.mu.Lock()
	e.failing[resource] = err.Error()
	e.mu.Unlock()
}

func (e *Engine) clearFailing(resource string) {
	e.mu.Lock()
	delete(e.failing, resource)
	e.mu.Unlock()
}
