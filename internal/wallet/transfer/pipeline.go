// Package transfer drives transaction submission: local precondition checks,
// input selection, signing (delegated to the server or performed locally)
// and submission through the ledger client. The pipeline never retries; a
// server rejection is surfaced verbatim so the caller can resubmit.
package transfer

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asimjadoon/ledgerwallet/internal/logging"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/api"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/models"
)

var (
	// ErrEmptyReceiver means no receiver wallet id was supplied.
	ErrEmptyReceiver = errors.New("receiver wallet id is required")
	// ErrNonPositiveAmount means the amount was zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be a positive integer")
	// ErrSelfTransfer means the receiver equals the sender's own wallet.
	ErrSelfTransfer = errors.New("cannot transfer to your own wallet")
	// ErrSubmissionInFlight means another submission has not completed yet.
	ErrSubmissionInFlight = errors.New("a transfer submission is already in progress")
	// ErrNoKeyMaterial means the session carries no usable private key.
	ErrNoKeyMaterial = errors.New("session has no private key material")
	// ErrInsufficientFunds means the local UTXO set cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Transfer is the caller's intent: who gets how much, with an optional note.
type Transfer struct {
	ReceiverID string
	Amount     int64
	Note       string
}

// Result is a completed submission: the server-assigned transaction id and
// an optimistic pending record for the local history view. The record is a
// placeholder; the next history poll replaces it with server truth.
type Result struct {
	TxID   string
	Record models.TransactionRecord
}

// Pipeline submits transfers for one wallet client. It allows at most one
// submission in flight at a time; a second call while the first is pending
// fails fast with ErrSubmissionInFlight instead of double-spending.
type Pipeline struct {
	client api.Client
	log    logging.Logger

	mu       sync.Mutex
	inFlight bool
}

// NewPipeline builds a submission pipeline over the ledger client.
func NewPipeline(client api.Client, log logging.Logger) *Pipeline {
	return &Pipeline{client: client, log: log.With("component", "transfer")}
}

// validate runs the local preconditions. Each failure is a distinct sentinel
// and none of them ever reaches the network.
func validate(sess models.Session, t Transfer) error {
	if t.ReceiverID == "" {
		return ErrEmptyReceiver
	}
	if t.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if t.ReceiverID == sess.WalletID {
		return ErrSelfTransfer
	}
	return nil
}

func (p *Pipeline) acquire() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight {
		return ErrSubmissionInFlight
	}
	p.inFlight = true
	return nil
}

func (p *Pipeline) release() {
	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()
}

// Send submits a transfer with signing delegated to the server. The
// session's base64 private key travels inside the request body; input
// selection happens server-side against the sender's unspent outputs.
func (p *Pipeline) Send(ctx context.Context, sess models.Session, t Transfer) (*Result, error) {
	if err := validate(sess, t); err != nil {
		return nil, err
	}
	if sess.PrivateKey == "" {
		return nil, ErrNoKeyMaterial
	}
	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.release()

	txid, err := p.client.SignAndSubmit(ctx, api.SignAndSubmitRequest{
		SenderID:      sess.WalletID,
		ReceiverID:    t.ReceiverID,
		Amount:        t.Amount,
		Note:          t.Note,
		SenderPub:     sess.PublicKey,
		SenderPrivKey: sess.PrivateKey,
	})
	if err != nil {
		p.log.Warn(ctx, "transfer rejected", "receiver", t.ReceiverID, "error", err)
		return nil, err
	}

	p.log.Info(ctx, "transfer accepted", "txid", txid, "receiver", t.ReceiverID, "amount", t.Amount)
	return p.result(sess, t, txid), nil
}

// SendPreSigned submits a transfer signed locally: inputs are selected from
// the supplied UTXO snapshot, the canonical payload is signed with the
// session's ed25519 key in-process, and only public material crosses the
// wire.
func (p *Pipeline) SendPreSigned(ctx context.Context, sess models.Session, t Transfer, utxos []models.UTXO) (*Result, error) {
	if err := validate(sess, t); err != nil {
		return nil, err
	}
	priv, err := decodePrivateKey(sess.PrivateKey)
	if err != nil {
		return nil, err
	}
	inputs, err := selectInputs(utxos, t.Amount)
	if err != nil {
		return nil, err
	}
	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.release()

	payload := canonicalPayload(sess.WalletID, t.ReceiverID, t.Amount, time.Now().Unix(), t.Note)
	sig := ed25519.Sign(priv, payload)

	txid, err := p.client.SubmitSigned(ctx, api.SubmitSignedRequest{
		SenderID:   sess.WalletID,
		ReceiverID: t.ReceiverID,
		Amount:     t.Amount,
		Note:       t.Note,
		Inputs:     inputs,
		SenderPub:  sess.PublicKey,
		Signature:  base64.StdEncoding.EncodeToString(sig),
	})
	if err != nil {
		p.log.Warn(ctx, "pre-signed transfer rejected", "receiver", t.ReceiverID, "error", err)
		return nil, err
	}

	p.log.Info(ctx, "pre-signed transfer accepted", "txid", txid, "inputs", len(inputs))
	return p.result(sess, t, txid), nil
}

func (p *Pipeline) result(sess models.Session, t Transfer, txid string) *Result {
	return &Result{
		TxID: txid,
		Record: models.TransactionRecord{
			ID:         txid,
			SenderID:   sess.WalletID,
			ReceiverID: t.ReceiverID,
			Amount:     t.Amount,
			Note:       t.Note,
			Status:     models.TxPending,
			Timestamp:  time.Now(),
		},
	}
}

// canonicalPayload is the byte string a transfer signature covers:
// sender|receiver|amount|timestamp|note.
func canonicalPayload(sender, receiver string, amount, ts int64, note string) []byte {
	return []byte(fmt.Sprintf("%s|%s|%d|%d|%s", sender, receiver, amount, ts, note))
}

func decodePrivateKey(b64 string) (ed25519.PrivateKey, error) {
	if b64 == "" {
		return nil, ErrNoKeyMaterial
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: unexpected key size %d", ErrNoKeyMaterial, len(raw))
	}
	return ed25519.PrivateKey(raw), nil
}

// selectInputs picks unspent outputs oldest-first until they cover amount.
func selectInputs(utxos []models.UTXO, amount int64) ([]string, error) {
	var (
		ids   []string
		total int64
	)
	for _, u := range utxos {
		ids = append(ids, u.ID)
		total += u.Amount
		if total >= amount {
			return ids, nil
		}
	}
	return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, total, amount)
}
