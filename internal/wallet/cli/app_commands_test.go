package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/asimjadoon/ledgerwallet/internal/logging"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/api"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/auth"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/config"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/models"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/profile"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/repositories/metadata"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/session"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/transfer"
)

type fakeLedger struct {
	api.Client

	loginRes *models.LoginResult

	balance *models.Snapshot

	signAndSubReq api.SignAndSubmitRequest
	signAndSubErr error

	fundedWallet string
	fundedAmount int64
}

func (f *fakeLedger) Login(_ context.Context, email, password string) (*models.LoginResult, error) {
	return f.loginRes, nil
}

func (f *fakeLedger) GetBalance(_ context.Context, walletID string) (*models.Snapshot, error) {
	return f.balance, nil
}

func (f *fakeLedger) SignAndSubmit(_ context.Context, req api.SignAndSubmitRequest) (string, error) {
	if f.signAndSubErr != nil {
		return "", f.signAndSubErr
	}
	f.signAndSubReq = req
	return "tx-77", nil
}

func (f *fakeLedger) FundWallet(_ context.Context, walletID string, amount int64) (string, error) {
	f.fundedWallet = walletID
	f.fundedAmount = amount
	return "utxo-new", nil
}

// stubInputs replaces the interactive seams with queued answers.
func stubInputs(t *testing.T, texts []string, amounts []int64, password string) {
	t.Helper()
	origText, origPass, origAmount := getSimpleText, getPassword, getAmount
	t.Cleanup(func() { getSimpleText, getPassword, getAmount = origText, origPass, origAmount })

	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) {
		if len(texts) == 0 {
			t.Fatal("unexpected text prompt")
		}
		next := texts[0]
		texts = texts[1:]
		return next, nil
	}
	getAmount = func(*bufio.Reader, string, io.Writer) (int64, error) {
		if len(amounts) == 0 {
			t.Fatal("unexpected amount prompt")
		}
		next := amounts[0]
		amounts = amounts[1:]
		return next, nil
	}
	getPassword = func(io.Writer, string) ([]byte, error) {
		return []byte(password), nil
	}
}

func newTestApp(t *testing.T, f *fakeLedger) *App {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "wallet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB)`)
	require.NoError(t, err)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	store := session.NewStore(metadata.NewSQLiteRepository(db), log)
	machine := auth.NewMachine(f, store, log)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	return &App{
		config:   cfg,
		client:   f,
		machine:  machine,
		admin:    auth.NewAdminMachine(store, log, "admin", nil),
		pipeline: transfer.NewPipeline(f, log),
		profiles: profile.NewManager(f, machine, log),
		log:      log,
		reader:   bufio.NewReader(strings.NewReader("")),
		mode:     ModeOffline,
	}
}

func login(t *testing.T, a *App, f *fakeLedger) {
	t.Helper()
	f.loginRes = &models.LoginResult{Session: models.Session{
		WalletID:   "wallet-sender",
		PublicKey:  "pub",
		UserID:     "u1",
		Email:      "user@example.com",
		PrivateKey: "priv",
	}}
	stubInputs(t, []string{"user@example.com"}, nil, "password123")
	require.NoError(t, a.Login(context.Background()))
}

func TestCommands_RequireLogin(t *testing.T) {
	a := newTestApp(t, &fakeLedger{})
	ctx := context.Background()

	assert.ErrorIs(t, a.Balance(ctx), auth.ErrNotAuthenticated)
	assert.ErrorIs(t, a.Send(ctx), auth.ErrNotAuthenticated)
	assert.ErrorIs(t, a.History(ctx), auth.ErrNotAuthenticated)
	assert.ErrorIs(t, a.Fund(ctx), auth.ErrNotAuthenticated)
	assert.ErrorIs(t, a.Mine(ctx), auth.ErrNotAuthenticated)
}

func TestBalance_DirectFetchWithoutEngine(t *testing.T) {
	f := &fakeLedger{balance: &models.Snapshot{
		WalletID: "wallet-sender",
		Balance:  120,
		UTXOs:    []models.UTXO{{ID: "u1", Amount: 120}},
	}}
	a := newTestApp(t, f)
	login(t, a, f)

	assert.NoError(t, a.Balance(context.Background()))
}

func TestSend_SubmitsDelegatedTransfer(t *testing.T) {
	f := &fakeLedger{}
	a := newTestApp(t, f)
	login(t, a, f)

	stubInputs(t, []string{"wallet-receiver", "groceries"}, []int64{40}, "")
	require.NoError(t, a.Send(context.Background()))

	assert.Equal(t, "wallet-sender", f.signAndSubReq.SenderID)
	assert.Equal(t, "wallet-receiver", f.signAndSubReq.ReceiverID)
	assert.Equal(t, int64(40), f.signAndSubReq.Amount)
	assert.Equal(t, "groceries", f.signAndSubReq.Note)
	assert.Equal(t, "priv", f.signAndSubReq.SenderPrivKey)
}

func TestSend_RejectionSurfaced(t *testing.T) {
	f := &fakeLedger{signAndSubErr: &api.Error{
		Kind: api.KindInvalid, Status: 400, Message: "insufficient funds",
	}}
	a := newTestApp(t, f)
	login(t, a, f)

	stubInputs(t, []string{"wallet-receiver", ""}, []int64{9999}, "")
	err := a.Send(context.Background())
	require.Error(t, err)
	assert.Equal(t, "insufficient funds", api.ServerMessage(err))
}

func TestFund_UsesSessionWallet(t *testing.T) {
	f := &fakeLedger{}
	a := newTestApp(t, f)
	login(t, a, f)

	stubInputs(t, nil, []int64{500}, "")
	require.NoError(t, a.Fund(context.Background()))

	assert.Equal(t, "wallet-sender", f.fundedWallet)
	assert.Equal(t, int64(500), f.fundedAmount)
}

func TestStatus_ShowsIdentityAndMode(t *testing.T) {
	f := &fakeLedger{}
	a := newTestApp(t, f)

	assert.Equal(t, "(offline)", a.status())

	login(t, a, f)
	a.setMode(ModeOnline)
	assert.Equal(t, "(user@example.com online)", a.status())
}
