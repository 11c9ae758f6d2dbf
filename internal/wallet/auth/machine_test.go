package auth

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/asimjadoon/ledgerwallet/internal/logging"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/api"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/models"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/repositories/metadata"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/session"
)

// fakeAPI overrides only the auth-related calls; everything else panics via
// the embedded nil interface, which is fine for these tests.
type fakeAPI struct {
	api.Client

	otpCalls   int
	otpErr     error
	lastSignup [3]string

	confirmCalls int
	confirmErr   error
	confirmReq   api.ConfirmSignupRequest
	registration *models.Registration

	loginCalls int
	loginErr   error
	loginRes   *models.LoginResult
}

func (f *fakeAPI) RequestSignupOTP(_ context.Context, email, fullName, cnic string) error {
	f.otpCalls++
	f.lastSignup = [3]string{email, fullName, cnic}
	return f.otpErr
}

func (f *fakeAPI) ConfirmSignup(_ context.Context, req api.ConfirmSignupRequest) (*models.Registration, error) {
	f.confirmCalls++
	f.confirmReq = req
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return f.registration, nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*models.LoginResult, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginRes, nil
}

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file:auth_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS metadata (key TEXT PRIMARY KEY, value BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM metadata`)
	require.NoError(t, err)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return session.NewStore(metadata.NewSQLiteRepository(db), log)
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMachine_RegistrationFlow(t *testing.T) {
	f := &fakeAPI{
		registration: &models.Registration{UserID: "u1", WalletID: "w1", PublicKey: "pub"},
	}
	store := newTestStore(t)
	m := NewMachine(f, store, discardLogger(), WithMinPasswordLen(6))
	ctx := context.Background()

	assert.Equal(t, StateAnonymous, m.State())

	require.NoError(t, m.BeginSignup(ctx, "a@b.com", "A", "CNIC1"))
	assert.Equal(t, StateAwaitingOtp, m.State())
	assert.Equal(t, [3]string{"a@b.com", "A", "CNIC1"}, f.lastSignup)

	// Wrong code: error surfaced, state stays AwaitingOtp.
	f.confirmErr = &api.Error{Kind: api.KindInvalid, Status: 400, Message: "invalid or expired otp"}
	_, err := m.ConfirmSignup(ctx, "000000", "secret1", "secret1")
	require.Error(t, err)
	assert.Equal(t, "invalid or expired otp", api.ServerMessage(err))
	assert.Equal(t, StateAwaitingOtp, m.State())

	// Correct code: Authenticated with a populated session.
	f.confirmErr = nil
	sess, err := m.ConfirmSignup(ctx, "123456", "secret1", "secret1")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "w1", sess.WalletID)
	assert.Equal(t, "a@b.com", sess.Email)
	assert.Equal(t, "123456", f.confirmReq.Code)

	// Session was persisted.
	saved, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "w1", saved.WalletID)
}

func TestMachine_ResendReplacesChallenge(t *testing.T) {
	f := &fakeAPI{registration: &models.Registration{UserID: "u1", WalletID: "w1", PublicKey: "pub"}}
	m := NewMachine(f, newTestStore(t), discardLogger(), WithMinPasswordLen(6))
	ctx := context.Background()

	require.NoError(t, m.BeginSignup(ctx, "a@b.com", "A", "CNIC1"))
	require.NoError(t, m.BeginSignup(ctx, "a@b.com", "A", "CNIC1"))
	assert.Equal(t, 2, f.otpCalls)
	assert.Equal(t, StateAwaitingOtp, m.State())
}

func TestMachine_ConfirmWithoutChallenge(t *testing.T) {
	m := NewMachine(&fakeAPI{}, newTestStore(t), discardLogger())
	_, err := m.ConfirmSignup(context.Background(), "123456", "password1", "password1")
	assert.ErrorIs(t, err, ErrNotAwaitingOtp)
}

func TestMachine_LocalValidationNeverReachesNetwork(t *testing.T) {
	f := &fakeAPI{}
	m := NewMachine(f, newTestStore(t), discardLogger())
	ctx := context.Background()

	assert.ErrorIs(t, m.BeginSignup(ctx, "not-an-email", "A", "C"), ErrInvalidEmail)

	_, err := m.Login(ctx, "also-bad", "password1")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = m.Login(ctx, "a@b.com", "")
	assert.ErrorIs(t, err, ErrEmptyField)

	assert.Zero(t, f.otpCalls)
	assert.Zero(t, f.loginCalls)
}

func TestMachine_PasswordPolicy(t *testing.T) {
	f := &fakeAPI{}
	m := NewMachine(f, newTestStore(t), discardLogger()) // default min 8
	ctx := context.Background()

	require.NoError(t, m.BeginSignup(ctx, "a@b.com", "A", "C"))

	_, err := m.ConfirmSignup(ctx, "123456", "short", "short")
	require.Error(t, err)

	_, err = m.ConfirmSignup(ctx, "123456", "longenough", "different")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	assert.Zero(t, f.confirmCalls, "invalid passwords must not reach the client")
}

func TestMachine_DirectLoginAndLogout(t *testing.T) {
	f := &fakeAPI{
		loginRes: &models.LoginResult{
			Session: models.Session{
				WalletID: "w1", PublicKey: "pub", UserID: "u1",
				Email: "a@b.com", PrivateKey: "priv",
			},
			Balance: 50,
		},
	}
	store := newTestStore(t)
	m := NewMachine(f, store, discardLogger())
	ctx := context.Background()

	genBefore := m.Generation()

	sess, err := m.Login(ctx, "a@b.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "priv", sess.PrivateKey)
	assert.Greater(t, m.Generation(), genBefore)

	genLoggedIn := m.Generation()
	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, StateAnonymous, m.State())
	assert.Nil(t, m.Session())
	assert.Greater(t, m.Generation(), genLoggedIn)

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, saved, "logout must clear the persisted session")
}

func TestMachine_LoginFailureStaysAnonymous(t *testing.T) {
	f := &fakeAPI{loginErr: &api.Error{Kind: api.KindUnauthorized, Status: 401, Message: "invalid password"}}
	m := NewMachine(f, newTestStore(t), discardLogger())

	_, err := m.Login(context.Background(), "a@b.com", "wrongpassword")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, StateAnonymous, m.State())
}

func TestMachine_RestoreFromStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &models.Session{WalletID: "w1", PublicKey: "pub"}))

	m := NewMachine(&fakeAPI{}, store, discardLogger())
	require.NoError(t, m.Restore(ctx))
	assert.Equal(t, StateAuthenticated, m.State())
	require.NotNil(t, m.Session())
	assert.Equal(t, "w1", m.Session().WalletID)
}

func TestMachine_EmailStaleness(t *testing.T) {
	store := newTestStore(t)
	m := NewMachine(&fakeAPI{}, store, discardLogger())
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &models.Session{WalletID: "w1", PublicKey: "pub", Email: "old@b.com"}))
	require.NoError(t, m.Restore(ctx))

	m.MarkEmailStale()
	assert.True(t, m.Session().EmailStale)

	require.NoError(t, m.RefreshEmail(ctx, "new@b.com"))
	sess := m.Session()
	assert.Equal(t, "new@b.com", sess.Email)
	assert.False(t, sess.EmailStale)
}
