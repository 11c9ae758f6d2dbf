// Package auth drives the client's authentication flows: registration with
// an emailed one-time code, credentialed login, and the independent admin
// login. It owns the in-memory Session and keeps the persistent store in
// step with every transition.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/asimjadoon/ledgerwallet/internal/logging"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/api"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/models"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/session"
)

// State is the wallet machine's position: exactly one is active at a time.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAwaitingOtp   State = "awaiting_otp"
	StateAuthenticated State = "authenticated"
)

// ErrNotAwaitingOtp is returned when ConfirmSignup is called outside a
// registration flow.
var ErrNotAwaitingOtp = errors.New("no signup challenge outstanding")

// ErrNotAuthenticated is returned by operations that require an active
// wallet session.
var ErrNotAuthenticated = errors.New("not logged in")

// DefaultMinPasswordLen matches the server-side policy; individual flows may
// configure a lower bound down to 6.
const DefaultMinPasswordLen = 8

// pendingSignup is the client-side context of an outstanding OTP challenge.
// It is ephemeral: losing it (process restart) requires restarting signup.
type pendingSignup struct {
	Email    string
	FullName string
	CNIC     string
}

// Machine is the user authentication state machine. All methods are safe for
// concurrent use; transitions are serialized under one mutex.
type Machine struct {
	mu      sync.Mutex
	client  api.Client
	store   *session.Store
	log     logging.Logger
	minPass int

	state      State
	pending    *pendingSignup
	session    *models.Session
	generation uint64
}

// Option configures a Machine.
type Option func(*Machine)

// WithMinPasswordLen overrides the minimum password length (6 for the signup
// flow of the legacy UI, 8 by default).
func WithMinPasswordLen(n int) Option {
	return func(m *Machine) { m.minPass = n }
}

func NewMachine(client api.Client, store *session.Store, log logging.Logger, opts ...Option) *Machine {
	m := &Machine{
		client:  client,
		store:   store,
		log:     log.With("component", "auth"),
		minPass: DefaultMinPasswordLen,
		state:   StateAnonymous,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads any persisted session at startup and, if one is usable,
// moves the machine straight to Authenticated.
func (m *Machine) Restore(ctx context.Context) error {
	sess, err := m.store.Load(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sess != nil {
		m.session = sess
		m.state = StateAuthenticated
		m.generation++
	}
	return nil
}

// BeginSignup validates the email locally, then requests an OTP challenge.
// Re-invoking it replaces any prior outstanding challenge for that flow.
func (m *Machine) BeginSignup(ctx context.Context, email, fullName, cnic string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if fullName == "" || cnic == "" {
		return fmt.Errorf("%w: full name and cnic", ErrEmptyField)
	}

	if err := m.client.RequestSignupOTP(ctx, email, fullName, cnic); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &pendingSignup{Email: email, FullName: fullName, CNIC: cnic}
	m.state = StateAwaitingOtp
	m.log.Info(ctx, "signup challenge issued", "email", email)
	return nil
}

// ConfirmSignup completes the registration challenge. A wrong or expired
// code keeps the machine at AwaitingOtp so the user may retry or resend; a
// success creates the session and moves to Authenticated.
func (m *Machine) ConfirmSignup(ctx context.Context, code, password, confirm string) (*models.Session, error) {
	m.mu.Lock()
	if m.state != StateAwaitingOtp || m.pending == nil {
		m.mu.Unlock()
		return nil, ErrNotAwaitingOtp
	}
	pending := *m.pending
	m.mu.Unlock()

	if err := ValidatePassword(password, confirm, m.minPass); err != nil {
		return nil, err
	}

	reg, err := m.client.ConfirmSignup(ctx, api.ConfirmSignupRequest{
		Email:    pending.Email,
		Code:     code,
		FullName: pending.FullName,
		CNIC:     pending.CNIC,
		Password: password,
	})
	if err != nil {
		// State intentionally stays AwaitingOtp: the caller may retry the
		// code or call BeginSignup again to resend.
		return nil, err
	}

	sess := &models.Session{
		WalletID:  reg.WalletID,
		PublicKey: reg.PublicKey,
		UserID:    reg.UserID,
		Email:     pending.Email,
		FullName:  pending.FullName,
		CNIC:      pending.CNIC,
	}
	return sess, m.authenticate(ctx, sess)
}

// Login is the direct path: Anonymous -> Authenticated, no OTP hop. A
// failure leaves the machine in Anonymous.
func (m *Machine) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password", ErrEmptyField)
	}

	res, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sess := res.Session
	return &sess, m.authenticate(ctx, &sess)
}

func (m *Machine) authenticate(ctx context.Context, sess *models.Session) error {
	if err := m.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = sess
	m.pending = nil
	m.state = StateAuthenticated
	m.generation++
	m.log.Info(ctx, "authenticated", "wallet", sess.WalletID)
	return nil
}

// Logout clears the persisted session and returns to Anonymous. The
// generation counter advances so any in-flight work keyed on the previous
// session can detect it is stale.
func (m *Machine) Logout(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.pending = nil
	m.state = StateAnonymous
	m.generation++
	m.log.Info(ctx, "logged out")
	return nil
}

// State returns the machine's current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the active session, or nil when anonymous.
func (m *Machine) Session() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}

// Generation increments on every login and logout. Long-running work
// captures it at start and discards results if it has moved on.
func (m *Machine) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// MarkEmailStale flags the cached session email as outdated (after a
// confirmed email change) until the next profile fetch replaces it.
func (m *Machine) MarkEmailStale() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.EmailStale = true
	}
}

// RefreshEmail replaces the session's cached email with server truth and
// clears the staleness flag. The persisted copy is updated as well.
func (m *Machine) RefreshEmail(ctx context.Context, email string) error {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return nil
	}
	m.session.Email = email
	m.session.EmailStale = false
	copied := *m.session
	m.mu.Unlock()

	return m.store.Save(ctx, &copied)
}
