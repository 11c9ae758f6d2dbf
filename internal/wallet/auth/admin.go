package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/asimjadoon/ledgerwallet/internal/logging"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/models"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/session"
)

// AdminState mirrors the user machine's shape for the admin sub-machine.
type AdminState string

const (
	AdminAnonymous     AdminState = "admin_anonymous"
	AdminAuthenticated AdminState = "admin_authenticated"
)

// ErrBadAdminCredentials covers both unknown usernames and wrong passwords;
// callers get no hint which it was.
var ErrBadAdminCredentials = errors.New("invalid admin credentials")

// AdminMachine authenticates the operator role against locally configured
// credentials (the ledger service has no admin endpoint). It shares no state
// with the user Machine: each has its own store key and lifecycle.
type AdminMachine struct {
	mu           sync.Mutex
	store        *session.Store
	log          logging.Logger
	username     string
	passwordHash []byte

	state   AdminState
	session *models.AdminSession
}

// NewAdminMachine builds the admin sub-machine. passwordHash is a bcrypt
// hash supplied via configuration.
func NewAdminMachine(store *session.Store, log logging.Logger, username string, passwordHash []byte) *AdminMachine {
	return &AdminMachine{
		store:        store,
		log:          log.With("component", "admin-auth"),
		username:     username,
		passwordHash: passwordHash,
		state:        AdminAnonymous,
	}
}

// Restore loads a persisted admin session at startup.
func (m *AdminMachine) Restore(ctx context.Context) error {
	sess, err := m.store.LoadAdmin(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sess != nil {
		m.session = sess
		m.state = AdminAuthenticated
	}
	return nil
}

// Login verifies the supplied credentials and, on success, persists an admin
// session. A failure leaves the machine in AdminAnonymous.
func (m *AdminMachine) Login(ctx context.Context, username, password string) error {
	if subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) != 1 {
		// Burn a comparison anyway so the two failure paths cost the same.
		_ = bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password))
		return ErrBadAdminCredentials
	}
	if err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)); err != nil {
		return ErrBadAdminCredentials
	}

	sess := &models.AdminSession{Username: username}
	if err := m.store.SaveAdmin(ctx, sess); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = sess
	m.state = AdminAuthenticated
	m.log.Info(ctx, "admin authenticated", "username", username)
	return nil
}

// Logout clears the persisted admin session.
func (m *AdminMachine) Logout(ctx context.Context) error {
	if err := m.store.ClearAdmin(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.state = AdminAnonymous
	m.log.Info(ctx, "admin logged out")
	return nil
}

// State returns the admin machine's current state.
func (m *AdminMachine) State() AdminState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the active admin session, or nil.
func (m *AdminMachine) Session() *models.AdminSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}
