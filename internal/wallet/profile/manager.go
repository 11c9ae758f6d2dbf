// Package profile manages the account surface around a wallet: the profile
// record, saved beneficiaries, and the two-step email change challenge.
package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/asimjadoon/ledgerwallet/internal/logging"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/api"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/auth"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/models"
)

var (
	// ErrEmptyName means a beneficiary was added without a display name.
	ErrEmptyName = errors.New("beneficiary name is required")
	// ErrEmptyWalletID means a beneficiary was added without a wallet id.
	ErrEmptyWalletID = errors.New("beneficiary wallet id is required")
	// ErrNoEmailChange means the confirm step was called without a
	// preceding request, or with a different email than requested.
	ErrNoEmailChange = errors.New("no email change outstanding for that address")
)

// Manager is the profile and beneficiary service for the authenticated user.
// Email-change state flows through the auth machine so the session's cached
// email is flagged stale the moment the server accepts the new address.
type Manager struct {
	client  api.Client
	machine *auth.Machine
	log     logging.Logger

	pendingEmail string
}

// NewManager builds a profile manager bound to the auth machine's session.
func NewManager(client api.Client, machine *auth.Machine, log logging.Logger) *Manager {
	return &Manager{client: client, machine: machine, log: log.With("component", "profile")}
}

// Get fetches the profile for the session's wallet. A successful fetch also
// refreshes the session's cached email, clearing any staleness left by a
// confirmed email change.
func (m *Manager) Get(ctx context.Context) (*models.Profile, error) {
	sess := m.machine.Session()
	if sess == nil {
		return nil, auth.ErrNotAuthenticated
	}
	p, err := m.client.GetProfile(ctx, sess.WalletID)
	if err != nil {
		return nil, err
	}
	if err := m.machine.RefreshEmail(ctx, p.Email); err != nil {
		m.log.Warn(ctx, "failed to persist refreshed email", "error", err)
	}
	return p, nil
}

// Update sets the display name and zakat flag on the server record.
func (m *Manager) Update(ctx context.Context, fullName string, zakatEnabled bool) error {
	sess := m.machine.Session()
	if sess == nil {
		return auth.ErrNotAuthenticated
	}
	return m.client.UpdateProfile(ctx, sess.UserID, fullName, zakatEnabled)
}

// Beneficiaries lists the saved recipients for the current user.
func (m *Manager) Beneficiaries(ctx context.Context) ([]models.Beneficiary, error) {
	sess := m.machine.Session()
	if sess == nil {
		return nil, auth.ErrNotAuthenticated
	}
	return m.client.ListBeneficiaries(ctx, sess.UserID)
}

// AddBeneficiary saves a recipient wallet under a display name.
func (m *Manager) AddBeneficiary(ctx context.Context, walletID, name string) error {
	sess := m.machine.Session()
	if sess == nil {
		return auth.ErrNotAuthenticated
	}
	if strings.TrimSpace(walletID) == "" {
		return ErrEmptyWalletID
	}
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return m.client.AddBeneficiary(ctx, sess.UserID, walletID, name)
}

// RemoveBeneficiary deletes a saved recipient by id.
func (m *Manager) RemoveBeneficiary(ctx context.Context, beneficiaryID string) error {
	if m.machine.Session() == nil {
		return auth.ErrNotAuthenticated
	}
	return m.client.RemoveBeneficiary(ctx, beneficiaryID)
}

// RequestEmailChange starts the email change challenge: the server sends an
// OTP to the new address. The new address is validated locally first.
func (m *Manager) RequestEmailChange(ctx context.Context, newEmail string) error {
	sess := m.machine.Session()
	if sess == nil {
		return auth.ErrNotAuthenticated
	}
	if err := auth.ValidateEmail(newEmail); err != nil {
		return err
	}
	if err := m.client.RequestEmailChange(ctx, sess.UserID, newEmail); err != nil {
		return err
	}
	m.pendingEmail = newEmail
	return nil
}

// ConfirmEmailChange completes the challenge with the emailed code. On
// success the session's cached email is marked stale until the next profile
// fetch replaces it with server truth.
func (m *Manager) ConfirmEmailChange(ctx context.Context, newEmail, code string) error {
	sess := m.machine.Session()
	if sess == nil {
		return auth.ErrNotAuthenticated
	}
	if m.pendingEmail == "" || m.pendingEmail != newEmail {
		return ErrNoEmailChange
	}
	if err := m.client.ConfirmEmailChange(ctx, sess.UserID, newEmail, code); err != nil {
		return err
	}
	m.pendingEmail = ""
	m.machine.MarkEmailStale()
	m.log.Info(ctx, "email change confirmed", "user", sess.UserID)
	return nil
}
