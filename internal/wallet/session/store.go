// Package session persists the active wallet identity and, independently,
// the active admin identity across process restarts.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/asimjadoon/ledgerwallet/internal/logging"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/models"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/repositories/metadata"
)

const (
	walletSessionKey = "wallet_session"
	adminSessionKey  = "admin_session"
)

// Store owns the canonical persisted copy of both sessions. Callers hold
// read-only projections of what Load returns.
//
// Load never surfaces corruption as an error: an unparsable or incomplete
// record is cleared and reported as absent, so callers always get a clean
// "is there a usable session" answer.
type Store struct {
	repo metadata.Repository
	log  logging.Logger
}

func NewStore(repo metadata.Repository, log logging.Logger) *Store {
	return &Store{repo: repo, log: log.With("component", "session-store")}
}

// Load returns the persisted wallet session, or nil if none is stored or the
// stored record is corrupt (in which case it is removed).
func (s *Store) Load(ctx context.Context) (*models.Session, error) {
	raw, err := s.repo.Get(ctx, walletSessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil || !sess.Valid() {
		s.log.Warn(ctx, "discarding corrupt wallet session")
		if clearErr := s.repo.Delete(ctx, walletSessionKey); clearErr != nil {
			return nil, fmt.Errorf("failed to clear corrupt session: %w", clearErr)
		}
		return nil, nil
	}
	return &sess, nil
}

// Save persists sess as the single active wallet session.
func (s *Store) Save(ctx context.Context, sess *models.Session) error {
	if !sess.Valid() {
		return fmt.Errorf("refusing to save incomplete session")
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.repo.Set(ctx, walletSessionKey, raw)
}

// Clear removes the persisted wallet session.
func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, walletSessionKey)
}

// LoadAdmin returns the persisted admin session, or nil if absent/corrupt.
// The admin record is fully independent of the wallet session.
func (s *Store) LoadAdmin(ctx context.Context) (*models.AdminSession, error) {
	raw, err := s.repo.Get(ctx, adminSessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read admin session: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var sess models.AdminSession
	if err := json.Unmarshal(raw, &sess); err != nil || !sess.Valid() {
		s.log.Warn(ctx, "discarding corrupt admin session")
		if clearErr := s.repo.Delete(ctx, adminSessionKey); clearErr != nil {
			return nil, fmt.Errorf("failed to clear corrupt admin session: %w", clearErr)
		}
		return nil, nil
	}
	return &sess, nil
}

// SaveAdmin persists sess as the single active admin session.
func (s *Store) SaveAdmin(ctx context.Context, sess *models.AdminSession) error {
	if !sess.Valid() {
		return fmt.Errorf("refusing to save incomplete admin session")
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode admin session: %w", err)
	}
	return s.repo.Set(ctx, adminSessionKey, raw)
}

// ClearAdmin removes the persisted admin session.
func (s *Store) ClearAdmin(ctx context.Context) error {
	return s.repo.Delete(ctx, adminSessionKey)
}
