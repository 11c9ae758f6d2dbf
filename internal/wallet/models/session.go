// Package models defines the domain types shared by the wallet client:
// sessions, balance snapshots, transaction records, chain projections and
// profile data. All types are plain data; behavior lives in the services
// that own them.
package models

// Session is the client's local record of the currently authenticated wallet
// identity. It is persisted as a flat JSON object and must stay parseable by
// older builds, so field tags follow the wire naming.
//
// PrivateKey carries base64 key material used by the delegated-signing
// transfer path. It never leaves the process except inside a transfer
// submission.
type Session struct {
	WalletID   string `json:"wallet_id"`
	PublicKey  string `json:"public_key"`
	UserID     string `json:"user_id,omitempty"`
	Email      string `json:"email,omitempty"`
	FullName   string `json:"full_name,omitempty"`
	CNIC       string `json:"cnic,omitempty"`
	PrivateKey string `json:"private_key,omitempty"`

	// EmailStale marks the cached email as outdated after a confirmed
	// email change, until the next profile fetch refreshes it.
	EmailStale bool `json:"-"`
}

// Valid reports whether the session carries the identity fields required to
// act as a wallet. Sessions loaded from disk that fail this check are treated
// as corrupt.
func (s *Session) Valid() bool {
	return s != nil && s.WalletID != "" && s.PublicKey != ""
}

// AdminSession is the independent admin identity. It shares nothing with the
// wallet Session and lives under its own storage key.
type AdminSession struct {
	Username string `json:"username"`
}

func (s *AdminSession) Valid() bool {
	return s != nil && s.Username != ""
}
