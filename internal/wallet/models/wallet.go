package models

// UTXO is a discrete spendable amount tracked by the server. It is a cached
// fact, immutable once observed; the whole set is replaced on every balance
// fetch rather than patched incrementally.
type UTXO struct {
	ID     string `json:"utxo_id"`
	Amount int64  `json:"amount"`
}

// Snapshot is the wallet's balance view: the UTXO set and the balance the
// server reported alongside it. The two are fetched and replaced together so
// readers never see them disagree.
type Snapshot struct {
	WalletID string
	Balance  int64
	UTXOs    []UTXO
}

// SumUTXOs returns the sum of the snapshot's UTXO amounts.
func (s *Snapshot) SumUTXOs() int64 {
	var total int64
	for _, u := range s.UTXOs {
		total += u.Amount
	}
	return total
}

// Consistent reports whether balance equals the UTXO sum. A snapshot that
// fails this check must not be published.
func (s *Snapshot) Consistent() bool {
	return s.Balance == s.SumUTXOs()
}

// WalletKeys is the result of creating a fresh wallet on the server.
type WalletKeys struct {
	WalletID   string `json:"wallet_id"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// Registration is the identity returned by a completed signup.
type Registration struct {
	UserID    string `json:"user_id"`
	WalletID  string `json:"wallet_id"`
	PublicKey string `json:"public_key"`
}

// LoginResult bundles the session identity returned by a credentialed login
// with the balance the server reported at that moment.
type LoginResult struct {
	Session Session
	Balance int64
}

// ZakatPool is the balance of the system zakat pool wallet.
type ZakatPool struct {
	Wallet  string `json:"zakat_pool_wallet"`
	Balance int64  `json:"balance"`
}
