package models

import "time"

// TxStatus is the lifecycle state of a transaction as seen by this client.
type TxStatus string

const (
	// TxPending is assigned to optimistic local records and to server rows
	// not yet mined into a block.
	TxPending TxStatus = "pending"
	// TxConfirmed is the terminal state reported by the server.
	TxConfirmed TxStatus = "confirmed"
)

// TransactionRecord is one row of wallet history. Records created locally at
// submission time are pending placeholders; the next history poll replaces
// them with server truth (or drops them if the server rejected the transfer).
type TransactionRecord struct {
	ID         string    `json:"tx_id"`
	SenderID   string    `json:"sender_wallet_id"`
	ReceiverID string    `json:"receiver_wallet_id"`
	Amount     int64     `json:"amount"`
	Type       string    `json:"tx_type,omitempty"`
	Note       string    `json:"note,omitempty"`
	Status     TxStatus  `json:"status"`
	Timestamp  time.Time `json:"-"`
}

// TransactionDetails is the full record for a single transaction, including
// the base64 signature material the server exposes for audit display.
type TransactionDetails struct {
	ID              string `json:"tx_id"`
	SenderID        string `json:"sender_wallet_id"`
	ReceiverID      string `json:"receiver_wallet_id"`
	Amount          int64  `json:"amount"`
	Type            string `json:"tx_type"`
	Status          string `json:"status"`
	Note            string `json:"note"`
	IPAddress       string `json:"ip_address"`
	SenderPubBase64 string `json:"sender_pub_base64"`
	SignatureBase64 string `json:"signature_base64"`
	CreatedAt       string `json:"created_at"`
}

// PendingPoolEntry is a transfer accepted by the server but not yet mined.
// The wire exposes pending transaction ids; entries are hydrated from the
// details endpoint before display.
type PendingPoolEntry struct {
	TxID       string
	SenderID   string
	ReceiverID string
	Amount     int64
	Note       string
}
