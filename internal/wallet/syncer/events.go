package syncer

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Topics the engine publishes to. Whatever is currently rendering subscribes
// to these; the engine has no direct knowledge of its observers.
const (
	TopicBalance = "wallet.balance.updated"
	TopicHistory = "wallet.history.updated"
	TopicChain   = "wallet.chain.updated"
	TopicError   = "wallet.sync.error"
)

// BalanceUpdated is published after every successful balance refresh.
type BalanceUpdated struct {
	WalletID  string `json:"wallet_id"`
	Balance   int64  `json:"balance"`
	UTXOCount int    `json:"utxo_count"`
}

// HistoryUpdated is published after every successful history refresh.
type HistoryUpdated struct {
	WalletID string `json:"wallet_id"`
	Count    int    `json:"count"`
}

// ChainUpdated is published after every successful chain/pending refresh.
type ChainUpdated struct {
	Length       int64 `json:"chain_length"`
	PendingCount int   `json:"pending_count"`
}

// SyncError is published when a refresh fails and the engine keeps serving
// the previous cached projection.
type SyncError struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

func publishJSON(pub message.Publisher, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}
	return pub.Publish(topic, message.NewMessage(uuid.NewString(), payload))
}
