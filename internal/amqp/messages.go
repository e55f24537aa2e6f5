package amqp

import (
	"encoding/json"
	"time"
)

// LedgerSyncedMessage announces that a user's full ledger snapshot has been
// persisted. It carries only counts; consumers fetch the snapshot from the
// store.
type LedgerSyncedMessage struct {
	UserID       string    `json:"user_id"`
	Accounts     int       `json:"accounts"`
	Transactions int       `json:"transactions"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewLedgerSyncedMessage(userID string, accounts, transactions int) *LedgerSyncedMessage {
	return &LedgerSyncedMessage{
		UserID:       userID,
		Accounts:     accounts,
		Transactions: transactions,
		Timestamp:    time.Now(),
	}
}

func (m *LedgerSyncedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerSyncedMessageFromJSON(data []byte) (*LedgerSyncedMessage, error) {
	var msg LedgerSyncedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
