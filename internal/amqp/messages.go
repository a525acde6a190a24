package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried by ledger events.
const (
	OpSave = "save"
	OpVoid = "void"
)

// LedgerEventMessage announces that a transaction changed. It carries only the
// id; consumers read the current transaction from the ledger store.
type LedgerEventMessage struct {
	TransactionID string    `json:"transaction_id"`
	Operation     string    `json:"operation"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates a message stamped with the current time.
func NewLedgerEventMessage(transactionID, operation string) *LedgerEventMessage {
	return &LedgerEventMessage{
		TransactionID: transactionID,
		Operation:     operation,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
