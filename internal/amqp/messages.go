package amqp

import (
	"encoding/json"
	"time"
)

// TransactionRecordedMessage is the compact event published after a
// transaction is appended. It carries just enough for the digest worker to
// know which month changed; the worker re-reads the store for the details.
type TransactionRecordedMessage struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	AmountUnits int64     `json:"amount_units"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(id int64, txType string, amountUnits int64, year, month int) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		ID:          id,
		Type:        txType,
		AmountUnits: amountUnits,
		Year:        year,
		Month:       month,
		Timestamp:   time.Now(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
