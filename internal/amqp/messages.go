package amqp

import (
	"encoding/json"
	"time"

	"tranxledger/internal/core"
)

// TranxRecordedMessage announces that one ledger entry was written locally.
// Consumers read it as a change notification; the ledger itself stays the
// source of truth.
type TranxRecordedMessage struct {
	ID          int64     `json:"id"`
	TID         string    `json:"tid"`
	Direction   string    `json:"direction"`
	Purpose     string    `json:"purpose,omitempty"`
	Amount      string    `json:"amount"`
	Moment      string    `json:"moment"`
	EpochMillis int64     `json:"epoch_milliseconds"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTranxRecordedMessage(t core.Tranx) *TranxRecordedMessage {
	return &TranxRecordedMessage{
		ID:          t.ID,
		TID:         t.TID,
		Direction:   string(t.Direction),
		Purpose:     string(t.Purpose),
		Amount:      t.Amount.String(),
		Moment:      t.Moment.String(),
		EpochMillis: t.Moment.EpochMillis(),
		Timestamp:   time.Now(),
	}
}

func (m *TranxRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TranxRecordedMessageFromJSON(data []byte) (*TranxRecordedMessage, error) {
	var msg TranxRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
