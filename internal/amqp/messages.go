package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"nomadprices/internal/core"
)

// PriceSubmittedMessage announces an accepted price entry. It carries the
// whole entry so consumers need no access to the submitting process's store.
type PriceSubmittedMessage struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	ItemName    string          `json:"itemName"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Location    string          `json:"location"`
	Country     string          `json:"country"`
	Comment     string          `json:"comment,omitempty"`
	SubmittedAt time.Time       `json:"submittedAt"`
	SubmittedBy string          `json:"submittedBy"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewPriceSubmittedMessage creates a message for e, stamped now.
func NewPriceSubmittedMessage(e core.PriceEntry) *PriceSubmittedMessage {
	return &PriceSubmittedMessage{
		ID:          e.ID,
		Category:    e.Category,
		ItemName:    e.ItemName,
		Price:       e.Price,
		Currency:    e.Currency,
		Location:    e.Location,
		Country:     e.Country,
		Comment:     e.Comment,
		SubmittedAt: e.SubmittedAt,
		SubmittedBy: e.SubmittedBy,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *PriceSubmittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ToEntry rebuilds the entry carried by the message.
func (m *PriceSubmittedMessage) ToEntry() core.PriceEntry {
	return core.PriceEntry{
		ID:          m.ID,
		Category:    m.Category,
		ItemName:    m.ItemName,
		Price:       m.Price,
		Currency:    m.Currency,
		Location:    m.Location,
		Country:     m.Country,
		Comment:     m.Comment,
		SubmittedAt: m.SubmittedAt,
		SubmittedBy: m.SubmittedBy,
	}
}

// PriceSubmittedMessageFromJSON creates a message from JSON bytes
func PriceSubmittedMessageFromJSON(data []byte) (*PriceSubmittedMessage, error) {
	var msg PriceSubmittedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
