package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID          uuid.UUID       `json:"Id"`
	UserID      uuid.UUID       `json:"UserId"`
	Amount      decimal.Decimal `json:"Amount"`
	Description string          `json:"Description"`
	Status      Status          `json:"Status"`
	CreatedAt   time.Time       `json:"CreatedAt"`
	UpdatedAt   time.Time       `json:"UpdatedAt"`
}

// OrderOutbox: baris "pesan untuk dikirim", selalu dibuat satu transaksi
// dengan order-nya. IsSent cuma flip false->true setelah broker ack.
type OrderOutbox struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Payload   []byte
	IsSent    bool
	CreatedAt time.Time
}
