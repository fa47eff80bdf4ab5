package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Account struct {
	UserID  uuid.UUID       `json:"UserId"`
	Balance decimal.Decimal `json:"Balance"`
}

// PaymentInbox: transactional inbox. Primary key message_key = orderId (text)
// dari Kafka; keberadaan baris berarti task ini sudah diterima, apapun nilai
// processed-nya.
type PaymentInbox struct {
	MessageKey string
	OrderID    uuid.UUID
	UserID     uuid.UUID
	Amount     decimal.Decimal
	Processed  bool
	CreatedAt  time.Time
}

// PaymentOutbox: hasil debit (sukses/gagal), kontrak atomicity sama dengan
// order_outbox.
type PaymentOutbox struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	IsSuccess bool
	Payload   []byte
	IsSent    bool
	CreatedAt time.Time
}
