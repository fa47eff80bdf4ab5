package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kontrak pesan saga. Nama field PascalCase persis seperti di wire,
// jangan diubah tanpa versioning.
const (
	TopicPaymentTasks   = "order-payment-tasks"
	TopicPaymentResults = "payment-results"
)

func init() {
	// Amount/Balance keluar sebagai angka JSON, bukan string
	decimal.MarshalJSONWithoutQuotes = true
}

// PaymentTask: value di topic order-payment-tasks, key = orderId (text).
type PaymentTask struct {
	OrderID uuid.UUID       `json:"OrderId"`
	UserID  uuid.UUID       `json:"UserId"`
	Amount  decimal.Decimal `json:"Amount"`
}

// PaymentResult: value di topic payment-results, key = orderId (text).
type PaymentResult struct {
	OrderID       uuid.UUID `json:"OrderId"`
	IsSuccess     bool      `json:"IsSuccess"`
	FailureReason string    `json:"FailureReason"`
}

// Partition key = order_id, supaya semua pesan 1 order maintain urutan.
func PartitionKey(orderID uuid.UUID) []byte { return []byte(orderID.String()) }
