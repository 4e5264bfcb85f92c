package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IssuedReceipt is the console's ledger row for a generated fee receipt.
type IssuedReceipt struct {
	ID            string          `db:"id" json:"id"`
	ReceiptNumber string          `db:"receipt_number" json:"receiptNumber"`
	FeeID         int64           `db:"fee_id" json:"feeId"`
	StudentID     int64           `db:"student_id" json:"studentId"`
	Total         decimal.Decimal `db:"total" json:"total"`
	FilePath      string          `db:"file_path" json:"-"`
	IssuedBy      string          `db:"issued_by" json:"issuedBy"`
	IssuedAt      time.Time       `db:"issued_at" json:"issuedAt"`
}
