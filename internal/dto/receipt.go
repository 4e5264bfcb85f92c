package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptIssueRequest names the payment to issue a receipt for.
type ReceiptIssueRequest struct {
	FeeID int64 `json:"feeId"`
}

// ReceiptIssueResponse describes a receipt recorded in the ledger.
type ReceiptIssueResponse struct {
	ReceiptNumber string          `json:"receiptNumber"`
	FeeID         int64           `json:"feeId"`
	StudentID     int64           `json:"studentId"`
	Total         decimal.Decimal `json:"total"`
	IssuedAt      time.Time       `json:"issuedAt"`
	DownloadURL   string          `json:"downloadUrl"`
	ExpiresAt     time.Time       `json:"expiresAt"`
}
