package dto

import "github.com/shopspring/decimal"

// FeeRequest records a payment.
type FeeRequest struct {
	StudentID     int64            `json:"studentId" validate:"required,gt=0"`
	Amount        decimal.Decimal  `json:"amount"`
	PaymentDate   string           `json:"paymentDate" validate:"required"`
	PaymentMethod string           `json:"paymentMethod" validate:"required,oneof=CASH CARD UPI BANK_TRANSFER CHEQUE"`
	LateFee       *decimal.Decimal `json:"lateFee,omitempty"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
	Notes         *string          `json:"notes,omitempty" validate:"omitempty,max=500"`
}
