package models

import "github.com/shopspring/decimal"

// FeePayment is an append-only ledger entry recorded by the backend.
type FeePayment struct {
	ID            int64            `json:"id"`
	StudentID     int64            `json:"student_id"`
	Amount        decimal.Decimal  `json:"amount"`
	PaymentDate   string           `json:"payment_date"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	LateFee       *decimal.Decimal `json:"late_fee,omitempty"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	CreatedAt     string           `json:"created_at,omitempty"`
}

// LateFeeValue returns the late fee or zero.
func (p FeePayment) LateFeeValue() decimal.Decimal {
	if p.LateFee == nil {
		return decimal.Zero
	}
	return *p.LateFee
}

// DiscountValue returns the discount or zero.
func (p FeePayment) DiscountValue() decimal.Decimal {
	if p.Discount == nil {
		return decimal.Zero
	}
	return *p.Discount
}

// Total is amount + late fee - discount.
func (p FeePayment) Total() decimal.Decimal {
	return p.Amount.Add(p.LateFeeValue()).Sub(p.DiscountValue())
}

// FeeSummary aggregates a student's payments against the course fee.
type FeeSummary struct {
	StudentID     int64           `json:"studentId"`
	StudentName   string          `json:"studentName"`
	CourseName    string          `json:"courseName"`
	CourseFee     decimal.Decimal `json:"courseFee"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	TotalCredited decimal.Decimal `json:"totalCredited"`
	TotalLateFee  decimal.Decimal `json:"totalLateFee"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	Balance       decimal.Decimal `json:"balance"`
	Payments      []FeePayment    `json:"payments"`
}
