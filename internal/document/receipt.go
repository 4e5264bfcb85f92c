package document

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/techskill-console/internal/models"
)

var receiptNotices = []string{
	"Fees once paid are non-refundable and non-transferable.",
	"Please retain this receipt for future reference.",
	"This is a computer generated receipt.",
}

// ReceiptInput is a payment plus the student details printed with it.
type ReceiptInput struct {
	Payment      models.FeePayment
	StudentID    int64
	StudentName  string
	MobileNumber string
	CourseName   string
	Number       string
	IssuedAt     time.Time
}

// ReceiptTotal is amount + lateFee - discount.
func ReceiptTotal(amount, lateFee, discount decimal.Decimal) decimal.Decimal {
	return amount.Add(lateFee).Sub(discount)
}

// FeeReceipt lays out a payment receipt. Late fee and discount rows are
// only present when positive.
func FeeReceipt(in ReceiptInput, profile models.InstituteProfile, loc *time.Location) Document {
	if loc == nil {
		loc = time.UTC
	}
	p := in.Payment
	lateFee := p.LateFeeValue()
	discount := p.DiscountValue()

	student := []Field{
		{Label: "Student Name", Value: orDash(in.StudentName)},
		{Label: "Student ID", Value: fmt.Sprintf("%d", in.StudentID)},
		{Label: "Mobile Number", Value: orDash(in.MobileNumber)},
		{Label: "Course", Value: orDash(in.CourseName)},
	}
	payment := []Field{
		{Label: "Payment Date", Value: orDash(models.FormatDisplayDate(p.PaymentDate, loc))},
		{Label: "Payment Method", Value: orDash(p.PaymentMethod.Label())},
	}
	if p.Notes != nil && *p.Notes != "" {
		payment = append(payment, Field{Label: "Remarks", Value: *p.Notes})
	}

	rows := []Field{{Label: "Amount", Value: FormatCurrency(p.Amount)}}
	if lateFee.IsPositive() {
		rows = append(rows, Field{Label: "Late Fee", Value: FormatCurrency(lateFee)})
	}
	if discount.IsPositive() {
		rows = append(rows, Field{Label: "Discount", Value: "- " + FormatCurrency(discount)})
	}

	return Document{
		Kind:   KindFeeReceipt,
		Title:  "Fee Receipt",
		Header: HeaderFrom(profile),
		Meta: []Field{
			{Label: "Receipt No.", Value: in.Number},
			{Label: "Date", Value: in.IssuedAt.In(loc).Format("02 Jan 2006 15:04")},
			{Label: "Center Code", Value: profile.CenterCode},
		},
		Sections: numbered(
			[]string{"Student Details", "Payment Details"},
			[][]Field{student, payment},
		),
		Totals: &Totals{
			Rows:  rows,
			Label: "Total Paid",
			Value: FormatCurrency(ReceiptTotal(p.Amount, lateFee, discount)),
		},
		Notices:     append([]string(nil), receiptNotices...),
		Signatures:  []string{"Authorised Signatory"},
		GeneratedAt: in.IssuedAt,
	}
}

// NumberSource supplies randomness for receipt numbers. *rand.Rand
// satisfies it.
type NumberSource interface {
	Intn(n int) int
}

// Issuer stamps receipts with a random 8-digit number and the current
// time. Both sources are injectable so tests can pin them.
type Issuer struct {
	mu  sync.Mutex
	src NumberSource
	now func() time.Time
}

// NewIssuer builds an Issuer. Nil arguments select a time-seeded source
// and the wall clock.
func NewIssuer(src NumberSource, now func() time.Time) *Issuer {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{src: src, now: now}
}

// NextNumber returns a number in [10000000, 99999999].
func (i *Issuer) NextNumber() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return fmt.Sprintf("%08d", 10000000+i.src.Intn(90000000))
}

// Now returns the issue time.
func (i *Issuer) Now() time.Time {
	return i.now()
}

// Stamp fills the receipt number and issue time of in.
func (i *Issuer) Stamp(in ReceiptInput) ReceiptInput {
	in.Number = i.NextNumber()
	in.IssuedAt = i.Now()
	return in
}
