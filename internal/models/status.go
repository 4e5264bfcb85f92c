package models

import "strings"

// EnquiryStatus is the disposition of an enquiry.
type EnquiryStatus string

// Supported enquiry statuses.
const (
	EnquiryStatusPending       EnquiryStatus = "PENDING"
	EnquiryStatusInterested    EnquiryStatus = "INTERESTED"
	EnquiryStatusNotInterested EnquiryStatus = "NOT_INTERESTED"
	EnquiryStatusAdmitted      EnquiryStatus = "ADMITTED"
)

// StatusFilterAll disables status filtering in list views.
const StatusFilterAll = "ALL"

// EnquiryStatuses lists statuses in display order.
var EnquiryStatuses = []EnquiryStatus{
	EnquiryStatusPending,
	EnquiryStatusInterested,
	EnquiryStatusNotInterested,
	EnquiryStatusAdmitted,
}

// Valid reports whether s is a known status.
func (s EnquiryStatus) Valid() bool {
	for _, known := range EnquiryStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label renders the status for humans, e.g. "Not Interested".
func (s EnquiryStatus) Label() string {
	parts := strings.Split(strings.ToLower(string(s)), "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

// Supported payment methods.
const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
)

// Label renders the method for receipts.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodUPI:
		return "UPI"
	case PaymentMethodBankTransfer:
		return "Bank Transfer"
	case "":
		return ""
	default:
		return EnquiryStatus(m).Label()
	}
}
