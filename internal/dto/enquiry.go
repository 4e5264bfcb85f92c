package dto

import (
	"github.com/noah-isme/techskill-console/internal/models"
)

// EnquiryRequest is the create/update payload for an enquiry.
type EnquiryRequest struct {
	FirstName       string  `json:"firstName" validate:"required,max=100"`
	MiddleName      string  `json:"middleName,omitempty" validate:"max=100"`
	LastName        string  `json:"lastName" validate:"required,max=100"`
	MobileNumber    string  `json:"mobileNumber" validate:"required,numeric,min=10,max=15"`
	AlternateMobile string  `json:"alternateMobile,omitempty" validate:"omitempty,numeric,min=10,max=15"`
	Email           string  `json:"email,omitempty" validate:"omitempty,email"`
	CourseName      string  `json:"courseName" validate:"required"`
	Category        string  `json:"category,omitempty"`
	Qualification   string  `json:"qualification,omitempty"`
	EnquiryDate     string  `json:"enquiryDate,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	NextFollowup    *string `json:"nextFollowup,omitempty"`
}

// FollowupRequest logs one interaction with an enquirer.
type FollowupRequest struct {
	FollowupDate     string  `json:"followup_date" validate:"required"`
	Status           string  `json:"status" validate:"required,oneof=PENDING INTERESTED NOT_INTERESTED ADMITTED"`
	Notes            *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	NextFollowupDate *string `json:"next_followup_date,omitempty"`
}

// FollowupPayload is what the backend's follow-up endpoint accepts.
type FollowupPayload struct {
	EnquiryID        int64   `json:"enquiry_id"`
	FollowupDate     string  `json:"followup_date"`
	Status           string  `json:"status"`
	Notes            *string `json:"notes,omitempty"`
	NextFollowupDate *string `json:"next_followup_date,omitempty"`
	HandledBy        string  `json:"handled_by,omitempty"`
}

// EnquiryListResponse is one page of the reconciled enquiry list. Key is
// the fingerprint of the applied search and status; clients echo it back
// so a changed filter restarts at page one.
type EnquiryListResponse struct {
	Items      []models.ReconciledEnquiry `json:"items"`
	Pagination models.Pagination          `json:"pagination"`
	Key        string                     `json:"key"`
}

// EnquiryDetailResponse is a reconciled enquiry with its follow-up history,
// newest first.
type EnquiryDetailResponse struct {
	Enquiry   models.ReconciledEnquiry `json:"enquiry"`
	Followups []models.Followup        `json:"followups"`
}
