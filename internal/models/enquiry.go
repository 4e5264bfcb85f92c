package models

import (
	"strconv"
	"strings"
)

// Enquiry is a prospective student's first contact with the institute.
type Enquiry struct {
	ID              int64         `json:"id"`
	FirstName       string        `json:"firstName"`
	MiddleName      string        `json:"middleName,omitempty"`
	LastName        string        `json:"lastName"`
	MobileNumber    string        `json:"mobileNumber"`
	AlternateMobile string        `json:"alternateMobile,omitempty"`
	Email           string        `json:"email,omitempty"`
	CourseName      string        `json:"courseName"`
	Category        string        `json:"category,omitempty"`
	Qualification   string        `json:"qualification,omitempty"`
	EnquiryDate     string        `json:"enquiryDate,omitempty"`
	CreatedAt       string        `json:"createdAt,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
	NextFollowup    *string       `json:"nextFollowup,omitempty"`
	CurrentStatus   EnquiryStatus `json:"currentStatus"`
}

// FullName joins the name parts that are present.
func (e Enquiry) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.FirstName, e.MiddleName, e.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// IDString renders the identifier for search and display.
func (e Enquiry) IDString() string {
	return strconv.FormatInt(e.ID, 10)
}

// ReconciledEnquiry is an enquiry enriched with the state derived from its
// follow-up history.
type ReconciledEnquiry struct {
	Enquiry
	LatestFollowupDate *string `json:"latestFollowupDate"`
	LatestNotes        *string `json:"latestNotes"`
	DaysOverdue        int     `json:"daysOverdue"`
	IsOverdue          bool    `json:"isOverdue"`
	FollowupCount      int     `json:"followupCount"`
}

// EnquiryFilter carries list view search parameters.
type EnquiryFilter struct {
	Search   string
	Status   string
	Page     int
	PageSize int
	// Key is the fingerprint of the filter the client's page number belongs to.
	Key string
}
