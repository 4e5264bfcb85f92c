package models

// Followup is one logged interaction with an enquirer. Follow-ups are
// append-only; the latest by created_at defines the enquiry status.
type Followup struct {
	ID               int64         `json:"id"`
	EnquiryID        int64         `json:"enquiry_id"`
	FollowupDate     string        `json:"followup_date"`
	Status           EnquiryStatus `json:"status"`
	Notes            *string       `json:"notes,omitempty"`
	NextFollowupDate *string       `json:"next_followup_date,omitempty"`
	HandledBy        string        `json:"handled_by,omitempty"`
	CreatedAt        string        `json:"created_at"`
}
