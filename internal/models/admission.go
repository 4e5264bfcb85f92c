package models

// Admission is a confirmed enrollment promoted from an enquiry.
type Admission struct {
	ID              int64   `json:"id"`
	EnquiryID       *int64  `json:"enquiryId,omitempty"`
	FirstName       string  `json:"firstName"`
	MiddleName      string  `json:"middleName,omitempty"`
	LastName        string  `json:"lastName"`
	CertificateName string  `json:"certificateName"`
	DateOfBirth     string  `json:"dateOfBirth,omitempty"`
	Gender          string  `json:"gender,omitempty"`
	FatherName      string  `json:"fatherName,omitempty"`
	MotherName      string  `json:"motherName,omitempty"`
	MobileNumber    string  `json:"mobileNumber"`
	AlternateMobile string  `json:"alternateMobile,omitempty"`
	Email           string  `json:"email,omitempty"`
	Qualification   string  `json:"qualification,omitempty"`
	Category        string  `json:"category,omitempty"`
	Address         string  `json:"address"`
	City            string  `json:"city,omitempty"`
	State           string  `json:"state,omitempty"`
	Pincode         string  `json:"pincode,omitempty"`
	CourseID        *int64  `json:"courseId,omitempty"`
	CourseName      string  `json:"courseName"`
	Timing          string  `json:"timing,omitempty"`
	ReferredBy      string  `json:"referredBy,omitempty"`
	AdmissionDate   string  `json:"admissionDate,omitempty"`
	Photo           *string `json:"photo,omitempty"`
	Signature       *string `json:"signature,omitempty"`
	CreatedAt       string  `json:"createdAt,omitempty"`
}

// FullName joins the name parts that are present.
func (a Admission) FullName() string {
	return Enquiry{FirstName: a.FirstName, MiddleName: a.MiddleName, LastName: a.LastName}.FullName()
}

// DisplayName prefers the certificate name.
func (a Admission) DisplayName() string {
	if a.CertificateName != "" {
		return a.CertificateName
	}
	return a.FullName()
}
