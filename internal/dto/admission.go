package dto

// AdmissionRequest is the create/update payload for an admission. Photo
// and signature files travel as multipart parts; PhotoPreview and
// SignaturePreview carry data URIs for the printable form preview only.
type AdmissionRequest struct {
	EnquiryID       *int64 `json:"enquiryId,omitempty" validate:"omitempty,gt=0"`
	FirstName       string `json:"firstName" validate:"required,max=100"`
	MiddleName      string `json:"middleName,omitempty" validate:"max=100"`
	LastName        string `json:"lastName" validate:"required,max=100"`
	CertificateName string `json:"certificateName" validate:"required,max=150"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	Gender          string `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	FatherName      string `json:"fatherName,omitempty"`
	MotherName      string `json:"motherName,omitempty"`
	MobileNumber    string `json:"mobileNumber" validate:"required,numeric,min=10,max=15"`
	AlternateMobile string `json:"alternateMobile,omitempty" validate:"omitempty,numeric,min=10,max=15"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Qualification   string `json:"qualification,omitempty"`
	Category        string `json:"category,omitempty"`
	Address         string `json:"address" validate:"required"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	Pincode         string `json:"pincode,omitempty" validate:"omitempty,numeric,len=6"`
	CourseID        *int64 `json:"courseId,omitempty" validate:"omitempty,gt=0"`
	CourseName      string `json:"courseName" validate:"required"`
	Timing          string `json:"timing,omitempty"`
	ReferredBy      string `json:"referredBy,omitempty"`
	AdmissionDate   string `json:"admissionDate,omitempty"`

	PhotoPreview     string `json:"photoPreview,omitempty"`
	SignaturePreview string `json:"signaturePreview,omitempty"`
}
