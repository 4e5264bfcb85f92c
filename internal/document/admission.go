package document

import (
	"fmt"
	"time"

	"github.com/noah-isme/techskill-console/internal/models"
)

// Image slot labels on the admission form.
const (
	PhotoLabel           = "Passport Photo"
	SignatureLabel       = "Applicant Signature"
	PhotoPlaceholder     = "Affix passport size photograph"
	SignaturePlaceholder = "Signature of applicant"
)

// Declaration is the fixed statement signed by the applicant.
const Declaration = "I hereby declare that the information furnished above is true and correct to the best of my knowledge. " +
	"I agree to abide by the rules and regulations of the institute."

var admissionNotices = []string{
	"Fees once paid are non-refundable and non-transferable.",
	"Admission is subject to verification of the documents submitted.",
	"The institute reserves the right to change batch timings with prior notice.",
}

// Images carries the previews placed on an admission form. Values are
// absolute URLs or data URIs; empty means no preview.
type Images struct {
	Photo     string
	Signature string
}

// AdmissionForm lays out an admission record as a printable form.
func AdmissionForm(a models.Admission, profile models.InstituteProfile, images Images, loc *time.Location) Document {
	personal := []Field{
		{Label: "Full Name", Value: orDash(a.FullName())},
		{Label: "Name on Certificate", Value: orDash(a.DisplayName())},
		{Label: "Date of Birth", Value: orDash(models.FormatDisplayDate(a.DateOfBirth, loc))},
		{Label: "Gender", Value: orDash(a.Gender)},
		{Label: "Father's Name", Value: orDash(a.FatherName)},
		{Label: "Mother's Name", Value: orDash(a.MotherName)},
		{Label: "Mobile Number", Value: orDash(a.MobileNumber)},
		{Label: "Alternate Mobile", Value: orDash(a.AlternateMobile)},
		{Label: "Email", Value: orDash(a.Email)},
		{Label: "Qualification", Value: orDash(a.Qualification)},
		{Label: "Category", Value: orDash(a.Category)},
	}
	address := []Field{
		{Label: "Address", Value: orDash(a.Address)},
		{Label: "City", Value: orDash(a.City)},
		{Label: "State", Value: orDash(a.State)},
		{Label: "Pincode", Value: orDash(a.Pincode)},
	}
	course := []Field{
		{Label: "Course", Value: orDash(a.CourseName)},
		{Label: "Batch Timing", Value: orDash(a.Timing)},
		{Label: "Admission Date", Value: orDash(models.FormatDisplayDate(a.AdmissionDate, loc))},
		{Label: "Referred By", Value: orDash(a.ReferredBy)},
	}
	if a.EnquiryID != nil {
		course = append(course, Field{Label: "Enquiry Ref.", Value: fmt.Sprintf("ENQ-%06d", *a.EnquiryID)})
	}
	declaration := []Field{
		{Label: "Statement", Value: Declaration},
		{Label: "Applicant", Value: orDash(a.DisplayName())},
	}

	return Document{
		Kind:   KindAdmissionForm,
		Title:  "Admission Form",
		Header: HeaderFrom(profile),
		Meta: []Field{
			{Label: "Form No.", Value: formNumber(a.ID)},
			{Label: "Admission Date", Value: orDash(models.FormatDisplayDate(a.AdmissionDate, loc))},
			{Label: "Center Code", Value: profile.CenterCode},
		},
		Sections: numbered(
			[]string{"Personal Details", "Address", "Course Details", "Declaration"},
			[][]Field{personal, address, course, declaration},
		),
		Images: []ImageSlot{
			imageSlot(PhotoLabel, images.Photo, PhotoPlaceholder),
			imageSlot(SignatureLabel, images.Signature, SignaturePlaceholder),
		},
		Notices:    append([]string(nil), admissionNotices...),
		Signatures: []string{"Signature of Applicant", "Signature of Parent / Guardian", "Authorised Signatory"},
	}
}

func formNumber(id int64) string {
	if id <= 0 {
		return "DRAFT"
	}
	return fmt.Sprintf("ADM-%06d", id)
}

func imageSlot(label, source, placeholder string) ImageSlot {
	return ImageSlot{Label: label, Source: source, Placeholder: placeholder}
}
