// Package document builds printable admission forms and fee receipts.
//
// Builders turn records into a typed Document tree; renderers turn a
// Document into HTML or PDF bytes. Both stages are pure: identical inputs
// produce identical output.
package document

import (
	"fmt"
	"time"
)

// Kind identifies the document template.
type Kind string

// Supported document kinds.
const (
	KindAdmissionForm Kind = "admission_form"
	KindFeeReceipt    Kind = "fee_receipt"
)

// Document is the structured content of a printable artifact.
type Document struct {
	Kind        Kind
	Title       string
	Header      Header
	Meta        []Field
	Sections    []Section
	Images      []ImageSlot
	Totals      *Totals
	Notices     []string
	Signatures  []string
	GeneratedAt time.Time
}

// Header is the institute branding block.
type Header struct {
	Name       string
	Address    string
	Phone      string
	Email      string
	Website    string
	LogoURL    string
	CenterCode string
}

// Section is a numbered group of label/value rows.
type Section struct {
	Number int
	Title  string
	Fields []Field
}

// Heading renders the numbered title, e.g. "1 · Personal Details".
func (s Section) Heading() string {
	return fmt.Sprintf("%d · %s", s.Number, s.Title)
}

// Field is one label/value row.
type Field struct {
	Label string
	Value string
}

// ImageSlot is a photo or signature box. Source is empty when no preview
// is available, in which case Placeholder is shown instead.
type ImageSlot struct {
	Label       string
	Source      string
	Placeholder string
}

// Present reports whether the slot has an image.
func (s ImageSlot) Present() bool {
	return s.Source != ""
}

// Totals is the computed money block of a receipt.
type Totals struct {
	Rows  []Field
	Label string
	Value string
}

func numbered(titles []string, fields [][]Field) []Section {
	sections := make([]Section, 0, len(titles))
	for i, title := range titles {
		sections = append(sections, Section{Number: i + 1, Title: title, Fields: fields[i]})
	}
	return sections
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
