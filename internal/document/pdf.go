package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 180.0
	labelWidth = 60.0
	lineHeight = 6.0
)

// pdfEpoch stamps documents that carry no generation time so output
// stays reproducible.
var pdfEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// RenderPDF renders the document as an A4 PDF using core fonts. Remote
// images are not fetched; their slots print as labelled boxes.
func RenderPDF(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetCatalogSort(true)
	created := doc.GeneratedAt
	if created.IsZero() {
		created = pdfEpoch
	}
	pdf.SetCreationDate(created)
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Header.Name, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string {
		return tr(strings.ReplaceAll(s, RupeeSymbol, "Rs. "))
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(31, 58, 147)
	pdf.CellFormat(0, 8, text(doc.Header.Name), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, text(doc.Header.Address), "", 1, "C", false, 0, "")
	contact := fmt.Sprintf("Phone: %s | Email: %s", doc.Header.Phone, doc.Header.Email)
	if doc.Header.Website != "" {
		contact += " | " + doc.Header.Website
	}
	pdf.CellFormat(0, 5, text(contact), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, text("Center Code: "+doc.Header.CenterCode), "B", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, text(strings.ToUpper(doc.Title)), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	if len(doc.Meta) > 0 {
		pdf.SetFont("Arial", "", 9)
		width := pageWidth / float64(len(doc.Meta))
		for _, m := range doc.Meta {
			pdf.CellFormat(width, 6, text(m.Label+": "+m.Value), "", 0, "L", false, 0, "")
		}
		pdf.Ln(8)
	}

	if len(doc.Images) > 0 {
		drawImages(pdf, doc.Images, text)
	}

	pdf.SetFillColor(238, 241, 250)
	for _, section := range doc.Sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, text(section.Heading()), "", 1, "L", true, 0, "")
		for _, field := range section.Fields {
			value := text(field.Value)
			pdf.SetFont("Arial", "", 10)
			lines := pdf.SplitLines([]byte(value), pageWidth-labelWidth-2)
			rows := len(lines)
			if rows == 0 {
				rows = 1
			}
			height := lineHeight * float64(rows)
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(labelWidth, height, text(field.Label), "1", 0, "L", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(pageWidth-labelWidth, lineHeight, value, "1", "L", false)
		}
		pdf.Ln(3)
	}

	if doc.Totals != nil {
		x := 15 + pageWidth/2
		pdf.SetFont("Arial", "", 10)
		for _, row := range doc.Totals.Rows {
			pdf.SetX(x)
			pdf.CellFormat(pageWidth/4, 6, text(row.Label), "B", 0, "L", false, 0, "")
			pdf.CellFormat(pageWidth/4, 6, text(row.Value), "B", 1, "R", false, 0, "")
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.SetX(x)
		pdf.CellFormat(pageWidth/4, 7, text(doc.Totals.Label), "T", 0, "L", false, 0, "")
		pdf.CellFormat(pageWidth/4, 7, text(doc.Totals.Value), "T", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	if len(doc.Notices) > 0 {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(0, 5, "Important:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		for i, notice := range doc.Notices {
			pdf.MultiCell(0, 4, text(fmt.Sprintf("%d. %s", i+1, notice)), "", "L", false)
		}
	}

	if len(doc.Signatures) > 0 {
		pdf.Ln(18)
		width := pageWidth / float64(len(doc.Signatures))
		pdf.SetFont("Arial", "", 9)
		for _, label := range doc.Signatures {
			pdf.CellFormat(width-6, 5, text(label), "T", 0, "C", false, 0, "")
			pdf.CellFormat(6, 5, "", "", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawImages(pdf *gofpdf.Fpdf, slots []ImageSlot, text func(string) string) {
	x := 15 + pageWidth
	_, y := pdf.GetXY()
	tallest := 0.0
	for i := len(slots) - 1; i >= 0; i-- {
		slot := slots[i]
		w, h := 35.0, 40.0
		if slot.Label == SignatureLabel {
			w, h = 50.0, 20.0
		}
		x -= w
		if !embedImage(pdf, fmt.Sprintf("slot-%d", i), slot.Source, x, y, w, h) {
			pdf.SetDashPattern([]float64{1, 1}, 0)
			pdf.Rect(x, y, w, h, "D")
			pdf.SetDashPattern([]float64{}, 0)
			pdf.SetFont("Arial", "", 7)
			pdf.SetXY(x+1, y+h/2-4)
			pdf.MultiCell(w-2, 4, text(slot.Placeholder), "", "C", false)
		}
		x -= 5
		if h > tallest {
			tallest = h
		}
	}
	pdf.SetXY(15, y+tallest+4)
}

// embedImage draws inline PNG or JPEG data. Anything else, including
// undecodable data, reports false.
func embedImage(pdf *gofpdf.Fpdf, name, source string, x, y, w, h float64) bool {
	meta, payload, ok := strings.Cut(source, ",")
	if !ok || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
		return false
	}
	var imageType string
	switch strings.TrimSuffix(strings.TrimPrefix(meta, "data:image/"), ";base64") {
	case "png":
		imageType = "PNG"
	case "jpeg", "jpg":
		imageType = "JPG"
	default:
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return false
	}
	info := pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(raw))
	if info == nil || !pdf.Ok() {
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions(name, x, y, w, h, false, gofpdf.ImageOptions{ImageType: imageType}, 0, "")
	return true
}
