package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/techskill-console/internal/document"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

// Printable document formats.
const (
	DocumentFormatHTML = "html"
	DocumentFormatPDF  = "pdf"
)

// renderDocument encodes doc as HTML or PDF. basename becomes the file
// name without extension.
func renderDocument(doc document.Document, format, basename string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = DocumentFormatHTML
	}

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case DocumentFormatHTML:
		payload, err = document.RenderHTML(doc)
		contentType = "text/html; charset=utf-8"
	case DocumentFormatPDF:
		payload, err = document.RenderPDF(doc)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported document format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render document")
	}
	return &ExportFile{
		FileName:    fmt.Sprintf("%s.%s", sanitizeFilename(basename), format),
		ContentType: contentType,
		Data:        payload,
	}, nil
}
