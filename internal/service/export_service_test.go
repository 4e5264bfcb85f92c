package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
	"github.com/noah-isme/techskill-console/pkg/export"
)

func sampleDataset() export.Dataset {
	return export.Dataset{
		Headers: []string{"ID", "Name"},
		Rows: []map[string]string{
			{"ID": "5", "Name": "Ravi Kumar"},
			{"ID": "6", "Name": "Sita, Devi"},
		},
	}
}

func newExportServiceForTest() *ExportService {
	svc := NewExportService(nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestExportServiceRenderCSV(t *testing.T) {
	file, err := newExportServiceForTest().Render(sampleDataset(), "CSV", "Enquiries", "enquiries")
	require.NoError(t, err)
	assert.Equal(t, "enquiries_20240315_093000.csv", file.FileName)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "ID,Name\n5,Ravi Kumar\n6,\"Sita, Devi\"\n", string(file.Data))
}

func TestExportServiceRenderPDF(t *testing.T) {
	file, err := newExportServiceForTest().Render(sampleDataset(), "pdf", "Enquiries", "enquiry list")
	require.NoError(t, err)
	assert.Equal(t, "enquiry_list_20240315_093000.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestExportServiceDefaultsAndRejects(t *testing.T) {
	svc := newExportServiceForTest()

	file, err := svc.Render(sampleDataset(), "", "Enquiries", "")
	require.NoError(t, err)
	assert.Equal(t, "export_20240315_093000.csv", file.FileName)

	_, err = svc.Render(sampleDataset(), "xlsx", "Enquiries", "enquiries")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Render(export.Dataset{}, "csv", "Enquiries", "enquiries")
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
