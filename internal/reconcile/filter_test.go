package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techskill-console/internal/models"
)

func sampleView() []models.ReconciledEnquiry {
	mk := func(id int64, first, last, mobile, course string, status models.EnquiryStatus) models.ReconciledEnquiry {
		return models.ReconciledEnquiry{Enquiry: models.Enquiry{
			ID: id, FirstName: first, LastName: last, MobileNumber: mobile, CourseName: course, CurrentStatus: status,
		}}
	}
	return []models.ReconciledEnquiry{
		mk(1, "Ravi", "Kumar", "9876543210", "Tally Prime", models.EnquiryStatusAdmitted),
		mk(2, "Sita", "Devi", "9123456789", "Web Design", models.EnquiryStatusPending),
		mk(3, "Arjun", "Mehta", "9000098765", "Python", models.EnquiryStatusAdmitted),
		mk(14, "Neha", "Shah", "8000000001", "Tally Prime", models.EnquiryStatusInterested),
	}
}

func ids(items []models.ReconciledEnquiry) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestFilterByStatus(t *testing.T) {
	out := Filter(sampleView(), "", "ADMITTED")
	assert.Equal(t, []int64{1, 3}, ids(out))
	for _, item := range out {
		assert.Equal(t, models.EnquiryStatusAdmitted, item.CurrentStatus)
	}
}

func TestFilterAllSentinelBypassesStatus(t *testing.T) {
	assert.Len(t, Filter(sampleView(), "", "ALL"), 4)
	assert.Len(t, Filter(sampleView(), "", ""), 4)
}

func TestFilterSearchMatchesMobileSubstring(t *testing.T) {
	out := Filter(sampleView(), "98765", "")
	assert.Equal(t, []int64{1, 3}, ids(out))
}

func TestFilterSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	assert.Equal(t, []int64{1, 14}, ids(Filter(sampleView(), "tally", "")))
	assert.Equal(t, []int64{2}, ids(Filter(sampleView(), "DEVI", "")))
	assert.Equal(t, []int64{14}, ids(Filter(sampleView(), "14", "")))
	assert.Equal(t, []int64{14}, ids(Filter(sampleView(), "tally", "INTERESTED")))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page, meta := Paginate(items, 2, 3)
	assert.Equal(t, []int{4, 5, 6}, page)
	assert.Equal(t, models.Pagination{Page: 2, PageSize: 3, TotalCount: 7, TotalPages: 3}, meta)

	page, meta = Paginate(items, 9, 3)
	assert.Equal(t, []int{7}, page)
	assert.Equal(t, 3, meta.Page)

	page, meta = Paginate([]int{}, 1, 3)
	assert.Empty(t, page)
	assert.Equal(t, 1, meta.TotalPages)
}

func TestViewResetsPageWhenFilterChanges(t *testing.T) {
	items := sampleView()
	_, _, key := View(items, models.EnquiryFilter{Page: 1}, 1)

	page, meta, _ := View(items, models.EnquiryFilter{Page: 3, Key: key}, 1)
	require.Len(t, page, 1)
	assert.Equal(t, 3, meta.Page)

	page, meta, newKey := View(items, models.EnquiryFilter{Search: "tally", Page: 2, Key: key}, 1)
	assert.NotEqual(t, key, newKey)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, int64(1), page[0].ID)
}

func TestFingerprintNormalisesInput(t *testing.T) {
	assert.Equal(t, Fingerprint(" Ravi ", ""), Fingerprint("ravi", "ALL"))
	assert.NotEqual(t, Fingerprint("ravi", "PENDING"), Fingerprint("ravi", "ALL"))
}
