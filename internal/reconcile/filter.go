package reconcile

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/noah-isme/techskill-console/internal/models"
)

// Filter applies the list view's search and status filter. Search is a
// case-insensitive substring match on first name, last name, mobile
// number, course name and id; status matches exactly unless it is empty
// or "ALL".
func Filter(items []models.ReconciledEnquiry, search, status string) []models.ReconciledEnquiry {
	needle := strings.ToLower(strings.TrimSpace(search))
	status = strings.TrimSpace(status)
	out := make([]models.ReconciledEnquiry, 0, len(items))
	for _, item := range items {
		if status != "" && !strings.EqualFold(status, models.StatusFilterAll) && string(item.CurrentStatus) != status {
			continue
		}
		if needle != "" && !matches(item, needle) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matches(item models.ReconciledEnquiry, needle string) bool {
	for _, field := range []string{item.FirstName, item.LastName, item.MobileNumber, item.CourseName, item.IDString()} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Fingerprint identifies a search/status combination. A page number only
// stays meaningful while the fingerprint it was issued for is unchanged.
func Fingerprint(search, status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		status = models.StatusFilterAll
	}
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(search)) + "\x00" + strings.ToUpper(status)))
	return hex.EncodeToString(sum[:6])
}

// Paginate slices items into 1-indexed pages of size. Out of range pages
// clamp to the nearest valid page.
func Paginate[T any](items []T, page, size int) ([]T, models.Pagination) {
	if size <= 0 {
		size = 10
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])
	return pageItems, models.Pagination{Page: page, PageSize: size, TotalCount: total, TotalPages: pages}
}

// View runs filter and pagination for one list request. A request whose
// key does not match the current fingerprint is a new search and starts
// again on page 1.
func View(items []models.ReconciledEnquiry, filter models.EnquiryFilter, pageSize int) ([]models.ReconciledEnquiry, models.Pagination, string) {
	key := Fingerprint(filter.Search, filter.Status)
	page := filter.Page
	if filter.Key != "" && filter.Key != key {
		page = 1
	}
	filtered := Filter(items, filter.Search, filter.Status)
	pageItems, pagination := Paginate(filtered, page, pageSize)
	return pageItems, pagination, key
}
