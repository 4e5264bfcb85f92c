package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	"github.com/noah-isme/techskill-console/internal/reconcile"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

type fakeEnquiryBackend struct {
	enquiries    []models.Enquiry
	followups    []models.Followup
	enquiriesErr error
	followupsErr error
	listCalls    int32
	gate         chan struct{}

	createdEnquiry  interface{}
	updatedEnquiry  interface{}
	createdFollowup interface{}
	deleted         []int64
	writeErr        error
}

func (f *fakeEnquiryBackend) ListEnquiries(ctx context.Context, _ *backend.Session) ([]models.Enquiry, error) {
	atomic.AddInt32(&f.listCalls, 1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.enquiries, f.enquiriesErr
}

func (f *fakeEnquiryBackend) GetEnquiry(_ context.Context, _ *backend.Session, id int64) (*models.Enquiry, error) {
	for _, e := range f.enquiries {
		if e.ID == id {
			item := e
			return &item, nil
		}
	}
	return nil, &backend.APIError{Status: 404, Detail: "Enquiry not found"}
}

func (f *fakeEnquiryBackend) CreateEnquiry(_ context.Context, _ *backend.Session, payload interface{}) (*models.Enquiry, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.createdEnquiry = payload
	return &models.Enquiry{ID: 100, CurrentStatus: models.EnquiryStatusPending}, nil
}

func (f *fakeEnquiryBackend) UpdateEnquiry(_ context.Context, _ *backend.Session, id int64, payload interface{}) (*models.Enquiry, error) {
	f.updatedEnquiry = payload
	return &models.Enquiry{ID: id}, f.writeErr
}

func (f *fakeEnquiryBackend) DeleteEnquiry(_ context.Context, _ *backend.Session, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.writeErr
}

func (f *fakeEnquiryBackend) ListFollowups(context.Context, *backend.Session) ([]models.Followup, error) {
	return f.followups, f.followupsErr
}

func (f *fakeEnquiryBackend) ListEnquiryFollowups(_ context.Context, _ *backend.Session, id int64) ([]models.Followup, error) {
	out := []models.Followup{}
	for _, fu := range f.followups {
		if fu.EnquiryID == id {
			out = append(out, fu)
		}
	}
	return out, f.followupsErr
}

func (f *fakeEnquiryBackend) CreateFollowup(_ context.Context, _ *backend.Session, payload interface{}) (*models.Followup, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.createdFollowup = payload
	return &models.Followup{ID: 55}, nil
}

func sampleEnquiryBackend() *fakeEnquiryBackend {
	return &fakeEnquiryBackend{
		enquiries: []models.Enquiry{
			{ID: 5, FirstName: "Ravi", LastName: "Kumar", MobileNumber: "9876543210", CourseName: "Tally", CurrentStatus: models.EnquiryStatusPending},
			{ID: 6, FirstName: "Sita", LastName: "Devi", MobileNumber: "9123456789", CourseName: "Python", CurrentStatus: models.EnquiryStatusPending},
			{ID: 7, FirstName: "Arjun", LastName: "Mehta", MobileNumber: "9000000001", CourseName: "Web", CurrentStatus: models.EnquiryStatusAdmitted},
		},
		followups: []models.Followup{
			{ID: 1, EnquiryID: 5, Status: models.EnquiryStatusPending, CreatedAt: "2024-01-01T10:00:00Z", FollowupDate: "2024-01-01"},
			{ID: 2, EnquiryID: 5, Status: models.EnquiryStatusInterested, CreatedAt: "2024-02-01T10:00:00Z", FollowupDate: "2024-02-01", NextFollowupDate: strPtr("2024-03-10")},
			{ID: 3, EnquiryID: 6, Status: models.EnquiryStatusAdmitted, CreatedAt: "2024-02-05T10:00:00Z", FollowupDate: "2024-02-05"},
			{ID: 4, EnquiryID: 999, Status: models.EnquiryStatusAdmitted, CreatedAt: "2024-02-05T10:00:00Z"},
		},
	}
}

func newTestEnquiryService(fake *fakeEnquiryBackend, cache *CacheService) *EnquiryService {
	svc := NewEnquiryService(fake, reconcile.New(time.UTC), cache, nil, nil, nil, EnquiryServiceConfig{PageSize: 10})
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestEnquiryServiceListReconcilesAndFilters(t *testing.T) {
	svc := newTestEnquiryService(sampleEnquiryBackend(), nil)

	resp, err := svc.List(context.Background(), testSession, models.EnquiryFilter{Page: 1})
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, models.EnquiryStatusInterested, resp.Items[0].CurrentStatus)
	assert.True(t, resp.Items[0].IsOverdue)
	assert.Equal(t, 5, resp.Items[0].DaysOverdue)
	assert.Equal(t, 3, resp.Pagination.TotalCount)
	assert.NotEmpty(t, resp.Key)

	resp, err = svc.List(context.Background(), testSession, models.EnquiryFilter{Status: "ADMITTED", Page: 1})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	for _, item := range resp.Items {
		assert.Equal(t, models.EnquiryStatusAdmitted, item.CurrentStatus)
	}
}

func TestEnquiryServiceListFailsWhenEitherSourceFails(t *testing.T) {
	fake := sampleEnquiryBackend()
	fake.followupsErr = fmt.Errorf("%w: dial tcp", backend.ErrUnreachable)
	svc := newTestEnquiryService(fake, nil)

	resp, err := svc.List(context.Background(), testSession, models.EnquiryFilter{})
	require.Error(t, err)
	assert.Nil(t, resp)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErr.Code)
	assert.Equal(t, "failed to load enquiries", appErr.Message)

	fake.followupsErr = nil
	fake.enquiriesErr = &backend.APIError{Status: 500, Detail: "boom"}
	_, err = svc.List(context.Background(), testSession, models.EnquiryFilter{})
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Equal(t, "failed to load enquiries", appErr.Message)
}

func TestEnquiryServiceExpiredSessionSurfaces(t *testing.T) {
	fake := sampleEnquiryBackend()
	fake.enquiriesErr = &backend.APIError{Status: 401, Detail: "Token expired"}
	svc := newTestEnquiryService(fake, nil)

	_, err := svc.List(context.Background(), testSession, models.EnquiryFilter{})
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)

	_, err = svc.List(context.Background(), nil, models.EnquiryFilter{})
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestEnquiryServiceCoalescesConcurrentLoads(t *testing.T) {
	fake := sampleEnquiryBackend()
	fake.gate = make(chan struct{})
	svc := newTestEnquiryService(fake, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.List(context.Background(), testSession, models.EnquiryFilter{Search: "ravi"})
			assert.NoError(t, err)
		}()
	}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&fake.listCalls) == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(fake.gate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fake.listCalls))
}

func TestEnquiryServiceSharedLoadOutlivesCancelledCaller(t *testing.T) {
	fake := sampleEnquiryBackend()
	fake.gate = make(chan struct{})
	svc := newTestEnquiryService(fake, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	errA := make(chan error, 1)
	go func() {
		_, err := svc.List(ctxA, testSession, models.EnquiryFilter{})
		errA <- err
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&fake.listCalls) == 1 }, time.Second, time.Millisecond)

	type listResult struct {
		resp *dto.EnquiryListResponse
		err  error
	}
	resB := make(chan listResult, 1)
	go func() {
		resp, err := svc.List(context.Background(), testSession, models.EnquiryFilter{})
		resB <- listResult{resp, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		require.Error(t, err)
		assert.Equal(t, msgLoadEnquiries, appErrors.FromError(err).Message)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(fake.gate)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, 3, b.resp.Pagination.TotalCount)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fake.listCalls))
}

func TestEnquiryServiceWriteDuringLoadIsNotCachedOver(t *testing.T) {
	fake := sampleEnquiryBackend()
	fake.gate = make(chan struct{})
	repo := newMemoryCache()
	svc := newTestEnquiryService(fake, newTestCache(repo))
	ctx := context.Background()

	loaded := make(chan error, 1)
	go func() {
		_, err := svc.List(ctx, testSession, models.EnquiryFilter{})
		loaded <- err
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&fake.listCalls) == 1 }, time.Second, time.Millisecond)

	_, err := svc.AddFollowup(ctx, testSession, 6, dto.FollowupRequest{FollowupDate: "2024-03-15", Status: "INTERESTED"})
	require.NoError(t, err)

	close(fake.gate)
	require.NoError(t, <-loaded)
	assert.Empty(t, repo.keys())

	_, err = svc.List(ctx, testSession, models.EnquiryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fake.listCalls))
	assert.Len(t, repo.keys(), 1)
}

func TestEnquiryServiceCacheInvalidatedOnWrites(t *testing.T) {
	fake := sampleEnquiryBackend()
	repo := newMemoryCache()
	svc := newTestEnquiryService(fake, newTestCache(repo))
	ctx := context.Background()

	_, err := svc.List(ctx, testSession, models.EnquiryFilter{})
	require.NoError(t, err)
	_, err = svc.List(ctx, testSession, models.EnquiryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fake.listCalls))
	require.Len(t, repo.keys(), 1)

	_, err = svc.AddFollowup(ctx, testSession, 6, dto.FollowupRequest{FollowupDate: "2024-03-15", Status: "INTERESTED"})
	require.NoError(t, err)
	assert.Empty(t, repo.keys())

	_, err = svc.List(ctx, testSession, models.EnquiryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fake.listCalls))
}

func TestEnquiryServiceCreate(t *testing.T) {
	fake := sampleEnquiryBackend()
	svc := newTestEnquiryService(fake, nil)

	_, err := svc.Create(context.Background(), testSession, dto.EnquiryRequest{FirstName: "A"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	created, err := svc.Create(context.Background(), testSession, dto.EnquiryRequest{
		FirstName:    "Neha",
		LastName:     "Shah",
		MobileNumber: "9876500000",
		CourseName:   "Tally",
		NextFollowup: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), created.ID)
	payload, ok := fake.createdEnquiry.(newEnquiryPayload)
	require.True(t, ok)
	assert.Equal(t, models.EnquiryStatusPending, payload.CurrentStatus)
	assert.Nil(t, payload.NextFollowup)
}

func TestEnquiryServiceCreateMapsBackendRejection(t *testing.T) {
	fake := sampleEnquiryBackend()
	fake.writeErr = &backend.APIError{Status: 409, Detail: "Mobile number already registered"}
	svc := newTestEnquiryService(fake, nil)

	_, err := svc.Create(context.Background(), testSession, dto.EnquiryRequest{
		FirstName: "Neha", LastName: "Shah", MobileNumber: "9876500000", CourseName: "Tally",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "Mobile number already registered", appErr.Message)
}

func TestEnquiryServiceAddFollowupValidation(t *testing.T) {
	fake := sampleEnquiryBackend()
	svc := newTestEnquiryService(fake, nil)
	ctx := context.Background()

	_, err := svc.AddFollowup(ctx, testSession, 5, dto.FollowupRequest{FollowupDate: "2024-03-15", Status: "MAYBE"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.AddFollowup(ctx, testSession, 5, dto.FollowupRequest{FollowupDate: "tomorrow", Status: "PENDING"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	created, err := svc.AddFollowup(ctx, testSession, 5, dto.FollowupRequest{
		FollowupDate:     "2024-03-15",
		Status:           "NOT_INTERESTED",
		Notes:            strPtr("budget"),
		NextFollowupDate: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), created.ID)
	payload := fake.createdFollowup.(dto.FollowupPayload)
	assert.Equal(t, int64(5), payload.EnquiryID)
	assert.Equal(t, "admin", payload.HandledBy)
	assert.Nil(t, payload.NextFollowupDate)
}

func TestEnquiryServiceGetReturnsSortedHistory(t *testing.T) {
	svc := newTestEnquiryService(sampleEnquiryBackend(), nil)

	detail, err := svc.Get(context.Background(), testSession, 5)
	require.NoError(t, err)
	assert.Equal(t, models.EnquiryStatusInterested, detail.Enquiry.CurrentStatus)
	assert.Equal(t, 2, detail.Enquiry.FollowupCount)
	require.Len(t, detail.Followups, 2)
	assert.Equal(t, int64(2), detail.Followups[0].ID)

	_, err = svc.Get(context.Background(), testSession, 404)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnquiryServiceExportCSV(t *testing.T) {
	svc := newTestEnquiryService(sampleEnquiryBackend(), nil)

	file, err := svc.Export(context.Background(), testSession, models.EnquiryFilter{Status: "ADMITTED"}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(file.FileName, "enquiries_"))
	assert.True(t, strings.HasSuffix(file.FileName, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Name,Mobile,Course,Status,Last Follow-up,Next Follow-up,Days Overdue,Enquiry Date", lines[0])
	assert.Contains(t, lines[1], "Sita Devi")
	assert.Contains(t, lines[1], "Admitted")

	_, err = svc.Export(context.Background(), testSession, models.EnquiryFilter{}, "xlsx")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnquiryServiceDelete(t *testing.T) {
	fake := sampleEnquiryBackend()
	svc := newTestEnquiryService(fake, nil)

	require.NoError(t, svc.Delete(context.Background(), testSession, 7))
	assert.Equal(t, []int64{7}, fake.deleted)
}
