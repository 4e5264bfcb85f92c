package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/document"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

type feeBackend interface {
	ListFees(ctx context.Context, s *backend.Session) ([]models.FeePayment, error)
	ListStudentFees(ctx context.Context, s *backend.Session, studentID int64) ([]models.FeePayment, error)
	GetFee(ctx context.Context, s *backend.Session, id int64) (*models.FeePayment, error)
	CreateFee(ctx context.Context, s *backend.Session, payload interface{}) (*models.FeePayment, error)
	DeleteFee(ctx context.Context, s *backend.Session, id int64) error
	GetAdmission(ctx context.Context, s *backend.Session, id int64) (*models.Admission, error)
	ListCourses(ctx context.Context, s *backend.Session) ([]models.Course, error)
}

// FeeService manages the payment ledger and per-student balances.
type FeeService struct {
	backend   feeBackend
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs a FeeService.
func NewFeeService(client feeBackend, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeeService{backend: client, validator: validate, logger: logger}
}

// List returns payments, optionally for one student.
func (s *FeeService) List(ctx context.Context, session *backend.Session, studentID *int64) ([]models.FeePayment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	var (
		items []models.FeePayment
		err   error
	)
	if studentID != nil {
		items, err = s.backend.ListStudentFees(ctx, session, *studentID)
	} else {
		items, err = s.backend.ListFees(ctx, session)
	}
	if err != nil {
		return nil, upstreamError(err, "failed to load fees")
	}
	return items, nil
}

// Get returns one payment.
func (s *FeeService) Get(ctx context.Context, session *backend.Session, id int64) (*models.FeePayment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	fee, err := s.backend.GetFee(ctx, session, id)
	if err != nil {
		return nil, upstreamError(err, "failed to load fee")
	}
	return fee, nil
}

// Create records a payment.
func (s *FeeService) Create(ctx context.Context, session *backend.Session, req dto.FeeRequest) (*models.FeePayment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid fee payload")
	}
	if !req.Amount.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount must be greater than zero")
	}
	if req.LateFee != nil && req.LateFee.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "late fee must not be negative")
	}
	if req.Discount != nil && req.Discount.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "discount must not be negative")
	}
	if _, ok := models.ParseDate(req.PaymentDate, nil); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "paymentDate is not a valid date")
	}

	created, err := s.backend.CreateFee(ctx, session, models.FeePayment{
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		PaymentDate:   req.PaymentDate,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		LateFee:       req.LateFee,
		Discount:      req.Discount,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, upstreamError(err, "failed to record payment")
	}
	s.logger.Info("fee recorded",
		zap.Int64("fee_id", created.ID),
		zap.Int64("student_id", created.StudentID),
		zap.String("amount", created.Amount.StringFixed(2)),
		zap.String("operator", session.Subject),
	)
	return created, nil
}

// Delete removes a payment.
func (s *FeeService) Delete(ctx context.Context, session *backend.Session, id int64) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := s.backend.DeleteFee(ctx, session, id); err != nil {
		return upstreamError(err, "failed to delete fee")
	}
	s.logger.Info("fee deleted", zap.Int64("fee_id", id), zap.String("operator", session.Subject))
	return nil
}

// Summary totals a student's payments against their course fee. The
// balance counts the credited amount only: late fees do not pay down the
// course and discounts reduce cash collected, not the amount credited.
func (s *FeeService) Summary(ctx context.Context, session *backend.Session, studentID int64) (*models.FeeSummary, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	var (
		admission *models.Admission
		payments  []models.FeePayment
		courses   []models.Course
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		admission, err = s.backend.GetAdmission(gctx, session, studentID)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.backend.ListStudentFees(gctx, session, studentID)
		return err
	})
	g.Go(func() error {
		var err error
		courses, err = s.backend.ListCourses(gctx, session)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, upstreamError(err, "failed to load fee summary")
	}

	summary := &models.FeeSummary{
		StudentID:     studentID,
		StudentName:   admission.DisplayName(),
		CourseName:    admission.CourseName,
		CourseFee:     courseFee(*admission, courses),
		TotalPaid:     decimal.Zero,
		TotalCredited: decimal.Zero,
		TotalLateFee:  decimal.Zero,
		TotalDiscount: decimal.Zero,
		Payments:      payments,
	}
	for _, p := range payments {
		summary.TotalPaid = summary.TotalPaid.Add(p.Total())
		summary.TotalCredited = summary.TotalCredited.Add(p.Amount)
		summary.TotalLateFee = summary.TotalLateFee.Add(p.LateFeeValue())
		summary.TotalDiscount = summary.TotalDiscount.Add(p.DiscountValue())
	}
	summary.Balance = summary.CourseFee.Sub(summary.TotalCredited)
	return summary, nil
}

// ReceiptInput loads a payment together with the student details printed
// on its receipt. Number and issue time are left for the caller.
func (s *FeeService) ReceiptInput(ctx context.Context, session *backend.Session, feeID int64) (document.ReceiptInput, error) {
	fee, err := s.Get(ctx, session, feeID)
	if err != nil {
		return document.ReceiptInput{}, err
	}
	in := document.ReceiptInput{Payment: *fee, StudentID: fee.StudentID}
	admission, err := s.backend.GetAdmission(ctx, session, fee.StudentID)
	if err != nil {
		return document.ReceiptInput{}, upstreamError(err, "failed to load student")
	}
	in.StudentName = admission.DisplayName()
	in.MobileNumber = admission.MobileNumber
	in.CourseName = admission.CourseName
	return in, nil
}

// courseFee finds the admission's course by id, then by name.
func courseFee(admission models.Admission, courses []models.Course) decimal.Decimal {
	if admission.CourseID != nil {
		for _, c := range courses {
			if c.ID == *admission.CourseID {
				return c.Fee
			}
		}
	}
	name := strings.TrimSpace(admission.CourseName)
	for _, c := range courses {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			return c.Fee
		}
	}
	return decimal.Zero
}
