package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/document"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	"github.com/noah-isme/techskill-console/internal/repository"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
	"github.com/noah-isme/techskill-console/pkg/storage"
)

const maxReceiptNumberAttempts = 3

type receiptLedger interface {
	Create(ctx context.Context, receipt *models.IssuedReceipt) error
	FindByNumber(ctx context.Context, number string) (*models.IssuedReceipt, error)
	ListByFee(ctx context.Context, feeID int64) ([]models.IssuedReceipt, error)
	ListByStudent(ctx context.Context, studentID int64, limit int) ([]models.IssuedReceipt, error)
}

type receiptArchive interface {
	Save(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
	Delete(name string) error
}

type receiptSigner interface {
	Generate(ref, name string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (string, string, time.Time, error)
}

type receiptInputLoader interface {
	ReceiptInput(ctx context.Context, session *backend.Session, feeID int64) (document.ReceiptInput, error)
}

type profileSource interface {
	Profile(ctx context.Context, session *backend.Session) models.InstituteProfile
}

// ReceiptServiceParams groups constructor dependencies. Ledger, Archive
// and Signer may be nil when the ledger is disabled.
type ReceiptServiceParams struct {
	Fees          receiptInputLoader
	Settings      profileSource
	Ledger        receiptLedger
	Archive       receiptArchive
	Signer        receiptSigner
	Issuer        *document.Issuer
	Metrics       *MetricsService
	Logger        *zap.Logger
	Location      *time.Location
	LedgerEnabled bool
	DownloadPath  string
}

// ReceiptService renders fee receipts and, when the ledger is enabled,
// archives every issued receipt so it can be reprinted with its number.
type ReceiptService struct {
	fees         receiptInputLoader
	settings     profileSource
	ledger       receiptLedger
	archive      receiptArchive
	signer       receiptSigner
	issuer       *document.Issuer
	metrics      *MetricsService
	logger       *zap.Logger
	loc          *time.Location
	enabled      bool
	downloadPath string
}

// NewReceiptService constructs a ReceiptService.
func NewReceiptService(params ReceiptServiceParams) *ReceiptService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	issuer := params.Issuer
	if issuer == nil {
		issuer = document.NewIssuer(nil, nil)
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	enabled := params.LedgerEnabled && params.Ledger != nil && params.Archive != nil && params.Signer != nil
	if params.LedgerEnabled && !enabled {
		logger.Warn("receipt ledger requested but not fully configured; disabling")
	}
	return &ReceiptService{
		fees:         params.Fees,
		settings:     params.Settings,
		ledger:       params.Ledger,
		archive:      params.Archive,
		signer:       params.Signer,
		issuer:       issuer,
		metrics:      params.Metrics,
		logger:       logger,
		loc:          loc,
		enabled:      enabled,
		downloadPath: params.DownloadPath,
	}
}

// LedgerEnabled reports whether issued receipts are recorded.
func (s *ReceiptService) LedgerEnabled() bool {
	return s != nil && s.enabled
}

// Render builds a receipt for a payment without recording it.
func (s *ReceiptService) Render(ctx context.Context, session *backend.Session, feeID int64, format string) (*ExportFile, error) {
	doc, in, err := s.build(ctx, session, feeID)
	if err != nil {
		return nil, err
	}
	return renderDocument(doc, format, "receipt_"+in.Number)
}

// Issue renders, archives and records a receipt and returns a signed
// download link. Number collisions with the ledger are retried.
func (s *ReceiptService) Issue(ctx context.Context, session *backend.Session, feeID int64) (*dto.ReceiptIssueResponse, error) {
	if !s.LedgerEnabled() {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "receipt ledger is disabled")
	}
	if err := requireSession(session); err != nil {
		return nil, err
	}
	in, err := s.fees.ReceiptInput(ctx, session, feeID)
	if err != nil {
		return nil, err
	}
	profile := s.settings.Profile(ctx, session)

	for attempt := 1; attempt <= maxReceiptNumberAttempts; attempt++ {
		stamped := s.issuer.Stamp(in)
		doc := document.FeeReceipt(stamped, profile, s.loc)
		doc.GeneratedAt = stamped.IssuedAt
		html, err := document.RenderHTML(doc)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
		}

		receipt := &models.IssuedReceipt{
			ID:            uuid.NewString(),
			ReceiptNumber: stamped.Number,
			FeeID:         feeID,
			StudentID:     stamped.StudentID,
			Total:         stamped.Payment.Total(),
			IssuedBy:      session.Subject,
			IssuedAt:      stamped.IssuedAt.UTC(),
		}
		name := fmt.Sprintf("%s/%s-%s.html", receipt.IssuedAt.Format("2006/01"), receipt.ReceiptNumber, receipt.ID[:8])
		if receipt.FilePath, err = s.archive.Save(name, html); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive receipt")
		}

		start := time.Now()
		err = s.ledger.Create(ctx, receipt)
		s.metrics.ObserveLedgerQuery("insert", time.Since(start))
		if err != nil {
			_ = s.archive.Delete(receipt.FilePath)
			if errors.Is(err, repository.ErrDuplicateReceiptNumber) {
				s.logger.Warn("receipt number collision", zap.String("receipt_number", receipt.ReceiptNumber), zap.Int("attempt", attempt))
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record receipt")
		}

		s.metrics.IncReceiptsIssued()
		s.logger.Info("receipt issued",
			zap.String("receipt_number", receipt.ReceiptNumber),
			zap.Int64("fee_id", feeID),
			zap.String("operator", session.Subject),
		)
		return s.issueResponse(receipt)
	}
	return nil, appErrors.Clone(appErrors.ErrConflict, "could not allocate a unique receipt number")
}

// Reprint returns the archived receipt with the given number.
func (s *ReceiptService) Reprint(ctx context.Context, number string) (*ExportFile, error) {
	if !s.LedgerEnabled() {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "receipt ledger is disabled")
	}
	receipt, err := s.find(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.archived(receipt)
}

// Download serves the receipt referenced by a signed token.
func (s *ReceiptService) Download(ctx context.Context, token string) (*ExportFile, error) {
	if !s.LedgerEnabled() {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "receipt ledger is disabled")
	}
	number, name, _, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link has expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	receipt, err := s.find(ctx, number)
	if err != nil {
		return nil, err
	}
	if receipt.FilePath != name {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	return s.archived(receipt)
}

// History lists issued receipts of a payment, or of a student when feeID
// is nil.
func (s *ReceiptService) History(ctx context.Context, feeID, studentID *int64) ([]models.IssuedReceipt, error) {
	if !s.LedgerEnabled() {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "receipt ledger is disabled")
	}
	start := time.Now()
	var (
		items []models.IssuedReceipt
		err   error
	)
	switch {
	case feeID != nil:
		items, err = s.ledger.ListByFee(ctx, *feeID)
		s.metrics.ObserveLedgerQuery("list_by_fee", time.Since(start))
	case studentID != nil:
		items, err = s.ledger.ListByStudent(ctx, *studentID, 0)
		s.metrics.ObserveLedgerQuery("list_by_student", time.Since(start))
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "fee_id or student_id is required")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load receipts")
	}
	return items, nil
}

func (s *ReceiptService) build(ctx context.Context, session *backend.Session, feeID int64) (document.Document, document.ReceiptInput, error) {
	if err := requireSession(session); err != nil {
		return document.Document{}, document.ReceiptInput{}, err
	}
	in, err := s.fees.ReceiptInput(ctx, session, feeID)
	if err != nil {
		return document.Document{}, document.ReceiptInput{}, err
	}
	in = s.issuer.Stamp(in)
	doc := document.FeeReceipt(in, s.settings.Profile(ctx, session), s.loc)
	doc.GeneratedAt = in.IssuedAt
	return doc, in, nil
}

func (s *ReceiptService) find(ctx context.Context, number string) (*models.IssuedReceipt, error) {
	start := time.Now()
	receipt, err := s.ledger.FindByNumber(ctx, number)
	s.metrics.ObserveLedgerQuery("find_by_number", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load receipt")
	}
	if receipt == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not found")
	}
	return receipt, nil
}

func (s *ReceiptService) archived(receipt *models.IssuedReceipt) (*ExportFile, error) {
	data, err := s.archive.Read(receipt.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "archived receipt is missing")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read receipt")
	}
	return &ExportFile{
		FileName:    fmt.Sprintf("receipt_%s.html", receipt.ReceiptNumber),
		ContentType: "text/html; charset=utf-8",
		Data:        data,
	}, nil
}

func (s *ReceiptService) issueResponse(receipt *models.IssuedReceipt) (*dto.ReceiptIssueResponse, error) {
	token, expiresAt, err := s.signer.Generate(receipt.ReceiptNumber, receipt.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &dto.ReceiptIssueResponse{
		ReceiptNumber: receipt.ReceiptNumber,
		FeeID:         receipt.FeeID,
		StudentID:     receipt.StudentID,
		Total:         receipt.Total,
		IssuedAt:      receipt.IssuedAt,
		DownloadURL:   s.downloadPath + "?token=" + url.QueryEscape(token),
		ExpiresAt:     expiresAt,
	}, nil
}
