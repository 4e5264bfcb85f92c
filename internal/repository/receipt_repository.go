package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/techskill-console/internal/models"
)

// ErrDuplicateReceiptNumber is returned when a generated number collides
// with an existing ledger row.
var ErrDuplicateReceiptNumber = errors.New("duplicate receipt number")

const receiptColumns = `id, receipt_number, fee_id, student_id, total, file_path, issued_by, issued_at`

// ReceiptRepository stores the issued receipt ledger.
type ReceiptRepository struct {
	db *sqlx.DB
}

// NewReceiptRepository constructs the repository.
func NewReceiptRepository(db *sqlx.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create inserts a ledger row, assigning id and issue time when unset.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.IssuedReceipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.NewString()
	}
	if receipt.IssuedAt.IsZero() {
		receipt.IssuedAt = time.Now().UTC()
	}
	const query = `INSERT INTO issued_receipts (` + receiptColumns + `)
	VALUES (:id, :receipt_number, :fee_id, :student_id, :total, :file_path, :issued_by, :issued_at)`
	if _, err := r.db.NamedExecContext(ctx, query, receipt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReceiptNumber
		}
		return fmt.Errorf("create issued receipt: %w", err)
	}
	return nil
}

// FindByNumber returns the ledger row for a receipt number.
func (r *ReceiptRepository) FindByNumber(ctx context.Context, number string) (*models.IssuedReceipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM issued_receipts WHERE receipt_number = $1`
	var receipt models.IssuedReceipt
	if err := r.db.GetContext(ctx, &receipt, query, strings.TrimSpace(number)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find issued receipt %s: %w", number, err)
	}
	return &receipt, nil
}

// ListByFee returns receipts issued for a payment, newest first.
func (r *ReceiptRepository) ListByFee(ctx context.Context, feeID int64) ([]models.IssuedReceipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM issued_receipts WHERE fee_id = $1 ORDER BY issued_at DESC`
	receipts := make([]models.IssuedReceipt, 0)
	if err := r.db.SelectContext(ctx, &receipts, query, feeID); err != nil {
		return nil, fmt.Errorf("list receipts for fee %d: %w", feeID, err)
	}
	return receipts, nil
}

// ListByStudent returns receipts issued to a student, newest first.
func (r *ReceiptRepository) ListByStudent(ctx context.Context, studentID int64, limit int) ([]models.IssuedReceipt, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + receiptColumns + ` FROM issued_receipts WHERE student_id = $1 ORDER BY issued_at DESC LIMIT $2`
	receipts := make([]models.IssuedReceipt, 0)
	if err := r.db.SelectContext(ctx, &receipts, query, studentID, limit); err != nil {
		return nil, fmt.Errorf("list receipts for student %d: %w", studentID, err)
	}
	return receipts, nil
}
