package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techskill-console/internal/models"
)

var receiptCols = []string{"id", "receipt_number", "fee_id", "student_id", "total", "file_path", "issued_by", "issued_at"}

func newReceiptRepoMock(t *testing.T) (*ReceiptRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewReceiptRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestReceiptRepositoryCreateAssignsIDs(t *testing.T) {
	repo, mock, cleanup := newReceiptRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO issued_receipts")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	receipt := &models.IssuedReceipt{
		ReceiptNumber: "12345678",
		FeeID:         3,
		StudentID:     7,
		Total:         decimal.NewFromInt(1050),
		FilePath:      "receipts/12345678.html",
		IssuedBy:      "admin",
	}
	require.NoError(t, repo.Create(context.Background(), receipt))
	assert.NotEmpty(t, receipt.ID)
	assert.False(t, receipt.IssuedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepositoryCreateDetectsDuplicateNumber(t *testing.T) {
	repo, mock, cleanup := newReceiptRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO issued_receipts")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.IssuedReceipt{ReceiptNumber: "12345678"})
	require.ErrorIs(t, err, ErrDuplicateReceiptNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepositoryFindByNumber(t *testing.T) {
	repo, mock, cleanup := newReceiptRepoMock(t)
	defer cleanup()

	issuedAt := time.Date(2024, 3, 5, 11, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, receipt_number")).
		WithArgs("12345678").
		WillReturnRows(sqlmock.NewRows(receiptCols).
			AddRow("rcpt-1", "12345678", 3, 7, "1050.00", "receipts/12345678.html", "admin", issuedAt))

	receipt, err := repo.FindByNumber(context.Background(), " 12345678 ")
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, int64(3), receipt.FeeID)
	assert.True(t, decimal.NewFromInt(1050).Equal(receipt.Total))
	assert.Equal(t, issuedAt, receipt.IssuedAt)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, receipt_number")).
		WithArgs("00000000").
		WillReturnError(sql.ErrNoRows)
	receipt, err = repo.FindByNumber(context.Background(), "00000000")
	require.NoError(t, err)
	assert.Nil(t, receipt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepositoryListByFee(t *testing.T) {
	repo, mock, cleanup := newReceiptRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .* FROM issued_receipts WHERE fee_id = \$1 ORDER BY issued_at DESC`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(receiptCols).
			AddRow("rcpt-2", "87654321", 3, 7, "1050.00", "b.html", "admin", time.Now()).
			AddRow("rcpt-1", "12345678", 3, 7, "1050.00", "a.html", "admin", time.Now()))

	receipts, err := repo.ListByFee(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "87654321", receipts[0].ReceiptNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepositoryListByStudentDefaultsLimit(t *testing.T) {
	repo, mock, cleanup := newReceiptRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(`FROM issued_receipts WHERE student_id = \$1 ORDER BY issued_at DESC LIMIT \$2`).
		WithArgs(int64(7), 50).
		WillReturnRows(sqlmock.NewRows(receiptCols))

	receipts, err := repo.ListByStudent(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.Empty(t, receipts)
	require.NoError(t, mock.ExpectationsWereMet())
}
