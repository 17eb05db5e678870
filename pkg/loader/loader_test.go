package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finops-tools/transaction-ingress/pkg/model"
)

func testUUID(n byte) uuid.UUID {
	var b [16]byte
	b[15] = n
	return uuid.UUID(b)
}

func makeRecord(txnID, custID byte) model.TransactionRecord {
	return model.TransactionRecord{
		CustomerID:      testUUID(custID),
		CustomerName:    "Customer",
		TransactionID:   testUUID(txnID),
		TransactionDate: "2023-11-21",
		SourceDate:      "2023-11-21T10:00:00Z",
		MerchantID:      12,
		CategoryID:      3,
		Currency:        "EUR",
		Amount:          "59.99",
		Description:     "test purchase",
	}
}

// newTestLoader returns a loader bound to a mocked transaction
func newTestLoader(t *testing.T) (*Loader, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	mock.ExpectBegin()
	tx, err := sqlxDB.Beginx()
	require.NoError(t, err)

	ld, err := New(tx, zap.NewNop())
	require.NoError(t, err)
	return ld, mock
}

func TestNew_Guards(t *testing.T) {
	_, err := New(nil, zap.NewNop())
	assert.Error(t, err)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	tx, err := sqlx.NewDb(db, "sqlmock").Beginx()
	require.NoError(t, err)

	_, err = New(tx, nil)
	assert.Error(t, err)
}

func TestWriteTransactions_UpsertsEachRow(t *testing.T) {
	ld, mock := newTestLoader(t)

	first := makeRecord(1, 1)
	second := makeRecord(2, 2)

	prep := mock.ExpectPrepare("INSERT INTO transactions_table")
	prep.ExpectExec().
		WithArgs(
			first.CustomerID.String(),
			"Customer",
			first.TransactionID.String(),
			"2023-11-21",
			"2023-11-21T10:00:00Z",
			int64(12),
			int64(3),
			"EUR",
			"59.99",
			"test purchase",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ld.WriteTransactions(context.Background(), []model.TransactionRecord{first, second})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteTransactions_EmptyBatchIsNoOp(t *testing.T) {
	ld, mock := newTestLoader(t)

	err := ld.WriteTransactions(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteTransactions_ExecFailure(t *testing.T) {
	ld, mock := newTestLoader(t)

	prep := mock.ExpectPrepare("INSERT INTO transactions_table")
	prep.ExpectExec().WillReturnError(errors.New("constraint violation"))

	err := ld.WriteTransactions(context.Background(), []model.TransactionRecord{makeRecord(1, 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upsert transaction")
}

func TestWriteCustomerRollup_MergesWithGreatest(t *testing.T) {
	ld, mock := newTestLoader(t)

	rec := makeRecord(1, 7)

	// The rollup date must only move forward, so the upsert merges with
	// GREATEST rather than overwriting.
	prep := mock.ExpectPrepare("GREATEST")
	prep.ExpectExec().
		WithArgs(rec.CustomerID.String(), "Customer", "2023-11-21").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ld.WriteCustomerRollup(context.Background(), []model.TransactionRecord{rec})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteCustomerRollup_RowPerRecord(t *testing.T) {
	ld, mock := newTestLoader(t)

	// Two transactions for the same customer still produce two merge rows;
	// the GREATEST merge makes their order irrelevant.
	first := makeRecord(1, 7)
	second := makeRecord(2, 7)
	second.TransactionDate = "2023-06-01"

	prep := mock.ExpectPrepare("INSERT INTO customer_table")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))

	err := ld.WriteCustomerRollup(context.Background(), []model.TransactionRecord{first, second})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteCustomerRollup_EmptyBatchIsNoOp(t *testing.T) {
	ld, mock := newTestLoader(t)

	err := ld.WriteCustomerRollup(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteErrorLog_AppendsRows(t *testing.T) {
	ld, mock := newTestLoader(t)

	rec := makeRecord(5, 7)

	prep := mock.ExpectPrepare("INSERT INTO error_log_table")
	prep.ExpectExec().
		WithArgs(rec.CustomerID.String(), rec.TransactionID.String(), "test purchase").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ld.WriteErrorLog(context.Background(), []model.TransactionRecord{rec})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteErrorLog_EmptyBatchIsNoOp(t *testing.T) {
	ld, mock := newTestLoader(t)

	err := ld.WriteErrorLog(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteErrorLog_ExecFailure(t *testing.T) {
	ld, mock := newTestLoader(t)

	prep := mock.ExpectPrepare("INSERT INTO error_log_table")
	prep.ExpectExec().WillReturnError(errors.New("connection reset"))

	err := ld.WriteErrorLog(context.Background(), []model.TransactionRecord{makeRecord(1, 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to append error log row")
}
