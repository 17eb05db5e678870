// pkg/loader/loader.go
package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/finops-tools/transaction-ingress/pkg/model"
)

const (
	// Last-write-wins upsert: a re-submitted key overwrites every non-key column
	upsertTransactionSQL = `
		INSERT INTO transactions_table (
			customerId,
			customerName,
			transactionId,
			transactionDate,
			sourceDate,
			merchantId,
			categoryId,
			currency,
			amount,
			description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (customerId, transactionId) DO UPDATE
		SET customerName = EXCLUDED.customerName,
			transactionDate = EXCLUDED.transactionDate,
			sourceDate = EXCLUDED.sourceDate,
			merchantId = EXCLUDED.merchantId,
			categoryId = EXCLUDED.categoryId,
			currency = EXCLUDED.currency,
			amount = EXCLUDED.amount,
			description = EXCLUDED.description
	`

	// Monotonic merge: the rollup date only ever moves forward
	upsertCustomerRollupSQL = `
		INSERT INTO customer_table (
			customerId,
			customerName,
			transactionDate
		) VALUES ($1, $2, $3)
		ON CONFLICT (customerId) DO UPDATE
		SET customerName = EXCLUDED.customerName,
			transactionDate = GREATEST(EXCLUDED.transactionDate, customer_table.transactionDate)
	`

	insertErrorLogSQL = `
		INSERT INTO error_log_table (
			customerId,
			transactionId,
			description
		) VALUES ($1, $2, $3)
	`
)

// Loader writes a partitioned batch into the three persistent relations.
// It operates on an open transaction owned by the orchestrator; nothing it
// writes is visible until the orchestrator commits.
type Loader struct {
	tx     *sqlx.Tx
	logger *zap.Logger
}

// New creates a Loader bound to an open transaction
func New(tx *sqlx.Tx, logger *zap.Logger) (*Loader, error) {
	if tx == nil {
		return nil, errors.New("transaction cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Loader{
		tx:     tx,
		logger: logger,
	}, nil
}

// WriteTransactions upserts accepted records into transactions_table keyed by
// (customerId, transactionId), overwriting all non-key columns on conflict.
func (l *Loader) WriteTransactions(ctx context.Context, accepted []model.TransactionRecord) error {
	if len(accepted) == 0 {
		return nil
	}

	stmt, err := l.tx.PreparexContext(ctx, upsertTransactionSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range accepted {
		_, err := stmt.ExecContext(ctx,
			rec.CustomerID,
			rec.CustomerName,
			rec.TransactionID,
			rec.TransactionDate,
			rec.SourceDate,
			rec.MerchantID,
			rec.CategoryID,
			rec.Currency,
			rec.Amount,
			rec.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert transaction %s: %w", rec.Key(), err)
		}
	}

	l.logger.Info("Upserted transactions", zap.Int("count", len(accepted)))
	return nil
}

// WriteCustomerRollup upserts one rollup row per accepted record, keyed by
// customerId. The name is overwritten; the rollup date takes the greater of
// the stored and incoming values, so rows may be applied in any order.
func (l *Loader) WriteCustomerRollup(ctx context.Context, accepted []model.TransactionRecord) error {
	if len(accepted) == 0 {
		return nil
	}

	stmt, err := l.tx.PreparexContext(ctx, upsertCustomerRollupSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare customer rollup upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range accepted {
		_, err := stmt.ExecContext(ctx,
			rec.CustomerID,
			rec.CustomerName,
			rec.TransactionDate,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert customer rollup for %s: %w", rec.CustomerID, err)
		}
	}

	l.logger.Info("Upserted customer rollups", zap.Int("count", len(accepted)))
	return nil
}

// WriteErrorLog appends every rejected record to error_log_table. No conflict
// handling; duplicates across runs accumulate.
func (l *Loader) WriteErrorLog(ctx context.Context, rejected []model.TransactionRecord) error {
	if len(rejected) == 0 {
		return nil
	}

	stmt, err := l.tx.PreparexContext(ctx, insertErrorLogSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare error log insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range rejected {
		_, err := stmt.ExecContext(ctx,
			rec.CustomerID,
			rec.TransactionID,
			rec.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to append error log row for %s: %w", rec.Key(), err)
		}
	}

	l.logger.Info("Appended error log rows", zap.Int("count", len(rejected)))
	return nil
}
