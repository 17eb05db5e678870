// pkg/loader/schema.go
package loader

import (
	"context"
	"fmt"
)

// Table shapes for the three persistent relations. The composite key on
// transactions_table and the single-column key on customer_table carry the
// upsert conflict targets; error_log_table is append-only and unconstrained.
const (
	createTransactionsTableSQL = `
		CREATE TABLE IF NOT EXISTS transactions_table (
			customerId UUID,
			customerName VARCHAR(255),
			transactionId UUID,
			transactionDate DATE,
			sourceDate TIMESTAMP,
			merchantId INTEGER,
			categoryId INTEGER,
			currency VARCHAR(3),
			amount NUMERIC(10, 2),
			description VARCHAR(255),
			PRIMARY KEY (customerId, transactionId)
		)
	`

	createCustomerTableSQL = `
		CREATE TABLE IF NOT EXISTS customer_table (
			customerId UUID,
			customerName VARCHAR(255),
			transactionDate DATE,
			PRIMARY KEY (customerId)
		)
	`

	createErrorLogTableSQL = `
		CREATE TABLE IF NOT EXISTS error_log_table (
			customerId UUID,
			transactionId UUID,
			description VARCHAR(255)
		)
	`
)

// EnsureSchema idempotently creates the three relations inside the loader's
// transaction. Safe to run on every pipeline run; existing data is untouched.
func (l *Loader) EnsureSchema(ctx context.Context) error {
	tables := []struct {
		name string
		ddl  string
	}{
		{"transactions_table", createTransactionsTableSQL},
		{"customer_table", createCustomerTableSQL},
		{"error_log_table", createErrorLogTableSQL},
	}

	for _, table := range tables {
		if _, err := l.tx.ExecContext(ctx, table.ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	l.logger.Info("Ensured ingress tables exist")
	return nil
}
