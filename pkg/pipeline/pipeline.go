// pkg/pipeline/pipeline.go
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/finops-tools/transaction-ingress/pkg/loader"
	"github.com/finops-tools/transaction-ingress/pkg/model"
	"github.com/finops-tools/transaction-ingress/pkg/validator"
)

// Runner orchestrates one validate-and-load run. Each run owns a single
// database transaction: schema init and all three sinks either commit
// together or roll back together.
type Runner struct {
	db        *sqlx.DB
	validator *validator.Validator
	logger    *zap.Logger
}

// NewRunner creates a pipeline runner over a database handle
func NewRunner(db *sqlx.DB, logger *zap.Logger) (*Runner, error) {
	if db == nil {
		return nil, errors.New("database handle cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	v, err := validator.New(logger.Named("validator"))
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	return &Runner{
		db:        db,
		validator: v,
		logger:    logger,
	}, nil
}

// Run processes one batch to completion: ensure schema, partition, write the
// three sinks, commit. On any store fault every write made so far is rolled
// back and the returned result is nil; the caller may treat the run as if it
// never happened.
func (r *Runner) Run(ctx context.Context, batch []model.TransactionRecord) (result *model.RunResult, err error) {
	result = model.NewRunResult()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			result = nil
			// A failed commit already finished the transaction
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	ld, err := loader.New(tx, r.logger.Named("loader"))
	if err != nil {
		return nil, err
	}

	if err = ld.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("schema initialization failed: %w", err)
	}

	accepted, rejected := r.validator.Partition(batch)

	if err = ld.WriteTransactions(ctx, accepted); err != nil {
		return nil, err
	}
	if err = ld.WriteCustomerRollup(ctx, accepted); err != nil {
		return nil, err
	}
	if err = ld.WriteErrorLog(ctx, rejected); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result.Accepted = len(accepted)
	result.Rejected = len(rejected)
	result.ErrorsLogged = len(rejected)
	result.Complete()

	r.logger.Info("Pipeline run complete",
		zap.Int("accepted", result.Accepted),
		zap.Int("rejected", result.Rejected),
		zap.Int("errors_logged", result.ErrorsLogged),
		zap.Duration("duration", result.Duration))

	return result, nil
}
