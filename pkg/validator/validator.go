// pkg/validator/validator.go
package validator

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/finops-tools/transaction-ingress/pkg/model"
)

// Rule is a pure predicate over a single record. A record is accepted only
// when every rule holds and its batch key is unique within the batch.
type Rule func(model.TransactionRecord) bool

// dateLayout is the only accepted transactionDate shape
const dateLayout = "2006-01-02"

// allowedCurrencies is the fixed currency allow-list, matched case-sensitively
var allowedCurrencies = map[string]struct{}{
	"EUR": {},
	"GBP": {},
	"USD": {},
}

// CurrencyAllowed checks the record currency against the allow-list
func CurrencyAllowed(r model.TransactionRecord) bool {
	_, ok := allowedCurrencies[r.Currency]
	return ok
}

// DateWellFormed checks that transactionDate parses as a YYYY-MM-DD calendar
// date. Malformed values fail the predicate rather than raising.
func DateWellFormed(r model.TransactionRecord) bool {
	_, err := time.Parse(dateLayout, r.TransactionDate)
	return err == nil
}

// Validator partitions a batch into accepted and rejected records
type Validator struct {
	rules  []Rule
	logger *zap.Logger
}

// New creates a Validator with the standard quality rules
func New(logger *zap.Logger) (*Validator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Validator{
		rules:  []Rule{CurrencyAllowed, DateWellFormed},
		logger: logger,
	}, nil
}

// Partition splits a batch into accepted and rejected records. The split is
// total and disjoint, order within each output follows the input, and records
// are never mutated. Every copy of a duplicated (transactionId, customerId)
// key is rejected, including the first occurrence.
func (v *Validator) Partition(batch []model.TransactionRecord) (accepted, rejected []model.TransactionRecord) {
	accepted = make([]model.TransactionRecord, 0, len(batch))
	rejected = make([]model.TransactionRecord, 0)

	// Key frequency over the whole batch, computed before rule evaluation
	keyCounts := make(map[model.BatchKey]int, len(batch))
	for _, rec := range batch {
		keyCounts[rec.Key()]++
	}

	for _, rec := range batch {
		if keyCounts[rec.Key()] == 1 && v.passesAll(rec) {
			accepted = append(accepted, rec)
		} else {
			rejected = append(rejected, rec)
		}
	}

	v.logger.Info("Partitioned batch",
		zap.Int("total", len(batch)),
		zap.Int("accepted", len(accepted)),
		zap.Int("rejected", len(rejected)))

	return accepted, rejected
}

// passesAll reduces the rules with logical AND
func (v *Validator) passesAll(rec model.TransactionRecord) bool {
	for _, rule := range v.rules {
		if !rule(rec) {
			return false
		}
	}
	return true
}
