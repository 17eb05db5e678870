// pkg/model/transaction.go
package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TransactionRecord is one row of an incoming batch, as handed over by the
// source reader. TransactionDate and SourceDate stay in their original text
// form: the date rule validates TransactionDate, and the store coerces both
// on write.
type TransactionRecord struct {
	CustomerID      uuid.UUID   `json:"customerId"`
	CustomerName    string      `json:"customerName"`
	TransactionID   uuid.UUID   `json:"transactionId"`
	TransactionDate string      `json:"transactionDate"`
	SourceDate      string      `json:"sourceDate"`
	MerchantID      int         `json:"merchantId"`
	CategoryID      int         `json:"categoryId"`
	Currency        string      `json:"currency"`
	Amount          json.Number `json:"amount"`
	Description     string      `json:"description"`
}

// BatchKey is the natural key of a record, both within a batch and in storage.
type BatchKey struct {
	TransactionID uuid.UUID
	CustomerID    uuid.UUID
}

// Key returns the record's natural key.
func (r TransactionRecord) Key() BatchKey {
	return BatchKey{
		TransactionID: r.TransactionID,
		CustomerID:    r.CustomerID,
	}
}

// String returns the key formatted for logging
func (k BatchKey) String() string {
	return fmt.Sprintf("%s/%s", k.CustomerID, k.TransactionID)
}
