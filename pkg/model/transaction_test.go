package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	custID := uuid.MustParse("a1a2a3a4-b1b2-c1c2-d1d2-d3d4d5d6d7d8")
	txnID := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	rec := TransactionRecord{CustomerID: custID, TransactionID: txnID}
	key := rec.Key()

	assert.Equal(t, custID, key.CustomerID)
	assert.Equal(t, txnID, key.TransactionID)
	assert.Equal(t,
		"a1a2a3a4-b1b2-c1c2-d1d2-d3d4d5d6d7d8/11111111-2222-3333-4444-555555555555",
		key.String())
}

func TestRunResult_Complete(t *testing.T) {
	result := NewRunResult()
	result.Accepted = 3
	result.Rejected = 2
	result.ErrorsLogged = 2

	time.Sleep(time.Millisecond)
	result.Complete()

	assert.Equal(t, 5, result.Total())
	assert.True(t, result.EndTime.After(result.StartTime))
	assert.Greater(t, result.Duration, time.Duration(0))
}
