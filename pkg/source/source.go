// pkg/source/source.go
package source

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/finops-tools/transaction-ingress/pkg/model"
)

// batchDocument matches the shape of the source file: a single JSON object
// with a top-level "transactions" array.
type batchDocument struct {
	Transactions []model.TransactionRecord `json:"transactions"`
}

// ReadBatch loads a batch of transaction records from a JSON document.
// Decode failures, including malformed identifiers, surface to the caller
// unmodified; nothing here applies quality rules.
func ReadBatch(path string) ([]model.TransactionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file %s: %w", path, err)
	}

	var doc batchDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode source file %s: %w", path, err)
	}

	return doc.Transactions, nil
}
