package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/service"
)

// ReadCSV parses a CSV export of the eligibility sheet. The first headerRows
// lines are skipped.
func ReadCSV(r io.Reader, headerRows int) ([]service.CatalogRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog csv: %w", err)
	}

	values := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		values[i] = row
	}

	rows := ParseRows(values, headerRows)
	if len(rows) == 0 {
		return nil, common.ErrCatalogEmpty
	}
	return rows, nil
}

// LoadCSVFile reads a CSV export from disk into an Index.
func LoadCSVFile(path string, headerRows int) (*Index, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ReadCSV(f, headerRows)
	if err != nil {
		return nil, err
	}
	return NewIndex(rows), nil
}
