package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"expense-ledger/internal/domain"
)

// ExportFilename is the download hint attached to CSV exports.
const ExportFilename = "expenses.csv"

var csvHeader = []string{"Description", "Amount", "Category", "Date"}

// ExportService serializes filtered expense records for download.
type ExportService interface {
	BuildCSV(records []domain.ExpenseRecord) ([]byte, error)
}

type exportService struct{}

func NewExportService() ExportService {
	return exportService{}
}

// BuildCSV writes the fixed header row followed by one row per record,
// preserving the order of the input.
func (exportService) BuildCSV(records []domain.ExpenseRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Desc, strconv.FormatInt(r.Amt, 10), r.Category, r.Date}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
