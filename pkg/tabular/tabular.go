// Package tabular parses uploaded timetable documents (CSV, JSON, or XLSX)
// into flat string records that can be rendered into an assistant prompt.
package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// Parse errors surfaced to callers.
var (
	ErrEmptyFile         = errors.New("uploaded file is empty")
	ErrTooLarge          = errors.New("uploaded file exceeds the size limit")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Record is one row of an uploaded document keyed by column header.
type Record map[string]string

// Parse sniffs the document format from content and extension, then extracts
// its rows. A file whose header row is the only content yields zero records
// without error.
func Parse(filename string, data []byte, maxBytes int64) ([]Record, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	mime := mimetype.Detect(data)

	switch {
	case ext == ".xlsx" || mime.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
		return parseXLSX(data)
	case ext == ".json" || mime.Is("application/json"):
		return parseJSON(data)
	case ext == ".csv" || mime.Is("text/csv"):
		return parseCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, ext, mime.String())
	}
}

func parseCSV(data []byte) ([]Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	return rowsToRecords(rows), nil
}

func parseJSON(data []byte) ([]Record, error) {
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		record := make(Record, len(row))
		for key, value := range row {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			record[key] = stringifyValue(value)
		}
		if len(record) > 0 {
			records = append(records, record)
		}
	}

	return records, nil
}

func parseXLSX(data []byte) ([]Record, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	return rowsToRecords(rows), nil
}

func rowsToRecords(rows [][]string) []Record {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(Record, len(headers))
		empty := true
		for i, header := range headers {
			if header == "" {
				continue
			}
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			record[header] = value
			if value != "" {
				empty = false
			}
		}
		if !empty {
			records = append(records, record)
		}
	}

	return records
}

func stringifyValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
