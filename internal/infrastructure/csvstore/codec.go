// Package csvstore reads and writes the tabular collection format: a header row
// followed by one row per record, UTF-8 with a leading byte order mark.
// Field values round-trip byte for byte, including CRLF inside quoted fields.
package csvstore

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"NewsSignal/internal/domain"
)

// Table is a decoded CSV file.
type Table struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of column in the header or -1.
func (t Table) Index(column string) int {
	for i, name := range t.Header {
		if name == column {
			return i
		}
	}
	return -1
}

// crMarker stands in for a carriage return inside a quoted field while
// encoding/csv parses, since its reader folds a quoted \r\n into \n.
// U+FDD0 is a noncharacter and does not occur in text.
const crMarker = "\uFDD0"

// Read decodes a CSV stream. A BOM on the first cell is dropped and every row
// must have as many fields as the header.
func Read(r io.Reader) (Table, error) {
	data, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return Table{}, fmt.Errorf("decode: %w", err)
	}
	data, protected := protectQuotedCR(data)
	reader := csv.NewReader(bytes.NewReader(data))

	header, err := reader.Read()
	if err == io.EOF {
		return Table{}, fmt.Errorf("empty file: no header row")
	}
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read rows: %w", err)
	}
	if protected {
		restoreCR(header)
		for _, row := range rows {
			restoreCR(row)
		}
	}
	return Table{Header: header, Rows: rows}, nil
}

// protectQuotedCR swaps carriage returns inside quoted fields for crMarker.
// Record terminators outside quotes are left for the csv reader.
func protectQuotedCR(data []byte) ([]byte, bool) {
	if bytes.IndexByte(data, '\r') < 0 || bytes.Contains(data, []byte(crMarker)) {
		return data, false
	}

	out := make([]byte, 0, len(data)+64)
	inQuotes, protected := false, false
	for _, b := range data {
		switch {
		case b == '"':
			inQuotes = !inQuotes
		case b == '\r' && inQuotes:
			out = append(out, crMarker...)
			protected = true
			continue
		}
		out = append(out, b)
	}
	return out, protected
}

func restoreCR(fields []string) {
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, crMarker, "\r")
	}
}

// ReadFile opens and decodes path.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Records maps the table onto the record schema. Extra columns are ignored.
// When a required column is absent the missing names are returned and no
// records are produced.
func Records(t Table) ([]domain.Record, []string) {
	idx := make(map[string]int, len(domain.Columns))
	var missing []string
	for _, column := range domain.Columns {
		pos := t.Index(column)
		if pos < 0 {
			missing = append(missing, column)
			continue
		}
		idx[column] = pos
	}
	if len(missing) > 0 {
		return nil, missing
	}

	records := make([]domain.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, domain.Record{
			Title:       row[idx[domain.ColumnTitle]],
			Link:        row[idx[domain.ColumnLink]],
			Summary:     row[idx[domain.ColumnSummary]],
			Publisher:   row[idx[domain.ColumnPublisher]],
			Reporter:    row[idx[domain.ColumnReporter]],
			Signal:      domain.Signal(row[idx[domain.ColumnSignal]]),
			CollectedAt: row[idx[domain.ColumnCollectedAt]],
		})
	}
	return records, nil
}

// Write encodes the header and records with a UTF-8 BOM.
func Write(w io.Writer, records []domain.Record) error {
	encoded := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	writer := csv.NewWriter(encoded)

	if err := writer.Write(domain.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record.Values()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	if err := encoded.Close(); err != nil {
		return fmt.Errorf("flush encoder: %w", err)
	}
	return nil
}
