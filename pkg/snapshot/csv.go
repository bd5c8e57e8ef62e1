// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package snapshot

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/lavapop/lifecycle-analytics/pkg/engine"
	"github.com/lavapop/lifecycle-analytics/pkg/normalize"
	"github.com/sirupsen/logrus"
)

// Source loads one immutable snapshot for an engine run.
type Source interface {
	Load(ctx context.Context) (*engine.Snapshot, error)
}

// imtPrefix strips the export wrapper some POS versions prepend to the
// file body.
var imtPrefix = regexp.MustCompile(`^IMTString\(\d+\):\s*`)

// CSVSource reads the POS sales export. The export format is messy: BOM
// prefixes, an occasional IMTString wrapper, and either semicolon or
// comma delimiters depending on the export version.
type CSVSource struct {
	SalesPath string
}

// NewCSVSource creates a source over a sales export file.
func NewCSVSource(salesPath string) *CSVSource {
	return &CSVSource{SalesPath: salesPath}
}

// Load parses the sales CSV into raw rows. Field interpretation is left
// entirely to the normalizer.
func (s *CSVSource) Load(ctx context.Context) (*engine.Snapshot, error) {
	rows, err := ReadRows(s.SalesPath)
	if err != nil {
		return nil, err
	}

	logrus.Infof("loaded %d raw rows from %s", len(rows), s.SalesPath)
	return &engine.Snapshot{Rows: rows}, nil
}

// ReadRows reads a POS CSV export into raw row maps keyed by header name.
func ReadRows(path string) ([]normalize.RawRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv file %s: %w", path, err)
	}

	text := CleanCSV(string(data))
	if text == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = DetectDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]normalize.RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(normalize.RawRow, len(header))
		for i, value := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = strings.TrimSpace(value)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// CleanCSV removes the BOM and the IMTString prefix from the export body.
func CleanCSV(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = imtPrefix.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// DetectDelimiter sniffs semicolon vs comma from the header line.
func DetectDelimiter(text string) rune {
	firstLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		firstLine = text[:i]
	}
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';'
	}
	return ','
}
