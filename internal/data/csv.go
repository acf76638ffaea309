package data

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	datetimeKeywords = []string{"date", "time", "datetime", "timestamp", "hour_ending", "interval_start_local"}
	priceKeywords    = []string{"price", "lmp", "cost", "rate", "mwh", "kwh", "settlement", "lmp_with_adders"}
	hashKeywords     = []string{"hashprice", "hash", "price", "value"}
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
	"01/02/2006",
}

// LoadElectricityCSV reads an hourly or sub-hourly price export. The
// timestamp and price columns are found by header keyword; comma and
// semicolon separators are both accepted. Rows that fail to parse are
// skipped and sub-hourly rows are averaged into their hour. Timestamps without
// an offset are taken as UTC.
func LoadElectricityCSV(path string) ([]PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	points, err := ReadElectricityCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

func ReadElectricityCSV(r io.Reader) ([]PricePoint, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	tsCol := findColumn(header, datetimeKeywords, nil)
	priceCol := findColumn(header, priceKeywords, []string{"date", "time"})
	if tsCol < 0 || priceCol < 0 {
		return nil, fmt.Errorf("could not identify datetime or price columns in header %v", header)
	}
	return hourlyMean(rows, tsCol, priceCol), nil
}

// LoadHashpriceCSV reads `timestamp,hashprice` rows ($/TH/day), daily or
// hourly.
func LoadHashpriceCSV(path string) ([]PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	points, err := ReadHashpriceCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

func ReadHashpriceCSV(r io.Reader) ([]PricePoint, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	tsCol := findColumn(header, datetimeKeywords, nil)
	valCol := findColumn(header, hashKeywords, []string{"date", "time"})
	if tsCol < 0 || valCol < 0 {
		return nil, fmt.Errorf("could not identify timestamp or hashprice columns in header %v", header)
	}
	return hourlyMean(rows, tsCol, valCol), nil
}

func readTable(r io.Reader) ([]string, [][]string, error) {
	raw, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, nil, err
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = sniffDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv is empty")
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return header, records[1:], nil
}

func sniffDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// findColumn returns the first header containing any keyword and none of the
// excluded substrings, or -1.
func findColumn(header []string, keywords, exclude []string) int {
	for i, h := range header {
		if containsAny(h, exclude) {
			continue
		}
		if containsAny(h, keywords) {
			return i
		}
	}
	return -1
}

func containsAny(s string, subs []string) bool {
	for _, k := range subs {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func hourlyMean(rows [][]string, tsCol, valCol int) []PricePoint {
	type acc struct {
		sum float64
		n   int
	}
	byHour := map[int64]*acc{}
	for _, row := range rows {
		if tsCol >= len(row) || valCol >= len(row) {
			continue
		}
		ts, ok := parseTime(row[tsCol])
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[valCol]), 64)
		if err != nil {
			continue
		}
		key := ts.UTC().Truncate(time.Hour).Unix()
		a := byHour[key]
		if a == nil {
			a = &acc{}
			byHour[key] = a
		}
		a.sum += v
		a.n++
	}

	out := make([]PricePoint, 0, len(byHour))
	for key, a := range byHour {
		out = append(out, PricePoint{Timestamp: time.Unix(key, 0).UTC(), Value: a.sum / float64(a.n)})
	}
	sortPoints(out)
	return out
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
