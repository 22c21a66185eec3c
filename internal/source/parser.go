// Package source discovers and parses bank statement CSV exports.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/spendwise/internal/model"
)

// DateLayouts lists the accepted statement date formats, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02 Jan 2006",
}

// ErrMissingColumn is returned when a required header column is absent.
var ErrMissingColumn = errors.New("missing column")

type columns struct {
	date, amount, category, description int
}

// ParseFile reads a statement CSV and converts each data row to an expense.
// Rows with an unreadable date or amount are counted in ParseErrors and
// skipped; a missing header or unreadable file sets Err.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse reads statement CSV from r.
func Parse(r io.Reader) ParseResult {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{}
		}
		return ParseResult{Err: fmt.Errorf("reading header: %w", err)}
	}
	cols, err := mapHeader(header)
	if err != nil {
		return ParseResult{Err: err}
	}

	var result ParseResult
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				result.Rows++
				result.ParseErrors++
				continue
			}
			result.Err = err
			return result
		}

		result.Rows++
		e, ok := parseRecord(record, cols)
		if !ok {
			result.ParseErrors++
			continue
		}
		result.Expenses = append(result.Expenses, e)
	}

	return result
}

func mapHeader(header []string) (columns, error) {
	cols := columns{date: -1, amount: -1, category: -1, description: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch name {
		case "date":
			cols.date = i
		case "amount":
			cols.amount = i
		case "category":
			cols.category = i
		case "description", "note", "narration":
			cols.description = i
		}
	}
	if cols.date < 0 {
		return cols, fmt.Errorf("%w: date", ErrMissingColumn)
	}
	if cols.amount < 0 {
		return cols, fmt.Errorf("%w: amount", ErrMissingColumn)
	}
	if cols.category < 0 {
		return cols, fmt.Errorf("%w: category", ErrMissingColumn)
	}
	return cols, nil
}

func parseRecord(record []string, cols columns) (model.Expense, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, ok := ParseDate(field(cols.date))
	if !ok {
		return model.Expense{}, false
	}
	amount, err := model.ParseAmount(field(cols.amount))
	if err != nil {
		return model.Expense{}, false
	}

	category := field(cols.category)
	if category == "" {
		category = model.CategoryOthers
	}

	return model.Expense{
		Amount:      amount,
		Category:    category,
		Description: field(cols.description),
		Date:        date,
	}, true
}

// ParseDate parses a statement date in any of DateLayouts, as midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
