package source

import "github.com/theirongolddev/spendwise/internal/model"

// DiscoveredFile represents a statement CSV found during scanning.
type DiscoveredFile struct {
	Path    string
	Name    string // base name, shown in progress output
	MtimeNs int64
	Size    int64
}

// ParseResult holds the output of parsing a single statement file.
type ParseResult struct {
	Expenses    []model.Expense
	Rows        int // data rows read, including rejected ones
	ParseErrors int
	Err         error
}
