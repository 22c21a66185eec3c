package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/spendwise/internal/store"
)

func openImportStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "import.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	u, err := st.CreateUser(context.Background(), "import@example.com")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return st, u.ID
}

func writeCSV(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportSkipsUnchangedFiles(t *testing.T) {
	st, userID := openImportStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeCSV(t, dir, "jan.csv",
		"date,amount,category",
		"2025-01-03,120,Food & Dining",
		"2025-01-04,80,Transportation",
	)
	feb := writeCSV(t, dir, "feb.csv",
		"date,amount,category",
		"2025-02-01,500,Bills & Utilities",
		"not-a-date,1,Others",
	)

	var calls atomic.Int64
	res, err := Import(ctx, dir, userID, st, func(current, total int) {
		calls.Add(1)
		if total != 2 || current < 1 || current > 2 {
			t.Errorf("progress(%d, %d) out of range", current, total)
		}
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.TotalFiles != 2 || res.ParsedFiles != 2 || res.Imported != 3 || res.ParseErrors != 1 {
		t.Fatalf("first import = %+v", res)
	}
	if calls.Load() != 2 {
		t.Errorf("progress calls = %d, want 2", calls.Load())
	}

	res, err = Import(ctx, dir, userID, st, nil)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if res.Unchanged != 2 || res.ParsedFiles != 0 || res.Imported != 0 {
		t.Fatalf("second import = %+v, want everything unchanged", res)
	}

	// Rewrite feb with a different row set and a new mtime.
	writeCSV(t, dir, "feb.csv",
		"date,amount,category",
		"2025-02-01,500,Bills & Utilities",
		"2025-02-02,25,Food & Dining",
		"2025-02-03,75,Food & Dining",
	)
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(feb, later, later); err != nil {
		t.Fatal(err)
	}

	res, err = Import(ctx, dir, userID, st, nil)
	if err != nil {
		t.Fatalf("third Import: %v", err)
	}
	if res.Unchanged != 1 || res.ParsedFiles != 1 || res.Imported != 3 {
		t.Fatalf("third import = %+v", res)
	}

	expenses, err := st.ListExpenses(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(expenses) != 5 {
		t.Fatalf("stored expenses = %d, want 5 (changed file replaced, not duplicated)", len(expenses))
	}
}

func TestImportCountsFileErrors(t *testing.T) {
	st, userID := openImportStore(t)
	dir := t.TempDir()
	writeCSV(t, dir, "bad.csv", "when,how much", "2025-01-01,10")
	writeCSV(t, dir, "good.csv", "date,amount,category", "2025-01-01,10,Others")

	res, err := Import(context.Background(), dir, userID, st, nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.FileErrors != 1 || res.ParsedFiles != 1 || res.Imported != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestImportMissingPath(t *testing.T) {
	st, userID := openImportStore(t)
	if _, err := Import(context.Background(), filepath.Join(t.TempDir(), "nope"), userID, st, nil); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestImportCanceled(t *testing.T) {
	st, userID := openImportStore(t)
	dir := t.TempDir()
	writeCSV(t, dir, "jan.csv", "date,amount,category", "2025-01-01,10,Others")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Import(ctx, dir, userID, st, nil); err == nil {
		t.Fatal("expected context error")
	}
}
