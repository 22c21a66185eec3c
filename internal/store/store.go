// Package store provides SQLite-backed persistence for users, expenses,
// settings, and statement import tracking.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/spendwise/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrProtectedUser is returned when deleting an admin account.
	ErrProtectedUser = errors.New("admin accounts cannot be deleted")
	// ErrEmailTaken is returned when registering an email twice.
	ErrEmailTaken = errors.New("email already registered")
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the spendwise database handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTimestamp(v string) time.Time {
	t, _ := time.Parse(timeLayout, v)
	return t
}

// ─── Users ──────────────────────────────────────────────────────

// CreateUser registers an account with the default role and settings.
func (s *Store) CreateUser(ctx context.Context, email string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return model.User{}, fmt.Errorf("%w: email %q", model.ErrInvalidInput, email)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&exists); err != nil {
		return model.User{}, err
	}
	if exists > 0 {
		return model.User{}, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}

	u := model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      model.RoleUser,
		CreatedAt: s.now().UTC(),
	}
	now := u.CreatedAt.Format(timeLayout)
	def := model.DefaultSettings(u.ID)

	if _, err := tx.ExecContext(ctx, "INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)",
		u.ID, u.Email, now); err != nil {
		return model.User{}, fmt.Errorf("inserting user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO user_roles (user_id, role, created_at) VALUES (?, ?, ?)",
		u.ID, string(u.Role), now); err != nil {
		return model.User{}, fmt.Errorf("inserting role: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO user_settings (user_id, theme, language, updated_at) VALUES (?, ?, ?, ?)",
		u.ID, def.Theme, def.Language, now); err != nil {
		return model.User{}, fmt.Errorf("inserting settings: %w", err)
	}

	return u, tx.Commit()
}

const userSelect = `SELECT u.id, u.email, u.created_at, COALESCE(r.role, 'user')
	FROM users u LEFT JOIN user_roles r ON r.user_id = u.id`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var created, role string
	if err := row.Scan(&u.ID, &u.Email, &created, &role); err != nil {
		return model.User{}, err
	}
	u.CreatedAt = parseTimestamp(created)
	u.Role = model.Role(role)
	return u, nil
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, userSelect+" WHERE u.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u, err
}

// FindUserByEmail returns the user registered under email (case-insensitive).
func (s *Store) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, userSelect+" WHERE u.email = ?", strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return u, err
}

// ResolveUser looks a user up by email when ref contains "@", else by id.
func (s *Store) ResolveUser(ctx context.Context, ref string) (model.User, error) {
	if strings.Contains(ref, "@") {
		return s.FindUserByEmail(ctx, ref)
	}
	return s.GetUser(ctx, ref)
}

// UserSummary is a user row with their expense totals, for admin listings.
type UserSummary struct {
	model.User
	Expenses int
	Spent    decimal.Decimal
}

// ListUsers returns all users, newest first, with expense counts and totals.
func (s *Store) ListUsers(ctx context.Context) ([]UserSummary, error) {
	rows, err := s.db.QueryContext(ctx, userSelect+" ORDER BY u.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []UserSummary
	idx := make(map[string]int)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		idx[u.ID] = len(users)
		users = append(users, UserSummary{User: u, Spent: decimal.Zero})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Batch-load amounts; sums stay in decimal.
	amountRows, err := s.db.QueryContext(ctx, "SELECT user_id, amount FROM expenses")
	if err != nil {
		return nil, err
	}
	defer func() { _ = amountRows.Close() }()

	for amountRows.Next() {
		var uid, amount string
		if err := amountRows.Scan(&uid, &amount); err != nil {
			return nil, err
		}
		i, ok := idx[uid]
		if !ok {
			continue
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("expense amount %q: %w", amount, err)
		}
		users[i].Expenses++
		users[i].Spent = users[i].Spent.Add(d)
	}

	return users, amountRows.Err()
}

// SetRole changes a user's role.
func (s *Store) SetRole(ctx context.Context, id string, role model.Role) error {
	if role != model.RoleUser && role != model.RoleAdmin {
		return fmt.Errorf("%w: role %q", model.ErrInvalidInput, role)
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_roles (user_id, role, created_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET role = excluded.role`, id, string(role), s.timestamp())
	return err
}

// DeleteUser removes a user and, by cascade, their expenses and settings.
// Admin accounts are refused.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin() {
		return fmt.Errorf("%s: %w", u.Email, ErrProtectedUser)
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	return err
}

// ─── Expenses ───────────────────────────────────────────────────

// AddExpense stores a new expense, assigning its ID and creation time.
func (s *Store) AddExpense(ctx context.Context, e model.Expense) (model.Expense, error) {
	saved, err := s.AddExpenses(ctx, []model.Expense{e})
	if err != nil {
		return model.Expense{}, err
	}
	return saved[0], nil
}

// AddExpenses stores a batch of expenses in one transaction.
func (s *Store) AddExpenses(ctx context.Context, expenses []model.Expense) ([]model.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	saved, err := s.insertExpenses(ctx, tx, expenses)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

// ReplaceImported swaps the expenses previously imported from a statement
// file for a fresh parse of it and records the file in the tracker, all in
// one transaction.
func (s *Store) ReplaceImported(ctx context.Context, userID, path string, fi FileInfo, expenses []model.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE user_id = ? AND source_file = ?", userID, path); err != nil {
		return fmt.Errorf("clearing previous import: %w", err)
	}

	batch := make([]model.Expense, len(expenses))
	for i, e := range expenses {
		e.UserID = userID
		e.Source = path
		batch[i] = e
	}
	if _, err := s.insertExpenses(ctx, tx, batch); err != nil {
		return err
	}

	fi.Imported = len(batch)
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO file_tracker
		(file_path, user_id, mtime_ns, size_bytes, imported, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`, path, userID, fi.MtimeNs, fi.SizeBytes, fi.Imported, s.timestamp()); err != nil {
		return fmt.Errorf("tracking file: %w", err)
	}

	return tx.Commit()
}

func (s *Store) insertExpenses(ctx context.Context, tx *sql.Tx, expenses []model.Expense) ([]model.Expense, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO expenses
		(id, user_id, amount, category, description, expense_date, source_file, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stmt.Close() }()

	created := s.now().UTC()
	saved := make([]model.Expense, 0, len(expenses))
	for _, e := range expenses {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if e.UserID == "" {
			return nil, fmt.Errorf("%w: expense without user", model.ErrInvalidInput)
		}
		e.ID = uuid.NewString()
		e.CreatedAt = created
		e.Date = model.CalendarDate(e.Date)
		e.Category = strings.TrimSpace(e.Category)
		if e.Category == "" {
			e.Category = model.CategoryOthers
		}

		if _, err := stmt.ExecContext(ctx, e.ID, e.UserID, e.Amount.String(), e.Category,
			nullString(e.Description), e.Date.Format(model.DateLayout), nullString(e.Source),
			created.Format(timeLayout)); err != nil {
			return nil, fmt.Errorf("inserting expense: %w", err)
		}
		saved = append(saved, e)
	}
	return saved, nil
}

// UpdateExpense overwrites amount, category, description, and date.
func (s *Store) UpdateExpense(ctx context.Context, e model.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE expenses
		SET amount = ?, category = ?, description = ?, expense_date = ?
		WHERE id = ?`,
		e.Amount.String(), e.Category, nullString(e.Description),
		model.CalendarDate(e.Date).Format(model.DateLayout), e.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, "expense", e.ID)
}

// DeleteExpense removes an expense.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "expense", id)
}

const expenseSelect = `SELECT id, user_id, amount, category, description, expense_date, source_file, created_at FROM expenses`

func scanExpense(row interface{ Scan(...any) error }) (model.Expense, error) {
	var e model.Expense
	var amount, date, created string
	var desc, src sql.NullString
	if err := row.Scan(&e.ID, &e.UserID, &amount, &e.Category, &desc, &date, &src, &created); err != nil {
		return model.Expense{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Expense{}, fmt.Errorf("expense %s amount %q: %w", e.ID, amount, err)
	}
	e.Amount = d
	e.Description = desc.String
	e.Source = src.String
	e.Date, err = time.Parse(model.DateLayout, date)
	if err != nil {
		return model.Expense{}, fmt.Errorf("expense %s date %q: %w", e.ID, date, err)
	}
	e.CreatedAt = parseTimestamp(created)
	return e, nil
}

// GetExpense returns a single expense.
func (s *Store) GetExpense(ctx context.Context, id string) (model.Expense, error) {
	e, err := scanExpense(s.db.QueryRowContext(ctx, expenseSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Expense{}, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	return e, err
}

// ListExpenses returns a user's expenses, most recent date first.
func (s *Store) ListExpenses(ctx context.Context, userID string) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx, expenseSelect+
		" WHERE user_id = ? ORDER BY expense_date DESC, created_at DESC, id", userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ─── Settings ───────────────────────────────────────────────────

// GetSettings returns a user's display settings.
func (s *Store) GetSettings(ctx context.Context, userID string) (model.Settings, error) {
	st := model.Settings{UserID: userID}
	var updated string
	err := s.db.QueryRowContext(ctx, "SELECT theme, language, updated_at FROM user_settings WHERE user_id = ?", userID).
		Scan(&st.Theme, &st.Language, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Settings{}, fmt.Errorf("settings for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return model.Settings{}, err
	}
	st.UpdatedAt = parseTimestamp(updated)
	return st, nil
}

// UpdateSettings writes a user's theme and language.
func (s *Store) UpdateSettings(ctx context.Context, st model.Settings) error {
	if !oneOf(st.Theme, model.ValidThemes) {
		return fmt.Errorf("%w: theme %q", model.ErrInvalidInput, st.Theme)
	}
	if !oneOf(st.Language, model.ValidLanguages) {
		return fmt.Errorf("%w: language %q", model.ErrInvalidInput, st.Language)
	}
	res, err := s.db.ExecContext(ctx, "UPDATE user_settings SET theme = ?, language = ?, updated_at = ? WHERE user_id = ?",
		st.Theme, st.Language, s.timestamp(), st.UserID)
	if err != nil {
		return err
	}
	return requireAffected(res, "settings", st.UserID)
}

// ─── Admin ──────────────────────────────────────────────────────

// Stats returns cross-user totals.
func (s *Store) Stats(ctx context.Context) (model.AdminStats, error) {
	stats := model.AdminStats{TotalSpent: decimal.Zero}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&stats.Users); err != nil {
		return stats, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT amount FROM expenses")
	if err != nil {
		return stats, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return stats, err
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return stats, fmt.Errorf("expense amount %q: %w", amount, err)
		}
		stats.Expenses++
		stats.TotalSpent = stats.TotalSpent.Add(d)
	}
	return stats, rows.Err()
}

// ─── Import tracking ────────────────────────────────────────────

// FileInfo holds the tracked mtime and size for an imported statement file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
	Imported  int
}

// TrackedFiles returns file_path -> FileInfo for a user's imported files.
func (s *Store) TrackedFiles(ctx context.Context, userID string) (map[string]FileInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT file_path, mtime_ns, size_bytes, imported FROM file_tracker WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &fi.Imported); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// TrackFile records that a statement file was imported for a user.
func (s *Store) TrackFile(ctx context.Context, userID, path string, fi FileInfo) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO file_tracker
		(file_path, user_id, mtime_ns, size_bytes, imported, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`, path, userID, fi.MtimeNs, fi.SizeBytes, fi.Imported, s.timestamp())
	return err
}

// ─── Helpers ────────────────────────────────────────────────────

func requireAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
