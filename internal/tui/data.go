package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/pipeline"
	"github.com/theirongolddev/spendwise/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// errNoUser means neither a user flag nor a configured default exists.
var errNoUser = errors.New("no user selected")

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	snapshot
}

// ProgressMsg reports statement import progress during the initial load.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background reload completes.
type RefreshDataMsg struct {
	snapshot
}

// snapshot is everything the dashboard shows for one user.
type snapshot struct {
	User     model.User
	Settings model.Settings
	Expenses []model.Expense
	Import   *pipeline.ImportResult
	LoadTime time.Duration
	Err      error
}

// loadRequest describes one load: which user, and whether to import
// statements or create the user first.
type loadRequest struct {
	dbPath     string
	userRef    string
	importDir  string
	createUser bool
}

// request builds a load for the current options. Statements are imported
// only on the initial load.
func (a App) request(initial bool) loadRequest {
	req := loadRequest{
		dbPath:  a.opts.DBPath,
		userRef: a.opts.User,
	}
	if initial {
		req.importDir = a.opts.ImportDir
	}
	return req
}

// load opens the store, optionally imports statements, and reads the
// user's expenses and settings.
func load(ctx context.Context, req loadRequest, progressFn pipeline.ProgressFunc) snapshot {
	start := time.Now()
	snap := snapshot{}

	if req.userRef == "" {
		snap.Err = errNoUser
		snap.LoadTime = time.Since(start)
		return snap
	}

	st, err := store.Open(req.dbPath)
	if err != nil {
		snap.Err = err
		snap.LoadTime = time.Since(start)
		return snap
	}
	defer func() { _ = st.Close() }()

	user, err := st.ResolveUser(ctx, req.userRef)
	if errors.Is(err, store.ErrNotFound) && req.createUser {
		user, err = st.CreateUser(ctx, req.userRef)
	}
	if err != nil {
		snap.Err = fmt.Errorf("user %s: %w", req.userRef, err)
		snap.LoadTime = time.Since(start)
		return snap
	}
	snap.User = user

	if req.importDir != "" {
		res, err := pipeline.Import(ctx, req.importDir, user.ID, st, progressFn)
		if err != nil {
			snap.Err = fmt.Errorf("importing %s: %w", req.importDir, err)
			snap.LoadTime = time.Since(start)
			return snap
		}
		snap.Import = res
	}

	if snap.Expenses, err = st.ListExpenses(ctx, user.ID); err != nil {
		snap.Err = err
	}
	if settings, err := st.GetSettings(ctx, user.ID); err == nil {
		snap.Settings = settings
	} else {
		snap.Settings = model.DefaultSettings(user.ID)
	}

	snap.LoadTime = time.Since(start)
	return snap
}

// loadDataCmd starts the initial load in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(req loadRequest, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			// Non-blocking send so import workers aren't stalled; the next
			// update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			sub <- DataLoadedMsg{load(context.Background(), req, progressFn)}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads in the background (no progress UI).
func refreshDataCmd(req loadRequest) tea.Cmd {
	return func() tea.Msg {
		return RefreshDataMsg{load(context.Background(), req, nil)}
	}
}
