package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	users    map[string]model.User
	expenses []model.Expense
	statsErr error
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]model.User)}
}

func (m *memStore) addUser(id string, role model.Role) {
	m.users[id] = model.User{ID: id, Email: id + "@example.com", Role: role}
}

func (m *memStore) GetUser(_ context.Context, id string) (model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	return u, nil
}

func (m *memStore) ListUsers(_ context.Context) ([]store.UserSummary, error) {
	var out []store.UserSummary
	for _, u := range m.users {
		out = append(out, store.UserSummary{User: u, Spent: decimal.Zero})
	}
	return out, nil
}

func (m *memStore) DeleteUser(ctx context.Context, id string) error {
	u, err := m.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin() {
		return store.ErrProtectedUser
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) ListExpenses(_ context.Context, userID string) ([]model.Expense, error) {
	var out []model.Expense
	for _, e := range m.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) AddExpense(_ context.Context, e model.Expense) (model.Expense, error) {
	m.nextID++
	e.ID = fmt.Sprintf("e%d", m.nextID)
	m.expenses = append(m.expenses, e)
	return e, nil
}

func (m *memStore) DeleteExpense(_ context.Context, id string) error {
	for i, e := range m.expenses {
		if e.ID == id {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %s: %w", id, store.ErrNotFound)
}

func (m *memStore) Stats(_ context.Context) (model.AdminStats, error) {
	if m.statsErr != nil {
		return model.AdminStats{}, m.statsErr
	}
	total := decimal.Zero
	for _, e := range m.expenses {
		total = total.Add(e.Amount)
	}
	return model.AdminStats{Users: len(m.users), Expenses: len(m.expenses), TotalSpent: total}, nil
}

func newTestService(t *testing.T, st *memStore) *Service {
	t.Helper()
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, st)
	s.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }
	return s
}

func doRequest(t *testing.T, s *Service, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func decodeJSON(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decoding %s: %v", data, err)
	}
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Users: 3, Expenses: 10, TotalSpent: decimal.RequireFromString("1000.50")}
	curr := Snapshot{Users: 4, Expenses: 12, TotalSpent: decimal.RequireFromString("1250.75")}

	delta := diffSnapshots(prev, curr)
	if delta.Users != 1 {
		t.Fatalf("Users delta = %d, want 1", delta.Users)
	}
	if delta.Expenses != 2 {
		t.Fatalf("Expenses delta = %d, want 2", delta.Expenses)
	}
	if !delta.Spent.Equal(decimal.RequireFromString("250.25")) {
		t.Fatalf("Spent delta = %s, want 250.25", delta.Spent)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should give a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := newTestService(t, newMemStore())

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOncePublishesOnChange(t *testing.T) {
	st := newMemStore()
	st.addUser("u1", model.RoleUser)
	s := newTestService(t, st)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx) // unchanged, no event
	st.expenses = append(st.expenses, model.Expense{UserID: "u1", Amount: decimal.NewFromInt(40)})
	s.pollOnce(ctx)

	events := s.snapshotEvents()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Type != "snapshot" || events[1].Type != "stats_delta" {
		t.Fatalf("event types = %s, %s", events[0].Type, events[1].Type)
	}
	if events[1].Delta.Expenses != 1 {
		t.Fatalf("delta = %+v", events[1].Delta)
	}

	st.statsErr = errors.New("db locked")
	s.pollOnce(ctx)
	status := s.snapshotStatus()
	if status.PollCount != 4 || status.LastError != "db locked" {
		t.Fatalf("status = %+v", status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestService(t, newMemStore())
	code, body := doRequest(t, s, "GET", "/healthz", "")
	if code != fiber.StatusOK || string(body) != "ok\n" {
		t.Fatalf("healthz = %d %q", code, body)
	}
}

func TestTaxEndpoint(t *testing.T) {
	s := newTestService(t, newMemStore())

	code, body := doRequest(t, s, "GET", "/v1/tax?income=1500000", "")
	if code != fiber.StatusOK {
		t.Fatalf("status = %d, body %s", code, body)
	}
	var got taxResponse
	decodeJSON(t, body, &got)
	if got.Tax != 145600 || got.TakeHome != 1354400 {
		t.Errorf("tax = %v, takeHome = %v", got.Tax, got.TakeHome)
	}
	if got.SlabLabel != "1,200,001–1,500,000" || got.SuggestedForm != "Form B" {
		t.Errorf("slab = %q, form = %q", got.SlabLabel, got.SuggestedForm)
	}
}

func TestTaxEndpointErrors(t *testing.T) {
	s := newTestService(t, newMemStore())

	tests := []struct {
		path string
		code int
		msg  string
	}{
		{"/v1/tax", fiber.StatusBadRequest, "income query parameter is required"},
		{"/v1/tax?income=lots", fiber.StatusBadRequest, ""},
		{"/v1/tax?income=-5", fiber.StatusInternalServerError, "failed to compute tax estimate"},
	}
	for _, tt := range tests {
		code, body := doRequest(t, s, "GET", tt.path, "")
		if code != tt.code {
			t.Errorf("%s: status = %d, want %d (%s)", tt.path, code, tt.code, body)
			continue
		}
		var resp map[string]string
		decodeJSON(t, body, &resp)
		if resp["error"] == "" || (tt.msg != "" && resp["error"] != tt.msg) {
			t.Errorf("%s: error = %q, want %q", tt.path, resp["error"], tt.msg)
		}
	}
}

func TestSlabsEndpoint(t *testing.T) {
	s := newTestService(t, newMemStore())
	code, body := doRequest(t, s, "GET", "/v1/tax/slabs", "")
	if code != fiber.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var slabs []slabJSON
	decodeJSON(t, body, &slabs)
	if len(slabs) != 6 {
		t.Fatalf("slabs = %d, want 6", len(slabs))
	}
	if slabs[5].Upper != nil || slabs[5].RatePercent != 30 {
		t.Errorf("top slab = %+v", slabs[5])
	}
}

func TestInsightsEndpoint(t *testing.T) {
	st := newMemStore()
	st.addUser("u1", model.RoleUser)
	st.expenses = []model.Expense{{
		ID:       "e1",
		UserID:   "u1",
		Amount:   decimal.NewFromInt(1000),
		Category: model.CategoryFood,
		Date:     time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	}}
	s := newTestService(t, st)

	code, body := doRequest(t, s, "GET", "/v1/users/u1/insights", "")
	if code != fiber.StatusOK {
		t.Fatalf("status = %d, body %s", code, body)
	}
	var got insightsResponse
	decodeJSON(t, body, &got)
	if len(got.Insights) != 5 {
		t.Fatalf("insights = %d, want 5: %v", len(got.Insights), got.Insights)
	}
	if !strings.HasPrefix(got.Insight, "You've tracked ₹1,000 in total expenses across 1 transaction.") {
		t.Errorf("insight = %q", got.Insight)
	}
}

func TestInsightsEndpointErrors(t *testing.T) {
	st := newMemStore()
	st.addUser("u1", model.RoleUser)
	st.expenses = []model.Expense{{
		UserID: "u1",
		Amount: decimal.NewFromInt(-1),
		Date:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
	s := newTestService(t, st)

	code, _ := doRequest(t, s, "GET", "/v1/users/nobody/insights", "")
	if code != fiber.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", code)
	}

	code, body := doRequest(t, s, "GET", "/v1/users/u1/insights", "")
	if code != fiber.StatusInternalServerError {
		t.Fatalf("bad record status = %d, want 500", code)
	}
	var resp map[string]string
	decodeJSON(t, body, &resp)
	if resp["error"] != "failed to generate insights" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestEmptyInsightsOnboarding(t *testing.T) {
	st := newMemStore()
	st.addUser("u1", model.RoleUser)
	s := newTestService(t, st)

	_, body := doRequest(t, s, "GET", "/v1/users/u1/insights", "")
	var got insightsResponse
	decodeJSON(t, body, &got)
	if !strings.HasPrefix(got.Insight, "Start tracking your expenses") {
		t.Errorf("insight = %q, want onboarding prompt", got.Insight)
	}
}

func TestExpenseEndpoints(t *testing.T) {
	st := newMemStore()
	st.addUser("u1", model.RoleUser)
	s := newTestService(t, st)

	code, body := doRequest(t, s, "POST", "/v1/users/u1/expenses",
		`{"amount": 250.75, "category": "Shopping", "description": "shirt", "date": "2025-03-02"}`)
	if code != fiber.StatusCreated {
		t.Fatalf("POST status = %d, body %s", code, body)
	}
	var created expenseJSON
	decodeJSON(t, body, &created)
	if created.ID == "" || created.Date != "2025-03-02" || !created.Amount.Equal(decimal.RequireFromString("250.75")) {
		t.Fatalf("created = %+v", created)
	}

	code, body = doRequest(t, s, "POST", "/v1/users/u1/expenses", `{"amount": "99", "category": "Food & Dining"}`)
	if code != fiber.StatusCreated {
		t.Fatalf("POST without date status = %d, body %s", code, body)
	}
	var dated expenseJSON
	decodeJSON(t, body, &dated)
	if dated.Date != "2025-03-15" {
		t.Errorf("default date = %s, want server today", dated.Date)
	}

	for _, bad := range []string{`{"amount": -1}`, `{"category": "x"}`, `{"amount": 1, "date": "March"}`, `not json`} {
		if code, _ := doRequest(t, s, "POST", "/v1/users/u1/expenses", bad); code != fiber.StatusBadRequest {
			t.Errorf("POST %s status = %d, want 400", bad, code)
		}
	}

	code, body = doRequest(t, s, "GET", "/v1/users/u1/expenses", "")
	if code != fiber.StatusOK {
		t.Fatalf("GET status = %d", code)
	}
	var list []expenseJSON
	decodeJSON(t, body, &list)
	if len(list) != 2 {
		t.Fatalf("list = %d, want 2", len(list))
	}

	if code, _ := doRequest(t, s, "DELETE", "/v1/expenses/"+created.ID, ""); code != fiber.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", code)
	}
	if code, _ := doRequest(t, s, "DELETE", "/v1/expenses/"+created.ID, ""); code != fiber.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	st := newMemStore()
	st.addUser("u1", model.RoleUser)
	for i, amt := range []int64{100, 300} {
		st.expenses = append(st.expenses, model.Expense{
			ID:       fmt.Sprintf("e%d", i),
			UserID:   "u1",
			Amount:   decimal.NewFromInt(amt),
			Category: model.CategoryBills,
			Date:     time.Date(2025, 3, 1+i, 0, 0, 0, 0, time.UTC),
		})
	}
	s := newTestService(t, st)

	code, body := doRequest(t, s, "GET", "/v1/users/u1/summary", "")
	if code != fiber.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var got summaryResponse
	decodeJSON(t, body, &got)
	if got.TotalExpenses != 2 || !got.MonthSpent.Equal(decimal.NewFromInt(400)) {
		t.Errorf("summary = %+v", got)
	}
	if len(got.Categories) != 1 || got.Categories[0].SharePercent != 100 {
		t.Errorf("categories = %+v", got.Categories)
	}
	if len(got.Recent) != 2 || got.Recent[0].Date != "2025-03-01" {
		t.Errorf("recent = %+v", got.Recent)
	}
}

func TestAdminEndpoints(t *testing.T) {
	st := newMemStore()
	st.addUser("admin", model.RoleAdmin)
	st.addUser("u1", model.RoleUser)
	s := newTestService(t, st)

	code, body := doRequest(t, s, "GET", "/v1/admin/users", "")
	if code != fiber.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var users []adminUserJSON
	decodeJSON(t, body, &users)
	if len(users) != 2 {
		t.Fatalf("users = %d, want 2", len(users))
	}

	if code, _ := doRequest(t, s, "DELETE", "/v1/admin/users/admin", ""); code != fiber.StatusForbidden {
		t.Errorf("delete admin status = %d, want 403", code)
	}
	if code, _ := doRequest(t, s, "DELETE", "/v1/admin/users/u1", ""); code != fiber.StatusNoContent {
		t.Errorf("delete user status = %d, want 204", code)
	}
	if code, _ := doRequest(t, s, "DELETE", "/v1/admin/users/u1", ""); code != fiber.StatusNotFound {
		t.Errorf("delete missing user status = %d, want 404", code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	st := newMemStore()
	st.addUser("u1", model.RoleUser)
	s := newTestService(t, st)
	s.pollOnce(context.Background())

	code, body := doRequest(t, s, "GET", "/v1/status", "")
	if code != fiber.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var got Status
	decodeJSON(t, body, &got)
	if got.PollCount != 1 || got.Summary.Users != 1 || got.EventCount != 1 {
		t.Errorf("status = %+v", got)
	}

	code, body = doRequest(t, s, "GET", "/v1/events", "")
	if code != fiber.StatusOK {
		t.Fatalf("events status = %d", code)
	}
	var events []Event
	decodeJSON(t, body, &events)
	if len(events) != 1 || events[0].Type != "snapshot" {
		t.Errorf("events = %+v", events)
	}
}
