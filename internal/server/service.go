// Package server provides the long-running HTTP API and stats monitor.
package server

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/theirongolddev/spendwise/internal/insight"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Store is the persistence the API reads and writes.
type Store interface {
	GetUser(ctx context.Context, id string) (model.User, error)
	ListUsers(ctx context.Context) ([]store.UserSummary, error)
	DeleteUser(ctx context.Context, id string) error
	ListExpenses(ctx context.Context, userID string) ([]model.Expense, error)
	AddExpense(ctx context.Context, e model.Expense) (model.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	Stats(ctx context.Context) (model.AdminStats, error)
}

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	DBPath       string
	Currency     string
}

// Snapshot is a compact cross-user state for status/event payloads.
type Snapshot struct {
	At         time.Time       `json:"at"`
	Users      int             `json:"users"`
	Expenses   int             `json:"expenses"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Users    int             `json:"users"`
	Expenses int             `json:"expenses"`
	Spent    decimal.Decimal `json:"spent"`
}

func (d Delta) isZero() bool {
	return d.Users == 0 &&
		d.Expenses == 0 &&
		d.Spent.IsZero()
}

// Event is emitted whenever the stats snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
}

// Service provides the server runtime and HTTP API.
type Service struct {
	cfg       Config
	st        Store
	formatter insight.Formatter
	now       func() time.Time
	app       *fiber.App

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event
}

// New returns a new service backed by st.
func New(cfg Config, st Store) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	formatter := insight.DefaultFormatter
	if cfg.Currency != "" {
		formatter.Currency = cfg.Currency
	}

	s := &Service{
		cfg:       cfg,
		st:        st,
		formatter: formatter,
		now:       time.Now,
		startedAt: time.Now(),
		snapshot:  Snapshot{TotalSpent: decimal.Zero},
	}
	s.app = s.newApp()
	return s
}

// App exposes the HTTP application, mainly for tests.
func (s *Service) App() *fiber.App {
	return s.app
}

// Run serves HTTP and polls stats until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.app.Listen(s.cfg.Addr); err != nil {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.app.ShutdownWithTimeout(5 * time.Second)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	stats, err := s.st.Stats(ctx)
	now := s.now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		log.Printf("spendwise server poll error: %v", err)
		return
	}

	snap := Snapshot{
		At:         now,
		Users:      stats.Users,
		Expenses:   stats.Expenses,
		TotalSpent: stats.TotalSpent,
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
			Delta:     Delta{Spent: decimal.Zero},
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "stats_delta",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Users:    curr.Users - prev.Users,
		Expenses: curr.Expenses - prev.Expenses,
		Spent:    curr.TotalSpent.Sub(prev.TotalSpent),
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
	}
}

func (s *Service) snapshotEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}
