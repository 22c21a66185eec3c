package server

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/theirongolddev/spendwise/internal/insight"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/pipeline"
	"github.com/theirongolddev/spendwise/internal/store"
	"github.com/theirongolddev/spendwise/internal/tax"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
)

const recentLimit = 7

func (s *Service) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "spendwise",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(fiberrecover.New())

	app.Get("/healthz", s.handleHealth)

	v1 := app.Group("/v1")
	v1.Get("/status", s.handleStatus)
	v1.Get("/events", s.handleEvents)

	v1.Get("/users/:id/insights", s.handleInsights)
	v1.Get("/users/:id/summary", s.handleSummary)
	v1.Get("/users/:id/expenses", s.handleListExpenses)
	v1.Post("/users/:id/expenses", s.handleAddExpense)
	v1.Delete("/expenses/:id", s.handleDeleteExpense)

	v1.Get("/tax", s.handleTax)
	v1.Get("/tax/slabs", s.handleSlabs)

	v1.Get("/admin/users", s.handleAdminUsers)
	v1.Delete("/admin/users/:id", s.handleAdminDeleteUser)

	return app
}

// handleError maps errors to JSON bodies. Unexpected failures are logged and
// reported with a generic message only.
func (s *Service) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, store.ErrProtectedUser):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("spendwise server %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericError(c.Path())})
}

func genericError(path string) string {
	switch {
	case strings.HasSuffix(path, "/insights"):
		return "failed to generate insights"
	case strings.HasPrefix(path, "/v1/tax"):
		return "failed to compute tax estimate"
	default:
		return "internal error"
	}
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}

// ─── Service endpoints ──────────────────────────────────────────

func (s *Service) handleHealth(c *fiber.Ctx) error {
	return c.SendString("ok\n")
}

func (s *Service) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.snapshotStatus())
}

func (s *Service) handleEvents(c *fiber.Ctx) error {
	return c.JSON(s.snapshotEvents())
}

// ─── Per-user endpoints ─────────────────────────────────────────

func (s *Service) userExpenses(c *fiber.Ctx) ([]model.Expense, error) {
	ctx := c.UserContext()
	u, err := s.st.GetUser(ctx, c.Params("id"))
	if err != nil {
		return nil, err
	}
	return s.st.ListExpenses(ctx, u.ID)
}

type insightsResponse struct {
	Insight  string   `json:"insight"`
	Insights []string `json:"insights"`
}

func (s *Service) handleInsights(c *fiber.Ctx) error {
	expenses, err := s.userExpenses(c)
	if err != nil {
		return err
	}

	facts, err := insight.Analyze(expenses, s.now())
	if err != nil {
		return err
	}
	sentences := s.formatter.Render(facts)

	return c.JSON(insightsResponse{
		Insight:  insight.Narrative(sentences),
		Insights: sentences,
	})
}

type categoryJSON struct {
	Category     string          `json:"category"`
	Expenses     int             `json:"expenses"`
	Spent        decimal.Decimal `json:"spent"`
	SharePercent float64         `json:"share_percent"`
}

type summaryResponse struct {
	TotalExpenses    int             `json:"total_expenses"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	MonthExpenses    int             `json:"month_expenses"`
	MonthSpent       decimal.Decimal `json:"month_spent"`
	ActiveCategories int             `json:"active_categories"`
	ActiveDays       int             `json:"active_days"`
	SpentPerDay      decimal.Decimal `json:"spent_per_day"`
	Categories       []categoryJSON  `json:"categories"`
	Recent           []expenseJSON   `json:"recent"`
}

func (s *Service) handleSummary(c *fiber.Ctx) error {
	expenses, err := s.userExpenses(c)
	if err != nil {
		return err
	}

	stats := pipeline.Aggregate(expenses, s.now())
	resp := summaryResponse{
		TotalExpenses:    stats.TotalExpenses,
		TotalSpent:       stats.TotalSpent,
		MonthExpenses:    stats.MonthExpenses,
		MonthSpent:       stats.MonthSpent,
		ActiveCategories: stats.ActiveCategories,
		ActiveDays:       stats.ActiveDays,
		SpentPerDay:      stats.SpentPerDay.Round(2),
		Categories:       []categoryJSON{},
		Recent:           []expenseJSON{},
	}
	for _, cs := range pipeline.AggregateCategories(expenses) {
		resp.Categories = append(resp.Categories, categoryJSON{
			Category:     cs.Category,
			Expenses:     cs.Expenses,
			Spent:        cs.Spent,
			SharePercent: cs.SharePercent,
		})
	}
	for _, e := range pipeline.Recent(expenses, recentLimit) {
		resp.Recent = append(resp.Recent, toExpenseJSON(e))
	}

	return c.JSON(resp)
}

type expenseJSON struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toExpenseJSON(e model.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.Format(model.DateLayout),
		CreatedAt:   e.CreatedAt,
	}
}

func (s *Service) handleListExpenses(c *fiber.Ctx) error {
	expenses, err := s.userExpenses(c)
	if err != nil {
		return err
	}
	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	return c.JSON(out)
}

type expenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
}

func (s *Service) handleAddExpense(c *fiber.Ctx) error {
	ctx := c.UserContext()
	u, err := s.st.GetUser(ctx, c.Params("id"))
	if err != nil {
		return err
	}

	var req expenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid expense body")
	}
	if req.Amount == nil {
		return badRequest("amount is required")
	}
	if err := model.ValidateAmount(*req.Amount); err != nil {
		return badRequest(err.Error())
	}

	date := model.CalendarDate(s.now())
	if req.Date != "" {
		if date, err = model.ParseDate(req.Date); err != nil {
			return badRequest(err.Error())
		}
	}

	saved, err := s.st.AddExpense(ctx, model.Expense{
		UserID:      u.ID,
		Amount:      *req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toExpenseJSON(saved))
}

func (s *Service) handleDeleteExpense(c *fiber.Ctx) error {
	if err := s.st.DeleteExpense(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ─── Tax ────────────────────────────────────────────────────────

type taxResponse struct {
	Income        float64 `json:"income"`
	Tax           float64 `json:"tax"`
	Cess          float64 `json:"cess"`
	TakeHome      float64 `json:"takeHome"`
	SlabLabel     string  `json:"slabLabel"`
	SuggestedForm string  `json:"suggestedForm"`
}

func (s *Service) handleTax(c *fiber.Ctx) error {
	raw := c.Query("income")
	if raw == "" {
		return badRequest("income query parameter is required")
	}
	income, err := tax.ParseIncome(raw)
	if err != nil {
		return badRequest(err.Error())
	}

	res, err := tax.Estimate(income)
	if err != nil {
		return err
	}

	return c.JSON(taxResponse{
		Income:        res.Income.InexactFloat64(),
		Tax:           res.Tax.Round(2).InexactFloat64(),
		Cess:          res.Cess.Round(2).InexactFloat64(),
		TakeHome:      res.TakeHome.Round(2).InexactFloat64(),
		SlabLabel:     res.SlabLabel,
		SuggestedForm: res.SuggestedForm,
	})
}

type slabJSON struct {
	Lower       float64  `json:"lower"`
	Upper       *float64 `json:"upper"`
	RatePercent float64  `json:"ratePercent"`
	BaseTax     float64  `json:"baseTax"`
	Label       string   `json:"label"`
	Form        string   `json:"form"`
}

func (s *Service) handleSlabs(c *fiber.Ctx) error {
	brackets := tax.Schedule()
	out := make([]slabJSON, 0, len(brackets))
	for _, b := range brackets {
		sj := slabJSON{
			Lower:       b.Lower.InexactFloat64(),
			RatePercent: b.Rate.Mul(decimal.NewFromInt(100)).InexactFloat64(),
			BaseTax:     b.BaseTax.InexactFloat64(),
			Label:       b.Label,
			Form:        b.Form,
		}
		if !b.Unbounded {
			upper := b.Upper.InexactFloat64()
			sj.Upper = &upper
		}
		out = append(out, sj)
	}
	return c.JSON(out)
}

// ─── Admin ──────────────────────────────────────────────────────

type adminUserJSON struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      model.Role      `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
	Expenses  int             `json:"expenses"`
	Spent     decimal.Decimal `json:"spent"`
}

func (s *Service) handleAdminUsers(c *fiber.Ctx) error {
	users, err := s.st.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]adminUserJSON, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserJSON{
			ID:        u.ID,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
			Expenses:  u.Expenses,
			Spent:     u.Spent,
		})
	}
	return c.JSON(out)
}

func (s *Service) handleAdminDeleteUser(c *fiber.Ctx) error {
	if err := s.st.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
