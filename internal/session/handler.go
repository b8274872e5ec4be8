package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankist/internal/auth"
	"github.com/congo-pay/bankist/internal/teller"
	"github.com/congo-pay/bankist/internal/view"
)

// Handler exposes the session over HTTP.
type Handler struct {
	session *Session
	now     func() time.Time
}

// NewHandler builds a session HTTP handler.
func NewHandler(session *Session, clock func() time.Time) *Handler {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Handler{session: session, now: clock}
}

type loginRequest struct {
	Handle string `json:"handle"`
	PIN    int    `json:"pin"`
}

type transferRequest struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type loanRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type loanResponse struct {
	ID          string          `json:"id"`
	Handle      string          `json:"handle"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	RequestedAt time.Time       `json:"requested_at"`
	SettledAt   *time.Time      `json:"settled_at,omitempty"`
}

func toLoanResponse(l teller.Loan) loanResponse {
	resp := loanResponse{
		ID:          l.ID,
		Handle:      l.Handle,
		Amount:      l.Amount,
		Status:      string(l.Status),
		RequestedAt: l.RequestedAt,
	}
	if !l.SettledAt.IsZero() {
		at := l.SettledAt
		resp.SettledAt = &at
	}
	return resp
}

// Login authenticates and returns the initial screen.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	v, err := h.session.Login(req.Handle, req.PIN)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(view.Render(v, h.now()))
}

// Logout ends the active session.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.session.Logout(); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"welcome": view.LoggedOutWelcome})
}

// Current returns the active screen including the countdown.
func (h *Handler) Current(c *fiber.Ctx) error {
	v, err := h.session.View()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(view.Render(v, h.now()))
}

// Sort toggles the movement order.
func (h *Handler) Sort(c *fiber.Ctx) error {
	v, err := h.session.ToggleSort()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(view.Render(v, h.now()))
}

// Transfer moves money to another account.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	v, err := h.session.Transfer(c.UserContext(), req.To, req.Amount)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(view.Render(v, h.now()))
}

// RequestLoan accepts a loan for deferred approval.
func (h *Handler) RequestLoan(c *fiber.Ctx) error {
	var req loanRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	loan, err := h.session.RequestLoan(c.UserContext(), req.Amount)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusAccepted).JSON(toLoanResponse(loan))
}

// PendingLoans lists the loans of the active account awaiting approval.
func (h *Handler) PendingLoans(c *fiber.Ctx) error {
	loans, err := h.session.PendingLoans()
	if err != nil {
		return httpError(err)
	}
	out := make([]loanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanResponse(l))
	}
	return c.JSON(fiber.Map{"loans": out})
}

// Loan reports the status of a loan request.
func (h *Handler) Loan(c *fiber.Ctx) error {
	loan, err := h.session.Loan(c.Params("loanId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(toLoanResponse(loan))
}

// Close removes the active account after confirmation.
func (h *Handler) Close(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.session.CloseAccount(c.UserContext(), req.Handle, req.PIN); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"closed": req.Handle, "welcome": view.LoggedOutWelcome})
}

// Directory lists the accounts that can receive transfers.
func (h *Handler) Directory(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"accounts": h.session.Directory()})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNoSession), errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, teller.ErrLoanNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case teller.IsRejection(err):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	default:
		return err
	}
}
