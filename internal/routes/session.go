package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/bankist/internal/session"
)

// Guards are optional middlewares placed in front of sensitive routes.
type Guards struct {
	// Idempotent wraps money-moving POSTs.
	Idempotent fiber.Handler
}

func chain(guard fiber.Handler, h fiber.Handler) []fiber.Handler {
	if guard == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{guard, h}
}

// RegisterSessionRoutes wires the session, transaction and directory endpoints.
func RegisterSessionRoutes(r fiber.Router, h *session.Handler, g Guards) {
	r.Post("/session/login", h.Login)
	r.Post("/session/logout", h.Logout)
	r.Get("/session", h.Current)
	r.Post("/session/sort", h.Sort)

	r.Post("/transfers", chain(g.Idempotent, h.Transfer)...)
	r.Post("/loans", chain(g.Idempotent, h.RequestLoan)...)
	r.Get("/loans", h.PendingLoans)
	r.Get("/loans/:loanId", h.Loan)
	r.Post("/account/close", h.Close)

	r.Get("/directory", h.Directory)
}
