package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/bankist/internal/account"
	"github.com/congo-pay/bankist/internal/auth"
	"github.com/congo-pay/bankist/internal/config"
	"github.com/congo-pay/bankist/internal/journal"
	"github.com/congo-pay/bankist/internal/logging"
	"github.com/congo-pay/bankist/internal/middleware"
	"github.com/congo-pay/bankist/internal/notification"
	"github.com/congo-pay/bankist/internal/session"
	"github.com/congo-pay/bankist/internal/teller"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Accounts *account.Registry
	// Clock defaults to UTC wall time.
	Clock func() time.Time
	// Schedule overrides the loan grant scheduler, mainly in tests.
	Schedule teller.Scheduler
	// Observer receives session renders and countdown ticks.
	Observer session.Observer
}

// Services are the long-lived components built by Setup.
type Services struct {
	Teller  *teller.Service
	Session *session.Session
	Journal journal.Journal
}

// Setup configures middlewares, builds the bank services and registers all
// application routes.
func Setup(app *fiber.App, d Deps) (*Services, error) {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return nil, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return nil, fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}
	if d.Accounts == nil {
		return nil, fmt.Errorf("account registry is required")
	}
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var ledgerJournal journal.Journal
	if d.DB != nil {
		pg := journal.NewPostgresJournal(d.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		ledgerJournal = pg
	} else {
		ledgerJournal = journal.NewInMemory()
	}

	// The session subscribes to teller notifications after both exist.
	var sess *session.Session
	notifier := notification.Fanout{
		notification.NewLoggerNotifier(d.Logger),
		notification.NotifierFunc(func(ctx context.Context, msg notification.Message) error {
			return sess.Send(ctx, msg)
		}),
	}
	tellerSvc := teller.NewService(d.Accounts, teller.Options{
		Journal:   ledgerJournal,
		Notifier:  notifier,
		Logger:    d.Logger,
		Clock:     d.Clock,
		Schedule:  d.Schedule,
		LoanDelay: d.Cfg.LoanDelay,
	})
	sess = session.New(d.Accounts, auth.NewAuthenticator(d.Accounts), tellerSvc, session.Options{
		Length:   d.Cfg.SessionLength(),
		Tick:     d.Cfg.SessionTick,
		Observer: d.Observer,
		Notifier: notification.NewLoggerNotifier(d.Logger),
		Logger:   d.Logger,
		Clock:    d.Clock,
	})

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDKey).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  d.Clock().Format(time.RFC3339Nano),
		})
	})

	var guards Guards
	if d.Cache != nil {
		guards.Idempotent = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterSessionRoutes(api, session.NewHandler(sess, d.Clock), guards)

	return &Services{Teller: tellerSvc, Session: sess, Journal: ledgerJournal}, nil
}
