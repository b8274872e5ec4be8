package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/bankist/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *int32, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})

	var calls int32
	app := fiber.New()
	api := app.Group("", Idempotency(cache, time.Minute, logging.Discard()))
	api.Post("/transfers", func(c *fiber.Ctx) error {
		n := atomic.AddInt32(&calls, 1)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"call": n})
	})
	api.Post("/loans", func(c *fiber.Ctx) error {
		atomic.AddInt32(&calls, 1)
		return fiber.NewError(fiber.StatusUnprocessableEntity, "no movement of at least 10% of the loan amount")
	})
	return app, &calls, mr
}

func post(t *testing.T, app *fiber.App, path, key string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body), resp.Header.Get(idempotentReplayHeader)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	app, calls, _ := setupTestApp(t)

	post(t, app, "/transfers", "")
	post(t, app, "/transfers", "")
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected handler to run twice, ran %d", got)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	app, calls, _ := setupTestApp(t)

	status, first, replayed := post(t, app, "/transfers", "abc123")
	if status != fiber.StatusOK || replayed != "" {
		t.Fatalf("first request: status %d replayed %q", status, replayed)
	}

	status, second, replayed := post(t, app, "/transfers", "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected cached status %d got %d", fiber.StatusOK, status)
	}
	if replayed != "true" {
		t.Fatal("expected replay header on cached response")
	}
	if first != second {
		t.Fatalf("expected cached payload %s got %s", first, second)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected handler to run once, ran %d", got)
	}
}

func TestIdempotencyKeysArePerPath(t *testing.T) {
	app, calls, _ := setupTestApp(t)

	post(t, app, "/transfers", "shared")
	post(t, app, "/loans", "shared")
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected both handlers to run, ran %d", got)
	}
}

func TestIdempotencyReleasesKeyOnError(t *testing.T) {
	app, calls, mr := setupTestApp(t)

	status, _, _ := post(t, app, "/loans", "retry-me")
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected %d got %d", fiber.StatusUnprocessableEntity, status)
	}
	if mr.Exists(idempotencyPrefix + "/loans:retry-me") {
		t.Fatal("expected key to be released after error")
	}
	post(t, app, "/loans", "retry-me")
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected retry to reach handler, ran %d", got)
	}
}

func TestIdempotencyInProgressConflict(t *testing.T) {
	app, calls, mr := setupTestApp(t)

	if err := mr.Set(idempotencyPrefix+"/transfers:busy", inProgressMarker); err != nil {
		t.Fatalf("seed marker: %v", err)
	}
	status, _, _ := post(t, app, "/transfers", "busy")
	if status != fiber.StatusConflict {
		t.Fatalf("expected %d got %d", fiber.StatusConflict, status)
	}
	if got := atomic.LoadInt32(calls); got != 0 {
		t.Fatalf("handler must not run, ran %d", got)
	}
}
