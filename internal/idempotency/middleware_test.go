package idempotency

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRecordStore struct {
	mu      sync.Mutex
	records map[string]*Record
	failing bool
}

func newMemRecordStore() *memRecordStore {
	return &memRecordStore{records: map[string]*Record{}}
}

func (s *memRecordStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, context.DeadlineExceeded
	}
	return s.records[key], nil
}

func (s *memRecordStore) Put(_ context.Context, key string, record *Record, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return context.DeadlineExceeded
	}
	if _, exists := s.records[key]; !exists {
		s.records[key] = record
	}
	return nil
}

func newTestApp(store Store) (*fiber.App, *int) {
	calls := 0
	app := fiber.New()
	app.Use(Middleware(store, time.Hour, func(c *fiber.Ctx) string { return "hotel-1" }, zap.NewNop()))
	app.Post("/tickets", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"n": calls})
	})
	app.Post("/fail", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "nope"})
	})
	app.Get("/tickets", func(c *fiber.Ctx) error {
		calls++
		return c.SendString("list")
	})
	return app, &calls
}

func TestReplayReturnsStoredResponse(t *testing.T) {
	app, calls := newTestApp(newMemRecordStore())

	req := httptest.NewRequest("POST", "/tickets", nil)
	req.Header.Set(HeaderName, "key-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	first, _ := io.ReadAll(resp.Body)

	req = httptest.NewRequest("POST", "/tickets", nil)
	req.Header.Set(HeaderName, "key-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get("Idempotency-Replayed"))
	second, _ := io.ReadAll(resp.Body)

	require.Equal(t, string(first), string(second), "replay must be byte-identical")
	require.Equal(t, 1, *calls, "handler must not run twice")
}

func TestDistinctKeysExecuteSeparately(t *testing.T) {
	app, calls := newTestApp(newMemRecordStore())

	for _, key := range []string{"key-a", "key-b"} {
		req := httptest.NewRequest("POST", "/tickets", nil)
		req.Header.Set(HeaderName, key)
		_, err := app.Test(req)
		require.NoError(t, err)
	}
	require.Equal(t, 2, *calls)
}

func TestMissingKeySkipsGuard(t *testing.T) {
	app, calls := newTestApp(newMemRecordStore())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/tickets", nil)
		_, err := app.Test(req)
		require.NoError(t, err)
	}
	require.Equal(t, 2, *calls)
}

func TestReadsNeverGuarded(t *testing.T) {
	app, calls := newTestApp(newMemRecordStore())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/tickets", nil)
		req.Header.Set(HeaderName, "key-1")
		_, err := app.Test(req)
		require.NoError(t, err)
	}
	require.Equal(t, 2, *calls)
}

func TestErrorResponsesNotRecorded(t *testing.T) {
	store := newMemRecordStore()
	app, calls := newTestApp(store)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/fail", nil)
		req.Header.Set(HeaderName, "key-1")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	}
	require.Equal(t, 2, *calls, "failed attempts retry for real")
	require.Empty(t, store.records)
}

func TestStoreFailureDegradesToExecution(t *testing.T) {
	store := newMemRecordStore()
	store.failing = true
	app, calls := newTestApp(store)

	req := httptest.NewRequest("POST", "/tickets", nil)
	req.Header.Set(HeaderName, "key-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, 1, *calls)
}
