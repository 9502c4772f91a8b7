package validation

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(cfg))
	app.Post("/api/v1/chat", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/api/v1/chat/history", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()

	req := httptest.NewRequest("POST", path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestMiddlewareValidQueryPasses(t *testing.T) {
	app := testApp(Config{})

	status := postJSON(t, app, "/api/v1/chat", `{"query":"What updates were made to my plan?"}`)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestMiddlewareRejectsMissingQuery(t *testing.T) {
	app := testApp(Config{})

	for _, body := range []string{`{}`, `{"query":""}`, `{"query":"   "}`, `{"query":42}`} {
		status := postJSON(t, app, "/api/v1/chat", body)
		assert.Equal(t, fiber.StatusBadRequest, status, "body %s", body)
	}
}

func TestMiddlewareRejectsOversizedQuery(t *testing.T) {
	app := testApp(Config{MaxQueryLength: 50})

	long := strings.Repeat("a", 51)
	status := postJSON(t, app, "/api/v1/chat", `{"query":"`+long+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestMiddlewareRejectsMarkupInjection(t *testing.T) {
	app := testApp(Config{})

	for _, query := range []string{
		"<script>alert(1)</script>",
		"click javascript:void(0)",
		"<img onerror=alert(1)>",
		"<IFRAME src=x>",
	} {
		status := postJSON(t, app, "/api/v1/chat", `{"query":"`+query+`"}`)
		assert.Equal(t, fiber.StatusBadRequest, status, "query %s", query)
	}
}

func TestMiddlewareAllowsNaturalLanguage(t *testing.T) {
	app := testApp(Config{})

	// SQL-looking words are legitimate in chat; queries are bound as
	// parameters, never interpolated.
	for _, query := range []string{
		"select the best plan updates for me",
		"delete my last message and update the summary",
		"where did we drop the morning workout?",
	} {
		status := postJSON(t, app, "/api/v1/chat", `{"query":"`+query+`"}`)
		assert.Equal(t, fiber.StatusOK, status, "query %s", query)
	}
}

func TestMiddlewareRejectsWrongContentType(t *testing.T) {
	app := testApp(Config{})

	req := httptest.NewRequest("POST", "/api/v1/chat", bytes.NewReader([]byte("query=hello")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestMiddlewareSkipsNonChatPaths(t *testing.T) {
	app := testApp(Config{})

	req := httptest.NewRequest("GET", "/api/v1/chat/history", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddlewareRejectsMalformedJSON(t *testing.T) {
	app := testApp(Config{})

	status := postJSON(t, app, "/api/v1/chat", `{"query":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
