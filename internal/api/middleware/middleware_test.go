package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testLogger())})
	app.Use(Recover(testLogger()))
	app.Use(Logger(testLogger()))
	app.Get("/", handler)
	return app
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "app error",
			err:        domain.ErrMultipleFaces,
			wantStatus: 422,
			wantCode:   "MULTIPLE_FACES",
			wantMsg:    domain.ErrMultipleFaces.Message,
		},
		{
			name:       "wrapped app error with server message",
			err:        domain.ErrRegistry.WithMessage("member is blocked").WithError(errors.New("status 500")),
			wantStatus: 502,
			wantCode:   "REGISTRY_ERROR",
			wantMsg:    "member is blocked",
		},
		{
			name:       "fiber error",
			err:        fiber.ErrMethodNotAllowed,
			wantStatus: 405,
			wantCode:   "HTTP_ERROR",
			wantMsg:    "Method Not Allowed",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: 500,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    domain.ErrInternal.Message,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body ErrorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
		})
	}
}

func TestRecover(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error { panic("camera driver exploded") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
}
