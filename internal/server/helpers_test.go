package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"communities/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return gormDB, mock
}

// --- parseID ---

func TestParseID_ValidID(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c)
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestParseID_RejectsNonPositive(t *testing.T) {
	for _, value := range []string{"abc", "0", "-4"} {
		t.Run(value, func(t *testing.T) {
			app := fiber.New()
			s := &Server{}
			app.Get("/items/:id", func(c *fiber.Ctx) error {
				_, _ = s.parseID(c)
				return nil
			})

			req := httptest.NewRequest(http.MethodGet, "/items/"+value, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "Invalid ID", body["error"])
			assert.Equal(t, models.CodeValidation, body["code"])
		})
	}
}

// --- respondError ---

func TestRespondError_MapsCodesToStatus(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"Not Found", models.NewNotFoundError("Community", 1), http.StatusNotFound},
		{"Validation", models.NewValidationError("bad"), http.StatusBadRequest},
		{"Conflict", models.NewConflictError("Community", 1, errors.New("stale")), http.StatusConflict},
		{"Internal", models.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{"Rate Limited", models.NewRateLimitedError("slow down"), http.StatusTooManyRequests},
		{"Unavailable", models.NewUnavailableError("down", errors.New("refused")), http.StatusServiceUnavailable},
		{"Plain Error", errors.New("raw"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

// --- ReadinessCheck ---

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedDB     string
		expectedState  string
	}{
		{name: "Database Up Without Redis", expectedStatus: http.StatusOK, expectedDB: "healthy", expectedState: "degraded"},
		{name: "Database Down", pingErr: errors.New("refused"), expectedStatus: http.StatusServiceUnavailable, expectedDB: "unhealthy", expectedState: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock := setupMockDB(t)
			mock.ExpectPing().WillReturnError(tt.pingErr)
			s := &Server{db: gormDB}

			app := fiber.New()
			app.Get("/health/ready", s.ReadinessCheck)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedState, body.Status)
			assert.Equal(t, tt.expectedDB, body.Checks["database"])
			assert.Equal(t, "unavailable", body.Checks["redis"])
		})
	}
}
