package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maeulsoft/programhub/internal/middleware"
	"github.com/maeulsoft/programhub/internal/models"
)

// newTestApp wires a login route that seeds a session with the given
// role, plus protected routes behind AuthRequired and RoleRequired.
func newTestApp(role string) *fiber.App {
	store := session.New()
	app := fiber.New()

	app.Post("/login", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		sess.Set("user_id", 42)
		sess.Set("user_role", role)
		sess.Set("user_name", "Kim Minsu")
		if err := sess.Save(); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})

	authed := app.Group("", middleware.AuthRequired(store))
	authed.Get("/protected", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":   middleware.ActorID(c),
			"role": middleware.ActorRole(c),
		})
	})
	authed.Get("/staff", middleware.RoleRequired(models.RoleAdmin, models.RoleOperator, models.RoleStaff),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	return app
}

func login(t *testing.T, app *fiber.App) *http.Cookie {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Cookies())
	return resp.Cookies()[0]
}

// TestAuthRequired_RejectsAnonymous ensures unauthenticated requests get
// a JSON 401 rather than a redirect.
func TestAuthRequired_RejectsAnonymous(t *testing.T) {
	app := newTestApp(models.RoleApplicant)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestAuthRequired_PassesSessionLocals checks the session identity flows
// through to the handler.
func TestAuthRequired_PassesSessionLocals(t *testing.T) {
	app := newTestApp(models.RoleStaff)
	cookie := login(t, app)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestRoleRequired enforces the role gate for staff-only routes.
func TestRoleRequired(t *testing.T) {
	tests := []struct {
		role       string
		wantStatus int
	}{
		{models.RoleAdmin, http.StatusOK},
		{models.RoleStaff, http.StatusOK},
		{models.RoleApplicant, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			app := newTestApp(tt.role)
			cookie := login(t, app)

			req := httptest.NewRequest(http.MethodGet, "/staff", nil)
			req.AddCookie(cookie)
			resp, err := app.Test(req)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
