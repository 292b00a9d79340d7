package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/maeulsoft/programhub/internal/middleware"
	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/security"
)

// Deps bundles everything route registration needs. Rate limiters are
// optional; a nil limiter leaves the endpoint unthrottled, which tests
// rely on.
type Deps struct {
	Store        *session.Store
	Auth         *AuthHandler
	Programs     *ProgramHandler
	Applications *ApplicationHandler
	Selections   *SelectionHandler
	Dashboard    *DashboardHandler
	Users        *UserHandler

	LoginLimiter  *security.RateLimiter
	SubmitLimiter *security.RateLimiter
}

// RegisterRoutes mounts the full JSON API under /api.
//
// Route groups by privilege:
//   - public: login
//   - authenticated: profile, program browsing, own applications
//   - staff (admin/operator/staff): review, selections, payments, dashboard
//   - organizer (admin/operator): program management, CSV export
//   - admin: account management
func RegisterRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api")

	login := api.Group("/auth")
	if d.LoginLimiter != nil {
		login.Post("/login", d.LoginLimiter.Middleware(), d.Auth.Login)
	} else {
		login.Post("/login", d.Auth.Login)
	}

	authed := api.Group("", middleware.AuthRequired(d.Store))
	authed.Post("/auth/logout", d.Auth.Logout)
	authed.Get("/auth/me", d.Auth.Me)

	// Program catalog is visible to every authenticated user; reads
	// trigger status synchronization.
	authed.Get("/programs", d.Programs.List)
	authed.Get("/programs/:id", d.Programs.Get)

	organizer := authed.Group("/programs", middleware.RoleRequired(models.RoleAdmin, models.RoleOperator))
	organizer.Post("", d.Programs.Create)
	organizer.Patch("/:id", d.Programs.Update)
	organizer.Post("/:id/archive", d.Programs.Archive)
	organizer.Delete("/:id", d.Programs.Delete)
	organizer.Get("/:id/applications/export", d.Programs.ExportApplicationsCSV)

	staffRoles := middleware.RoleRequired(models.RoleAdmin, models.RoleOperator, models.RoleStaff)
	authed.Get("/programs/:id/applications", staffRoles, d.Programs.Applications)

	apps := authed.Group("/applications")
	if d.SubmitLimiter != nil {
		apps.Post("", d.SubmitLimiter.Middleware(), d.Applications.Submit)
	} else {
		apps.Post("", d.Applications.Submit)
	}
	apps.Get("/mine", d.Applications.ListMine)
	apps.Get("", staffRoles, d.Applications.ListAll)
	apps.Get("/:id", d.Applications.Get)
	apps.Patch("/:id", d.Applications.Update)
	apps.Post("/:id/withdraw", d.Applications.Withdraw)
	apps.Post("/:id/review", staffRoles, d.Applications.Review)
	apps.Post("/:id/payment", staffRoles, d.Applications.Payment)

	selections := authed.Group("/selections", staffRoles)
	selections.Post("", d.Selections.Create)
	selections.Get("/:id", d.Selections.Get)
	selections.Patch("/:id", d.Selections.Update)

	dashboard := authed.Group("/dashboard", staffRoles)
	dashboard.Get("/stats", d.Dashboard.Stats)
	dashboard.Get("/programs", d.Dashboard.ProgramStats)
	dashboard.Get("/activity", d.Dashboard.RecentActivity)

	admin := authed.Group("/users", middleware.RoleRequired(models.RoleAdmin))
	admin.Post("", d.Users.Create)
	admin.Get("", d.Users.List)
	admin.Delete("/:id", d.Users.Deactivate)
}
