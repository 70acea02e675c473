package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/saps-platform/case-management/internal/activity"
	"github.com/saps-platform/case-management/internal/auth"
	"github.com/saps-platform/case-management/internal/casefile"
	"github.com/saps-platform/case-management/internal/rbac"
	"github.com/saps-platform/case-management/internal/reports"
	"github.com/saps-platform/case-management/internal/storage"
	"github.com/saps-platform/case-management/internal/transport/middleware"
	"github.com/saps-platform/case-management/internal/transport/swagger"
	"github.com/saps-platform/case-management/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, policy *rbac.Policy, authHandler *auth.Handler, userHandler *user.Handler, caseHandler *casefile.Handler, activityHandler *activity.Handler, reportHandler *reports.Handler, storageHandler *storage.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		// Public case metadata (crime types, provinces, priorities, statuses)
		if caseHandler != nil {
			r.Get("/cases/metadata", caseHandler.Metadata)
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)
				pr.Use(middleware.UserContext)

				// Current user and profile setup
				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
					pr.Put("/users/me/profile", userHandler.SetupProfile)
					pr.Get("/users/officers", userHandler.ListOfficers)
				}

				// Case routes
				if caseHandler != nil {
					pr.Route("/cases", func(cr chi.Router) {
						cr.Post("/", caseHandler.CreateCase)      // POST /cases
						cr.Get("/", caseHandler.ListCases)        // GET /cases
						cr.Get("/{id}", caseHandler.GetCase)      // GET /cases/:id
						cr.Patch("/{id}/status", caseHandler.ChangeStatus)
						cr.Post("/{id}/notes", caseHandler.AddNote)
						cr.Post("/{id}/evidence", caseHandler.AttachEvidence)

						if activityHandler != nil {
							cr.Get("/{id}/activities", activityHandler.CaseTrail)
						}

						// Station Commander routes with capability protection
						cr.Group(func(mr chi.Router) {
							mr.Use(middleware.RequireCapability(policy, rbac.CanAssignOfficers))
							mr.Patch("/{id}/assign", caseHandler.AssignOfficer)
						})

						cr.Group(func(mr chi.Router) {
							mr.Use(middleware.RequireCapability(policy, rbac.CanDeleteCases))
							mr.Delete("/{id}", caseHandler.DeleteCase)
						})
					})
				}

				// Activity feed
				if activityHandler != nil {
					pr.Get("/activities", activityHandler.RecentFeed)
				}

				// Report routes (requires report generation capability)
				if reportHandler != nil {
					pr.Get("/reports/stats", reportHandler.Stats)
					pr.Group(func(rr chi.Router) {
						rr.Use(middleware.RequireCapability(policy, rbac.CanGenerateReports))
						rr.Post("/reports", reportHandler.GenerateReport)
						rr.Get("/reports", reportHandler.ListReports)
						rr.Get("/reports/{id}", reportHandler.GetReport)
					})
				}

				// Evidence upload
				if storageHandler != nil {
					pr.Group(func(ur chi.Router) {
						ur.Use(middleware.RequireCapability(policy, rbac.CanUploadEvidence))
						ur.Post("/uploads/evidence", storageHandler.UploadEvidence)
					})
				}
			})
		}
	})
}
