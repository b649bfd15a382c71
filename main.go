package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/schoolplan/timetable-server/authenticator"
	"github.com/schoolplan/timetable-server/controllers"
	"github.com/schoolplan/timetable-server/database"
	appmiddleware "github.com/schoolplan/timetable-server/middleware"
	"github.com/schoolplan/timetable-server/repositories"
	"github.com/schoolplan/timetable-server/services"
)

func main() {
	// Load environment variables from .env file when present
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize database
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "timetable.db"
	}
	if err := database.InitializeDatabase(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	// Get database connection
	db := database.GetDB()

	// Initialize repositories
	repos := repositories.NewRepositories(db)

	// Token issuer for API clients
	issuer, err := authenticator.NewTokenIssuer(os.Getenv("JWT_SECRET"), "timetable-server")
	if err != nil {
		log.Fatalf("Failed to initialize token issuer: %v", err)
	}

	// Initialize services
	srvs := services.NewServices(repos, issuer)

	// Initialize controllers
	ctrl := controllers.NewControllers(srvs)

	// OIDC login is optional; without it only API token login is available
	var provider authenticator.Provider
	if os.Getenv("OIDC_ISSUER_URL") != "" {
		provider, err = authenticator.NewOpenIDProvider(authenticator.OpenIDConfig{
			IssuerURL:    os.Getenv("OIDC_ISSUER_URL"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			CallbackURL:  os.Getenv("OIDC_CALLBACK_URL"),
		})
		if err != nil {
			log.Fatalf("Failed to initialize OIDC provider: %v", err)
		}
	}

	// Set up router
	r, err := setupRouter(ctrl, srvs, repos, provider)
	if err != nil {
		log.Fatalf("Failed to setup router: %v", err)
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("Timetable server starting on port %s\n", port)
	fmt.Printf("Database: %s\n", dbPath)

	log.Fatal(http.ListenAndServe(":"+port, r))
}

// setupRouter configures all routes
func setupRouter(ctrl *controllers.Controllers, srvs *services.Services, repos *repositories.Repositories, provider authenticator.Provider) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second)) // 60 second timeout for OAuth callbacks
	r.Use(middleware.Compress(5))

	// Determine if we should use secure cookies (HTTPS)
	useSecureCookies := os.Getenv("USE_HTTPS") == "true"

	// Session middleware for browser OIDC login
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "timetable_session",
		Secure:         useSecureCookies,
		Gclifetime:     3600, // Session lifetime in seconds
		Maxlifetime:    3600,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	// PUBLIC ROUTES (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "timetable-server"}`)
	})

	if provider != nil {
		r.Get("/login", ctrl.Auth.Login(provider))
		r.Get("/callback", ctrl.Auth.Callback(provider))
		r.Get("/logout", ctrl.Auth.Logout)
	}

	r.Post("/api/auth/login", ctrl.Auth.APILogin)
	r.Post("/api/auth/refresh", ctrl.Auth.APIRefresh)
	r.Post("/api/auth/logout", ctrl.Auth.APILogout)

	// PROTECTED ROUTES (authentication required)
	r.Route("/api", func(r chi.Router) {
		r.Use(appmiddleware.RequireAuth(srvs.Auth))
		r.Use(appmiddleware.AuditLogger(repos.Audit))

		r.Get("/dashboard", ctrl.Dashboard.Show)

		r.Route("/teachers", func(r chi.Router) {
			r.Get("/", ctrl.Teacher.List)
			r.Post("/", ctrl.Teacher.Create)
			r.Get("/{id}", ctrl.Teacher.Get)
			r.Put("/{id}", ctrl.Teacher.Update)
			r.Delete("/{id}", ctrl.Teacher.Delete)
		})

		r.Route("/subjects", func(r chi.Router) {
			r.Get("/", ctrl.Subject.List)
			r.Post("/", ctrl.Subject.Create)
			r.Get("/{id}", ctrl.Subject.Get)
			r.Put("/{id}", ctrl.Subject.Update)
			r.Delete("/{id}", ctrl.Subject.Delete)
		})

		r.Route("/classrooms", func(r chi.Router) {
			r.Get("/", ctrl.Classroom.List)
			r.Post("/", ctrl.Classroom.Create)
			r.Get("/{id}", ctrl.Classroom.Get)
			r.Put("/{id}", ctrl.Classroom.Update)
			r.Delete("/{id}", ctrl.Classroom.Delete)
		})

		r.Route("/classes", func(r chi.Router) {
			r.Get("/", ctrl.SchoolClass.List)
			r.Post("/", ctrl.SchoolClass.Create)
			r.Get("/{id}", ctrl.SchoolClass.Get)
			r.Put("/{id}", ctrl.SchoolClass.Update)
			r.Delete("/{id}", ctrl.SchoolClass.Delete)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", ctrl.Settings.Get)
			r.Put("/", ctrl.Settings.Update)
		})

		r.Route("/timetables", func(r chi.Router) {
			r.Get("/", ctrl.Timetable.List)
			r.Post("/", ctrl.Timetable.Create)

			r.Route("/{publicID}", func(r chi.Router) {
				r.Get("/", ctrl.Timetable.Get)
				r.Put("/", ctrl.Timetable.Update)
				r.With(appmiddleware.RequireAdmin).Delete("/", ctrl.Timetable.Delete)

				r.Get("/grid", ctrl.Timetable.Grid)
				r.Get("/compliance", ctrl.Timetable.Validate)
				r.Get("/autofill", ctrl.Timetable.AutoFill)
				r.Post("/generate", ctrl.Timetable.Generate)

				r.Post("/slots/move", ctrl.Timetable.MoveSlot)
				r.Put("/slots", ctrl.Timetable.UpdateSlot)
				r.Delete("/slots", ctrl.Timetable.ClearSlot)
			})
		})
	})

	return r, nil
}
