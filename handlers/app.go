package handlers

import (
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"lostluggage/models"
	"lostluggage/services"
	"lostluggage/ui"
	"lostluggage/utils"
)

// App carries everything a handler needs. Nothing is read from package state.
type App struct {
	svc           *services.Service
	sessions      utils.SessionStore
	logger        *zap.Logger
	templates     map[string]*template.Template
	sessionTTL    time.Duration
	secureCookies bool
}

type Options struct {
	SessionTTL    time.Duration
	SecureCookies bool
}

func New(svc *services.Service, sessions utils.SessionStore, logger *zap.Logger, opts Options) (*App, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		svc:           svc,
		sessions:      sessions,
		logger:        logger,
		templates:     templates,
		sessionTTL:    opts.SessionTTL,
		secureCookies: opts.SecureCookies,
	}, nil
}

// Routes returns the full HTTP surface wrapped in the middleware chain.
func (a *App) Routes() http.Handler {
	mux := http.NewServeMux()

	static, _ := fs.Sub(ui.Files, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServerFS(static)))

	passenger := func(h http.HandlerFunc) http.HandlerFunc {
		return a.requireRole(models.RolePassenger, "/login", h)
	}
	admin := func(redirectTo string, h http.HandlerFunc) http.HandlerFunc {
		return a.requireRole(models.RoleAdmin, redirectTo, h)
	}

	mux.HandleFunc("GET /{$}", a.Home)

	mux.HandleFunc("GET /register", a.RegisterForm)
	mux.HandleFunc("POST /register", a.Register)
	mux.HandleFunc("GET /login", a.LoginForm)
	mux.HandleFunc("POST /login", a.Login)
	mux.HandleFunc("GET /logout", a.Logout)

	mux.HandleFunc("GET /passenger/dashboard", passenger(a.PassengerDashboard))
	mux.HandleFunc("GET /passenger/report", passenger(a.ReportLuggageForm))
	mux.HandleFunc("POST /passenger/report", passenger(a.ReportLuggage))
	mux.HandleFunc("GET /passenger/track", a.TrackLuggageForm)
	mux.HandleFunc("POST /passenger/track", a.TrackLuggage)

	mux.HandleFunc("GET /finder/report", a.FinderReportForm)
	mux.HandleFunc("POST /finder/report", a.FinderReport)

	mux.HandleFunc("GET /admin/dashboard", admin("/login", a.AdminDashboard))
	mux.HandleFunc("GET /admin/update/{id}", admin("/login", a.UpdateStatusForm))
	mux.HandleFunc("POST /admin/update/{id}", admin("/login", a.UpdateStatus))
	mux.HandleFunc("GET /admin/found_reports", admin("/", a.AdminFoundReports))
	mux.HandleFunc("GET /admin/match/{foundID}", admin("/", a.MatchLuggageForm))
	mux.HandleFunc("POST /admin/match/{foundID}", admin("/", a.MatchLuggage))
	mux.HandleFunc("GET /admin/lost_reports", admin("/", a.AdminLostReports))

	return a.logRequests(a.loadSession(a.checkCSRF(mux)))
}

func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "home.html", "Home", nil)
}
