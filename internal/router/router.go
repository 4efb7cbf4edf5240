package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"patient-portal-api/internal/adapters/auth/token"
	"patient-portal-api/internal/adapters/notify/webhook"
	mem "patient-portal-api/internal/adapters/storage/memory"
	pg "patient-portal-api/internal/adapters/storage/postgres"
	"patient-portal-api/internal/domain/appointments"
	"patient-portal-api/internal/domain/medications"
	"patient-portal-api/internal/domain/patients"
	"patient-portal-api/internal/domain/portal"
	"patient-portal-api/internal/middleware"
	"patient-portal-api/internal/platform/config"
	"patient-portal-api/internal/platform/httpclient"
	"patient-portal-api/internal/platform/logger"
)

type Options struct {
	Cfg config.Config
	Log logger.Logger

	// Opcional: si viene, usa Postgres. Si no, intenta por Cfg.DBDSN y
	// cae a in-memory (dev).
	DB *sql.DB
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Log
	if log == nil {
		log = logger.New(logger.Options{App: "patient-portal-api"})
	}

	sessions, err := token.New(opts.Cfg.SessionSecret, 0)
	if err != nil {
		return nil, err
	}

	var (
		patientsRepo patients.Repository
		medsRepo     medications.Repository
		apptsRepo    appointments.Repository
	)

	db := opts.DB
	if db == nil && opts.Cfg.DBDSN != "" {
		opened, err := pg.Open(opts.Cfg.DBDSN)
		if err != nil {
			log.Warn("postgres unavailable, falling back to memory store", map[string]any{
				"error": err.Error(),
			})
		} else {
			db = opened
		}
	}

	if db != nil {
		patientsRepo = pg.NewPatientsRepo(db)
		medsRepo = pg.NewMedicationsRepo(db)
		apptsRepo = pg.NewAppointmentsRepo(db)
		log.Info("using postgres store", nil)
	} else {
		patientsRepo = mem.NewPatientsRepo()
		medsRepo = mem.NewMedicationsRepo()
		apptsRepo = mem.NewAppointmentsRepo()
		log.Info("using in-memory store", nil)
	}

	// services por módulo
	patientsSvc := patients.NewService(patientsRepo)
	medsSvc := medications.NewService(medsRepo, patientsSvc)
	apptsSvc := appointments.NewService(apptsRepo, patientsSvc)

	if url := opts.Cfg.ReminderWebhookURL; url != "" {
		medsSvc.SetNotifier(webhook.New(url, httpclient.New(httpclient.DefaultTimeout), log))
		log.Info("refill reminder webhook enabled", nil)
	}

	rl := middleware.NewRateLimiter(loginRPS(opts.Cfg), loginBurst(opts.Cfg))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.AuthContext(sessions))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// login de pacientes, rate-limited por IP
	r.With(rl.Limit).Post("/login", portal.LoginHandler(patientsSvc, sessions))

	// lecturas self-scoped del portal
	r.Group(func(g chi.Router) {
		g.Use(middleware.RequirePatient)
		portal.RegisterRoutes(g, patientsSvc, medsSvc, apptsSvc)
	})

	// superficie admin: login propio + CRUD detrás del guard
	r.Route("/admin", func(ar chi.Router) {
		ar.With(rl.Limit).Post("/login", portal.AdminLoginHandler(sessions, opts.Cfg.AdminEmail, opts.Cfg.AdminPasswordHash))

		ar.Group(func(g chi.Router) {
			g.Use(middleware.RequireAdmin)
			patients.RegisterAdminRoutes(g, patientsSvc, medsSvc, apptsSvc)
			medications.RegisterAdminRoutes(g, medsSvc)
			appointments.RegisterAdminRoutes(g, apptsSvc)
		})
	})

	return r, nil
}

func loginRPS(cfg config.Config) float64 {
	if cfg.LoginRPS > 0 {
		return cfg.LoginRPS
	}
	return 5
}

func loginBurst(cfg config.Config) int {
	if cfg.LoginBurst > 0 {
		return cfg.LoginBurst
	}
	return 10
}
