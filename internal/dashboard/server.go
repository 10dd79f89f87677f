// Package dashboard serves the CRUD web interface over the shared
// configuration document: monitored shops, keyword filters and the run
// schedule. It has no contract with the detection pipeline beyond that file.
package dashboard

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jeffreyvdb/dhgate-monitor/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	store     *configStore
	templates *template.Template
	logger    *slog.Logger
}

func NewServer(configPath string, logger *slog.Logger) (*Server, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		store:     &configStore{path: configPath},
		templates: templates,
		logger:    logger.With("component", "dashboard"),
	}, nil
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/", s.handleIndex)
	r.Get("/shops/add", s.handleAddShopForm)
	r.Post("/shops/add", s.handleAddShop)
	r.Post("/shops/{index}/remove", s.handleRemoveShop)
	r.Get("/settings", s.handleSettingsForm)
	r.Post("/settings", s.handleSaveSettings)

	r.Route("/api", func(r chi.Router) {
		r.Get("/shops", s.handleAPIListShops)
		r.Post("/shops", s.handleAPIAddShop)
	})

	r.Get("/healthz", s.handleHealth)

	return r
}

// configStore serializes read-modify-write cycles on the configuration
// document within this process. Concurrent edits from other processes are
// not guarded, matching the monitor's own access.
type configStore struct {
	mu   sync.Mutex
	path string
}

func (cs *configStore) read() (*config.Config, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return config.LoadFile(cs.path)
}

func (cs *configStore) update(fn func(cfg *config.Config) error) (*config.Config, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cfg, err := config.LoadFile(cs.path)
	if err != nil {
		return nil, err
	}

	if err := fn(cfg); err != nil {
		return nil, err
	}

	if err := config.Save(cs.path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
