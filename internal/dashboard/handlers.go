package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeffreyvdb/dhgate-monitor/internal/config"
	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

var (
	errDuplicateShop = errors.New("shop already exists")
	errInvalidURL    = errors.New("invalid marketplace URL")
	errShopNotFound  = errors.New("shop not found")
)

type indexData struct {
	Sellers  []models.Seller
	Keywords string
	Schedule string
	Message  string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.read()
	if err != nil {
		s.renderError(w, err)
		return
	}

	s.render(w, "index.html", indexData{
		Sellers:  cfg.Sellers,
		Keywords: strings.Join(cfg.Filters.Keywords, ", "),
		Schedule: cfg.Schedule.Time,
		Message:  r.URL.Query().Get("msg"),
	})
}

func (s *Server) handleAddShopForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "add_shop.html", map[string]string{})
}

func (s *Server) handleAddShop(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	shopURL := strings.TrimSpace(r.FormValue("url"))

	if err := s.addShop(name, shopURL); err != nil {
		s.render(w, "add_shop.html", map[string]string{"Error": err.Error(), "Name": name, "URL": shopURL})
		return
	}

	http.Redirect(w, r, "/?msg="+url.QueryEscape(fmt.Sprintf("shop %q added", name)), http.StatusSeeOther)
}

func (s *Server) handleRemoveShop(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Redirect(w, r, "/?msg=Shop+not+found", http.StatusSeeOther)
		return
	}

	var removed string
	_, err = s.store.update(func(cfg *config.Config) error {
		if index < 0 || index >= len(cfg.Sellers) {
			return errShopNotFound
		}
		removed = cfg.Sellers[index].Name
		cfg.Sellers = append(cfg.Sellers[:index], cfg.Sellers[index+1:]...)
		return nil
	})
	if err != nil {
		http.Redirect(w, r, "/?msg=Shop+not+found", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/?msg="+url.QueryEscape(fmt.Sprintf("shop %q removed", removed)), http.StatusSeeOther)
}

type settingsData struct {
	Keywords    string
	Schedule    string
	MaxProducts int
	Saved       bool
	Error       string
}

func (s *Server) handleSettingsForm(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.read()
	if err != nil {
		s.renderError(w, err)
		return
	}

	s.render(w, "settings.html", settingsData{
		Keywords:    strings.Join(cfg.Filters.Keywords, ", "),
		Schedule:    cfg.Schedule.Time,
		MaxProducts: cfg.MaxProductsToCheck,
		Saved:       r.URL.Query().Get("saved") == "1",
	})
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	keywords := splitKeywords(r.FormValue("keywords"))
	scheduleTime := strings.TrimSpace(r.FormValue("schedule_time"))
	maxProducts, err := strconv.Atoi(r.FormValue("max_products"))
	if err != nil || maxProducts < 1 {
		maxProducts = 50
	}

	if _, err := time.Parse("15:04", scheduleTime); err != nil {
		s.render(w, "settings.html", settingsData{
			Keywords:    strings.Join(keywords, ", "),
			Schedule:    scheduleTime,
			MaxProducts: maxProducts,
			Error:       "Schedule time must be HH:MM",
		})
		return
	}

	_, err = s.store.update(func(cfg *config.Config) error {
		cfg.Filters.Keywords = keywords
		cfg.Schedule.Time = scheduleTime
		cfg.MaxProductsToCheck = maxProducts
		return nil
	})
	if err != nil {
		s.renderError(w, err)
		return
	}

	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

type shopRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s *Server) handleAPIListShops(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.read()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load configuration")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"sellers": cfg.Sellers})
}

func (s *Server) handleAPIAddShop(w http.ResponseWriter, r *http.Request) {
	var req shopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	url := strings.TrimSpace(req.URL)
	if name == "" || url == "" {
		s.respondError(w, http.StatusBadRequest, "name and url are required")
		return
	}

	switch err := s.addShop(name, url); {
	case errors.Is(err, errInvalidURL):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errDuplicateShop):
		s.respondError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.logger.Error("failed to add shop", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to save configuration")
	default:
		s.respondJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("shop %q added", name),
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) addShop(name, url string) error {
	if name == "" || url == "" {
		return errors.New("name and URL are required")
	}

	if !ValidMarketplaceURL(url) {
		return errInvalidURL
	}

	_, err := s.store.update(func(cfg *config.Config) error {
		for _, existing := range cfg.Sellers {
			if existing.SearchURL == url {
				return errDuplicateShop
			}
		}

		cfg.Sellers = append(cfg.Sellers, models.Seller{
			Name:      name,
			SearchURL: url,
			AddedAt:   time.Now(),
		})
		return nil
	})
	return err
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("failed to render template", "template", name, "error", err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	s.logger.Error("dashboard error", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func splitKeywords(raw string) []string {
	var keywords []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

