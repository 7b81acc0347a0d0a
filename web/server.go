package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"food-truck/config"
	"food-truck/notify"
	"food-truck/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	basketCookie = "basket_id"
	userCookie   = "user"
	cookieMaxAge = 365 * 24 * 60 * 60
	maxBodyBytes = 1 << 20
)

// OrderNotifier receives submitted baskets. *notify.Notifier implements it.
type OrderNotifier interface {
	Enqueue(o notify.OrderSubmitted) bool
}

type Server struct {
	cfg      config.HTTPConfig
	backend  Backend
	baskets  services.BasketStore
	notifier OrderNotifier
	logger   zerolog.Logger
	pages    pageSet
}

func NewServer(cfg config.HTTPConfig, backend Backend, baskets services.BasketStore, notifier OrderNotifier, logger zerolog.Logger) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{
		cfg:      cfg,
		backend:  backend,
		baskets:  baskets,
		notifier: notifier,
		logger:   logger,
		pages:    pages,
	}, nil
}

// middlewares is the stack every route runs through. requestID comes first so
// panic and access logs carry the id.
func (s *Server) middlewares() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		requestID,
		recoverer,
		cors(s.cfg.AllowedOrigins),
		metricsAndAccessLog,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.middlewares()...)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS()))))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authRateLimit(s.cfg.AuthRateLimit))
			r.Post("/login", s.handleAPILogin)
			r.Post("/register", s.handleAPIRegister)
		})
		r.Post("/add_order", s.handleAddOrder)
		r.Get("/food_orders", s.handleFoodOrders)
		r.Get("/profile/{username}", s.handleProfile)
		r.Get("/restaurants", s.handleRestaurants)
		r.Get("/restaurants/{id}/menu", s.handleMenu)

		r.Route("/basket", func(r chi.Router) {
			r.Get("/", s.handleGetBasket)
			r.Delete("/", s.handleClearBasket)
			r.Post("/items", s.handleAddBasketItem)
			r.Post("/items/increase", s.handleBasketOp(opIncrease))
			r.Post("/items/decrease", s.handleBasketOp(opDecrease))
			r.Post("/items/remove", s.handleBasketOp(opRemove))
			r.Post("/submit", s.handleSubmitBasket)
		})
	})

	r.Get("/", s.pageHome)
	r.Group(func(r chi.Router) {
		r.Use(authRateLimit(s.cfg.AuthRateLimit))
		r.Post("/login", s.formLogin)
		r.Post("/register", s.formRegister)
	})
	r.Post("/logout", s.formLogout)
	r.Get("/restaurants", s.pageRestaurants)
	r.Get("/restaurants/{id}", s.pageRestaurant)
	r.Get("/basket", s.pageBasket)
	r.Post("/basket/add", s.formBasketAdd)
	r.Post("/basket/increase", s.formBasketOp(opIncrease))
	r.Post("/basket/decrease", s.formBasketOp(opDecrease))
	r.Post("/basket/remove", s.formBasketOp(opRemove))
	r.Post("/basket/clear", s.formBasketClear)
	r.Post("/basket/submit", s.formBasketSubmit)
	r.Get("/dashboard", s.pageDashboard)
	r.Get("/profile", s.pageProfile)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	return r
}

// apiError carries an HTTP status and the detail text shown to the user.
type apiError struct {
	status     int
	detail     string
	retryAfter int // seconds, sent as Retry-After on 429
}

func (e *apiError) Error() string { return e.detail }

func newAPIError(status int, format string, args ...any) error {
	return &apiError{status: status, detail: fmt.Sprintf(format, args...)}
}

func statusAndDetail(err error) (int, string) {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.status, ae.detail
	}
	return http.StatusInternalServerError, "Internal server error"
}

// basketID returns the browser's basket id, issuing a new cookie when missing.
func (s *Server) basketID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(basketCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     basketCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func currentUser(r *http.Request) string {
	c, err := r.Cookie(userCookie)
	if err != nil {
		return ""
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return v
}

func (s *Server) setUser(w http.ResponseWriter, username string) {
	http.SetCookie(w, &http.Cookie{
		Name:     userCookie,
		Value:    url.QueryEscape(username),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearUser(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: userCookie, Value: "", Path: "/", MaxAge: -1})
}
