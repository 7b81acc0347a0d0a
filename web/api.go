package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	applog "food-truck/log"
	"food-truck/models"
	"food-truck/services"

	"github.com/go-chi/chi/v5"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return newAPIError(http.StatusBadRequest, "Invalid request body: %v", err)
	}
	return nil
}

// login checks the cooldown, verifies the password and updates the throttle.
func (s *Server) login(ctx context.Context, username, password string) (*models.Client, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, newAPIError(http.StatusBadRequest, "Username and password are required")
	}
	wait, err := s.backend.LoginThrottleWaitSeconds(ctx, username)
	if err != nil {
		return nil, err
	}
	if wait > 0 {
		loginAttempts.WithLabelValues("throttled").Inc()
		return nil, &apiError{
			status:     http.StatusTooManyRequests,
			detail:     fmt.Sprintf("Too many failed attempts. Try again in %d seconds.", wait),
			retryAfter: wait,
		}
	}
	c, err := s.backend.Login(ctx, username, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		loginAttempts.WithLabelValues("failed").Inc()
		if err := s.backend.RecordLoginFailed(ctx, username); err != nil {
			logger := applog.FromContext(ctx, "auth")
			logger.Warn().Err(err).Str("username", username).Msg("record failed login")
		}
		return nil, newAPIError(http.StatusUnauthorized, "Invalid username or password")
	}
	if err != nil {
		return nil, err
	}
	loginAttempts.WithLabelValues("success").Inc()
	if err := s.backend.RecordLoginSuccess(ctx, username); err != nil {
		logger := applog.FromContext(ctx, "auth")
		logger.Warn().Err(err).Str("username", username).Msg("reset login throttle")
	}
	return c, nil
}

func (s *Server) register(ctx context.Context, in models.RegisterInput) (*models.Client, error) {
	if err := services.ValidateRegister(in); err != nil {
		return nil, newAPIError(http.StatusBadRequest, "%s", err.Error())
	}
	c, err := s.backend.Register(ctx, in)
	if errors.Is(err, services.ErrUsernameTaken) {
		return nil, newAPIError(http.StatusConflict, "Username already registered")
	}
	return c, err
}

func (s *Server) logFailure(r *http.Request, component string, err error, msg string) {
	logger := applog.FromContext(r.Context(), component)
	logger.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, component string, err error) {
	status, detail := statusAndDetail(err)
	if status >= http.StatusInternalServerError {
		s.logFailure(r, component, err, "request failed")
	}
	if status == http.StatusTooManyRequests {
		retry := services.ThrottleCooldownCapSeconds
		var ae *apiError
		if errors.As(err, &ae) && ae.retryAfter > 0 {
			retry = ae.retryAfter
		}
		w.Header().Set("Retry-After", strconv.Itoa(retry))
	}
	writeDetail(w, status, detail)
}

func (s *Server) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeErr(w, r, "auth", err)
		return
	}
	c, err := s.login(r.Context(), in.Username, in.Password)
	if err != nil {
		s.writeErr(w, r, "auth", err)
		return
	}
	s.setUser(w, c.Username)
	writeJSON(w, http.StatusOK, map[string]any{"username": c.Username, "email": c.Email})
}

func (s *Server) handleAPIRegister(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeErr(w, r, "auth", err)
		return
	}
	c, err := s.register(r.Context(), in)
	if err != nil {
		s.writeErr(w, r, "auth", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Registration successful", "username": c.Username})
}

func (s *Server) handleAddOrder(w http.ResponseWriter, r *http.Request) {
	var in models.AddOrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeErr(w, r, "orders", err)
		return
	}
	msg, err := s.addOrder(r.Context(), in)
	if err != nil {
		s.logFailure(r, "orders", err, "add order")
		writeDetail(w, http.StatusBadRequest, "Failed to add order: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) addOrder(ctx context.Context, in models.AddOrderInput) (string, error) {
	if err := services.ValidateAddOrder(in); err != nil {
		ordersAdded.WithLabelValues("invalid").Inc()
		return "", err
	}
	msg, err := s.backend.AddOrder(ctx, in)
	if err != nil {
		ordersAdded.WithLabelValues("error").Inc()
		return "", err
	}
	ordersAdded.WithLabelValues("ok").Inc()
	return msg, nil
}

func (s *Server) handleFoodOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.backend.ListFoodOrders(r.Context())
	if err != nil {
		s.writeErr(w, r, "orders", err)
		return
	}
	if orders == nil {
		orders = []models.FoodOrder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"food_orders": orders})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	c, err := s.backend.GetProfile(r.Context(), chi.URLParam(r, "username"))
	if errors.Is(err, services.ErrClientNotFound) {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.writeErr(w, r, "profile", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":   c.Username,
		"email":      c.Email,
		"created_at": c.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleRestaurants(w http.ResponseWriter, r *http.Request) {
	list, err := s.backend.ListRestaurants(r.Context())
	if err != nil {
		s.writeErr(w, r, "menu", err)
		return
	}
	if list == nil {
		list = []models.Restaurant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurants": list})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, newAPIError(http.StatusBadRequest, "Invalid restaurant id: %s", raw)
	}
	return id, nil
}

// restaurantMenu loads a restaurant and its menu, mapping a missing restaurant to 404.
func (s *Server) restaurantMenu(ctx context.Context, rawID string) (*models.Restaurant, []models.MenuItem, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, nil, err
	}
	rest, err := s.backend.GetRestaurant(ctx, id)
	if errors.Is(err, services.ErrRestaurantNotFound) {
		return nil, nil, newAPIError(http.StatusNotFound, "Restaurant not found")
	}
	if err != nil {
		return nil, nil, err
	}
	menu, err := s.backend.ListMenu(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if menu == nil {
		menu = []models.MenuItem{}
	}
	return rest, menu, nil
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	rest, menu, err := s.restaurantMenu(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, r, "menu", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurant": rest, "menu": menu})
}
