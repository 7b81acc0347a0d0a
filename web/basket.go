package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"food-truck/notify"
	"food-truck/services"
)

type basketOp string

const (
	opIncrease basketOp = "increase"
	opDecrease basketOp = "decrease"
	opRemove   basketOp = "remove"
)

func (op basketOp) apply(title string) func([]services.BasketEntry) []services.BasketEntry {
	return func(entries []services.BasketEntry) []services.BasketEntry {
		switch op {
		case opIncrease:
			return services.Increase(entries, title)
		case opDecrease:
			return services.Decrease(entries, title)
		default:
			return services.Remove(entries, title)
		}
	}
}

// basketView is the grouped basket as returned by the API and rendered on /basket.
type basketView struct {
	RestaurantID *int64                 `json:"restaurant_id"`
	Items        []services.BasketEntry `json:"items"`
	UniqueItems  int                    `json:"unique_items"`
	Count        int                    `json:"count"`
	Total        float64                `json:"total"`
	TotalText    string                 `json:"total_text"`
	Updated      int64                  `json:"updated"`
}

func newBasketView(b *services.Basket) basketView {
	entries := services.Group(b.Items)
	total := services.Total(entries)
	return basketView{
		RestaurantID: b.RestaurantID,
		Items:        entries,
		UniqueItems:  len(entries),
		Count:        services.Count(entries),
		Total:        total,
		TotalText:    services.FormatMoney(total),
		Updated:      b.Updated,
	}
}

type addItemRequest struct {
	RestaurantID int64  `json:"restaurant_id"`
	Title        string `json:"title"`
	Price        string `json:"price"`
}

type titleRequest struct {
	Title string `json:"title"`
}

func (s *Server) addBasketItem(ctx context.Context, basketID string, req addItemRequest) (*services.Basket, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.RestaurantID <= 0 {
		return nil, newAPIError(http.StatusBadRequest, "restaurant_id and title are required")
	}
	if err := s.knownRestaurant(ctx, req.RestaurantID); err != nil {
		if errors.Is(err, services.ErrUnknownRestaurant) {
			return nil, newAPIError(http.StatusBadRequest, "Unknown restaurant: %d", req.RestaurantID)
		}
		return nil, err
	}
	b, err := services.AddToBasket(ctx, s.baskets, basketID, req.RestaurantID, req.Title, req.Price)
	if err != nil {
		return nil, err
	}
	basketOps.WithLabelValues("add").Inc()
	return b, nil
}

func (s *Server) updateBasket(ctx context.Context, basketID string, op basketOp, title string) (*services.Basket, error) {
	if strings.TrimSpace(title) == "" {
		return nil, newAPIError(http.StatusBadRequest, "title is required")
	}
	b, err := services.UpdateBasket(ctx, s.baskets, basketID, op.apply(title))
	if err != nil {
		return nil, err
	}
	basketOps.WithLabelValues(string(op)).Inc()
	return b, nil
}

func (s *Server) clearBasket(ctx context.Context, basketID string) error {
	if err := s.baskets.Clear(ctx, basketID); err != nil {
		return err
	}
	basketOps.WithLabelValues("clear").Inc()
	return nil
}

// knownRestaurant maps a restaurant id missing from the menu tables to
// services.ErrUnknownRestaurant.
func (s *Server) knownRestaurant(ctx context.Context, id int64) error {
	_, err := s.backend.GetRestaurant(ctx, id)
	if errors.Is(err, services.ErrRestaurantNotFound) {
		return services.ErrUnknownRestaurant
	}
	return err
}

// submitBasket sends every grouped line to add_order and notifies the
// restaurant. The basket is left as is.
func (s *Server) submitBasket(ctx context.Context, basketID, username string) ([]string, error) {
	b, err := s.baskets.Load(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if b.RestaurantID == nil {
		basketSubmissions.WithLabelValues("unknown_restaurant").Inc()
		return nil, newAPIError(http.StatusBadRequest, "Unknown restaurant. Cannot submit order.")
	}
	if len(b.Items) == 0 {
		basketSubmissions.WithLabelValues("empty").Inc()
		return nil, newAPIError(http.StatusBadRequest, "Basket is empty.")
	}
	err = s.knownRestaurant(ctx, *b.RestaurantID)
	var msgs []string
	if err == nil {
		msgs, err = services.SubmitBasket(ctx, b, s.addOrder)
	}
	if errors.Is(err, services.ErrUnknownRestaurant) {
		basketSubmissions.WithLabelValues("unknown_restaurant").Inc()
		return nil, newAPIError(http.StatusBadRequest, "Unknown restaurant. Cannot submit order.")
	}
	if err != nil {
		basketSubmissions.WithLabelValues("failed").Inc()
		return msgs, newAPIError(http.StatusBadRequest, "Failed to submit order: %v", err)
	}
	basketSubmissions.WithLabelValues("ok").Inc()

	entries := services.Group(b.Items)
	if s.notifier != nil {
		s.notifier.Enqueue(notify.OrderSubmitted{
			RestaurantID: *b.RestaurantID,
			Username:     username,
			Entries:      entries,
			Total:        services.Total(entries),
		})
	}
	return msgs, nil
}

func (s *Server) handleGetBasket(w http.ResponseWriter, r *http.Request) {
	id := s.basketID(w, r)
	b, err := s.baskets.Load(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, "basket", err)
		return
	}
	// ?since=<updated> lets other tabs poll cheaply for changes.
	if since := r.URL.Query().Get("since"); since != "" {
		if v, err := strconv.ParseInt(since, 10, 64); err == nil && v == b.Updated {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	writeJSON(w, http.StatusOK, newBasketView(b))
}

func (s *Server) handleAddBasketItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, r, "basket", err)
		return
	}
	b, err := s.addBasketItem(r.Context(), s.basketID(w, r), req)
	if err != nil {
		s.writeErr(w, r, "basket", err)
		return
	}
	writeJSON(w, http.StatusOK, newBasketView(b))
}

func (s *Server) handleBasketOp(op basketOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req titleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeErr(w, r, "basket", err)
			return
		}
		b, err := s.updateBasket(r.Context(), s.basketID(w, r), op, req.Title)
		if err != nil {
			s.writeErr(w, r, "basket", err)
			return
		}
		writeJSON(w, http.StatusOK, newBasketView(b))
	}
}

func (s *Server) handleClearBasket(w http.ResponseWriter, r *http.Request) {
	if err := s.clearBasket(r.Context(), s.basketID(w, r)); err != nil {
		s.writeErr(w, r, "basket", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitBasket(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.submitBasket(r.Context(), s.basketID(w, r), currentUser(r))
	if err != nil {
		s.writeErr(w, r, "basket", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Order submitted successfully!", "results": msgs})
}
