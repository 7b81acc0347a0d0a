package models

import "time"

// AddOrderInput is the body of POST /api/add_order.
type AddOrderInput struct {
	RestaurantID int64   `json:"restaurant_id"`
	MenuItem     string  `json:"menu_item"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	TotalPrice   float64 `json:"total_price"`
}

// FoodOrder is a row from food_orders. One row per (restaurant, menu item);
// repeated orders of the same item accumulate into it.
type FoodOrder struct {
	ID           int64   `json:"id"`
	RestaurantID int64   `json:"restaurant_id"`
	MenuItem     string  `json:"menu_item"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	TotalPrice   float64 `json:"total_price"`
}

type Client struct {
	ID        int64     `json:"client_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password_hash"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password_hash"`
}
