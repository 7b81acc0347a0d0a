package models

type Restaurant struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url"`
	Rating   float64 `json:"rating"`
}

// MenuItem keeps the price as display text ("9.99 dollars"); basket totals parse it.
type MenuItem struct {
	ID           int64  `json:"id"`
	RestaurantID int64  `json:"restaurant_id"`
	Title        string `json:"title"`
	Price        string `json:"price"`
	ImageURL     string `json:"image_url"`
}
