package services

import (
	"context"
	"errors"

	"food-truck/db"
	"food-truck/models"

	"github.com/jackc/pgx/v5"
)

var ErrRestaurantNotFound = errors.New("restaurant not found")

func ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, image_url, rating FROM restaurants
		ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Restaurant
	for rows.Next() {
		var r models.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.ImageURL, &r.Rating); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	r := models.Restaurant{ID: id}
	err := db.Pool.QueryRow(ctx, `
		SELECT name, image_url, rating FROM restaurants WHERE id = $1`, id,
	).Scan(&r.Name, &r.ImageURL, &r.Rating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return &r, nil
}

func ListMenu(ctx context.Context, restaurantID int64) ([]models.MenuItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, restaurant_id, title, price, image_url FROM menu_items
		WHERE restaurant_id = $1
		ORDER BY id`,
		restaurantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		if err := rows.Scan(&it.ID, &it.RestaurantID, &it.Title, &it.Price, &it.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
