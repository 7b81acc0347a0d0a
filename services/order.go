package services

import (
	"context"
	"errors"
	"fmt"

	"food-truck/db"
	"food-truck/models"
)

var ErrUnknownRestaurant = errors.New("unknown restaurant")

func ValidateAddOrder(in models.AddOrderInput) error {
	if in.RestaurantID <= 0 {
		return fmt.Errorf("restaurant_id must be positive")
	}
	if in.MenuItem == "" {
		return fmt.Errorf("menu_item is required")
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if in.Price < 0 {
		return fmt.Errorf("price must be >= 0")
	}
	return nil
}

// AddOrder folds an order line into food_orders. An existing row for the same
// restaurant and menu item gets its quantity raised and total_price recomputed
// from the stored price; otherwise the line is inserted as given. The unique
// index on (restaurant_id, menu_item) makes the upsert a single atomic statement.
func AddOrder(ctx context.Context, in models.AddOrderInput) (string, error) {
	if err := ValidateAddOrder(in); err != nil {
		return "", err
	}

	var inserted bool
	var quantity int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO food_orders (restaurant_id, menu_item, quantity, price, total_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (restaurant_id, menu_item) DO UPDATE SET
			quantity = food_orders.quantity + EXCLUDED.quantity,
			total_price = food_orders.price * (food_orders.quantity + EXCLUDED.quantity)
		RETURNING (xmax = 0), quantity`,
		in.RestaurantID, in.MenuItem, in.Quantity, in.Price, in.TotalPrice,
	).Scan(&inserted, &quantity)
	if err != nil {
		return "", err
	}
	if inserted {
		return fmt.Sprintf("Inserted %s with quantity %d", in.MenuItem, quantity), nil
	}
	return fmt.Sprintf("Updated %s quantity to %d", in.MenuItem, quantity), nil
}

func ListFoodOrders(ctx context.Context) ([]models.FoodOrder, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, restaurant_id, menu_item, quantity, price, total_price
		FROM food_orders ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FoodOrder
	for rows.Next() {
		var o models.FoodOrder
		if err := rows.Scan(&o.ID, &o.RestaurantID, &o.MenuItem, &o.Quantity, &o.Price, &o.TotalPrice); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// OrderLines converts grouped basket entries into add_order inputs.
func OrderLines(restaurantID int64, entries []BasketEntry) []models.AddOrderInput {
	lines := make([]models.AddOrderInput, 0, len(entries))
	for _, e := range entries {
		price := ParsePrice(e.Price)
		lines = append(lines, models.AddOrderInput{
			RestaurantID: restaurantID,
			MenuItem:     e.Title,
			Quantity:     e.Quantity,
			Price:        price,
			TotalPrice:   price * float64(e.Quantity),
		})
	}
	return lines
}

// SubmitBasket sends every grouped entry through add, stopping at the first
// failure. Lines already accepted stay accepted.
func SubmitBasket(ctx context.Context, b *Basket, add func(context.Context, models.AddOrderInput) (string, error)) ([]string, error) {
	if b == nil || b.RestaurantID == nil || *b.RestaurantID <= 0 {
		return nil, ErrUnknownRestaurant
	}
	var messages []string
	for _, line := range OrderLines(*b.RestaurantID, Group(b.Items)) {
		msg, err := add(ctx, line)
		if err != nil {
			return messages, fmt.Errorf("%s: %w", line.MenuItem, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
