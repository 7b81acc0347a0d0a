package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"food-truck/db"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// BasketStore persists baskets by browser basket id. Writers are not
// coordinated: the last Save wins.
type BasketStore interface {
	Load(ctx context.Context, basketID string) (*Basket, error)
	Save(ctx context.Context, basketID string, b *Basket) error
	Clear(ctx context.Context, basketID string) error
}

var nowMillis = func() int64 { return time.Now().UnixMilli() }

func emptyBasket() *Basket {
	return &Basket{Items: []LineItem{}}
}

// AddToBasket makes restaurantID the active restaurant and appends one unit of title.
func AddToBasket(ctx context.Context, store BasketStore, basketID string, restaurantID int64, title, price string) (*Basket, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if restaurantID <= 0 {
		return nil, fmt.Errorf("invalid restaurant id: %d", restaurantID)
	}
	b, err := store.Load(ctx, basketID)
	if err != nil {
		return nil, err
	}
	b.RestaurantID = &restaurantID
	b.Items = append(b.Items, LineItem{Title: title, Price: price})
	b.Updated = nowMillis()
	if err := store.Save(ctx, basketID, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBasket applies fn to the grouped view and stores the flattened result.
func UpdateBasket(ctx context.Context, store BasketStore, basketID string, fn func([]BasketEntry) []BasketEntry) (*Basket, error) {
	b, err := store.Load(ctx, basketID)
	if err != nil {
		return nil, err
	}
	b.Items = Flatten(fn(Group(b.Items)))
	b.Updated = nowMillis()
	if err := store.Save(ctx, basketID, b); err != nil {
		return nil, err
	}
	return b, nil
}

// PostgresBasketStore keeps one row per basket in the baskets table.
type PostgresBasketStore struct{}

func (PostgresBasketStore) Load(ctx context.Context, basketID string) (*Basket, error) {
	var itemsJSON []byte
	var restaurantID *int64
	var updated int64
	err := db.Pool.QueryRow(ctx, `
		SELECT items, restaurant_id, updated_at FROM baskets WHERE basket_id = $1`,
		basketID,
	).Scan(&itemsJSON, &restaurantID, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return emptyBasket(), nil
		}
		return nil, fmt.Errorf("load basket: %w", err)
	}
	b := &Basket{RestaurantID: restaurantID, Updated: updated}
	if err := decodeItems(itemsJSON, &b.Items); err != nil {
		return nil, err
	}
	return b, nil
}

func (PostgresBasketStore) Save(ctx context.Context, basketID string, b *Basket) error {
	itemsJSON, err := json.Marshal(nonNilItems(b.Items))
	if err != nil {
		return fmt.Errorf("failed to marshal basket items: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO baskets (basket_id, items, restaurant_id, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (basket_id) DO UPDATE SET
			items = $2,
			restaurant_id = $3,
			updated_at = $4`,
		basketID, itemsJSON, b.RestaurantID, b.Updated,
	)
	return err
}

func (PostgresBasketStore) Clear(ctx context.Context, basketID string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO baskets (basket_id, items, restaurant_id, updated_at)
		VALUES ($1, '[]'::jsonb, NULL, $2)
		ON CONFLICT (basket_id) DO UPDATE SET
			items = '[]'::jsonb,
			restaurant_id = NULL,
			updated_at = $2`,
		basketID, nowMillis(),
	)
	return err
}

// RedisBasketStore mirrors the browser layout: the item list, the active
// restaurant and the update stamp live under separate keys.
type RedisBasketStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBasketStore(client *redis.Client, ttl time.Duration) *RedisBasketStore {
	return &RedisBasketStore{client: client, ttl: ttl}
}

func redisKeys(basketID string) (items, restaurant, updated string) {
	prefix := "basket:" + basketID + ":"
	return prefix + "items", prefix + "restaurant_id", prefix + "updated"
}

func (s *RedisBasketStore) Load(ctx context.Context, basketID string) (*Basket, error) {
	kItems, kRestaurant, kUpdated := redisKeys(basketID)
	vals, err := s.client.MGet(ctx, kItems, kRestaurant, kUpdated).Result()
	if err != nil {
		return nil, fmt.Errorf("load basket: %w", err)
	}
	b := emptyBasket()
	if v, ok := vals[0].(string); ok {
		if err := decodeItems([]byte(v), &b.Items); err != nil {
			return nil, err
		}
	}
	if v, ok := vals[1].(string); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			b.RestaurantID = &id
		}
	}
	if v, ok := vals[2].(string); ok {
		b.Updated, _ = strconv.ParseInt(v, 10, 64)
	}
	return b, nil
}

func (s *RedisBasketStore) Save(ctx context.Context, basketID string, b *Basket) error {
	itemsJSON, err := json.Marshal(nonNilItems(b.Items))
	if err != nil {
		return fmt.Errorf("failed to marshal basket items: %w", err)
	}
	kItems, kRestaurant, kUpdated := redisKeys(basketID)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, kItems, itemsJSON, s.ttl)
		if b.RestaurantID != nil {
			p.Set(ctx, kRestaurant, strconv.FormatInt(*b.RestaurantID, 10), s.ttl)
		} else {
			p.Del(ctx, kRestaurant)
		}
		p.Set(ctx, kUpdated, strconv.FormatInt(b.Updated, 10), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save basket: %w", err)
	}
	return nil
}

func (s *RedisBasketStore) Clear(ctx context.Context, basketID string) error {
	kItems, kRestaurant, kUpdated := redisKeys(basketID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, kItems, kRestaurant)
		p.Set(ctx, kUpdated, strconv.FormatInt(nowMillis(), 10), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear basket: %w", err)
	}
	return nil
}

func decodeItems(raw []byte, dst *[]LineItem) error {
	var items []LineItem
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("failed to unmarshal basket items: %w", err)
		}
	}
	*dst = nonNilItems(items)
	return nil
}

func nonNilItems(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	return items
}
