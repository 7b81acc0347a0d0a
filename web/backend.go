package web

import (
	"context"

	"food-truck/models"
	"food-truck/services"
)

// Backend is the persistence surface the handlers need.
type Backend interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	ListMenu(ctx context.Context, restaurantID int64) ([]models.MenuItem, error)

	AddOrder(ctx context.Context, in models.AddOrderInput) (string, error)
	ListFoodOrders(ctx context.Context) ([]models.FoodOrder, error)

	Register(ctx context.Context, in models.RegisterInput) (*models.Client, error)
	Login(ctx context.Context, username, password string) (*models.Client, error)
	GetProfile(ctx context.Context, username string) (*models.Client, error)

	LoginThrottleWaitSeconds(ctx context.Context, username string) (int, error)
	RecordLoginFailed(ctx context.Context, username string) error
	RecordLoginSuccess(ctx context.Context, username string) error
}

// ServicesBackend serves Backend from the services package and the shared db pool.
type ServicesBackend struct{}

func (ServicesBackend) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return services.ListRestaurants(ctx)
}

func (ServicesBackend) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	return services.GetRestaurant(ctx, id)
}

func (ServicesBackend) ListMenu(ctx context.Context, restaurantID int64) ([]models.MenuItem, error) {
	return services.ListMenu(ctx, restaurantID)
}

func (ServicesBackend) AddOrder(ctx context.Context, in models.AddOrderInput) (string, error) {
	return services.AddOrder(ctx, in)
}

func (ServicesBackend) ListFoodOrders(ctx context.Context) ([]models.FoodOrder, error) {
	return services.ListFoodOrders(ctx)
}

func (ServicesBackend) Register(ctx context.Context, in models.RegisterInput) (*models.Client, error) {
	return services.Register(ctx, in)
}

func (ServicesBackend) Login(ctx context.Context, username, password string) (*models.Client, error) {
	return services.Login(ctx, username, password)
}

func (ServicesBackend) GetProfile(ctx context.Context, username string) (*models.Client, error) {
	return services.GetProfile(ctx, username)
}

func (ServicesBackend) LoginThrottleWaitSeconds(ctx context.Context, username string) (int, error) {
	return services.LoginThrottleWaitSeconds(ctx, username)
}

func (ServicesBackend) RecordLoginFailed(ctx context.Context, username string) error {
	return services.RecordLoginFailed(ctx, username)
}

func (ServicesBackend) RecordLoginSuccess(ctx context.Context, username string) error {
	return services.RecordLoginSuccess(ctx, username)
}
