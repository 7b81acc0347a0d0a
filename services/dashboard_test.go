package services

import (
	"math"
	"testing"

	"food-truck/models"

	"github.com/google/go-cmp/cmp"
)

func TestQuantityByItem(t *testing.T) {
	orders := []models.FoodOrder{
		{ID: 1, RestaurantID: 2, MenuItem: "MacFries", Quantity: 2, TotalPrice: 6.98},
		{ID: 2, RestaurantID: 1, MenuItem: "Coke", Quantity: 1, TotalPrice: 19},
		{ID: 3, RestaurantID: 1, MenuItem: "MacFries", Quantity: 3, TotalPrice: 10.47},
	}
	want := []Datum{{Label: "MacFries", Value: 5}, {Label: "Coke", Value: 1}}
	if diff := cmp.Diff(want, QuantityByItem(orders)); diff != "" {
		t.Errorf("QuantityByItem mismatch (-want +got):\n%s", diff)
	}

	rev := RevenueByRestaurant(orders)
	if len(rev) != 2 || rev[0].Label != "Restaurant 2" || math.Abs(rev[1].Value-29.47) > 1e-9 {
		t.Errorf("RevenueByRestaurant = %+v", rev)
	}
}

func TestQuantityByItemEmpty(t *testing.T) {
	got := QuantityByItem(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", got)
	}
}
