package services

import (
	"math"
	"strconv"

	"food-truck/models"
)

// Datum is one labelled value fed to the dashboard charts.
type Datum struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// QuantityByItem sums ordered quantity per menu item, in order of first appearance.
func QuantityByItem(orders []models.FoodOrder) []Datum {
	return aggregate(orders, func(o models.FoodOrder) (string, float64) {
		return o.MenuItem, float64(o.Quantity)
	})
}

// RevenueByRestaurant sums total_price per restaurant id, rounded to cents.
func RevenueByRestaurant(orders []models.FoodOrder) []Datum {
	out := aggregate(orders, func(o models.FoodOrder) (string, float64) {
		return "Restaurant " + strconv.FormatInt(o.RestaurantID, 10), o.TotalPrice
	})
	for i := range out {
		out[i].Value = math.Round(out[i].Value*100) / 100
	}
	return out
}

func aggregate(orders []models.FoodOrder, key func(models.FoodOrder) (string, float64)) []Datum {
	out := make([]Datum, 0)
	index := make(map[string]int)
	for _, o := range orders {
		label, v := key(o)
		if i, ok := index[label]; ok {
			out[i].Value += v
			continue
		}
		index[label] = len(out)
		out = append(out, Datum{Label: label, Value: v})
	}
	return out
}
