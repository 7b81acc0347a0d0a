package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodtruck",
		Name:      "order_lines_total",
		Help:      "Order lines accepted by add_order, by outcome",
	}, []string{"outcome"})

	basketSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodtruck",
		Name:      "basket_submissions_total",
		Help:      "Basket submissions, by outcome",
	}, []string{"outcome"})

	basketOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodtruck",
		Name:      "basket_operations_total",
		Help:      "Basket mutations, by operation",
	}, []string{"op"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodtruck",
		Name:      "login_attempts_total",
		Help:      "Login attempts, by outcome",
	}, []string{"outcome"})
)
