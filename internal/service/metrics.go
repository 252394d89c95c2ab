package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts successful product mutations.
type Metrics struct {
	Created prometheus.Counter
	Updated prometheus.Counter
	Deleted prometheus.Counter
}

// NewMetrics registers the product counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Created: factory.NewCounter(prometheus.CounterOpts{
			Name: "products_created_total",
			Help: "Total number of products created",
		}),
		Updated: factory.NewCounter(prometheus.CounterOpts{
			Name: "products_updated_total",
			Help: "Total number of products updated",
		}),
		Deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "products_deleted_total",
			Help: "Total number of products deleted",
		}),
	}
}
