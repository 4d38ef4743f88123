package observability

import "github.com/prometheus/client_golang/prometheus"

// Domain counters, exposed on /metrics next to the HTTP collectors.
var (
	RecipesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "foodgram",
		Name:      "recipes_created_total",
		Help:      "Recipes created, idempotent replays excluded.",
	})

	IdempotentReplays = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "foodgram",
		Name:      "idempotent_replays_total",
		Help:      "Create requests answered from a stored idempotency record.",
	})

	// CollectionChanges is labelled by collection (favorites|shopping_cart)
	// and op (add|remove).
	CollectionChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodgram",
		Name:      "collection_changes_total",
		Help:      "Successful favorite and shopping cart changes.",
	}, []string{"collection", "op"})

	ShoppingListDownloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "foodgram",
		Name:      "shopping_list_downloads_total",
		Help:      "Shopping list documents served.",
	})

	ShoppingListLines = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "foodgram",
		Name:      "shopping_list_lines",
		Help:      "Aggregated lines per downloaded shopping list.",
		Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
	})
)

func init() {
	prometheus.MustRegister(RecipesCreated, IdempotentReplays, CollectionChanges, ShoppingListDownloads, ShoppingListLines)
}
