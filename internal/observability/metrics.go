package observability

import (
	"strings"
	"time"

	"foodgram/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodgram_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RelationChanges counts favorite/shopping cart adds and removes by outcome.
	RelationChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_recipe_relation_changes_total",
		Help: "Recipe relation add/remove attempts by kind, action and outcome",
	}, []string{"kind", "action", "outcome"})

	// SubscriptionChanges counts subscribe and unsubscribe attempts by outcome.
	SubscriptionChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_subscription_changes_total",
		Help: "Subscription changes by action and outcome",
	}, []string{"action", "outcome"})

	// ShoppingListDownloads counts rendered shopping lists.
	ShoppingListDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_shopping_list_downloads_total",
		Help: "Total number of shopping list downloads",
	})

	// CacheLookups counts recipe cache lookups by result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_cache_lookups_total",
		Help: "Cache lookups by cache name and result",
	}, []string{"cache", "result"})

	// ImageUploads counts stored images by kind (recipe, avatar).
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_image_uploads_total",
		Help: "Stored images by kind",
	}, []string{"kind"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// Outcome maps an error to a low-cardinality metric label: "ok", the
// lowercased AppError code, or "error".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := models.ErrorCode(err); code != "" {
		return strings.ToLower(code)
	}
	return "error"
}
