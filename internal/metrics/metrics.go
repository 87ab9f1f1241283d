package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bookshelf"

// Lookup results.
const (
	LookupCacheHit = "cache_hit"
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupError    = "error"
)

var (
	registerOnce sync.Once

	lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "isbn_lookups_total",
		Help:      "Total number of ISBN lookups by result",
	}, []string{"result"})
	lookupsShared = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "isbn_lookups_shared_total",
		Help:      "Number of lookups that joined an in-flight resolution for the same ISBN",
	})
	providerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Outbound metadata provider requests by provider and outcome",
	}, []string{"provider", "outcome"})
	providerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of outbound metadata provider requests",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 9),
	}, []string{"provider"})
	enrichments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichments_total",
		Help:      "Book enrichment runs by outcome",
	}, []string{"outcome"})
	booksGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "books_total",
		Help:      "Number of books in the library as of the last listing",
	})
)

// Register adds all collectors to the default Prometheus registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(lookups, lookupsShared, providerRequests, providerDuration, enrichments, booksGauge)
	})
}

func IncLookup(result string) { lookups.WithLabelValues(result).Inc() }
func IncLookupShared()        { lookupsShared.Inc() }

func ObserveProviderRequest(provider, outcome string, d time.Duration) {
	providerRequests.WithLabelValues(provider, outcome).Inc()
	providerDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func IncEnrichment(outcome string) { enrichments.WithLabelValues(outcome).Inc() }

func SetBooksTotal(n int) { booksGauge.Set(float64(n)) }
