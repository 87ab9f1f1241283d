package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestIncLookup(t *testing.T) {
	before := testutil.ToFloat64(lookups.WithLabelValues(LookupNotFound))
	IncLookup(LookupNotFound)
	IncLookup(LookupNotFound)
	assert.Equal(t, before+2, testutil.ToFloat64(lookups.WithLabelValues(LookupNotFound)))
}

func TestObserveProviderRequest(t *testing.T) {
	before := testutil.ToFloat64(providerRequests.WithLabelValues("isbndb", "found"))
	ObserveProviderRequest("isbndb", "found", 120*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(providerRequests.WithLabelValues("isbndb", "found")))
	assert.Equal(t, 1, testutil.CollectAndCount(providerDuration))
}

func TestSetBooksTotal(t *testing.T) {
	SetBooksTotal(42)
	assert.Equal(t, float64(42), testutil.ToFloat64(booksGauge))
}
