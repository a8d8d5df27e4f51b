package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesResolverMetrics(t *testing.T) {
	AddressesResolvedTotal.WithLabelValues("district").Inc()
	ObserveSince("single", time.Now())
	GazetteerRegions.WithLabelValues("province").Set(34)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `resolver_addresses_total{level="district"}`)
	assert.Contains(t, body, "resolver_resolve_duration_ms")
	assert.Contains(t, body, `resolver_gazetteer_regions{level="province"} 34`)
}
