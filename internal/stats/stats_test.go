package stats

import (
	"expvar"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsUpdater(t *testing.T) {
	mux := http.NewServeMux()
	su := NewStatsUpdater(mux)
	assert.NotNil(t, su, "expected StatsUpdater to be non-nil")
	assert.NotNil(t, su.updateChan, "expected updateChan to be initialized")

	handler, pattern := mux.Handler(&http.Request{URL: &url.URL{Path: "/debug/vars"}, Method: http.MethodGet})
	assert.NotNil(t, handler, "expected handler for /debug/vars to be set")
	assert.Equal(t, "GET /debug/vars", pattern, "expected handler to be registered for GET method on /debug/vars")

	su.RegisterMetric("NumPresenceBroadcasts")
	su.Run()
	defer su.Stop()

	su.Incr("NumPresenceBroadcasts")
	su.Incr("NumPresenceBroadcasts")
	su.Decr("NumPresenceBroadcasts")

	assert.Eventually(t, func() bool {
		return su.vars.Get("NumPresenceBroadcasts").(*expvar.Int).Value() == 1
	}, time.Second, 10*time.Millisecond, "expected counter updates to be applied")
}
