package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	// Повторное создание не должно паниковать из-за дублирующей регистрации
	first := New("driver_sync")
	second := New("driver_sync")

	first.PollsTotal.WithLabelValues("success").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(first.PollsTotal.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.PollsTotal.WithLabelValues("success")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New("driver_sync")
	m.ActionsTotal.WithLabelValues("approve", "applied").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `driver_sync_actions_total{kind="approve",outcome="applied"} 1`)
}
