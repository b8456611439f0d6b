package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lomoval/weekcal/internal/app"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/v1/event", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/v1/event", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/v1/event", http.StatusBadRequest, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/event", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/event", "400")))
	require.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestNotify(t *testing.T) {
	m := New()
	ctx := context.Background()
	m.Notify(ctx, app.Change{Action: app.ActionCreated})
	m.Notify(ctx, app.Change{Action: app.ActionCreated})
	m.Notify(ctx, app.Change{Action: app.ActionDeleted})

	expected := `
# HELP calendar_event_changes_total Total number of committed event changes
# TYPE calendar_event_changes_total counter
calendar_event_changes_total{action="created"} 2
calendar_event_changes_total{action="deleted"} 1
`
	require.NoError(t, testutil.CollectAndCompare(m.changes, strings.NewReader(expected)))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Notify(context.Background(), app.Change{Action: app.ActionUpdated})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `calendar_event_changes_total{action="updated"} 1`)
	require.Contains(t, string(body), "go_goroutines")
}
