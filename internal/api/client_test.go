package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	hwerrors "github.com/tonhe/hostwatch/internal/errors"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(NewHTTPTransport(srv.URL, 5*time.Second, zap.NewNop()), zap.NewNop())
}

func TestListHostsNormalizesHostType(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/hosts", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.Write([]byte(`[
			{"id":1,"name":"web","ip":"10.0.0.1","port":22,"username":"root","created_at":"2024-03-01 12:00:00"},
			{"id":2,"name":"sim","ip":"127.0.0.150","port":22,"username":"simulated","host_type":"simulated","created_at":null}
		]`))
	})
	c := newTestClient(t, mux)

	hosts, err := c.ListHosts(context.Background())
	require.NoError(t, err)
	require.Len(t, hosts, 2)
	assert.Equal(t, HostReal, hosts[0].HostType)
	assert.Equal(t, 2024, hosts[0].CreatedAt.Year())
	assert.True(t, hosts[1].IsSimulated())
	assert.True(t, hosts[1].CreatedAt.IsZero())
}

func TestListHostsEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	hosts, err := c.ListHosts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, hosts)
	assert.Empty(t, hosts)
}

func TestMetricsSnapshotKeys(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"1": {"status":"online","cpu_usage":95.5,"memory_usage":40,"disk_usage":10,"load_avg":[0.5,0.4],"data_source":"real","last_update":1700000000.5},
			"abc": {"status":"online"}
		}`))
	}))

	snap, err := c.Metrics(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 1)

	m, ok := snap.Lookup(1)
	require.True(t, ok)
	assert.True(t, m.Online())
	assert.InDelta(t, 95.5, m.CPUUsage, 0.001)
	assert.Equal(t, LoadAvg{0.5, 0.4, 0}, m.LoadAvg)
	assert.Equal(t, int64(1700000000), m.UpdatedAt().Unix())

	_, ok = snap.Lookup(7)
	assert.False(t, ok)
}

func TestNon2xxIsNetworkError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.ListHosts(context.Background())
	require.Error(t, err)
	assert.True(t, hwerrors.IsCode(err, hwerrors.ErrNetwork))
	assert.Contains(t, err.Error(), "HTTP error! status: 500")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestCreateHostServerErrorBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "duplicate ip"})
	}))

	_, err := c.CreateHost(context.Background(), HostInput{Name: "a", IP: "10.0.0.1"})
	require.Error(t, err)
	assert.True(t, hwerrors.IsCode(err, hwerrors.ErrNetwork))
	assert.Contains(t, err.Error(), "duplicate ip")
}

func TestCreateHostSendsBody(t *testing.T) {
	var got HostInput
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":42,"message":"ok"}`))
	}))

	res, err := c.CreateHost(context.Background(), HostInput{
		Name: "db", IP: "999.1.1.1", Port: 22, Username: "u", Password: "p", HostType: HostReal,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.ID)
	assert.Equal(t, "999.1.1.1", got.IP)
	assert.Equal(t, HostReal, got.HostType)
}

func TestCreateHostErrorFieldOn2xx(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"name taken"}`))
	}))
	_, err := c.CreateHost(context.Background(), HostInput{})
	require.Error(t, err)
	assert.True(t, hwerrors.IsCode(err, hwerrors.ErrApplication))
	assert.Equal(t, "name taken", err.Error())
}

func TestDeleteHostPath(t *testing.T) {
	var path, method string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		w.Write([]byte(`{"message":"deleted"}`))
	}))
	require.NoError(t, c.DeleteHost(context.Background(), 9))
	assert.Equal(t, "/api/hosts/9", path)
	assert.Equal(t, http.MethodDelete, method)
}

func TestTestConnectionFailureKeepsResult(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/test-connection/3", r.URL.Path)
		w.Write([]byte(`{"success":false,"message":"auth failed","host_type":"real"}`))
	}))

	res, err := c.TestConnection(context.Background(), 3)
	require.Error(t, err)
	assert.True(t, hwerrors.IsCode(err, hwerrors.ErrApplication))
	assert.Equal(t, "auth failed", err.Error())
	assert.Equal(t, HostReal, res.HostType)
}

func TestCollectNow(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/collect-now/5", r.URL.Path)
		w.Write([]byte(`{"success":true,"data_source":"simulated"}`))
	}))
	res, err := c.CollectNow(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "simulated", res.DataSource)
}

func TestAddSimulatedHosts(t *testing.T) {
	var body map[string]int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathAddSimulatedHosts, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"success":true}`))
	}))
	require.NoError(t, c.AddSimulatedHosts(context.Background(), 4))
	assert.Equal(t, 4, body["count"])
}

func TestAddSimulatedHostFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"limit reached"}`))
	}))
	err := c.AddSimulatedHost(context.Background(), "sim")
	require.Error(t, err)
	assert.True(t, hwerrors.IsCode(err, hwerrors.ErrApplication))
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(NewHTTPTransport(url, time.Second, nil), nil)
	_, err := c.Metrics(context.Background())
	require.Error(t, err)
	assert.True(t, hwerrors.IsCode(err, hwerrors.ErrNetwork))
}

func TestReason(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(NewHTTPTransport(url, time.Second, nil), nil).ListHosts(context.Background())
	require.Error(t, err)
	got := Reason(err)
	assert.Contains(t, got, "GET /api/hosts")
	assert.Contains(t, got, "dial tcp", "the transport cause is kept")

	status := &hwerrors.Error{Code: hwerrors.ErrNetwork, Message: "database locked", Cause: &StatusError{StatusCode: 500}}
	assert.Equal(t, "database locked", Reason(status))

	assert.Equal(t, "auth failed", Reason(hwerrors.New(hwerrors.ErrApplication, "auth failed", "try again")))
	assert.Equal(t, "plain", Reason(errors.New("plain")))
	assert.Equal(t, "", Reason(nil))
}
