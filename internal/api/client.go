package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	hwerrors "github.com/tonhe/hostwatch/internal/errors"
)

// Endpoint paths.
const (
	PathHosts             = "/api/hosts"
	PathMetrics           = "/api/metrics"
	PathTestConnection    = "/api/test-connection/%d"
	PathCollectNow        = "/api/collect-now/%d"
	PathAddSimulatedHost  = "/api/add-simulated-host"
	PathAddSimulatedHosts = "/api/add-simulated-hosts"
)

// Client exposes the server's endpoints as typed calls.
type Client struct {
	transport Transport
	logger    *zap.Logger
}

// NewClient wraps a Transport.
func NewClient(t Transport, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{transport: t, logger: logger}
}

// ListHosts fetches all hosts in server order.
func (c *Client) ListHosts(ctx context.Context) ([]Host, error) {
	var hosts []Host
	if err := c.transport.Do(ctx, http.MethodGet, PathHosts, nil, &hosts); err != nil {
		return nil, err
	}
	for i := range hosts {
		if hosts[i].HostType == "" {
			hosts[i].HostType = HostReal
		}
	}
	if hosts == nil {
		hosts = []Host{}
	}
	return hosts, nil
}

// Metrics fetches the current metrics snapshot.
func (c *Client) Metrics(ctx context.Context) (MetricsSnapshot, error) {
	var raw json.RawMessage
	if err := c.transport.Do(ctx, http.MethodGet, PathMetrics, nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return MetricsSnapshot{}, nil
	}
	snap, skipped, err := decodeSnapshot(raw)
	if err != nil {
		return nil, hwerrors.Wrap(err, hwerrors.ErrNetwork, "GET "+PathMetrics+": invalid response")
	}
	if len(skipped) > 0 {
		c.logger.Warn("ignoring metrics entries with non-numeric host ids", zap.Strings("keys", skipped))
	}
	return snap, nil
}

// CreateHost registers a host. A 2xx reply carrying an error field is an
// APPLICATION error.
func (c *Client) CreateHost(ctx context.Context, in HostInput) (CreateResult, error) {
	var out struct {
		CreateResult
		Error string `json:"error"`
	}
	if err := c.transport.Do(ctx, http.MethodPost, PathHosts, in, &out); err != nil {
		return CreateResult{}, err
	}
	if out.Error != "" {
		return CreateResult{}, hwerrors.New(hwerrors.ErrApplication, out.Error, "")
	}
	return out.CreateResult, nil
}

// DeleteHost removes a host and its metrics on the server.
func (c *Client) DeleteHost(ctx context.Context, id int64) error {
	var out errorBody
	if err := c.transport.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", PathHosts, id), nil, &out); err != nil {
		return err
	}
	if out.Error != "" {
		return hwerrors.New(hwerrors.ErrApplication, out.Error, "")
	}
	return nil
}

// TestConnection asks the server to probe a host. The result is returned
// even when the probe fails so callers can read HostType.
func (c *Client) TestConnection(ctx context.Context, id int64) (ConnectionResult, error) {
	var out ConnectionResult
	if err := c.transport.Do(ctx, http.MethodPost, fmt.Sprintf(PathTestConnection, id), nil, &out); err != nil {
		return out, err
	}
	if !out.Success {
		return out, hwerrors.New(hwerrors.ErrApplication, out.Reason(), "")
	}
	return out, nil
}

// CollectNow triggers an immediate collection for one host.
func (c *Client) CollectNow(ctx context.Context, id int64) (CollectResult, error) {
	var out CollectResult
	if err := c.transport.Do(ctx, http.MethodPost, fmt.Sprintf(PathCollectNow, id), nil, &out); err != nil {
		return out, err
	}
	if !out.Success {
		return out, hwerrors.New(hwerrors.ErrApplication, out.Error, "")
	}
	return out, nil
}

// AddSimulatedHost asks the server to create one simulated host.
func (c *Client) AddSimulatedHost(ctx context.Context, name string) error {
	return c.action(ctx, PathAddSimulatedHost, map[string]string{"name": name})
}

// AddSimulatedHosts asks the server to create count simulated hosts.
func (c *Client) AddSimulatedHosts(ctx context.Context, count int) error {
	return c.action(ctx, PathAddSimulatedHosts, map[string]int{"count": count})
}

func (c *Client) action(ctx context.Context, path string, body any) error {
	var out ActionResult
	if err := c.transport.Do(ctx, http.MethodPost, path, body, &out); err != nil {
		return err
	}
	if !out.Success {
		return hwerrors.New(hwerrors.ErrApplication, out.Error, "")
	}
	return nil
}
