// Package registry manages the set of monitored hosts on the server: listing,
// adding, deleting and testing them. Every mutation is followed by a fresh
// listing; nothing is updated optimistically.
package registry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/tonhe/hostwatch/internal/api"
	hwerrors "github.com/tonhe/hostwatch/internal/errors"
	"github.com/tonhe/hostwatch/internal/i18n"
	"github.com/tonhe/hostwatch/internal/notify"
)

// DefaultPort is used when a host is created without one.
const DefaultPort = 22

// SimulatedCredential is the username and password sent for simulated hosts.
const SimulatedCredential = "simulated"

// ipPattern only checks the dotted-quad shape; octets are not range checked.
var ipPattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// ValidIP reports whether s looks like a dotted-quad address.
func ValidIP(s string) bool {
	return ipPattern.MatchString(s)
}

// Backend is the part of the API the registry uses. *api.Client satisfies it.
type Backend interface {
	ListHosts(ctx context.Context) ([]api.Host, error)
	CreateHost(ctx context.Context, in api.HostInput) (api.CreateResult, error)
	DeleteHost(ctx context.Context, id int64) error
	TestConnection(ctx context.Context, id int64) (api.ConnectionResult, error)
	AddSimulatedHost(ctx context.Context, name string) error
	AddSimulatedHosts(ctx context.Context, count int) error
}

// Groups splits hosts by type, keeping server order inside each group.
type Groups struct {
	Real      []api.Host
	Simulated []api.Host
}

// GroupHosts partitions hosts into real and simulated.
func GroupHosts(hosts []api.Host) Groups {
	var g Groups
	for _, h := range hosts {
		if h.IsSimulated() {
			g.Simulated = append(g.Simulated, h)
		} else {
			g.Real = append(g.Real, h)
		}
	}
	return g
}

// Len returns the total number of hosts.
func (g Groups) Len() int {
	return len(g.Real) + len(g.Simulated)
}

// All returns real hosts followed by simulated ones.
func (g Groups) All() []api.Host {
	out := make([]api.Host, 0, g.Len())
	out = append(out, g.Real...)
	return append(out, g.Simulated...)
}

// Options configures a Registry. Zero values pick defaults.
type Options struct {
	Logger   *zap.Logger
	Notifier notify.Notifier
	Catalog  *i18n.Catalog
	Clock    clock.Clock
	// IntN returns a number in [0, n). Used for simulated host addresses.
	IntN func(n int) int
}

// Registry performs host management operations against a Backend.
type Registry struct {
	backend  Backend
	logger   *zap.Logger
	notifier notify.Notifier
	catalog  *i18n.Catalog
	clock    clock.Clock
	intN     func(int) int

	mu     sync.RWMutex
	groups Groups
}

// New creates a Registry.
func New(backend Backend, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Catalog == nil {
		opts.Catalog = i18n.New(i18n.DefaultLanguage)
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.IntN == nil {
		opts.IntN = rand.IntN
	}
	return &Registry{
		backend:  backend,
		logger:   opts.Logger.Named("registry"),
		notifier: opts.Notifier,
		catalog:  opts.Catalog,
		clock:    opts.Clock,
		intN:     opts.IntN,
	}
}

// Groups returns the result of the last successful List.
func (r *Registry) Groups() Groups {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.groups
}

// List fetches all hosts and groups them by type.
func (r *Registry) List(ctx context.Context) (Groups, error) {
	hosts, err := r.backend.ListHosts(ctx)
	if err != nil {
		r.fail(i18n.LoadHostsFailed, err)
		return Groups{}, err
	}
	g := GroupHosts(hosts)
	r.mu.Lock()
	r.groups = g
	r.mu.Unlock()
	return g, nil
}

// Prepare validates in and fills defaults without contacting the server.
// Real hosts need an address, username and password; simulated hosts get a
// loopback address, fixed credentials and a time-stamped name when unnamed.
func (r *Registry) Prepare(in api.HostInput) (api.HostInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.HostType == "" {
		in.HostType = api.HostReal
	}

	if in.HostType == api.HostSimulated {
		if in.Name == "" {
			in.Name = r.DefaultSimulatedName()
		}
		in.IP = fmt.Sprintf("127.0.0.%d", 100+r.intN(100))
		in.Username = SimulatedCredential
		in.Password = SimulatedCredential
		in.Port = DefaultPort
		return in, nil
	}

	in.IP = strings.TrimSpace(in.IP)
	in.Username = strings.TrimSpace(in.Username)
	if in.IP == "" || in.Username == "" || in.Password == "" {
		return in, hwerrors.Validation(r.catalog.T(i18n.RequiredFields))
	}
	if !ValidIP(in.IP) {
		return in, hwerrors.Validation(r.catalog.T(i18n.InvalidIP))
	}
	if in.Port <= 0 {
		in.Port = DefaultPort
	}
	return in, nil
}

// Create validates and submits a new host, then re-lists.
func (r *Registry) Create(ctx context.Context, in api.HostInput) (api.CreateResult, error) {
	in, err := r.Prepare(in)
	if err != nil {
		notify.Error(r.notifier, err.Error())
		return api.CreateResult{}, err
	}

	res, err := r.backend.CreateHost(ctx, in)
	if err != nil {
		r.fail(i18n.HostAddFailed, err)
		return api.CreateResult{}, err
	}
	r.logger.Info("host created",
		zap.Int64("id", res.ID),
		zap.String("ip", in.IP),
		zap.String("type", string(in.HostType)),
	)
	notify.Success(r.notifier, r.catalog.T(i18n.HostAdded))
	r.relist(ctx)
	return res, nil
}

// DefaultSimulatedName is the name given to a simulated host created
// without one.
func (r *Registry) DefaultSimulatedName() string {
	return r.catalog.T(i18n.SimulatedDefaultName, r.clock.Now().Format("15:04:05"))
}

// AddSimulated asks the server to create one simulated host.
func (r *Registry) AddSimulated(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = r.DefaultSimulatedName()
	}
	if err := r.backend.AddSimulatedHost(ctx, name); err != nil {
		r.fail(i18n.HostAddFailed, err)
		return err
	}
	notify.Success(r.notifier, r.catalog.T(i18n.SimulatedAdded))
	r.relist(ctx)
	return nil
}

// AddSimulatedBatch asks the server to create count simulated hosts.
func (r *Registry) AddSimulatedBatch(ctx context.Context, count int) error {
	if count < 1 {
		err := hwerrors.Validation(r.catalog.T(i18n.InvalidCount))
		notify.Error(r.notifier, err.Error())
		return err
	}
	if err := r.backend.AddSimulatedHosts(ctx, count); err != nil {
		r.fail(i18n.HostAddFailed, err)
		return err
	}
	notify.Success(r.notifier, r.catalog.T(i18n.SimulatedBatchAdded, count))
	r.relist(ctx)
	return nil
}

// Delete removes host id once confirm agrees. A nil confirm deletes without
// asking. A declined confirmation returns ErrCancelled and sends nothing.
func (r *Registry) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	if confirm != nil {
		ok, err := confirm.Confirm(ctx, r.catalog.T(i18n.ConfirmDelete))
		if err != nil {
			return err
		}
		if !ok {
			return hwerrors.ErrCancelled
		}
	}
	if err := r.backend.DeleteHost(ctx, id); err != nil {
		notify.Error(r.notifier, r.catalog.T(i18n.HostDeleteFailed, r.reason(err)))
		r.logger.Warn("delete failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	r.logger.Info("host deleted", zap.Int64("id", id))
	notify.Success(r.notifier, r.catalog.T(i18n.HostDeleted))
	r.relist(ctx)
	return nil
}

// TestConnection asks the server to probe host id.
func (r *Registry) TestConnection(ctx context.Context, id int64) (api.ConnectionResult, error) {
	res, err := r.backend.TestConnection(ctx, id)
	if err != nil {
		notify.Error(r.notifier, r.catalog.T(i18n.TestFailed, r.reason(err)))
		r.logger.Info("connection test failed", zap.Int64("id", id), zap.Error(err))
		return res, err
	}
	msg := r.catalog.T(i18n.TestSucceededSSH)
	if res.HostType == api.HostSimulated {
		msg = r.catalog.T(i18n.TestSucceededSim)
	}
	notify.Success(r.notifier, msg)
	return res, nil
}

func (r *Registry) relist(ctx context.Context) {
	_, _ = r.List(ctx)
}

// fail reports err under key, or as a network error when the request never
// got an HTTP response.
func (r *Registry) fail(key i18n.Key, err error) {
	r.logger.Warn(string(key), zap.Error(err))
	var status *api.StatusError
	if hwerrors.IsCode(err, hwerrors.ErrNetwork) && !hwerrors.As(err, &status) {
		notify.Error(r.notifier, r.catalog.T(i18n.NetworkError, r.reason(err)))
		return
	}
	notify.Error(r.notifier, r.catalog.T(key, r.reason(err)))
}

func (r *Registry) reason(err error) string {
	if msg := api.Reason(err); msg != "" {
		return msg
	}
	return r.catalog.T(i18n.UnknownError)
}
