package qiskit

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Zaba505/qiskit-experiments-go/backend"
)

// BackendInfo represents a backend available to be used
type BackendInfo struct {
	SerialNum   string `json:"serialNumber,omitempty"`
	Id          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
	Simulator   bool   `json:"simulator,omitempty"`
	NQubits     int    `json:"nQubits,omitempty"`
	Version     string `json:"version,omitempty"`
	OnlineDate  string `json:"onlineDate,omitempty"`
	ChipName    string `json:"chipName,omitempty"`
	BasisGates  string `json:"basisGates,omitempty"`
}

// Backends is an alias for a map of backend name to BackendInfo data structure
type Backends map[string]*BackendInfo

// Sims returns all the simulator backends out of this set of backends
func (bs Backends) Sims() (simBs []*BackendInfo) {
	for _, b := range bs {
		if b.Simulator {
			simBs = append(simBs, b)
		}
	}
	sort.Slice(simBs, func(i, j int) bool { return simBs[i].Name < simBs[j].Name })
	return simBs
}

// Names returns the sorted backend names
func (bs Backends) Names() []string {
	names := make([]string, 0, len(bs))
	for name := range bs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableBackends returns all the online backends that can be used
func (c *Client) AvailableBackends(ctx context.Context) (Backends, error) {
	url := "Backends"
	if c.opts.ibmQ() {
		url = fmt.Sprintf("Network/%s/Groups/%s/Projects/%s/devices", c.opts.hub, c.opts.group, c.opts.project)
	}

	var i []*BackendInfo
	if err := c.conn.get(ctx, url, "", &i); err != nil {
		return nil, errors.Wrap(err, "listing backends")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.backends = make(Backends, len(i))
	for _, b := range i {
		if b.Status == "on" {
			c.backends[b.Name] = b
		}
	}

	bs := make(Backends, len(c.backends))
	for name, b := range c.backends {
		bs[name] = b
	}
	return bs, nil
}

func (c *Client) checkBackend(ctx context.Context, name string) error {
	c.mu.Lock()
	_, exists := c.backends[name]
	empty := len(c.backends) == 0
	c.mu.Unlock()
	if exists {
		return nil
	}

	if empty {
		bs, err := c.AvailableBackends(ctx)
		if err != nil {
			return err
		}
		if _, exists := bs[name]; exists {
			return nil
		}
	}
	return NewBadBackendErr(name)
}

// Status represents the status of a backend
type Status struct {
	Type       string `json:"backend,omitempty"`
	Available  bool   `json:"state,omitempty"`
	Busy       bool   `json:"busy,omitempty"`
	PendingJob int64  `json:"lengthQueue,omitempty"`
}

// BackendStatus retrieves the status of a chip
func (c *Client) BackendStatus(ctx context.Context, name string) (Status, error) {
	if err := c.checkBackend(ctx, name); err != nil {
		return Status{}, err
	}

	var r Status
	if err := c.conn.get(ctx, fmt.Sprintf("Backends/%s/queue/status", name), "&withToken=false", &r); err != nil {
		return Status{}, errors.Wrapf(err, "retrieving status of %s", name)
	}

	r.Type = name
	return r, nil
}

func (c *Client) getBackendStatsUrl(name string) string {
	if c.opts.ibmQ() {
		return fmt.Sprintf("Network/%s/Groups/%s/Projects/%s/devices/%s", c.opts.hub, c.opts.group, c.opts.project, name)
	}
	return fmt.Sprintf("Backends/%s", name)
}

// BackendConfiguration retrieves the configuration payload of a chip
func (c *Client) BackendConfiguration(ctx context.Context, name string) (backend.Configuration, error) {
	if err := c.checkBackend(ctx, name); err != nil {
		return backend.Configuration{}, err
	}

	var conf backend.Configuration
	if err := c.conn.get(ctx, c.getBackendStatsUrl(name)+"/configuration", "", &conf); err != nil {
		return backend.Configuration{}, errors.Wrapf(err, "retrieving configuration of %s", name)
	}
	return conf, nil
}

// BackendDefaults retrieves the pulse defaults payload of a chip
func (c *Client) BackendDefaults(ctx context.Context, name string) (*backend.Defaults, error) {
	if err := c.checkBackend(ctx, name); err != nil {
		return nil, err
	}

	var defs backend.Defaults
	if err := c.conn.get(ctx, c.getBackendStatsUrl(name)+"/defaults", "", &defs); err != nil {
		return nil, errors.Wrapf(err, "retrieving defaults of %s", name)
	}
	return &defs, nil
}

// Backend retrieves the configuration and, for pulse enabled chips, the
// defaults of a backend and merges them into a backend.Backend
func (c *Client) Backend(ctx context.Context, name string) (*backend.Backend, error) {
	conf, err := c.BackendConfiguration(ctx, name)
	if err != nil {
		return nil, err
	}

	var defs *backend.Defaults
	if conf.OpenPulse {
		defs, err = c.BackendDefaults(ctx, name)
		if err != nil {
			return nil, err
		}
	} else {
		apiLogger.WithFields(logrus.Fields{
			"backend": name,
		}).Debug("backend does not support pulses, skipping defaults")
	}

	return backend.New(conf, defs)
}
