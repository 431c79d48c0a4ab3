// Package calibration stores the calibrated values of pulse schedule parameters
// and builds fully bound schedules from them.
//
// Schedules are registered as templates, either for specific qubits or for all
// qubits at once. Every free parameter of a template is registered under a
// ParameterKey (name, qubits, schedule). Values are added under keys too and
// carry a timestamp, a validity flag and a group; when a schedule is requested
// for some qubits each parameter is looked up for those qubits first, then for
// all qubits, and the newest matching value wins.
//
// Templates address channels through parameters named chN (the drive, measure
// or acquire channel of the N-th qubit of the gate) or chN.M... (the control
// channel operating on the listed qubits of the gate).
package calibration

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/Zaba505/qiskit-experiments-go/calibration/library"
	"github.com/Zaba505/qiskit-experiments-go/pulse"
)

var logger = logrus.WithField("component", "calibrations")

// ControlChannelFunc returns the control channels operating on the given qubits
type ControlChannelFunc func(qubits ...int) ([]int, error)

type options struct {
	controlChannels ControlChannelFunc
	library         library.BasisGateLibrary
}

// Option configures Calibrations
type Option func(*options)

// WithControlChannels sets how chN.M channel parameters are resolved
func WithControlChannels(fn ControlChannelFunc) Option {
	return func(options *options) {
		options.controlChannels = fn
	}
}

// WithLibrary adds the templates and default values of lib for all qubits
func WithLibrary(lib library.BasisGateLibrary) Option {
	return func(options *options) {
		options.library = lib
	}
}

// ScheduleKey identifies a registered schedule template
type ScheduleKey struct {
	Name   string
	Qubits Qubits
}

type schedKey struct {
	name, qubits string
}

type storedValue struct {
	ParameterValue
	seq uint64
}

// Calibrations is a concurrent-safe store of schedule templates and parameter values
type Calibrations struct {
	mu sync.RWMutex

	opts options

	// params maps a key to the parameter registered under it
	params map[paramKey]pulse.Parameter
	// keys lists all the keys of a parameter; linked parameters have several
	keys map[pulse.Parameter][]ParameterKey

	values    map[paramKey][]storedValue
	schedules map[schedKey]*pulse.Schedule
	seq       uint64
}

// NewCalibrations returns an empty store, or one seeded from a library when WithLibrary is given
func NewCalibrations(opts ...Option) (*Calibrations, error) {
	c := &Calibrations{
		params:    make(map[paramKey]pulse.Parameter),
		keys:      make(map[pulse.Parameter][]ParameterKey),
		values:    make(map[paramKey][]storedValue),
		schedules: make(map[schedKey]*pulse.Schedule),
	}
	for _, opt := range opts {
		opt(&c.opts)
	}

	if c.opts.library != nil {
		if err := c.AddLibrary(c.opts.library); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddLibrary registers every template of lib for all qubits and adds its default
// values, timestamped SeedTime
func (c *Calibrations) AddLibrary(lib library.BasisGateLibrary) error {
	for _, gate := range lib.BasisGates() {
		s, err := lib.Schedule(gate)
		if err != nil {
			return err
		}
		if err := c.AddSchedule(s, Q()); err != nil {
			return errors.Wrapf(err, "library %s", lib.Name())
		}
	}

	for _, dv := range lib.DefaultValues() {
		if err := c.AddParameterValue(seedValue(dv.Value), dv.Parameter, Qubits(dv.Qubits), dv.Schedule); err != nil {
			return errors.Wrapf(err, "library %s", lib.Name())
		}
	}

	logger.WithFields(logrus.Fields{
		"library": lib.Name(),
		"gates":   lib.BasisGates(),
	}).Debug("added basis gate library")
	return nil
}

// AddSchedule registers s as the template of s.Name for qubits.
// A template already registered under the same name and qubits is replaced.
func (c *Calibrations) AddSchedule(s *pulse.Schedule, qubits Qubits) error {
	if s == nil || s.Name == "" {
		return errors.Wrap(ErrInvalidSchedule, "schedules must have a name")
	}
	if err := s.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidSchedule, "%v", err)
	}

	channelParams := channelParameters(s)
	for p := range channelParams {
		if _, err := parseChannelParameter(p.Name()); err != nil {
			return errors.Wrapf(ErrInvalidSchedule, "%s: %v", s.Name, err)
		}
	}

	var keys []ParameterKey
	seen := make(map[string]pulse.Parameter)
	for _, p := range s.Parameters() {
		if channelParams[p] {
			continue
		}
		if other, ok := seen[p.Name()]; ok && other != p {
			return errors.Wrapf(ErrInvalidSchedule, "%s: two different parameters named %q", s.Name, p.Name())
		}
		seen[p.Name()] = p
		keys = append(keys, ParameterKey{Parameter: p.Name(), Qubits: qubits, Schedule: s.Name})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sk := schedKey{name: s.Name, qubits: qubits.String()}
	if old, ok := c.schedules[sk]; ok {
		logger.WithField("schedule", s.Name+qubits.String()).Debug("replacing schedule")
		for _, p := range old.Parameters() {
			c.unregister(p, ParameterKey{Parameter: p.Name(), Qubits: qubits, Schedule: s.Name})
		}
	}

	c.schedules[sk] = s
	for _, k := range keys {
		c.register(seen[k.Parameter], k)
	}
	return nil
}

// RegisterParameter registers p under a key. Use an empty schedule for
// parameters that do not belong to a schedule.
func (c *Calibrations) RegisterParameter(p pulse.Parameter, qubits Qubits, schedule string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := ParameterKey{Parameter: p.Name(), Qubits: qubits, Schedule: schedule}
	if other, ok := c.params[k.key()]; ok && other != p {
		return errors.Errorf("a different parameter is already registered under %s", k)
	}
	c.register(p, k)
	return nil
}

func (c *Calibrations) register(p pulse.Parameter, k ParameterKey) {
	c.params[k.key()] = p
	for _, existing := range c.keys[p] {
		if existing.key() == k.key() {
			return
		}
	}
	c.keys[p] = append(c.keys[p], k)
}

func (c *Calibrations) unregister(p pulse.Parameter, k ParameterKey) {
	delete(c.params, k.key())
	keys := lo.Reject(c.keys[p], func(existing ParameterKey, _ int) bool {
		return existing.key() == k.key()
	})
	if len(keys) == 0 {
		delete(c.keys, p)
		return
	}
	c.keys[p] = keys
}

// parameter resolves the parameter of a key, falling back to the all-qubits key
func (c *Calibrations) parameter(name string, qubits Qubits, schedule string) (pulse.Parameter, error) {
	if p, ok := c.params[paramKey{param: name, qubits: qubits.String(), schedule: schedule}]; ok {
		return p, nil
	}
	if p, ok := c.params[paramKey{param: name, qubits: Q().String(), schedule: schedule}]; ok {
		return p, nil
	}
	return pulse.Parameter{}, errors.Wrapf(ErrParameterNotFound, "%s", ParameterKey{Parameter: name, Qubits: qubits, Schedule: schedule})
}

// AddParameterValue adds a value for a registered parameter.
// A zero DateTime is set to now and an empty Group to DefaultGroup.
func (c *Calibrations) AddParameterValue(v ParameterValue, param string, qubits Qubits, schedule string) error {
	if v.DateTime.IsZero() {
		v.DateTime = time.Now()
	}
	if v.Group == "" {
		v.Group = DefaultGroup
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.parameter(param, qubits, schedule); err != nil {
		return err
	}

	k := paramKey{param: param, qubits: qubits.String(), schedule: schedule}
	c.seq++
	c.values[k] = append(c.values[k], storedValue{ParameterValue: v, seq: c.seq})

	logger.WithFields(logrus.Fields{
		"parameter": param,
		"qubits":    qubits.String(),
		"schedule":  schedule,
		"value":     v.Value,
		"group":     v.Group,
	}).Debug("added parameter value")
	return nil
}

// GetParameterValue returns the newest value of a parameter matching the lookup options.
// Values of linked parameters are shared.
func (c *Calibrations) GetParameterValue(param string, qubits Qubits, schedule string, opts ...LookupOption) (ParameterValue, error) {
	o := newLookupOptions(opts)

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, err := c.parameter(param, qubits, schedule)
	if err != nil {
		return ParameterValue{}, err
	}
	return c.lookup(p, qubits, o)
}

func (c *Calibrations) lookup(p pulse.Parameter, qubits Qubits, o lookupOptions) (ParameterValue, error) {
	tuples := []Qubits{qubits}
	if !qubits.IsDefault() {
		tuples = append(tuples, Q())
	}

	for _, q := range tuples {
		var best *storedValue
		for _, k := range c.keys[p] {
			values := c.values[paramKey{param: k.Parameter, qubits: q.String(), schedule: k.Schedule}]
			for i := range values {
				if !o.accepts(values[i].ParameterValue) {
					continue
				}
				if best == nil || newer(values[i], *best) {
					best = &values[i]
				}
			}
		}
		if best != nil {
			return best.ParameterValue, nil
		}
	}

	return ParameterValue{}, errors.Wrapf(ErrValueNotFound, "%s%s", p.Name(), qubits)
}

func newer(a, b storedValue) bool {
	if a.DateTime.Equal(b.DateTime) {
		return a.seq > b.seq
	}
	return a.DateTime.After(b.DateTime)
}

// GetSchedule returns the template registered for name, bound to qubits and
// to the current parameter values. Templates registered for the exact qubits
// take precedence over templates for all qubits.
func (c *Calibrations) GetSchedule(name string, qubits Qubits, opts ...LookupOption) (*pulse.Schedule, error) {
	o := newLookupOptions(opts)

	c.mu.RLock()
	defer c.mu.RUnlock()

	tmpl, ok := c.schedules[schedKey{name: name, qubits: qubits.String()}]
	if !ok {
		tmpl, ok = c.schedules[schedKey{name: name, qubits: Q().String()}]
	}
	if !ok {
		return nil, errors.Wrapf(ErrScheduleNotFound, "%s%s", name, qubits)
	}

	channelParams := channelParameters(tmpl)
	assignments := pulse.Assignments{}
	for _, p := range tmpl.Parameters() {
		if channelParams[p] {
			idx, err := c.channelIndex(p.Name(), qubits)
			if err != nil {
				return nil, errors.Wrapf(err, "schedule %s%s", name, qubits)
			}
			assignments[p] = complex(float64(idx), 0)
			continue
		}
		if o.free[p.Name()] {
			continue
		}

		v, err := c.lookup(p, qubits, o)
		if err != nil {
			return nil, errors.Wrapf(err, "schedule %s%s", name, qubits)
		}
		assignments[p] = v.Value
	}

	s, err := tmpl.AssignParameters(assignments)
	if err != nil {
		return nil, errors.Wrapf(err, "schedule %s%s", name, qubits)
	}
	return s, nil
}

// channelIndex resolves a chN or chN.M... parameter for qubits
func (c *Calibrations) channelIndex(name string, qubits Qubits) (int, error) {
	positions, err := parseChannelParameter(name)
	if err != nil {
		return 0, err
	}

	physical := make([]int, len(positions))
	for i, pos := range positions {
		if pos >= len(qubits) {
			return 0, errors.Errorf("channel parameter %s needs at least %d qubits, got %s", name, pos+1, qubits)
		}
		physical[i] = qubits[pos]
	}

	if len(physical) == 1 {
		return physical[0], nil
	}
	if c.opts.controlChannels == nil {
		return 0, errors.Errorf("channel parameter %s needs control channels, none configured", name)
	}
	idx, err := c.opts.controlChannels(physical...)
	if err != nil {
		return 0, err
	}
	return idx[0], nil
}

// channelParameters returns the parameters used as channel indices
func channelParameters(s *pulse.Schedule) map[pulse.Parameter]bool {
	params := make(map[pulse.Parameter]bool)
	for _, ch := range s.Channels() {
		for _, p := range ch.Parameters() {
			params[p] = true
		}
	}
	return params
}

// parseChannelParameter parses "ch0" into [0] and "ch0.1" into [0 1]
func parseChannelParameter(name string) ([]int, error) {
	if !strings.HasPrefix(name, "ch") {
		return nil, errors.Errorf("channel parameter %q must be named chN or chN.M", name)
	}

	var positions []int
	for _, part := range strings.Split(strings.TrimPrefix(name, "ch"), ".") {
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 {
			return nil, errors.Errorf("channel parameter %q must be named chN or chN.M", name)
		}
		positions = append(positions, i)
	}
	return positions, nil
}

// Parameters returns the keys of all registered parameters, sorted
func (c *Calibrations) Parameters() []ParameterKey {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys []ParameterKey
	for _, ks := range c.keys {
		keys = append(keys, ks...)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Schedules returns the keys of all registered templates, sorted
func (c *Calibrations) Schedules() []ScheduleKey {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]ScheduleKey, 0, len(c.schedules))
	for sk := range c.schedules {
		q, _ := ParseQubits(sk.qubits)
		keys = append(keys, ScheduleKey{Name: sk.name, Qubits: q})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Qubits.String() < keys[j].Qubits.String()
	})
	return keys
}

// ParameterValues returns every stored value, grouped by key in key order and
// in insertion order within a key
func (c *Calibrations) ParameterValues() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	type keyed struct {
		key   ParameterKey
		value storedValue
	}
	var all []keyed
	for k, values := range c.values {
		q, _ := ParseQubits(k.qubits)
		for _, v := range values {
			all = append(all, keyed{key: ParameterKey{Parameter: k.param, Qubits: q, Schedule: k.schedule}, value: v})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if ki, kj := all[i].key.String(), all[j].key.String(); ki != kj {
			return ki < kj
		}
		return all[i].value.seq < all[j].value.seq
	})

	return lo.Map(all, func(kv keyed, _ int) Record {
		return Record{ParameterKey: kv.key, ParameterValue: kv.value.ParameterValue}
	})
}
