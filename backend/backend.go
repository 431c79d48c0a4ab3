// Package backend describes the quantum devices that calibrations are kept for.
//
// A Backend is built from the two payloads IBM Q devices publish: the
// configuration (qubit count, basis gates, channels) and the pulse defaults
// (frequency estimates). Frequencies arrive in GHz and times in ns; Backend
// stores them in Hz and seconds.
package backend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// GHz is the scale of the frequencies found in the defaults payload
	GHz = 1e9
	// Nanosecond is the scale of the times found in the configuration payload
	Nanosecond = 1e-9
)

// ErrNoControlChannel is returned when no control channel operates on the requested qubits
var ErrNoControlChannel = errors.New("no control channel for qubits")

// Channel describes one channel entry of the configuration payload
type Channel struct {
	Operates struct {
		Qubits []int `json:"qubits,omitempty"`
	} `json:"operates"`
	Purpose string `json:"purpose,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Configuration is the backend configuration payload
type Configuration struct {
	BackendName    string             `json:"backend_name"`
	BackendVersion string             `json:"backend_version"`
	NQubits        int                `json:"n_qubits"`
	BasisGates     []string           `json:"basis_gates"`
	CouplingMap    [][2]int           `json:"coupling_map,omitempty"`
	Simulator      bool               `json:"simulator"`
	OpenPulse      bool               `json:"open_pulse"`
	DT             float64            `json:"dt,omitempty"`  // ns
	DTM            float64            `json:"dtm,omitempty"` // ns
	Channels       map[string]Channel `json:"channels,omitempty"`
}

// Defaults is the backend pulse defaults payload
type Defaults struct {
	QubitFreqEst []float64 `json:"qubit_freq_est"` // GHz
	MeasFreqEst  []float64 `json:"meas_freq_est"`  // GHz
	Buffer       int       `json:"buffer"`
}

// Backend is a device description that calibrations can be built from
type Backend struct {
	Name       string
	Version    string
	NumQubits  int
	BasisGates []string
	// CouplingMap lists the directed two-qubit couplings
	CouplingMap [][2]int
	Simulator   bool
	// DT is the sample time of the drive channels, in seconds
	DT float64
	// QubitFreqEst is the estimated drive frequency of each qubit, in Hz
	QubitFreqEst []float64
	// MeasFreqEst is the estimated readout frequency of each qubit, in Hz
	MeasFreqEst []float64

	// controlChannels maps a qubit tuple key, e.g. "0,1", to control channel indices
	controlChannels map[string][]int
}

// New merges the configuration and the defaults payloads into a Backend.
// defs may be nil for backends without pulse support.
func New(conf Configuration, defs *Defaults) (*Backend, error) {
	if conf.BackendName == "" {
		return nil, errors.New("backend configuration has no name")
	}
	if conf.NQubits <= 0 {
		return nil, errors.Errorf("backend %s: invalid number of qubits %d", conf.BackendName, conf.NQubits)
	}

	b := &Backend{
		Name:            conf.BackendName,
		Version:         conf.BackendVersion,
		NumQubits:       conf.NQubits,
		BasisGates:      conf.BasisGates,
		CouplingMap:     conf.CouplingMap,
		Simulator:       conf.Simulator,
		DT:              conf.DT * Nanosecond,
		controlChannels: make(map[string][]int),
	}

	for name, ch := range conf.Channels {
		if !strings.HasPrefix(name, "u") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(name, "u"))
		if err != nil {
			return nil, errors.Wrapf(err, "backend %s: bad control channel name %q", b.Name, name)
		}
		key := qubitsKey(ch.Operates.Qubits)
		b.controlChannels[key] = append(b.controlChannels[key], idx)
	}
	for _, idx := range b.controlChannels {
		sort.Ints(idx)
	}

	if defs != nil {
		if len(defs.QubitFreqEst) != b.NumQubits || len(defs.MeasFreqEst) != b.NumQubits {
			return nil, errors.Errorf("backend %s: defaults have %d qubit and %d measurement frequencies for %d qubits",
				b.Name, len(defs.QubitFreqEst), len(defs.MeasFreqEst), b.NumQubits)
		}
		b.QubitFreqEst = scale(defs.QubitFreqEst, GHz)
		b.MeasFreqEst = scale(defs.MeasFreqEst, GHz)
	}

	return b, nil
}

// ControlChannels returns the control channels that operate on qubits, in the given order
func (b *Backend) ControlChannels(qubits ...int) ([]int, error) {
	idx, ok := b.controlChannels[qubitsKey(qubits)]
	if !ok {
		return nil, errors.Wrapf(ErrNoControlChannel, "backend %s: qubits %v", b.Name, qubits)
	}
	return idx, nil
}

// HasPulseDefaults reports whether frequency estimates are known
func (b *Backend) HasPulseDefaults() bool { return len(b.QubitFreqEst) > 0 }

func (b *Backend) String() string {
	return fmt.Sprintf("%s (v%s, %d qubits)", b.Name, b.Version, b.NumQubits)
}

func qubitsKey(qubits []int) string {
	parts := make([]string, len(qubits))
	for i, q := range qubits {
		parts[i] = strconv.Itoa(q)
	}
	return strings.Join(parts, ",")
}

func scale(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}
