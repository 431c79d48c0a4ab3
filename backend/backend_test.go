package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoQubitConf() Configuration {
	conf := Configuration{
		BackendName:    "test_two",
		BackendVersion: "1.0.0",
		NQubits:        2,
		BasisGates:     []string{"cx", "id", "rz", "sx", "x"},
		CouplingMap:    [][2]int{{0, 1}, {1, 0}},
		DT:             0.5,
		Channels:       map[string]Channel{},
	}

	add := func(name, purpose string, qubits ...int) {
		var ch Channel
		ch.Operates.Qubits = qubits
		ch.Purpose = purpose
		conf.Channels[name] = ch
	}
	add("d0", "drive", 0)
	add("d1", "drive", 1)
	add("u0", "cross-resonance", 0, 1)
	add("u1", "cross-resonance", 1, 0)
	return conf
}

func TestNew(t *testing.T) {
	b, err := New(twoQubitConf(), &Defaults{
		QubitFreqEst: []float64{5.25, 5.5},
		MeasFreqEst:  []float64{7.0, 7.125},
	})
	require.NoError(t, err)

	assert.Equal(t, "test_two", b.Name)
	assert.Equal(t, 2, b.NumQubits)
	assert.Equal(t, []float64{5.25e9, 5.5e9}, b.QubitFreqEst)
	assert.Equal(t, []float64{7e9, 7.125e9}, b.MeasFreqEst)
	assert.InDelta(t, 0.5e-9, b.DT, 1e-20)
	assert.Equal(t, "test_two (v1.0.0, 2 qubits)", b.String())
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Configuration{NQubits: 1}, nil)
	assert.Error(t, err)

	_, err = New(Configuration{BackendName: "none"}, nil)
	assert.Error(t, err)

	_, err = New(twoQubitConf(), &Defaults{QubitFreqEst: []float64{5.1}, MeasFreqEst: []float64{7.0}})
	assert.Error(t, err)

	conf := twoQubitConf()
	conf.Channels["ux"] = Channel{}
	_, err = New(conf, nil)
	assert.Error(t, err)
}

func TestBackend_ControlChannels(t *testing.T) {
	b, err := New(twoQubitConf(), nil)
	require.NoError(t, err)
	assert.False(t, b.HasPulseDefaults())

	idx, err := b.ControlChannels(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, idx)

	idx, err = b.ControlChannels(1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, idx)

	_, err = b.ControlChannels(0, 2)
	assert.True(t, errors.Is(err, ErrNoControlChannel))
}
