package library

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zaba505/qiskit-experiments-go/pulse"
)

func TestFixedFrequencyTransmon_Defaults(t *testing.T) {
	lib, err := NewFixedFrequencyTransmon()
	require.NoError(t, err)

	assert.Equal(t, "FixedFrequencyTransmon", lib.Name())
	assert.Equal(t, []string{"x", "y", "sx", "sy"}, lib.BasisGates())

	// y and sy are linked to x and sx
	values := lib.DefaultValues()
	require.Len(t, values, 6)

	byKey := make(map[string]complex128)
	for _, v := range values {
		assert.Empty(t, v.Qubits)
		byKey[v.Schedule+"/"+v.Parameter] = v.Value
	}
	assert.Equal(t, complex128(160), byKey["x/duration"])
	assert.Equal(t, complex128(0.5), byKey["x/amp"])
	assert.Equal(t, complex128(0), byKey["x/β"])
	assert.Equal(t, complex128(0.25), byKey["sx/amp"])
	assert.NotContains(t, byKey, "y/amp")
}

func TestFixedFrequencyTransmon_Schedules(t *testing.T) {
	lib, err := NewFixedFrequencyTransmon(WithBasisGates("x", "y"))
	require.NoError(t, err)

	x, err := lib.Schedule("x")
	require.NoError(t, err)
	y, err := lib.Schedule("y")
	require.NoError(t, err)

	assert.Equal(t, "x", x.Name)
	assert.Equal(t, []string{"duration", "amp", "β", "ch0"}, paramNames(x))

	// linked gates share parameter objects
	assert.Equal(t, x.Parameters(), y.Parameters())

	_, err = lib.Schedule("sx")
	assert.True(t, errors.Is(err, ErrUnsupportedGate))
}

func TestFixedFrequencyTransmon_YPhase(t *testing.T) {
	lib, err := NewFixedFrequencyTransmon(WithBasisGates("x", "y"))
	require.NoError(t, err)

	y, err := lib.Schedule("y")
	require.NoError(t, err)

	assignments := pulse.Assignments{}
	for _, p := range y.Parameters() {
		switch p.Name() {
		case "duration":
			assignments[p] = 160
		case "amp":
			assignments[p] = 0.5
		default:
			assignments[p] = 0
		}
	}
	bound, err := y.AssignParameters(assignments)
	require.NoError(t, err)

	expected := pulse.Build("y", func(b *pulse.Builder) {
		b.Play(pulse.Drag(pulse.Const(160), pulse.ComplexConst(0.5i), pulse.Const(40), pulse.Const(0)), pulse.DriveChannel(0))
	})
	assert.True(t, bound.Equal(expected), "got %s", bound)
}

func TestFixedFrequencyTransmon_Unlinked(t *testing.T) {
	lib, err := NewFixedFrequencyTransmon(WithLinkParameters(false), WithDefaultValues(map[string]float64{"duration": 320}))
	require.NoError(t, err)

	values := lib.DefaultValues()
	require.Len(t, values, 12)
	for _, v := range values {
		if v.Parameter == "duration" {
			assert.Equal(t, complex128(320), v.Value)
		}
		if v.Parameter == "amp" && v.Schedule == "sy" {
			assert.Equal(t, complex128(0.25), v.Value)
		}
	}

	x, _ := lib.Schedule("x")
	y, _ := lib.Schedule("y")
	assert.NotEqual(t, x.Parameters()[0], y.Parameters()[0])
}

func TestFixedFrequencyTransmon_LinkedWithoutTarget(t *testing.T) {
	lib, err := NewFixedFrequencyTransmon(WithBasisGates("y"))
	require.NoError(t, err)

	values := lib.DefaultValues()
	require.Len(t, values, 3)
	assert.Equal(t, "y", values[0].Schedule)
}

func TestFixedFrequencyTransmon_Invalid(t *testing.T) {
	_, err := NewFixedFrequencyTransmon(WithBasisGates("x", "cx"))
	assert.True(t, errors.Is(err, ErrUnsupportedGate))

	_, err = NewFixedFrequencyTransmon(WithDefaultValues(map[string]float64{"sigma": 10}))
	assert.True(t, errors.Is(err, ErrUnknownDefault))
}

func paramNames(s *pulse.Schedule) []string {
	var names []string
	for _, p := range s.Parameters() {
		names = append(names, p.Name())
	}
	return names
}
