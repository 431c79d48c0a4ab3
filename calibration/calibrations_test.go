package calibration

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zaba505/qiskit-experiments-go/calibration/library"
	"github.com/Zaba505/qiskit-experiments-go/pulse"
)

func newTransmonCals(t *testing.T, opts ...library.Option) *Calibrations {
	t.Helper()

	lib, err := library.NewFixedFrequencyTransmon(opts...)
	require.NoError(t, err)
	cals, err := NewCalibrations(WithLibrary(lib))
	require.NoError(t, err)
	return cals
}

func dragSchedule(name string, duration, amp, sigma, beta float64, qubit int) *pulse.Schedule {
	return pulse.Build(name, func(b *pulse.Builder) {
		b.Play(pulse.Drag(pulse.Const(duration), pulse.ComplexConst(complex(amp, 0)), pulse.Const(sigma), pulse.Const(beta)), pulse.DriveChannel(qubit))
	})
}

func TestCalibrations_QubitSpecificValue(t *testing.T) {
	cals := newTransmonCals(t)

	require.NoError(t, cals.AddParameterValue(NewParameterValue(0.45), "amp", Q(3), "x"))

	x3, err := cals.GetSchedule("x", Q(3))
	require.NoError(t, err)
	assert.True(t, x3.Equal(dragSchedule("x", 160, 0.45, 40, 0, 3)), "got %s", x3)

	// other qubits keep the default
	x1, err := cals.GetSchedule("x", Q(1))
	require.NoError(t, err)
	assert.True(t, x1.Equal(dragSchedule("x", 160, 0.5, 40, 0, 1)), "got %s", x1)
}

func TestCalibrations_LinkedParameters(t *testing.T) {
	cals := newTransmonCals(t)

	require.NoError(t, cals.AddParameterValue(NewParameterValue(0.4), "amp", Q(0), "x"))

	y, err := cals.GetSchedule("y", Q(0))
	require.NoError(t, err)
	expected := pulse.Build("y", func(b *pulse.Builder) {
		b.Play(pulse.Drag(pulse.Const(160), pulse.ComplexConst(0.4i), pulse.Const(40), pulse.Const(0)), pulse.DriveChannel(0))
	})
	assert.True(t, y.Equal(expected), "got %s", y)

	// values added through the linked key are shared as well
	require.NoError(t, cals.AddParameterValue(NewParameterValue(0.3), "amp", Q(0), "y"))
	v, err := cals.GetParameterValue("amp", Q(0), "x")
	require.NoError(t, err)
	assert.Equal(t, 0.3, v.Float())
}

func TestCalibrations_NewestValueWins(t *testing.T) {
	cals := newTransmonCals(t)

	older := NewParameterValue(0.1)
	older.DateTime = time.Now().Add(time.Hour)
	newer := NewParameterValue(0.2)
	newer.DateTime = older.DateTime.Add(time.Minute)

	require.NoError(t, cals.AddParameterValue(newer, "β", Q(0), "x"))
	require.NoError(t, cals.AddParameterValue(older, "β", Q(0), "x"))

	v, err := cals.GetParameterValue("β", Q(0), "x")
	require.NoError(t, err)
	assert.Equal(t, 0.2, v.Float())

	v, err = cals.GetParameterValue("β", Q(0), "x", CutoffDate(older.DateTime))
	require.NoError(t, err)
	assert.Equal(t, 0.1, v.Float())
}

func TestCalibrations_ValidAndGroups(t *testing.T) {
	cals := newTransmonCals(t)

	invalid := NewParameterValue(0.9)
	invalid.Valid = false
	require.NoError(t, cals.AddParameterValue(invalid, "amp", Q(0), "x"))

	v, err := cals.GetParameterValue("amp", Q(0), "x")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v.Float())

	v, err = cals.GetParameterValue("amp", Q(0), "x", ValidOnly(false))
	require.NoError(t, err)
	assert.Equal(t, 0.9, v.Float())

	other := NewParameterValue(0.7)
	other.Group = "experimental"
	other.ExpID = "abc123"
	require.NoError(t, cals.AddParameterValue(other, "amp", Q(0), "x"))

	v, err = cals.GetParameterValue("amp", Q(0), "x", InGroup("experimental"))
	require.NoError(t, err)
	assert.Equal(t, 0.7, v.Float())
	assert.Equal(t, "abc123", v.ExpID)

	_, err = cals.GetParameterValue("duration", Q(0), "x", InGroup("experimental"))
	assert.ErrorIs(t, err, ErrValueNotFound)

	_, err = cals.GetSchedule("x", Q(0), InGroup("experimental"))
	assert.ErrorIs(t, err, ErrValueNotFound)
}

func TestCalibrations_Concurrent(t *testing.T) {
	cals := newTransmonCals(t)

	var wg sync.WaitGroup
	errs := make(chan error, 4*50)
	for i := 0; i < 50; i++ {
		wg.Add(4)
		go func(i int) {
			defer wg.Done()
			errs <- cals.AddParameterValue(NewParameterValue(0.1+float64(i)/100), "amp", Q(i%5), "x")
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := cals.GetSchedule("x", Q(i%5))
			errs <- err
		}(i)
		go func(i int) {
			defer wg.Done()
			amp := pulse.NewParameter("amp")
			s := pulse.Build(fmt.Sprintf("rabi%d", i), func(b *pulse.Builder) {
				b.Play(pulse.Gaussian(pulse.Const(160), pulse.Param(amp), pulse.Const(40)), pulse.NewChannel(pulse.DriveKind, pulse.Param(pulse.NewParameter("ch0"))))
			})
			errs <- cals.AddSchedule(s, Q())
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := cals.GetParameterValue("duration", Q(i%5), "sx")
			cals.Parameters()
			cals.ParameterValues()
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, cals.Schedules(), 4+50)
	// duration, amp and β defaults of x and sx are shared with y and sy
	assert.Len(t, cals.ParameterValues(), 6+50)
}

func TestCalibrations_NotFound(t *testing.T) {
	cals := newTransmonCals(t, library.WithBasisGates("x"))

	_, err := cals.GetSchedule("sx", Q(0))
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = cals.GetParameterValue("sigma", Q(0), "x")
	assert.ErrorIs(t, err, ErrParameterNotFound)

	err = cals.AddParameterValue(NewParameterValue(1), "amp", Q(0), "sx")
	assert.ErrorIs(t, err, ErrParameterNotFound)
}

func TestCalibrations_LeaveFree(t *testing.T) {
	cals := newTransmonCals(t)

	x, err := cals.GetSchedule("x", Q(2), LeaveFree("amp"))
	require.NoError(t, err)

	params := x.Parameters()
	require.Len(t, params, 1)
	assert.Equal(t, "amp", params[0].Name())
}

func TestCalibrations_QubitSpecificSchedule(t *testing.T) {
	cals := newTransmonCals(t)

	amp := pulse.NewParameter("amp")
	special := pulse.Build("x", func(b *pulse.Builder) {
		b.Play(pulse.Gaussian(pulse.Const(200), pulse.Param(amp), pulse.Const(50)), pulse.NewChannel(pulse.DriveKind, pulse.Param(pulse.NewParameter("ch0"))))
	})
	require.NoError(t, cals.AddSchedule(special, Q(4)))
	require.NoError(t, cals.AddParameterValue(NewParameterValue(0.3), "amp", Q(4), "x"))

	x4, err := cals.GetSchedule("x", Q(4))
	require.NoError(t, err)
	expected := pulse.Build("x", func(b *pulse.Builder) {
		b.Play(pulse.Gaussian(pulse.Const(200), pulse.Const(0.3), pulse.Const(50)), pulse.DriveChannel(4))
	})
	assert.True(t, x4.Equal(expected), "got %s", x4)

	assert.Contains(t, cals.Schedules(), ScheduleKey{Name: "x", Qubits: Q(4)})
}

func TestCalibrations_ReplaceSchedule(t *testing.T) {
	cals, err := NewCalibrations()
	require.NoError(t, err)

	ch := pulse.NewChannel(pulse.DriveKind, pulse.Param(pulse.NewParameter("ch0")))
	first, second := pulse.NewParameter("amp"), pulse.NewParameter("amp")
	build := func(amp pulse.Parameter) *pulse.Schedule {
		return pulse.Build("probe", func(b *pulse.Builder) {
			b.Play(pulse.Constant(pulse.Const(100), pulse.Param(amp)), ch)
		})
	}

	require.NoError(t, cals.AddSchedule(build(first), Q()))
	require.NoError(t, cals.AddParameterValue(NewParameterValue(0.1), "amp", Q(), "probe"))
	require.NoError(t, cals.AddSchedule(build(second), Q()))

	// values are stored by key, so they survive the replacement
	s, err := cals.GetSchedule("probe", Q(0))
	require.NoError(t, err)
	assert.False(t, s.IsParameterized())
	assert.Len(t, cals.Parameters(), 1)
}

func TestCalibrations_InvalidSchedules(t *testing.T) {
	cals, err := NewCalibrations()
	require.NoError(t, err)

	assert.ErrorIs(t, cals.AddSchedule(nil, Q()), ErrInvalidSchedule)
	assert.ErrorIs(t, cals.AddSchedule(pulse.NewSchedule(""), Q()), ErrInvalidSchedule)

	badChannel := pulse.Build("bad", func(b *pulse.Builder) {
		b.Play(pulse.Constant(pulse.Const(10), pulse.Const(0.1)), pulse.NewChannel(pulse.DriveKind, pulse.Param(pulse.NewParameter("qubit"))))
	})
	assert.ErrorIs(t, cals.AddSchedule(badChannel, Q()), ErrInvalidSchedule)

	tooStrong := pulse.Build("strong", func(b *pulse.Builder) {
		b.Play(pulse.Drag(pulse.Param(pulse.NewParameter("duration")), pulse.Const(1.5), pulse.Const(40), pulse.Const(0)), pulse.DriveChannel(0))
	})
	assert.ErrorIs(t, cals.AddSchedule(tooStrong, Q()), ErrInvalidSchedule)

	a1, a2 := pulse.NewParameter("amp"), pulse.NewParameter("amp")
	clash := pulse.Build("clash", func(b *pulse.Builder) {
		b.Play(pulse.Constant(pulse.Const(10), pulse.Param(a1)), pulse.DriveChannel(0))
		b.Play(pulse.Constant(pulse.Const(10), pulse.Param(a2)), pulse.DriveChannel(0))
	})
	assert.ErrorIs(t, cals.AddSchedule(clash, Q()), ErrInvalidSchedule)
}

func TestCalibrations_ChannelOutOfRange(t *testing.T) {
	cals, err := NewCalibrations()
	require.NoError(t, err)

	twoQubit := pulse.Build("echo", func(b *pulse.Builder) {
		b.Play(pulse.Constant(pulse.Const(10), pulse.Const(0.1)), pulse.NewChannel(pulse.DriveKind, pulse.Param(pulse.NewParameter("ch1"))))
	})
	require.NoError(t, cals.AddSchedule(twoQubit, Q()))

	s, err := cals.GetSchedule("echo", Q(0, 5))
	require.NoError(t, err)
	assert.Equal(t, "d5", s.Channels()[0].String())

	_, err = cals.GetSchedule("echo", Q(0))
	assert.Error(t, err)
}

func TestCalibrations_Parameters(t *testing.T) {
	cals := newTransmonCals(t, library.WithBasisGates("x", "y"))

	keys := cals.Parameters()
	// duration, amp and β are each registered for x and y
	require.Len(t, keys, 6)
	assert.Contains(t, keys, ParameterKey{Parameter: "amp", Qubits: Q(), Schedule: "y"})
}

func TestQubits(t *testing.T) {
	assert.Equal(t, "()", Q().String())
	assert.Equal(t, "(0, 1)", Q(0, 1).String())

	q, err := ParseQubits("(3, 4)")
	require.NoError(t, err)
	assert.Equal(t, Q(3, 4), q)

	q, err = ParseQubits("(2,)")
	require.NoError(t, err)
	assert.Equal(t, Q(2), q)

	q, err = ParseQubits("()")
	require.NoError(t, err)
	assert.True(t, q.IsDefault())

	_, err = ParseQubits("3, 4")
	assert.Error(t, err)
	_, err = ParseQubits("(a)")
	assert.Error(t, err)
}
