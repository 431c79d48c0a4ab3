package calibration

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultGroup is the group of values added without one
const DefaultGroup = "default"

// SeedTime is the timestamp of the values calibrations start from, the backend
// estimates and the library defaults. Every calibrated value is newer.
var SeedTime = time.Unix(0, 0).UTC()

var (
	// ErrParameterNotFound is returned when no parameter is registered under a key
	ErrParameterNotFound = errors.New("parameter not found")
	// ErrValueNotFound is returned when a parameter has no value matching the lookup
	ErrValueNotFound = errors.New("no value for parameter")
	// ErrScheduleNotFound is returned when no schedule is registered under a name
	ErrScheduleNotFound = errors.New("schedule not found")
	// ErrInvalidSchedule is returned for schedules that cannot be stored
	ErrInvalidSchedule = errors.New("invalid schedule")
)

// Qubits is an ordered tuple of qubit indices. The empty tuple stands for all qubits.
type Qubits []int

// Q builds a Qubits tuple
func Q(qubits ...int) Qubits { return Qubits(qubits) }

// IsDefault reports whether q is the all-qubits tuple
func (q Qubits) IsDefault() bool { return len(q) == 0 }

// String formats q as "(0, 1)"
func (q Qubits) String() string {
	parts := make([]string, len(q))
	for i, qubit := range q {
		parts[i] = strconv.Itoa(qubit)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ParseQubits parses the String form of Qubits
func ParseQubits(s string) (Qubits, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, errors.Errorf("malformed qubits %q", s)
	}
	s = strings.TrimSpace(s[1 : len(s)-1])
	if s == "" {
		return Qubits{}, nil
	}

	var q Qubits
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed qubits %q", s)
		}
		q = append(q, i)
	}
	return q, nil
}

// ParameterKey identifies where a parameter is used: its name, the qubits and
// the schedule. An empty Schedule is used for parameters that belong to no
// schedule, such as frequencies.
type ParameterKey struct {
	Parameter string
	Qubits    Qubits
	Schedule  string
}

func (k ParameterKey) String() string {
	return k.Parameter + k.Qubits.String() + "@" + k.Schedule
}

func (k ParameterKey) key() paramKey {
	return paramKey{param: k.Parameter, qubits: k.Qubits.String(), schedule: k.Schedule}
}

// paramKey is the comparable form of ParameterKey
type paramKey struct {
	param, qubits, schedule string
}

// ParameterValue is one calibrated value of a parameter
type ParameterValue struct {
	Value    complex128
	DateTime time.Time
	Valid    bool
	// ExpID is the id of the experiment that produced the value, if any
	ExpID string
	Group string
}

// NewParameterValue returns a valid, real value in the default group, timestamped now
func NewParameterValue(v float64) ParameterValue {
	return NewComplexParameterValue(complex(v, 0))
}

// NewComplexParameterValue returns a valid value in the default group, timestamped now
func NewComplexParameterValue(v complex128) ParameterValue {
	return ParameterValue{Value: v, DateTime: time.Now(), Valid: true, Group: DefaultGroup}
}

// seedValue returns a valid value in the default group, timestamped SeedTime
func seedValue(v complex128) ParameterValue {
	return ParameterValue{Value: v, DateTime: SeedTime, Valid: true, Group: DefaultGroup}
}

// Float returns the real part of the value
func (v ParameterValue) Float() float64 { return real(v.Value) }

// Record is a parameter value together with its key
type Record struct {
	ParameterKey
	ParameterValue
}
