// Package library holds basis gate libraries: parameterized schedule templates
// for a set of gates together with the values their parameters start from.
package library

import (
	"github.com/pkg/errors"

	"github.com/Zaba505/qiskit-experiments-go/pulse"
)

var (
	// ErrUnsupportedGate is returned when a library has no template for a gate
	ErrUnsupportedGate = errors.New("unsupported basis gate")
	// ErrUnknownDefault is returned for a default value that no template uses
	ErrUnknownDefault = errors.New("unknown default value")
)

// DefaultValue is the starting value of a template parameter.
// Empty Qubits means the value applies to every qubit.
type DefaultValue struct {
	Value     complex128
	Parameter string
	Qubits    []int
	Schedule  string
}

// BasisGateLibrary provides schedule templates for basis gates.
// Templates address their channels through parameters named ch0, ch1, ...
// which are bound to the qubits the gate is applied to.
type BasisGateLibrary interface {
	Name() string
	BasisGates() []string
	Schedule(gate string) (*pulse.Schedule, error)
	DefaultValues() []DefaultValue
}
