package library

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/Zaba505/qiskit-experiments-go/pulse"
)

// transmonDefaults are the FixedFrequencyTransmon parameter values used unless overridden
var transmonDefaults = map[string]float64{
	"duration": 160,
	"amp":      0.5,
	"β":        0,
}

// transmonGates are the gates FixedFrequencyTransmon can build
var transmonGates = []string{"x", "y", "sx", "sy"}

// halfGates are the pi/2 rotations, driven at half the amplitude of their pi counterpart
var halfGates = []string{"sx", "sy"}

// linkedTo maps a gate to the gate it shares parameters with when parameters are linked
var linkedTo = map[string]string{"y": "x", "sy": "sx"}

type transmonOptions struct {
	basisGates     []string
	defaultValues  map[string]float64
	linkParameters bool
}

// Option configures a FixedFrequencyTransmon
type Option func(*transmonOptions)

// WithBasisGates restricts the library to the given gates
func WithBasisGates(gates ...string) Option {
	return func(options *transmonOptions) {
		options.basisGates = gates
	}
}

// WithDefaultValues overrides default parameter values, e.g. {"duration": 320}
func WithDefaultValues(values map[string]float64) Option {
	return func(options *transmonOptions) {
		for name, v := range values {
			options.defaultValues[name] = v
		}
	}
}

// WithLinkParameters sets whether y and sy reuse the parameters of x and sx.
// Linked parameters are calibrated once for both gates.
func WithLinkParameters(link bool) Option {
	return func(options *transmonOptions) {
		options.linkParameters = link
	}
}

// FixedFrequencyTransmon is the library of single qubit Drag pulses for fixed
// frequency transmons. The pulse width sigma is a quarter of the duration, the
// y rotations are the x rotations with a 90 degree phase, and the sx and sy
// amplitudes default to half of the x amplitude.
type FixedFrequencyTransmon struct {
	opts      transmonOptions
	schedules map[string]*pulse.Schedule
}

var _ BasisGateLibrary = &FixedFrequencyTransmon{}

// NewFixedFrequencyTransmon builds the schedule templates of the requested gates
func NewFixedFrequencyTransmon(options ...Option) (*FixedFrequencyTransmon, error) {
	opts := transmonOptions{
		basisGates:     transmonGates,
		defaultValues:  lo.Assign(transmonDefaults),
		linkParameters: true,
	}
	for _, option := range options {
		option(&opts)
	}

	opts.basisGates = lo.Uniq(opts.basisGates)
	for _, gate := range opts.basisGates {
		if !lo.Contains(transmonGates, gate) {
			return nil, errors.Wrapf(ErrUnsupportedGate, "FixedFrequencyTransmon: %q", gate)
		}
	}
	for name := range opts.defaultValues {
		if _, ok := transmonDefaults[name]; !ok {
			return nil, errors.Wrapf(ErrUnknownDefault, "FixedFrequencyTransmon: %q", name)
		}
	}

	l := &FixedFrequencyTransmon{opts: opts, schedules: make(map[string]*pulse.Schedule)}
	l.build()
	return l, nil
}

type dragParams struct {
	duration, amp, beta pulse.Parameter
}

func newDragParams() dragParams {
	return dragParams{
		duration: pulse.NewParameter("duration"),
		amp:      pulse.NewParameter("amp"),
		beta:     pulse.NewParameter("β"),
	}
}

func (l *FixedFrequencyTransmon) build() {
	drive := pulse.NewChannel(pulse.DriveKind, pulse.Param(pulse.NewParameter("ch0")))

	params := map[string]dragParams{"x": newDragParams(), "sx": newDragParams()}
	if l.opts.linkParameters {
		params["y"], params["sy"] = params["x"], params["sx"]
	} else {
		params["y"], params["sy"] = newDragParams(), newDragParams()
	}
	phases := map[string]complex128{"x": 1, "sx": 1, "y": 1i, "sy": 1i}

	for _, gate := range l.opts.basisGates {
		p, phase := params[gate], phases[gate]
		l.schedules[gate] = pulse.Build(gate, func(b *pulse.Builder) {
			b.Play(pulse.Drag(
				pulse.Param(p.duration),
				pulse.Param(p.amp).Scale(phase),
				pulse.Param(p.duration).Scale(0.25),
				pulse.Param(p.beta),
			), drive)
		})
	}
}

// Name returns the library name
func (l *FixedFrequencyTransmon) Name() string { return "FixedFrequencyTransmon" }

// BasisGates returns the gates the library has templates for
func (l *FixedFrequencyTransmon) BasisGates() []string { return l.opts.basisGates }

// Schedule returns the template of gate
func (l *FixedFrequencyTransmon) Schedule(gate string) (*pulse.Schedule, error) {
	s, ok := l.schedules[gate]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedGate, "%s has no %q gate", l.Name(), gate)
	}
	return s, nil
}

// DefaultValues returns a value for each parameter of each template.
// Linked gates get no values of their own when the gate they are linked to is
// also in the library.
func (l *FixedFrequencyTransmon) DefaultValues() []DefaultValue {
	var values []DefaultValue
	for _, gate := range l.opts.basisGates {
		if other, ok := linkedTo[gate]; ok && l.opts.linkParameters && lo.Contains(l.opts.basisGates, other) {
			continue
		}

		for _, name := range []string{"duration", "amp", "β"} {
			v := l.opts.defaultValues[name]
			if name == "amp" && lo.Contains(halfGates, gate) {
				v /= 2
			}
			values = append(values, DefaultValue{Value: complex(v, 0), Parameter: name, Schedule: gate})
		}
	}
	return values
}
