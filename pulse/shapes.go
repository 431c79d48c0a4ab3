package pulse

import (
	"fmt"
	"math/cmplx"
	"strings"

	"github.com/pkg/errors"
)

// Shape names a parametric pulse envelope
type Shape string

const (
	ShapeDrag           Shape = "Drag"
	ShapeGaussian       Shape = "Gaussian"
	ShapeGaussianSquare Shape = "GaussianSquare"
	ShapeConstant       Shape = "Constant"
)

// shapeParams lists the parameters of each shape, in display order
var shapeParams = map[Shape][]string{
	ShapeDrag:           {"duration", "amp", "sigma", "beta"},
	ShapeGaussian:       {"duration", "amp", "sigma"},
	ShapeGaussianSquare: {"duration", "amp", "sigma", "width"},
	ShapeConstant:       {"duration", "amp"},
}

// Pulse is a parametric pulse.
// The constructors do not check their arguments; Validate does, and so do
// Assign and (*Schedule).Validate.
type Pulse struct {
	Shape  Shape
	values map[string]Value
}

// Drag returns a Gaussian pulse with a derivative removal (DRAG) correction of strength beta
func Drag(duration, amp, sigma, beta Value) Pulse {
	return newPulse(ShapeDrag, duration, amp, sigma, beta)
}

// Gaussian returns a Gaussian pulse
func Gaussian(duration, amp, sigma Value) Pulse {
	return newPulse(ShapeGaussian, duration, amp, sigma)
}

// GaussianSquare returns a square pulse of the given width with Gaussian rise and fall
func GaussianSquare(duration, amp, sigma, width Value) Pulse {
	return newPulse(ShapeGaussianSquare, duration, amp, sigma, width)
}

// Constant returns a pulse of constant amplitude
func Constant(duration, amp Value) Pulse {
	return newPulse(ShapeConstant, duration, amp)
}

func newPulse(shape Shape, values ...Value) Pulse {
	p := Pulse{Shape: shape, values: make(map[string]Value, len(values))}
	for i, name := range shapeParams[shape] {
		p.values[name] = values[i]
	}
	return p
}

// Param returns the value of a named pulse parameter
func (p Pulse) Param(name string) Value { return p.values[name] }

// ParamNames returns the parameter names of the pulse shape, in display order
func (p Pulse) ParamNames() []string { return shapeParams[p.Shape] }

// Duration returns the duration in samples
func (p Pulse) Duration() Value { return p.values["duration"] }

// Parameters returns the unbound parameters of the pulse
func (p Pulse) Parameters() []Parameter {
	var params []Parameter
	for _, name := range shapeParams[p.Shape] {
		if param, ok := p.values[name].Parameter(); ok {
			params = append(params, param)
		}
	}
	return params
}

// Assign binds pulse parameters and validates the result
func (p Pulse) Assign(a Assignments) (Pulse, error) {
	out := Pulse{Shape: p.Shape, values: make(map[string]Value, len(p.values))}
	for name, v := range p.values {
		out.values[name] = v.Assign(a)
	}
	return out, out.Validate()
}

// Validate checks the constraints of the bound pulse parameters.
// Parameters that are still unbound are checked once they get a value.
func (p Pulse) Validate() error {
	duration := -1
	if v := p.Duration(); !v.IsParameterized() {
		d, err := v.Int()
		if err != nil {
			return errors.Wrapf(err, "%s: duration", p.Shape)
		}
		if d <= 0 {
			return errors.Errorf("%s: duration must be positive, got %d", p.Shape, d)
		}
		duration = d
	}

	if v := p.values["amp"]; !v.IsParameterized() {
		amp, _ := v.Complex()
		if cmplx.Abs(amp) > 1 {
			return errors.Errorf("%s: amplitude norm %g exceeds 1", p.Shape, cmplx.Abs(amp))
		}
	}

	if v, ok := p.values["sigma"]; ok && !v.IsParameterized() {
		if sigma, _ := v.Float(); sigma <= 0 {
			return errors.Errorf("%s: sigma must be positive, got %g", p.Shape, sigma)
		}
	}

	if v, ok := p.values["width"]; ok && !v.IsParameterized() {
		width, _ := v.Float()
		if width < 0 || (duration >= 0 && width >= float64(duration)) {
			return errors.Errorf("%s: width %g must be in [0, duration)", p.Shape, width)
		}
	}
	return nil
}

func (p Pulse) Equal(o Pulse) bool {
	if p.Shape != o.Shape || len(p.values) != len(o.values) {
		return false
	}
	for name, v := range p.values {
		if ov, ok := o.values[name]; !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (p Pulse) String() string {
	parts := make([]string, 0, len(p.values))
	for _, name := range shapeParams[p.Shape] {
		parts = append(parts, name+"="+p.values[name].String())
	}
	return fmt.Sprintf("%s(%s)", p.Shape, strings.Join(parts, ", "))
}
