package pulse

import (
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Parameter is a named placeholder in a pulse schedule.
// Two parameters with the same name are still distinct unless one was copied from the other.
type Parameter struct {
	name string
	id   uuid.UUID
}

// NewParameter returns a new, unique Parameter
func NewParameter(name string) Parameter {
	return Parameter{name: name, id: uuid.New()}
}

// Name returns the parameter's name
func (p Parameter) Name() string { return p.name }

func (p Parameter) String() string { return p.name }

// Assignments binds parameters to values
type Assignments map[Parameter]complex128

// Value is either a constant or coeff*p + offset for a single Parameter p.
// The zero Value is the constant 0.
type Value struct {
	param  *Parameter
	coeff  complex128
	offset complex128
}

// Const returns a real constant Value
func Const(v float64) Value { return Value{offset: complex(v, 0)} }

// ComplexConst returns a complex constant Value
func ComplexConst(v complex128) Value { return Value{offset: v} }

// Param returns a Value that is bound to p
func Param(p Parameter) Value {
	return Value{param: &p, coeff: 1}
}

// Scale multiplies v by c
func (v Value) Scale(c complex128) Value {
	v.coeff *= c
	v.offset *= c
	return v
}

// IsParameterized reports whether v still depends on a parameter
func (v Value) IsParameterized() bool { return v.param != nil }

// Parameter returns the parameter v depends on, if any
func (v Value) Parameter() (Parameter, bool) {
	if v.param == nil {
		return Parameter{}, false
	}
	return *v.param, true
}

// Assign substitutes the parameter of v if it has an assignment
func (v Value) Assign(a Assignments) Value {
	if v.param == nil {
		return v
	}
	x, ok := a[*v.param]
	if !ok {
		return v
	}
	return Value{offset: v.coeff*x + v.offset}
}

// Complex returns the value of a bound Value
func (v Value) Complex() (complex128, error) {
	if v.param != nil {
		return 0, errors.Errorf("value %s is not bound", v)
	}
	return v.offset, nil
}

// Float returns the real part of a bound Value
func (v Value) Float() (float64, error) {
	c, err := v.Complex()
	return real(c), err
}

// Int returns a bound Value as an integer
func (v Value) Int() (int, error) {
	c, err := v.Complex()
	if err != nil {
		return 0, err
	}
	if imag(c) != 0 || real(c) != math.Trunc(real(c)) {
		return 0, errors.Errorf("value %s is not an integer", v)
	}
	return int(real(c)), nil
}

// Equal compares two values.
// Parameterized values are compared by parameter name.
func (v Value) Equal(o Value) bool {
	if (v.param == nil) != (o.param == nil) {
		return false
	}
	if v.param != nil && (v.param.name != o.param.name || v.coeff != o.coeff) {
		return false
	}
	return v.offset == o.offset
}

func (v Value) String() string {
	if v.param == nil {
		return formatComplex(v.offset)
	}

	s := v.param.name
	if v.coeff != 1 {
		s = formatComplex(v.coeff) + "*" + s
	}
	if v.offset != 0 {
		s += " + " + formatComplex(v.offset)
	}
	return s
}

func formatComplex(c complex128) string {
	if imag(c) == 0 {
		return strconv.FormatFloat(real(c), 'g', -1, 64)
	}
	if real(c) == 0 {
		return strconv.FormatFloat(imag(c), 'g', -1, 64) + "j"
	}
	return strconv.FormatComplex(c, 'g', -1, 128)
}
