package pulse

import (
	"fmt"

	"github.com/pkg/errors"
)

// ChannelKind is the prefix used by the backend to name a channel
type ChannelKind string

const (
	DriveKind   ChannelKind = "d"
	MeasureKind ChannelKind = "m"
	ControlKind ChannelKind = "u"
	AcquireKind ChannelKind = "a"
)

// Channel is a hardware channel. Its index may be a parameter until the
// schedule is bound to specific qubits.
type Channel struct {
	Kind  ChannelKind
	Index Value
}

// DriveChannel returns the drive channel of qubit i
func DriveChannel(i int) Channel { return Channel{Kind: DriveKind, Index: Const(float64(i))} }

// MeasureChannel returns the measurement channel of qubit i
func MeasureChannel(i int) Channel { return Channel{Kind: MeasureKind, Index: Const(float64(i))} }

// ControlChannel returns control channel i
func ControlChannel(i int) Channel { return Channel{Kind: ControlKind, Index: Const(float64(i))} }

// AcquireChannel returns the acquisition channel of qubit i
func AcquireChannel(i int) Channel { return Channel{Kind: AcquireKind, Index: Const(float64(i))} }

// NewChannel returns a channel with a possibly parameterized index
func NewChannel(kind ChannelKind, index Value) Channel {
	return Channel{Kind: kind, Index: index}
}

// Assign binds the channel index
func (c Channel) Assign(a Assignments) (Channel, error) {
	c.Index = c.Index.Assign(a)
	if c.Index.IsParameterized() {
		return c, nil
	}
	if i, err := c.Index.Int(); err != nil {
		return c, errors.Wrapf(err, "channel %s", c)
	} else if i < 0 {
		return c, errors.Errorf("channel %s: negative index", c)
	}
	return c, nil
}

// Parameters returns the index parameter, if any
func (c Channel) Parameters() []Parameter {
	if p, ok := c.Index.Parameter(); ok {
		return []Parameter{p}
	}
	return nil
}

func (c Channel) Equal(o Channel) bool {
	return c.Kind == o.Kind && c.Index.Equal(o.Index)
}

func (c Channel) String() string {
	if i, err := c.Index.Int(); err == nil {
		return fmt.Sprintf("%s%d", c.Kind, i)
	}
	return fmt.Sprintf("%s[%s]", c.Kind, c.Index)
}
