package pulse

import "fmt"

// Instruction is a single operation on one channel
type Instruction interface {
	// Duration in samples. It may be parameterized.
	Duration() Value
	Channels() []Channel
	Parameters() []Parameter
	Assign(Assignments) (Instruction, error)
	Equal(Instruction) bool
	String() string
}

// Play plays a pulse on a channel
type Play struct {
	Pulse   Pulse
	Channel Channel
}

func (i Play) Duration() Value { return i.Pulse.Duration() }
func (i Play) Channels() []Channel { return []Channel{i.Channel} }

func (i Play) Parameters() []Parameter {
	return append(i.Pulse.Parameters(), i.Channel.Parameters()...)
}

func (i Play) Assign(a Assignments) (Instruction, error) {
	p, err := i.Pulse.Assign(a)
	if err != nil {
		return nil, err
	}
	ch, err := i.Channel.Assign(a)
	if err != nil {
		return nil, err
	}
	return Play{Pulse: p, Channel: ch}, nil
}

func (i Play) Equal(o Instruction) bool {
	op, ok := o.(Play)
	return ok && i.Pulse.Equal(op.Pulse) && i.Channel.Equal(op.Channel)
}

func (i Play) String() string { return fmt.Sprintf("Play(%s, %s)", i.Pulse, i.Channel) }

// Delay idles a channel
type Delay struct {
	Length  Value
	Channel Channel
}

func (i Delay) Duration() Value { return i.Length }
func (i Delay) Channels() []Channel { return []Channel{i.Channel} }

func (i Delay) Parameters() []Parameter {
	return appendValueParam(i.Channel.Parameters(), i.Length)
}

func (i Delay) Assign(a Assignments) (Instruction, error) {
	ch, err := i.Channel.Assign(a)
	if err != nil {
		return nil, err
	}
	return Delay{Length: i.Length.Assign(a), Channel: ch}, nil
}

func (i Delay) Equal(o Instruction) bool {
	od, ok := o.(Delay)
	return ok && i.Length.Equal(od.Length) && i.Channel.Equal(od.Channel)
}

func (i Delay) String() string { return fmt.Sprintf("Delay(%s, %s)", i.Length, i.Channel) }

// ShiftPhase shifts the phase of the channel's frame, in radians
type ShiftPhase struct {
	Phase   Value
	Channel Channel
}

func (i ShiftPhase) Duration() Value { return Const(0) }
func (i ShiftPhase) Channels() []Channel { return []Channel{i.Channel} }

func (i ShiftPhase) Parameters() []Parameter {
	return appendValueParam(i.Channel.Parameters(), i.Phase)
}

func (i ShiftPhase) Assign(a Assignments) (Instruction, error) {
	ch, err := i.Channel.Assign(a)
	if err != nil {
		return nil, err
	}
	return ShiftPhase{Phase: i.Phase.Assign(a), Channel: ch}, nil
}

func (i ShiftPhase) Equal(o Instruction) bool {
	os, ok := o.(ShiftPhase)
	return ok && i.Phase.Equal(os.Phase) && i.Channel.Equal(os.Channel)
}

func (i ShiftPhase) String() string { return fmt.Sprintf("ShiftPhase(%s, %s)", i.Phase, i.Channel) }

// SetFrequency sets the frequency of the channel's frame, in Hz
type SetFrequency struct {
	Frequency Value
	Channel   Channel
}

func (i SetFrequency) Duration() Value { return Const(0) }
func (i SetFrequency) Channels() []Channel { return []Channel{i.Channel} }

func (i SetFrequency) Parameters() []Parameter {
	return appendValueParam(i.Channel.Parameters(), i.Frequency)
}

func (i SetFrequency) Assign(a Assignments) (Instruction, error) {
	ch, err := i.Channel.Assign(a)
	if err != nil {
		return nil, err
	}
	return SetFrequency{Frequency: i.Frequency.Assign(a), Channel: ch}, nil
}

func (i SetFrequency) Equal(o Instruction) bool {
	of, ok := o.(SetFrequency)
	return ok && i.Frequency.Equal(of.Frequency) && i.Channel.Equal(of.Channel)
}

func (i SetFrequency) String() string {
	return fmt.Sprintf("SetFrequency(%s, %s)", i.Frequency, i.Channel)
}

// Acquire records the signal of an acquisition channel
type Acquire struct {
	Length  Value
	Channel Channel
}

func (i Acquire) Duration() Value { return i.Length }
func (i Acquire) Channels() []Channel { return []Channel{i.Channel} }

func (i Acquire) Parameters() []Parameter {
	return appendValueParam(i.Channel.Parameters(), i.Length)
}

func (i Acquire) Assign(a Assignments) (Instruction, error) {
	ch, err := i.Channel.Assign(a)
	if err != nil {
		return nil, err
	}
	return Acquire{Length: i.Length.Assign(a), Channel: ch}, nil
}

func (i Acquire) Equal(o Instruction) bool {
	oa, ok := o.(Acquire)
	return ok && i.Length.Equal(oa.Length) && i.Channel.Equal(oa.Channel)
}

func (i Acquire) String() string { return fmt.Sprintf("Acquire(%s, %s)", i.Length, i.Channel) }

func appendValueParam(params []Parameter, v Value) []Parameter {
	if p, ok := v.Parameter(); ok {
		return append([]Parameter{p}, params...)
	}
	return params
}
