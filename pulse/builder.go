package pulse

// Builder appends instructions to a schedule
type Builder struct {
	s *Schedule
}

// Build runs fn against a new Builder and returns the resulting schedule.
//
//	x := pulse.Build("x", func(b *pulse.Builder) {
//		b.Play(pulse.Drag(pulse.Const(320), pulse.Const(0.5), pulse.Const(80), pulse.Const(0)), pulse.DriveChannel(0))
//	})
func Build(name string, fn func(b *Builder)) *Schedule {
	b := &Builder{s: NewSchedule(name)}
	fn(b)
	return b.s
}

// Play appends a Play instruction
func (b *Builder) Play(p Pulse, ch Channel) {
	b.s.Append(Play{Pulse: p, Channel: ch})
}

// Delay appends a Delay instruction
func (b *Builder) Delay(duration Value, ch Channel) {
	b.s.Append(Delay{Length: duration, Channel: ch})
}

// ShiftPhase appends a ShiftPhase instruction
func (b *Builder) ShiftPhase(phase Value, ch Channel) {
	b.s.Append(ShiftPhase{Phase: phase, Channel: ch})
}

// SetFrequency appends a SetFrequency instruction
func (b *Builder) SetFrequency(freq Value, ch Channel) {
	b.s.Append(SetFrequency{Frequency: freq, Channel: ch})
}

// Acquire appends an Acquire instruction
func (b *Builder) Acquire(duration Value, ch Channel) {
	b.s.Append(Acquire{Length: duration, Channel: ch})
}

// Call appends sched as a block, after the last instruction on its channels
func (b *Builder) Call(sched *Schedule) {
	b.s.Call(sched)
}
