package pulse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Timed is an instruction scheduled at a start time, in samples
type Timed struct {
	Start       int
	Instruction Instruction
}

type entry struct {
	start int
	// appended entries start when all of their channels are free
	appended    bool
	instruction Instruction
	// block is set for called schedules instead of instruction
	block *Schedule
}

func (e entry) channels() []Channel {
	if e.block != nil {
		return e.block.Channels()
	}
	return e.instruction.Channels()
}

func (e entry) parameters() []Parameter {
	if e.block != nil {
		return e.block.Parameters()
	}
	return e.instruction.Parameters()
}

func (e entry) equal(o entry) bool {
	if e.block != nil || o.block != nil {
		return e.block != nil && o.block != nil && e.block.Equal(o.block)
	}
	return e.appended == o.appended && e.start == o.start && e.instruction.Equal(o.instruction)
}

func (e entry) String() string {
	if e.block != nil {
		return fmt.Sprintf("Call(%s)", e.block)
	}
	return e.instruction.String()
}

// Schedule is a named, time-ordered set of instructions.
// Instructions added with Append are placed after the previous instruction on
// the same channel, so a schedule with parameterized durations only gets
// concrete start times once it is bound.
type Schedule struct {
	Name    string
	entries []entry
}

// NewSchedule returns an empty schedule
func NewSchedule(name string) *Schedule {
	return &Schedule{Name: name}
}

// Insert adds inst at a fixed start time
func (s *Schedule) Insert(start int, inst Instruction) *Schedule {
	s.entries = append(s.entries, entry{start: start, instruction: inst})
	return s
}

// Append adds inst right after the last instruction on its channels
func (s *Schedule) Append(inst Instruction) *Schedule {
	s.entries = append(s.entries, entry{appended: true, instruction: inst})
	return s
}

// Call adds the instructions of sched as a block that starts when all of its
// channels are free. Start times inside the block are kept relative to it.
func (s *Schedule) Call(sched *Schedule) *Schedule {
	s.entries = append(s.entries, entry{appended: true, block: sched})
	return s
}

// Instructions resolves the start time of every instruction.
// It fails if the schedule still has parameterized durations.
func (s *Schedule) Instructions() ([]Timed, error) {
	ends := make(map[string]int)
	timed := make([]Timed, 0, len(s.entries))
	place := func(start int, inst Instruction) error {
		d, err := inst.Duration().Int()
		if err != nil {
			return errors.Wrapf(err, "schedule %q: %s", s.Name, inst)
		}
		for _, ch := range inst.Channels() {
			if end := start + d; end > ends[ch.String()] {
				ends[ch.String()] = end
			}
		}
		timed = append(timed, Timed{Start: start, Instruction: inst})
		return nil
	}

	for _, e := range s.entries {
		start := e.start
		if e.appended {
			start = 0
			for _, ch := range e.channels() {
				if end := ends[ch.String()]; end > start {
					start = end
				}
			}
		}

		if e.block == nil {
			if err := place(start, e.instruction); err != nil {
				return nil, err
			}
			continue
		}

		block, err := e.block.Instructions()
		if err != nil {
			return nil, errors.Wrapf(err, "schedule %q", s.Name)
		}
		for _, t := range block {
			if err := place(start+t.Start, t.Instruction); err != nil {
				return nil, err
			}
		}
	}
	return timed, nil
}

// Duration returns the end time of the last instruction
func (s *Schedule) Duration() (int, error) {
	timed, err := s.Instructions()
	if err != nil {
		return 0, err
	}

	var duration int
	for _, t := range timed {
		d, _ := t.Instruction.Duration().Int()
		if t.Start+d > duration {
			duration = t.Start + d
		}
	}
	return duration, nil
}

// Channels returns the channels used by the schedule, in order of first use
func (s *Schedule) Channels() []Channel {
	seen := make(map[string]bool)
	var channels []Channel
	for _, e := range s.entries {
		for _, ch := range e.channels() {
			if !seen[ch.String()] {
				seen[ch.String()] = true
				channels = append(channels, ch)
			}
		}
	}
	return channels
}

// Parameters returns the unbound parameters, in order of first use
func (s *Schedule) Parameters() []Parameter {
	seen := make(map[Parameter]bool)
	var params []Parameter
	for _, e := range s.entries {
		for _, p := range e.parameters() {
			if !seen[p] {
				seen[p] = true
				params = append(params, p)
			}
		}
	}
	return params
}

// Validate checks the bound parameters of every pulse played by the schedule
func (s *Schedule) Validate() error {
	for _, e := range s.entries {
		if e.block != nil {
			if err := e.block.Validate(); err != nil {
				return errors.Wrapf(err, "schedule %q", s.Name)
			}
			continue
		}
		if play, ok := e.instruction.(Play); ok {
			if err := play.Pulse.Validate(); err != nil {
				return errors.Wrapf(err, "schedule %q", s.Name)
			}
		}
	}
	return nil
}

// IsParameterized reports whether any parameter is still unbound
func (s *Schedule) IsParameterized() bool { return len(s.Parameters()) > 0 }

// AssignParameters returns a copy of s with the given parameters bound.
// Parameters that are not in a are left unbound.
func (s *Schedule) AssignParameters(a Assignments) (*Schedule, error) {
	out := &Schedule{Name: s.Name, entries: make([]entry, 0, len(s.entries))}
	for _, e := range s.entries {
		if e.block != nil {
			block, err := e.block.AssignParameters(a)
			if err != nil {
				return nil, errors.Wrapf(err, "schedule %q", s.Name)
			}
			out.entries = append(out.entries, entry{start: e.start, appended: e.appended, block: block})
			continue
		}

		inst, err := e.instruction.Assign(a)
		if err != nil {
			return nil, errors.Wrapf(err, "schedule %q", s.Name)
		}
		out.entries = append(out.entries, entry{start: e.start, appended: e.appended, instruction: inst})
	}
	return out, nil
}

// Equal compares names and instructions. Bound schedules are compared by their
// timed instructions regardless of insertion order.
func (s *Schedule) Equal(o *Schedule) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Name != o.Name {
		return false
	}

	st, serr := s.Instructions()
	ot, oerr := o.Instructions()
	if serr != nil || oerr != nil {
		if len(s.entries) != len(o.entries) {
			return false
		}
		for i := range s.entries {
			if !s.entries[i].equal(o.entries[i]) {
				return false
			}
		}
		return true
	}
	if len(st) != len(ot) {
		return false
	}

	sortTimed(st)
	sortTimed(ot)
	for i := range st {
		if st[i].Start != ot[i].Start || !st[i].Instruction.Equal(ot[i].Instruction) {
			return false
		}
	}
	return true
}

func sortTimed(timed []Timed) {
	sort.SliceStable(timed, func(i, j int) bool {
		if timed[i].Start != timed[j].Start {
			return timed[i].Start < timed[j].Start
		}
		return timed[i].Instruction.String() < timed[j].Instruction.String()
	})
}

func (s *Schedule) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Schedule(name=%q", s.Name)
	timed, err := s.Instructions()
	if err != nil {
		for _, e := range s.entries {
			fmt.Fprintf(&b, ", %s", e)
		}
	} else {
		for _, t := range timed {
			fmt.Fprintf(&b, ", (%d, %s)", t.Start, t.Instruction)
		}
	}
	b.WriteString(")")
	return b.String()
}
