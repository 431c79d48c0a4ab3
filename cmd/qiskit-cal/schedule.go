package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Zaba505/qiskit-experiments-go/calibration"
	"github.com/Zaba505/qiskit-experiments-go/pulse"
)

type scheduleJSON struct {
	Name         string            `json:"name" yaml:"name"`
	Qubits       []int             `json:"qubits" yaml:"qubits"`
	Duration     int               `json:"duration" yaml:"duration"`
	Instructions []instructionJSON `json:"instructions" yaml:"instructions"`
}

type instructionJSON struct {
	Start   int    `json:"start" yaml:"start"`
	Type    string `json:"type" yaml:"type"`
	Channel string `json:"channel" yaml:"channel"`
	// Shape and Params are set for Play instructions
	Shape  string                 `json:"shape,omitempty" yaml:"shape,omitempty"`
	Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
	// Value is the length, phase or frequency of the other instructions
	Value interface{} `json:"value,omitempty" yaml:"value,omitempty"`
}

func NewScheduleCommand() *cobra.Command {
	var (
		output    string
		qubits    string
		group     string
		duration  float64
		leaveFree []string
	)

	cmd := &cobra.Command{
		Use:   "schedule GATE",
		Short: "Print the calibrated schedule of a gate",
		Long: `Print the schedule of a gate with all parameters bound to their calibrated values.

The values of the given qubits are preferred over the values for all qubits.`,
		Example: `  qiskit-cal schedule x --qubits 0
  qiskit-cal schedule sx --qubits 0 --duration 320 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQubits(qubits)
			if err != nil {
				return err
			}

			var defaults map[string]float64
			if cmd.Flags().Changed("duration") {
				defaults = map[string]float64{"duration": duration}
			}
			cals, err := loadCalibrations(cmd.Context(), defaults)
			if err != nil {
				return err
			}

			opts := []calibration.LookupOption{calibration.InGroup(group)}
			if len(leaveFree) > 0 {
				opts = append(opts, calibration.LeaveFree(leaveFree...))
			}
			sched, err := cals.GetSchedule(args[0], q, opts...)
			if err != nil {
				return err
			}

			out, err := scheduleOutput(sched, q)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), output, out, func() error {
				cmd.Printf("%s on qubits %s (%s samples)\n", bold("%s", out.Name), q, bold("%d", out.Duration))
				for _, t := range out.Instructions {
					cmd.Printf("  %4d  %s\n", t.Start, describe(t))
				}
				return nil
			})
		},
	}
	addOutputFlag(cmd, &output)
	cmd.Flags().StringVarP(&qubits, "qubits", "q", "0", "qubits of the gate, e.g. 0 or 0,1")
	cmd.Flags().StringVar(&group, "group", calibration.DefaultGroup, "calibration group to take values from")
	cmd.Flags().Float64Var(&duration, "duration", 0, "override the default pulse duration, in samples")
	cmd.Flags().StringSliceVar(&leaveFree, "leave-free", nil, "parameters to leave unbound")

	return cmd
}

func scheduleOutput(sched *pulse.Schedule, qubits calibration.Qubits) (scheduleJSON, error) {
	timed, err := sched.Instructions()
	if err != nil {
		return scheduleJSON{}, err
	}
	duration, err := sched.Duration()
	if err != nil {
		return scheduleJSON{}, err
	}

	out := scheduleJSON{
		Name:     sched.Name,
		Qubits:   append([]int{}, qubits...),
		Duration: duration,
		Instructions: lo.Map(timed, func(t pulse.Timed, _ int) instructionJSON {
			return instructionOutput(t)
		}),
	}
	return out, nil
}

func instructionOutput(t pulse.Timed) instructionJSON {
	out := instructionJSON{Start: t.Start}
	switch inst := t.Instruction.(type) {
	case pulse.Play:
		out.Type, out.Channel, out.Shape = "Play", inst.Channel.String(), string(inst.Pulse.Shape)
		out.Params = make(map[string]interface{}, len(inst.Pulse.ParamNames()))
		for _, name := range inst.Pulse.ParamNames() {
			out.Params[name] = valueOutput(inst.Pulse.Param(name))
		}
	case pulse.Delay:
		out.Type, out.Channel, out.Value = "Delay", inst.Channel.String(), valueOutput(inst.Length)
	case pulse.ShiftPhase:
		out.Type, out.Channel, out.Value = "ShiftPhase", inst.Channel.String(), valueOutput(inst.Phase)
	case pulse.SetFrequency:
		out.Type, out.Channel, out.Value = "SetFrequency", inst.Channel.String(), valueOutput(inst.Frequency)
	case pulse.Acquire:
		out.Type, out.Channel, out.Value = "Acquire", inst.Channel.String(), valueOutput(inst.Length)
	default:
		out.Type = fmt.Sprintf("%T", inst)
	}
	return out
}

// valueOutput returns real values as numbers, everything else in its text form
func valueOutput(v pulse.Value) interface{} {
	c, err := v.Complex()
	if err != nil || imag(c) != 0 {
		return v.String()
	}
	return real(c)
}

func describe(t instructionJSON) string {
	if t.Shape == "" {
		return fmt.Sprintf("%s(%v) on %s", t.Type, t.Value, t.Channel)
	}

	parts := make([]string, 0, len(t.Params))
	for _, name := range []string{"duration", "amp", "sigma", "beta", "width"} {
		if v, ok := t.Params[name]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", name, v))
		}
	}
	return fmt.Sprintf("%s %s(%s) on %s", t.Type, bold("%s", t.Shape), strings.Join(parts, ", "), t.Channel)
}
