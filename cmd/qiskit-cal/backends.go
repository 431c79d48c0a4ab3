package main

import (
	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Zaba505/qiskit-experiments-go/backend/fake"
)

type backendJSON struct {
	Name      string `json:"name" yaml:"name"`
	Qubits    int    `json:"qubits" yaml:"qubits"`
	Simulator bool   `json:"simulator" yaml:"simulator"`
}

func NewBackendsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backends",
		Short: "List the backends calibrations can be built for",
		Long: `List the fake backends, or with --live the online backends of the IBM Q API.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out []backendJSON
			if cfg.Backend.Live {
				client, err := newClient(cmd.Context())
				if err != nil {
					return err
				}
				backends, err := client.AvailableBackends(cmd.Context())
				if err != nil {
					return err
				}
				out = lo.Map(backends.Names(), func(name string, _ int) backendJSON {
					b := backends[name]
					return backendJSON{Name: b.Name, Qubits: b.NQubits, Simulator: b.Simulator}
				})
			} else {
				for _, name := range fake.Names() {
					b, err := fake.Get(name)
					if err != nil {
						return err
					}
					out = append(out, backendJSON{Name: b.Name, Qubits: b.NumQubits, Simulator: b.Simulator})
				}
			}

			return render(cmd.OutOrStdout(), output, out, func() error {
				for _, b := range out {
					kind := lo.Ternary(b.Simulator, "simulator", "device")
					marker := ""
					if b.Name == cfg.Backend.Name {
						marker = color.GreenString(" (selected)")
					}
					cmd.Printf("%s  %d qubits, %s%s\n", bold("%s", b.Name), b.Qubits, kind, marker)
				}
				return nil
			})
		},
	}
	addOutputFlag(cmd, &output)

	return cmd
}
