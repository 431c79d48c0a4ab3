package main

import (
	"github.com/spf13/cobra"

	"github.com/Zaba505/qiskit-experiments-go/backend"
)

type frequencyJSON struct {
	Qubit          int     `json:"qubit" yaml:"qubit"`
	QubitFrequency float64 `json:"qubitFrequency" yaml:"qubitFrequency"`
	MeasFrequency  float64 `json:"measFrequency" yaml:"measFrequency"`
}

func NewFrequenciesCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "frequencies",
		Short: "Print the calibrated qubit and measurement frequencies",
		Long: `Print the calibrated drive and readout frequency of every qubit, in Hz.

Frequencies start from the estimates of the backend defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cals, err := loadCalibrations(cmd.Context(), nil)
			if err != nil {
				return err
			}

			qubitFreqs, err := cals.QubitFrequencies()
			if err != nil {
				return err
			}
			measFreqs, err := cals.MeasFrequencies()
			if err != nil {
				return err
			}

			out := make([]frequencyJSON, len(qubitFreqs))
			for q := range out {
				out[q] = frequencyJSON{Qubit: q, QubitFrequency: qubitFreqs[q], MeasFrequency: measFreqs[q]}
			}

			return render(cmd.OutOrStdout(), output, out, func() error {
				cmd.Println(bold("%s", cals.Backend().String()))
				for _, f := range out {
					cmd.Printf("  Qubit %d: drive %s, measure %s\n",
						f.Qubit, bold("%.6f GHz", f.QubitFrequency/backend.GHz), bold("%.6f GHz", f.MeasFrequency/backend.GHz))
				}
				return nil
			})
		},
	}
	addOutputFlag(cmd, &output)

	return cmd
}
