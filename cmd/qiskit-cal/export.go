package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewExportCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all calibrated parameter values as CSV",
		Long: `Export all calibrated parameter values as a CSV table.

The table can be loaded again through the calibrations.file config setting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cals, err := loadCalibrations(cmd.Context(), nil)
			if err != nil {
				return err
			}

			if file == "" {
				return cals.SaveCSV(cmd.OutOrStdout())
			}

			f, err := os.Create(file)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := cals.SaveCSV(f); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"file":   file,
				"values": len(cals.ParameterValues()),
			}).Info("exported calibrations")
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "write to this file instead of stdout")

	return cmd
}
