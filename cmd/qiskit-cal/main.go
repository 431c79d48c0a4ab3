package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zaba505/qiskit-experiments-go/internal/config"
)

var (
	configPath  = ""
	logLevel    = ""
	backendName = ""
	live        = false
	noColor     = false

	// cfg is loaded before any command runs
	cfg *config.Config
)

func setupLogger(c config.LoggingConfig) error {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)

	if c.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return nil
	}
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

// loadConfig reads the config file and applies the global flags on top of it
func loadConfig(cmd *cobra.Command) error {
	c, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Logging.Level = logLevel
	}
	if flags.Changed("backend") {
		c.Backend.Name = backendName
	}
	if flags.Changed("live") {
		c.Backend.Live = live
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = c
	return nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qiskit-cal",
		Short: "qiskit-cal manages pulse calibrations of IBM Q backends",
		Long: `qiskit-cal manages pulse calibrations of IBM Q backends.

It builds the calibrations of a backend from its frequency estimates and the
fixed frequency transmon gate library, and prints calibrated schedules.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				color.NoColor = true
			}
			if err := loadConfig(cmd); err != nil {
				return err
			}
			return setupLogger(cfg.Logging)
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVar(&configPath, "config", "", "config file path (TOML)")
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error)")
	globalFlags.StringVarP(&backendName, "backend", "b", "", "backend to calibrate (defaults to the config file, then fake_armonk)")
	globalFlags.BoolVar(&live, "live", false, "fetch the backend from the IBM Q API instead of the fake fixtures")
	globalFlags.BoolVar(&noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		NewBackendsCommand(),
		NewFrequenciesCommand(),
		NewScheduleCommand(),
		NewExportCommand(),
	)

	return cmd
}
