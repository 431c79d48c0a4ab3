package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	qiskit "github.com/Zaba505/qiskit-experiments-go"
	"github.com/Zaba505/qiskit-experiments-go/backend"
	"github.com/Zaba505/qiskit-experiments-go/backend/fake"
	"github.com/Zaba505/qiskit-experiments-go/calibration"
	"github.com/Zaba505/qiskit-experiments-go/calibration/library"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// newClient dials the IBM Q API with the configured credentials
func newClient(ctx context.Context) (*qiskit.Client, error) {
	conn, err := qiskit.Dial(ctx,
		qiskit.WithApiUrl(cfg.API.URL),
		qiskit.WithApiToken(cfg.API.Token),
		qiskit.WithClientApplication("qiskit-cal"),
		qiskit.WithRetries(cfg.API.Retries),
		qiskit.WithTimeout(cfg.API.Timeout),
	)
	if err != nil {
		return nil, err
	}

	var opts []qiskit.ClientOption
	if cfg.API.Hub != "" {
		opts = append(opts, qiskit.WithIbmQInfo(cfg.API.Hub, cfg.API.Group, cfg.API.Project))
	}
	return qiskit.NewClient(conn, opts...), nil
}

func loadBackend(ctx context.Context) (*backend.Backend, error) {
	if !cfg.Backend.Live {
		return fake.Get(cfg.Backend.Name)
	}

	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Backend(ctx, cfg.Backend.Name)
}

// loadCalibrations builds the calibrations of the configured backend and
// loads the configured parameter table, if any
func loadCalibrations(ctx context.Context, defaults map[string]float64) (*calibration.BackendCalibrations, error) {
	b, err := loadBackend(ctx)
	if err != nil {
		return nil, err
	}

	values := make(map[string]float64, len(cfg.Library.DefaultValues)+len(defaults))
	for name, v := range cfg.Library.DefaultValues {
		values[name] = v
	}
	for name, v := range defaults {
		values[name] = v
	}

	lib, err := library.NewFixedFrequencyTransmon(
		library.WithBasisGates(cfg.Library.BasisGates...),
		library.WithDefaultValues(values),
		library.WithLinkParameters(cfg.Library.LinkParameters),
	)
	if err != nil {
		return nil, err
	}

	cals, err := calibration.NewBackendCalibrations(b, calibration.WithLibrary(lib))
	if err != nil {
		return nil, err
	}

	if cfg.Calibrations.File != "" {
		f, err := os.Open(cfg.Calibrations.File)
		if err != nil {
			return nil, fmt.Errorf("failed to open calibrations: %w", err)
		}
		defer f.Close()

		if err := cals.LoadCSV(f); err != nil {
			return nil, fmt.Errorf("failed to load calibrations from %s: %w", cfg.Calibrations.File, err)
		}
		logrus.WithField("file", cfg.Calibrations.File).Debug("loaded calibrations")
	}

	return cals, nil
}

// parseQubits accepts "0", "0,1" and "(0, 1)"
func parseQubits(s string) (calibration.Qubits, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") {
		return calibration.ParseQubits(s)
	}
	if s == "" {
		return calibration.Q(), nil
	}

	var qubits calibration.Qubits
	for _, part := range strings.Split(s, ",") {
		q, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || q < 0 {
			return nil, fmt.Errorf("invalid qubit %q", part)
		}
		qubits = append(qubits, q)
	}
	return qubits, nil
}

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", outputText, "output format (text, json, yaml)")
}

// render writes v as json or yaml, or calls text for the text format
func render(w io.Writer, format string, v interface{}, text func() error) error {
	switch format {
	case outputText:
		return text()
	case outputJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (must be text, json, or yaml)", format)
	}
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
