package calibration

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Zaba505/qiskit-experiments-go/backend"
	"github.com/Zaba505/qiskit-experiments-go/pulse"
)

const (
	// QubitFrequencyParameter holds the drive frequency of each qubit, in Hz
	QubitFrequencyParameter = "qubit_lo_freq"
	// MeasFrequencyParameter holds the readout frequency of each qubit, in Hz
	MeasFrequencyParameter = "meas_lo_freq"
)

// BackendCalibrations are Calibrations for a specific backend. They start from
// the backend's frequency estimates, timestamped SeedTime, and resolve control
// channels through it.
type BackendCalibrations struct {
	*Calibrations

	backend   *backend.Backend
	qubitFreq pulse.Parameter
	measFreq  pulse.Parameter
}

// NewBackendCalibrations returns the calibrations of b.
// Use WithLibrary to seed them with basis gate schedules.
func NewBackendCalibrations(b *backend.Backend, opts ...Option) (*BackendCalibrations, error) {
	if b == nil {
		return nil, errors.New("backend calibrations need a backend")
	}

	opts = append([]Option{WithControlChannels(b.ControlChannels)}, opts...)
	cals, err := NewCalibrations(opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "calibrations for %s", b.Name)
	}

	bc := &BackendCalibrations{
		Calibrations: cals,
		backend:      b,
		qubitFreq:    pulse.NewParameter(QubitFrequencyParameter),
		measFreq:     pulse.NewParameter(MeasFrequencyParameter),
	}
	if err := bc.RegisterParameter(bc.qubitFreq, Q(), ""); err != nil {
		return nil, err
	}
	if err := bc.RegisterParameter(bc.measFreq, Q(), ""); err != nil {
		return nil, err
	}

	if b.HasPulseDefaults() {
		for q := 0; q < b.NumQubits; q++ {
			if err := bc.AddParameterValue(seedValue(complex(b.QubitFreqEst[q], 0)), QubitFrequencyParameter, Q(q), ""); err != nil {
				return nil, err
			}
			if err := bc.AddParameterValue(seedValue(complex(b.MeasFreqEst[q], 0)), MeasFrequencyParameter, Q(q), ""); err != nil {
				return nil, err
			}
		}
	} else {
		logger.WithField("backend", b.Name).Warn("backend has no pulse defaults, frequencies are not calibrated")
	}

	logger.WithFields(logrus.Fields{
		"backend": b.Name,
		"qubits":  b.NumQubits,
	}).Debug("created backend calibrations")
	return bc, nil
}

// Backend returns the backend the calibrations belong to
func (bc *BackendCalibrations) Backend() *backend.Backend { return bc.backend }

// QubitFrequencies returns the drive frequency of every qubit, in Hz
func (bc *BackendCalibrations) QubitFrequencies(opts ...LookupOption) ([]float64, error) {
	return bc.frequencies(QubitFrequencyParameter, opts)
}

// MeasFrequencies returns the readout frequency of every qubit, in Hz
func (bc *BackendCalibrations) MeasFrequencies(opts ...LookupOption) ([]float64, error) {
	return bc.frequencies(MeasFrequencyParameter, opts)
}

func (bc *BackendCalibrations) frequencies(param string, opts []LookupOption) ([]float64, error) {
	freqs := make([]float64, bc.backend.NumQubits)
	for q := range freqs {
		v, err := bc.GetParameterValue(param, Q(q), "", opts...)
		if err != nil {
			return nil, err
		}
		freqs[q] = v.Float()
	}
	return freqs, nil
}
