package calibration

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var csvHeader = []string{"parameter", "qubits", "schedule", "value", "date_time", "valid", "exp_id", "group"}

// SaveCSV writes every stored parameter value as a CSV table
func (c *Calibrations) SaveCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "writing csv header")
	}

	for _, r := range c.ParameterValues() {
		row := []string{
			r.Parameter,
			r.Qubits.String(),
			r.Schedule,
			formatValue(r.Value),
			r.DateTime.Format(time.RFC3339Nano),
			strconv.FormatBool(r.Valid),
			r.ExpID,
			r.Group,
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "writing %s", r.ParameterKey)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "writing csv")
}

// LoadCSV adds the parameter values of a table written by SaveCSV.
// Every parameter must already be registered.
func (c *Calibrations) LoadCSV(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return errors.Wrap(err, "reading csv header")
	}
	for i, name := range csvHeader {
		if header[i] != name {
			return errors.Errorf("unexpected csv column %q, expected %q", header[i], name)
		}
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "reading csv line %d", line)
		}

		rec, err := parseRecord(row)
		if err != nil {
			return errors.Wrapf(err, "csv line %d", line)
		}
		if err := c.AddParameterValue(rec.ParameterValue, rec.Parameter, rec.Qubits, rec.Schedule); err != nil {
			return errors.Wrapf(err, "csv line %d", line)
		}
	}
}

func parseRecord(row []string) (Record, error) {
	qubits, err := ParseQubits(row[1])
	if err != nil {
		return Record{}, err
	}
	value, err := strconv.ParseComplex(row[3], 128)
	if err != nil {
		return Record{}, errors.Wrapf(err, "value %q", row[3])
	}
	dateTime, err := time.Parse(time.RFC3339Nano, row[4])
	if err != nil {
		return Record{}, errors.Wrapf(err, "date_time %q", row[4])
	}
	valid, err := strconv.ParseBool(row[5])
	if err != nil {
		return Record{}, errors.Wrapf(err, "valid %q", row[5])
	}

	return Record{
		ParameterKey: ParameterKey{Parameter: row[0], Qubits: qubits, Schedule: row[2]},
		ParameterValue: ParameterValue{
			Value:    value,
			DateTime: dateTime,
			Valid:    valid,
			ExpID:    row[6],
			Group:    row[7],
		},
	}, nil
}

func formatValue(v complex128) string {
	if imag(v) == 0 {
		return strconv.FormatFloat(real(v), 'f', -1, 64)
	}
	return strconv.FormatComplex(v, 'f', -1, 128)
}
