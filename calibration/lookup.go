package calibration

import "time"

type lookupOptions struct {
	validOnly bool
	group     string
	cutoff    time.Time
	free      map[string]bool
}

// LookupOption filters the values considered by GetParameterValue and GetSchedule
type LookupOption func(*lookupOptions)

// ValidOnly sets whether values marked invalid are skipped. Defaults to true.
func ValidOnly(validOnly bool) LookupOption {
	return func(options *lookupOptions) {
		options.validOnly = validOnly
	}
}

// InGroup only considers values of the given group. Defaults to DefaultGroup.
func InGroup(group string) LookupOption {
	return func(options *lookupOptions) {
		options.group = group
	}
}

// CutoffDate ignores values newer than t
func CutoffDate(t time.Time) LookupOption {
	return func(options *lookupOptions) {
		options.cutoff = t
	}
}

// LeaveFree keeps the named parameters unbound in the schedules returned by GetSchedule
func LeaveFree(params ...string) LookupOption {
	return func(options *lookupOptions) {
		for _, p := range params {
			options.free[p] = true
		}
	}
}

func newLookupOptions(opts []LookupOption) lookupOptions {
	o := lookupOptions{
		validOnly: true,
		group:     DefaultGroup,
		free:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o lookupOptions) accepts(v ParameterValue) bool {
	if o.validOnly && !v.Valid {
		return false
	}
	if v.Group != o.group {
		return false
	}
	if !o.cutoff.IsZero() && v.DateTime.After(o.cutoff) {
		return false
	}
	return true
}
