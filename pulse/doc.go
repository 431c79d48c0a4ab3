// Package pulse models pulse schedules: parametric pulses played on hardware
// channels at given sample times. Pulse parameters and channel indices may be
// left as Parameters and bound later with AssignParameters.
package pulse
