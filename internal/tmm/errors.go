package tmm

import "errors"

var (
	// ErrInvalidPolarization is returned when a polarization selector is neither 's' nor 'p'
	ErrInvalidPolarization = errors.New("polarization must be 's' or 'p'")

	// ErrInvalidSweep is returned when there is nothing to sweep over
	ErrInvalidSweep = errors.New("invalid frequency sweep")

	// ErrInvalidStack is returned when the layer arrays do not describe a source,
	// at least one material and a terminator
	ErrInvalidStack = errors.New("invalid layer stack")

	// ErrGrazingIncidence is returned when the incidence angle is numerically
	// indistinguishable from pi/2
	ErrGrazingIncidence = errors.New("incidence angle is too close to pi/2")
)
