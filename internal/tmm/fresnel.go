package tmm

import (
	"fmt"
	"math/cmplx"
)

const (
	// PolarizationS is the transverse-electric state, perpendicular to the plane of incidence
	PolarizationS Polarization = "s"

	// PolarizationP is the transverse-magnetic state, parallel to the plane of incidence
	PolarizationP Polarization = "p"
)

// Polarization selects the linear polarization state of the incident wave
type Polarization string

func (p Polarization) String() string {
	return string(p)
}

// Validate returns ErrInvalidPolarization for anything but 's' and 'p'
func (p Polarization) Validate() error {
	switch p {
	case PolarizationS, PolarizationP:
		return nil
	default:
		return fmt.Errorf("%w: '%s' given", ErrInvalidPolarization, p)
	}
}

// ReflectionAmplitude returns the Fresnel reflection amplitude at the interface between
// a medium (n1, theta1) and a medium (n2, theta2).
func ReflectionAmplitude(n1, n2 float64, theta1, theta2 complex128, pol Polarization) (complex128, error) {
	c1 := complex(n1, 0) * cmplx.Cos(theta1)
	c2 := complex(n2, 0) * cmplx.Cos(theta2)

	switch pol {
	case PolarizationS:
		return (c1 - c2) / (c1 + c2), nil

	case PolarizationP:
		x1 := complex(n2, 0) * cmplx.Cos(theta1)
		x2 := complex(n1, 0) * cmplx.Cos(theta2)
		return (x1 - x2) / (x2 + x1), nil

	default:
		return 0, pol.Validate()
	}
}

// TransmissionAmplitude returns the Fresnel transmission amplitude at the interface between
// a medium (n1, theta1) and a medium (n2, theta2).
func TransmissionAmplitude(n1, n2 float64, theta1, theta2 complex128, pol Polarization) (complex128, error) {
	num := 2 * complex(n1, 0) * cmplx.Cos(theta1)

	switch pol {
	case PolarizationS:
		return num / (complex(n1, 0)*cmplx.Cos(theta1) + complex(n2, 0)*cmplx.Cos(theta2)), nil

	case PolarizationP:
		return num / (complex(n1, 0)*cmplx.Cos(theta2) + complex(n2, 0)*cmplx.Cos(theta1)), nil

	default:
		return 0, pol.Validate()
	}
}
