package spectrum

import (
	"time"

	"github.com/google/uuid"
)

// Session groups the runs of a single invocation of the simulator.
type Session struct {
	ID          int64     `json:"ID"`                      // Unique identifier for the session
	StartTime   time.Time `json:"startTime"`               // When the session began
	Kind        string    `json:"kind"`                    // What was simulated (e.g., "model", "crunch", "scan")
	Description string    `json:"description"`             // Free text, usually the structure of the simulated stack
	Config      *string   `json:"config,string,omitempty"` // Optional simulation configuration in JSON format
}

// Run describes one model run stored within a session.
type Run struct {
	ID             int64     `json:"ID"`                  // Unique identifier for the run in the store
	SessionID      int64     `json:"sessionID"`           // Session the run belongs to
	RunID          uuid.UUID `json:"runID"`               // Identifier assigned when the model ran
	Label          string    `json:"label"`               // Short name, e.g. the sheet counts of a coating
	Parameter      *float64  `json:"parameter,omitempty"` // Scanned parameter value, e.g. a layer thickness in metres
	Structure      string    `json:"structure"`           // Description of the simulated stack
	Polarization   string    `json:"polarization"`        // "s" or "p"
	IncidenceAngle float64   `json:"incidenceAngle"`      // Angle of incidence in radians
	FrequencyStart float64   `json:"frequencyStart"`      // Lower bound of the frequency sweep in Hz
	FrequencyEnd   float64   `json:"frequencyEnd"`        // Upper bound of the frequency sweep in Hz
	NumSamples     int       `json:"numSamples"`          // Number of frequency samples
}

// SpectralPoint is the power transmittance and reflectance at a single frequency.
type SpectralPoint struct {
	Frequency     float64 `json:"frequency"`     // Frequency in Hz
	Transmittance float64 `json:"transmittance"` // Fraction of incident power transmitted, 0..1
	Reflectance   float64 `json:"reflectance"`   // Fraction of incident power reflected, 0..1
}

// SpectralSpan is the spectrum of one run, ordered by frequency.
type SpectralSpan struct {
	Run            *Run            `json:"run"`               // Run the samples were computed by
	FrequencyStart float64         `json:"frequencyStart"`    // Frequency of the first sample in Hz
	FrequencyEnd   float64         `json:"frequencyEnd"`      // Frequency of the last sample in Hz
	Samples        []SpectralPoint `json:"samples,omitempty"` // Ordered sequence of samples in this span
}
