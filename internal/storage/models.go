package storage

import (
	"database/sql"
)

type sessionData struct {
	Kind        string
	Description string
	Config      sql.NullString
}

type runData struct {
	SessionID      int64
	RunID          string
	Label          string
	Parameter      sql.NullFloat64
	Structure      string
	Polarization   string
	IncidenceAngle float64
	FrequencyStart float64
	FrequencyEnd   float64
	NumSamples     int
}

type sampleData struct {
	RunID         int64
	Frequency     float64
	Transmittance float64
	Reflectance   float64
}
