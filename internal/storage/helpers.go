package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roman-kulish/mmwave-stack/internal/model"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

func toConfigData(config any) (sql.NullString, error) {
	var data sql.NullString
	if config == nil {
		return data, nil
	}

	switch v := config.(type) {
	case string:
		data.String = v
	case []byte:
		data.String = string(v)
	default:
		p, err := json.Marshal(config)
		if err != nil {
			return data, fmt.Errorf("marshaling config: %w", err)
		}
		data.String = string(p)
	}
	data.Valid = true
	return data, nil
}

func toRunData(sessionID int64, label string, parameter *float64, res *model.Result) *runData {
	var param sql.NullFloat64
	if parameter != nil {
		param.Float64 = *parameter
		param.Valid = true
	}

	return &runData{
		SessionID:      sessionID,
		RunID:          res.RunID.String(),
		Label:          label,
		Parameter:      param,
		Structure:      res.Structure,
		Polarization:   res.Polarization.String(),
		IncidenceAngle: res.Angle,
		FrequencyStart: res.LowFrequency,
		FrequencyEnd:   res.HighFrequency,
		NumSamples:     res.Len(),
	}
}

func toSampleData(runID int64, res *model.Result, i int) *sampleData {
	return &sampleData{
		RunID:         runID,
		Frequency:     res.Frequency[i],
		Transmittance: res.Transmittance[i],
		Reflectance:   res.Reflectance[i],
	}
}
