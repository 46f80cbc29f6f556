package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roman-kulish/mmwave-stack/internal/spectrum"
)

// ErrNoData indicates either that no spectrum data exists for the given parameters,
// or that all available data has been read from the spectrum reader.
var ErrNoData = fmt.Errorf("no data available")

// SpectrumReader provides an iterator-based interface for reading the spectra of a
// session with optional frequency filtering.
type SpectrumReader interface {
	// Session returns metadata about the session this reader is accessing.
	Session() *spectrum.Session

	// Runs returns the runs of the session in the order they are read.
	Runs() []*spectrum.Run

	// Next advances the iterator and returns true if there is another spectral span
	// to read, false when the iteration is complete or if an error occurred.
	Next(context.Context) bool

	// Current returns the current spectral span in the iteration.
	// If called after Next() returns false, the behavior is undefined.
	Current() *spectrum.SpectralSpan

	// Error returns any error that occurred during iteration.
	// If Next() returns false, Error() should be checked to distinguish between
	// end of data and an error condition.
	Error() error

	// Close releases any resources associated with the reader.
	// After Close is called, the reader should not be used.
	Close() error
}

var _ SpectrumReader = (*SqliteSpectrumReader)(nil)

// ReaderOption configures a SpectrumReader with specific filtering criteria.
type ReaderOption func(*SqliteSpectrumReader)

// WithMinFreq sets the minimum frequency filter for the spectrum reader.
// Samples with frequencies below this value will be excluded.
func WithMinFreq(f float64) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.minFreq = &f
	}
}

// WithMaxFreq sets the maximum frequency filter for the spectrum reader.
// Samples with frequencies above this value will be excluded.
func WithMaxFreq(f float64) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.maxFreq = &f
	}
}

// WithFreqRange sets both minimum and maximum frequency filters.
// This is a convenience function equivalent to applying both WithMinFreq
// and WithMaxFreq.
func WithFreqRange(minFreq, maxFreq float64) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.minFreq = &minFreq
		r.maxFreq = &maxFreq
	}
}

// newSqliteSpectrumReader creates a new SpectrumReader instance for reading spectral data from a database,
// applying optional filters.
func newSqliteSpectrumReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*SqliteSpectrumReader, error) {
	sr := &SqliteSpectrumReader{
		db:        db,
		sessionID: sessionID,
	}
	for _, opt := range opts {
		opt(sr)
	}
	if err := sr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return sr, nil
}

type pendingSample struct {
	runID int64
	point spectrum.SpectralPoint
}

// SqliteSpectrumReader implements SpectrumReader for SQLite database backend.
type SqliteSpectrumReader struct {
	db *sql.DB

	sessionID int64
	session   *spectrum.Session
	runs      []*spectrum.Run
	runsByID  map[int64]*spectrum.Run

	minFreq *float64 // Optional minimum frequency filter
	maxFreq *float64 // Optional maximum frequency filter

	currentSpan *spectrum.SpectralSpan
	spanRunID   int64
	next        *pendingSample // First sample of the next span
	rows        *sql.Rows
	err         error
}

func (sr *SqliteSpectrumReader) init(ctx context.Context) error {
	if sr.db == nil {
		return errors.New("database connection required")
	}
	if sr.sessionID <= 0 {
		return errors.New("session ID required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading session", fn: sr.loadSession},
		{msg: "loading runs", fn: sr.loadRuns},
		{msg: "initializing filters", fn: sr.initFilters},
		{msg: "initializing query", fn: sr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (sr *SqliteSpectrumReader) loadSession(ctx context.Context) (err error) {
	sr.session, err = loadSession(ctx, sr.db, sr.sessionID)
	return
}

func (sr *SqliteSpectrumReader) loadRuns(ctx context.Context) (err error) {
	if sr.runs, err = loadRuns(ctx, sr.db, sr.sessionID); err != nil {
		return err
	}
	sr.runsByID = make(map[int64]*spectrum.Run, len(sr.runs))
	for _, run := range sr.runs {
		sr.runsByID[run.ID] = run
	}
	return nil
}

func (sr *SqliteSpectrumReader) initFilters(ctx context.Context) (err error) {
	if sr.minFreq != nil && sr.maxFreq != nil {
		if *sr.minFreq > *sr.maxFreq {
			return fmt.Errorf("min frequency %f is greater than max frequency %f", *sr.minFreq, *sr.maxFreq)
		}
		return nil
	}

	stmt, err := sr.db.PrepareContext(ctx, selectFilterValuesSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var minFreq, maxFreq sql.NullFloat64
	if err = stmt.QueryRowContext(ctx, sr.sessionID).Scan(&minFreq, &maxFreq); err != nil {
		return fmt.Errorf("scanning filters data: %w", err)
	}
	if !minFreq.Valid || !maxFreq.Valid {
		return ErrNoData
	}

	if sr.minFreq == nil {
		sr.minFreq = &minFreq.Float64
	}
	if sr.maxFreq == nil {
		sr.maxFreq = &maxFreq.Float64
	}
	return nil
}

func (sr *SqliteSpectrumReader) initQuery(ctx context.Context) (err error) {
	sr.rows, err = sr.db.QueryContext(ctx, selectSamplesSQL, sr.sessionID, *sr.minFreq, *sr.maxFreq)
	return
}

func (sr *SqliteSpectrumReader) scanSample() (int64, spectrum.SpectralPoint, error) {
	var sample sampleData
	if err := sr.rows.Scan(&sample.RunID, &sample.Frequency, &sample.Transmittance, &sample.Reflectance); err != nil {
		return 0, spectrum.SpectralPoint{}, fmt.Errorf("scanning sample: %w", err)
	}

	return sample.RunID, spectrum.SpectralPoint{
		Frequency:     sample.Frequency,
		Transmittance: sample.Transmittance,
		Reflectance:   sample.Reflectance,
	}, nil
}

func (sr *SqliteSpectrumReader) newSpan(runID int64, point spectrum.SpectralPoint) *spectrum.SpectralSpan {
	run := sr.runsByID[runID]
	sr.spanRunID = runID

	numSamples := 0
	if run != nil {
		numSamples = run.NumSamples
	}

	span := &spectrum.SpectralSpan{
		Run:            run,
		FrequencyStart: point.Frequency,
		FrequencyEnd:   point.Frequency,
		Samples:        make([]spectrum.SpectralPoint, 0, numSamples),
	}
	span.Samples = append(span.Samples, point)
	return span
}

func (sr *SqliteSpectrumReader) Session() *spectrum.Session {
	return sr.session
}

func (sr *SqliteSpectrumReader) Runs() []*spectrum.Run {
	return sr.runs
}

func (sr *SqliteSpectrumReader) Next(ctx context.Context) bool {
	if sr.err != nil || sr.rows == nil {
		return false
	}

	sr.currentSpan = nil
	if sr.next != nil {
		sr.currentSpan = sr.newSpan(sr.next.runID, sr.next.point)
		sr.next = nil
	}

	for {
		select {
		case <-ctx.Done():
			sr.err = ctx.Err()
			return false
		default:
		}

		if !sr.rows.Next() {
			sr.err = ErrNoData
			return sr.currentSpan != nil
		}

		runID, point, err := sr.scanSample()
		if err != nil {
			sr.err = err
			return false
		}

		if sr.currentSpan == nil {
			sr.currentSpan = sr.newSpan(runID, point)
			continue
		}

		// Run changed, complete current span
		if runID != sr.spanRunID {
			sr.next = &pendingSample{runID: runID, point: point}
			return true
		}

		sr.currentSpan.Samples = append(sr.currentSpan.Samples, point)
		sr.currentSpan.FrequencyEnd = point.Frequency
	}
}

func (sr *SqliteSpectrumReader) Current() *spectrum.SpectralSpan {
	return sr.currentSpan
}

func (sr *SqliteSpectrumReader) Error() error {
	if sr.err != nil && !errors.Is(sr.err, ErrNoData) {
		return sr.err
	}
	if sr.rows != nil {
		return sr.rows.Err()
	}
	return nil
}

func (sr *SqliteSpectrumReader) Close() error {
	if sr.rows != nil {
		err := sr.rows.Close()
		sr.currentSpan = nil
		sr.next = nil
		sr.rows = nil
		return err
	}
	return nil
}
