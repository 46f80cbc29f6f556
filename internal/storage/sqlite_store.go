package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/roman-kulish/mmwave-stack/internal/model"
	"github.com/roman-kulish/mmwave-stack/internal/spectrum"
)

// DefaultMaxBatchSize is the default number of samples inserted by a single statement.
// Every sample binds 4 parameters, which keeps a batch well within the Sqlite limit.
const DefaultMaxBatchSize = 1000

// ErrSessionNotFound is returned when a session does not exist
var ErrSessionNotFound = errors.New("session not found")

// SqliteOption configures a SqliteStore
type SqliteOption func(*SqliteStore)

// WithMaxBatchSize sets the number of samples inserted by a single statement
func WithMaxBatchSize(n int) SqliteOption {
	return func(s *SqliteStore) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath       string
	maxBatchSize int

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a new store backed by the Sqlite database at dbPath. Connections
// are opened, and the schema initialized, on first use.
func NewSqliteStore(dbPath string, opts ...SqliteOption) *SqliteStore {
	s := &SqliteStore{dbPath: dbPath, maxBatchSize: DefaultMaxBatchSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSession(ctx context.Context, kind, description string, config any) (sessionID int64, err error) {
	configData, err := toConfigData(config)
	if err != nil {
		return
	}
	data := sessionData{Kind: kind, Description: description, Config: configData}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, data.Kind, data.Description, data.Config)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	sessionID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
	}
	return
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*spectrum.Session, error) {
	var sess spectrum.Session
	var config sql.NullString
	if err := row.Scan(&sess.ID, &sess.StartTime, &sess.Kind, &sess.Description, &config); err != nil {
		return nil, err
	}
	if config.Valid {
		sess.Config = &config.String
	}
	return &sess, nil
}

func (s *SqliteStore) Session(ctx context.Context, id int64) (session *spectrum.Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}
	return loadSession(ctx, db, id)
}

func loadSession(ctx context.Context, db *sql.DB, id int64) (session *spectrum.Session, err error) {
	stmt, err := db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	session, err = scanSession(stmt.QueryRowContext(ctx, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	case err != nil:
		err = fmt.Errorf("scanning session: %w", err)
	}
	return
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []*spectrum.Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sess *spectrum.Session
		if sess, err = scanSession(rows); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		sessions = append(sessions, sess)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) StoreRun(ctx context.Context, sessionID int64, label string, parameter *float64, res *model.Result) (runID int64, err error) {
	if res == nil || res.Result == nil {
		return 0, errors.New("storing run: empty result")
	}

	db, err := s.getWriteDB()
	if err != nil {
		return 0, fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	data := toRunData(sessionID, label, parameter, res)
	result, err := tx.ExecContext(ctx, insertRunSQL,
		data.SessionID,
		data.RunID,
		data.Label,
		data.Parameter,
		data.Structure,
		data.Polarization,
		data.IncidenceAngle,
		data.FrequencyStart,
		data.FrequencyEnd,
		data.NumSamples,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	if runID, err = result.LastInsertId(); err != nil {
		return 0, fmt.Errorf("getting run ID: %w", err)
	}

	indices := make([]int, res.Len())
	for i := range indices {
		indices[i] = i
	}
	for chunk := range slices.Chunk(indices, s.maxBatchSize) {
		if err = insertSamples(ctx, tx, runID, res, chunk); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return runID, nil
}

func insertSamples(ctx context.Context, tx *sql.Tx, runID int64, res *model.Result, indices []int) error {
	values := make([]interface{}, 0, len(indices)*4)

	valuesPlaceholder := "(?, ?, ?, ?)"

	var sb strings.Builder

	sb.WriteString(insertSamplesSQL)

	for n, i := range indices {
		data := toSampleData(runID, res, i)
		values = append(values,
			data.RunID,
			data.Frequency,
			data.Transmittance,
			data.Reflectance,
		)

		if n > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valuesPlaceholder)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting samples: %w", err)
	}
	return nil
}

func (s *SqliteStore) Runs(ctx context.Context, sessionID int64) (runs []*spectrum.Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}
	return loadRuns(ctx, db, sessionID)
}

func loadRuns(ctx context.Context, db *sql.DB, sessionID int64) (runs []*spectrum.Run, err error) {
	rows, err := db.QueryContext(ctx, selectRunsSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var run spectrum.Run
		var runID string
		var param sql.NullFloat64
		if err = rows.Scan(
			&run.ID,
			&run.SessionID,
			&runID,
			&run.Label,
			&param,
			&run.Structure,
			&run.Polarization,
			&run.IncidenceAngle,
			&run.FrequencyStart,
			&run.FrequencyEnd,
			&run.NumSamples,
		); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}
		if run.RunID, err = uuid.Parse(runID); err != nil {
			err = fmt.Errorf("parsing run ID %q: %w", runID, err)
			return
		}
		if param.Valid {
			run.Parameter = &param.Float64
		}
		runs = append(runs, &run)
	}
	err = rows.Err()
	return
}

// ReadSpectrum creates a new SqliteSpectrumReader that iterates over the spectra of the
// runs of a session, one span per run.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - sessionID: Unique identifier of the session to read from
//   - opts: Optional configuration parameters for the reader (WithMinFreq, WithMaxFreq,
//     WithFreqRange)
//
// The returned reader must be closed after use to release database resources.
// Each reader instance should only be used from a single goroutine.
//
// Returns error if reader creation fails or session doesn't exist.
func (s *SqliteStore) ReadSpectrum(ctx context.Context, sessionID int64, opts ...ReaderOption) (*SqliteSpectrumReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newSqliteSpectrumReader(ctx, db, sessionID, opts...)
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
