package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/mmwave-stack/internal/model"
	"github.com/roman-kulish/mmwave-stack/internal/spectrum"
)

// Store provides an interface for persisting simulation results.
// It handles sessions, runs and the spectra the runs produced in a thread-safe manner.
// All operations that write to the database should be considered atomic.
type Store interface {
	// CreateSession initializes a new session and returns its unique identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - kind: What is simulated (e.g., "model", "crunch", "scan")
	//   - description: Free text, usually the structure of the simulated stack
	//   - config: Optional simulation configuration. Can be string, []byte, or JSON-serializable object
	//
	// Returns:
	//   - sessionID: Unique identifier for the created session
	//   - error: If session creation fails or context is cancelled
	CreateSession(ctx context.Context, kind, description string, config any) (sessionID int64, err error)

	// Session retrieves a specific session by its ID.
	//
	// Returns:
	//   - session: Pointer to session data
	//   - error: If retrieval fails, the session does not exist or context is cancelled
	Session(ctx context.Context, id int64) (session *spectrum.Session, err error)

	// Sessions returns all sessions stored in the database ordered by start time.
	Sessions(ctx context.Context) (sessions []*spectrum.Session, err error)

	// StoreRun saves a model result within a session. The run and all of its
	// samples are stored in a single atomic transaction.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - sessionID: ID of the session this run belongs to
	//   - label: Short name of the run, e.g. the sheet counts of a coating
	//   - parameter: Optional value of a scanned parameter, e.g. a layer thickness
	//   - res: Model result holding the spectrum
	//
	// Returns:
	//   - runID: Unique identifier for the stored run
	//   - error: If storage fails or context is cancelled
	StoreRun(ctx context.Context, sessionID int64, label string, parameter *float64, res *model.Result) (runID int64, err error)

	// Runs returns the runs of a session in the order they were stored.
	Runs(ctx context.Context, sessionID int64) (runs []*spectrum.Run, err error)

	// Close releases all database connections and resources.
	// After Close is called, the store instance cannot be reused.
	// It is safe to call Close multiple times.
	Close() error
}

var _ Store = (*SqliteStore)(nil)
