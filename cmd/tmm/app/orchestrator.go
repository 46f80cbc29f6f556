package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roman-kulish/mmwave-stack/internal/model"
	"github.com/roman-kulish/mmwave-stack/internal/storage"
)

// WithStore sets the store the results are persisted to. Without a store results are
// only logged.
func WithStore(store storage.Store) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithBand sets the band the statistics of every result are logged for
func WithBand(band model.Band) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.band = &band
	}
}

// Orchestrator records the results of a simulation session: it logs a summary of every
// run and persists the runs, within a single session, in the store.
type Orchestrator struct {
	logger *slog.Logger
	store  storage.Store
	band   *model.Band

	sessionID int64
	runs      int
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(logger *slog.Logger, options ...func(*Orchestrator)) *Orchestrator {
	o := Orchestrator{logger: logger}

	for _, option := range options {
		option(&o)
	}

	return &o
}

// Begin starts a new session
func (o *Orchestrator) Begin(ctx context.Context, kind, description string, config any) error {
	o.runs = 0
	if o.store == nil {
		return nil
	}

	sessionID, err := o.store.CreateSession(ctx, kind, description, config)
	if err != nil {
		return fmt.Errorf("creating %s session: %w", kind, err)
	}
	o.sessionID = sessionID

	o.logger.Info("session created", slog.Int64("sessionID", sessionID), slog.String("kind", kind))
	return nil
}

// SessionID returns the ID of the current session, zero without a store
func (o *Orchestrator) SessionID() int64 {
	return o.sessionID
}

// Runs returns the number of runs recorded in the current session
func (o *Orchestrator) Runs() int {
	return o.runs
}

// Record logs and stores the result of a single run
func (o *Orchestrator) Record(ctx context.Context, label string, parameter *float64, res *model.Result) error {
	attrs := []any{
		slog.String("runID", res.RunID.String()),
		slog.String("label", label),
		slog.Int("samples", res.Len()),
	}
	if o.band != nil {
		if stats, err := res.Band(*o.band); err == nil {
			attrs = append(attrs, statsGroup(stats))
		}
	}
	o.logger.Info("run completed", attrs...)

	o.runs++
	if o.store == nil {
		return nil
	}

	runID, err := o.store.StoreRun(ctx, o.sessionID, label, parameter, res)
	if err != nil {
		return fmt.Errorf("storing run %s: %w", res.RunID, err)
	}

	o.logger.Debug("run stored", slog.Int64("sessionID", o.sessionID), slog.Int64("ID", runID))
	return nil
}

func statsGroup(stats model.BandStats) slog.Attr {
	return slog.Group("band",
		slog.String("range", stats.Band.String()),
		slog.Int("samples", stats.Samples),
		slog.String("meanTransmittance", percent(stats.MeanTransmittance)),
		slog.String("stdDevTransmittance", percent(stats.StdDevTransmittance)),
		slog.String("minTransmittance", percent(stats.MinTransmittance)),
		slog.String("maxTransmittance", percent(stats.MaxTransmittance)),
		slog.String("meanReflectance", percent(stats.MeanReflectance)))
}

func percent(f float64) string {
	return fmt.Sprintf("%0.2f%%", f*100)
}
