package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/mmwave-stack/internal/coating"
	"github.com/roman-kulish/mmwave-stack/internal/model"
	"github.com/roman-kulish/mmwave-stack/internal/storage"
)

const (
	storageDir = "data"

	sessionModel  = "model"
	sessionCrunch = "crunch"
	sessionScan   = "scan"
)

// Run runs the simulation the configuration describes: a single model run, a coating
// recipe crunch or a thickness scan.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	var options []func(*Orchestrator)

	if config.Storage.Enabled {
		store, err := createStorage(&config.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close storage", slog.String("error", err.Error()))
			}
		}()

		options = append(options, WithStore(store))
	}
	if config.Output.Band != nil {
		options = append(options, WithBand(config.Output.Band.Band()))
	}

	o := NewOrchestrator(logger, options...)

	switch {
	case config.Coating != nil:
		return runCrunch(ctx, config, o, logger)
	case config.Scan != nil:
		return runScan(ctx, config, o, logger)
	default:
		return runModel(ctx, config, o, logger)
	}
}

func runModel(ctx context.Context, config *Config, o *Orchestrator, logger *slog.Logger) error {
	sim := &config.Simulation

	m, err := model.New(sim.Stack,
		model.WithFrequencyRange(sim.Frequency.Start, sim.Frequency.End, sim.Frequency.Samples),
		model.WithIncidenceAngle(sim.Angle()),
		model.WithPolarization(sim.Polarization),
		model.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating model: %w", err)
	}

	res, err := m.Run()
	if err != nil {
		return fmt.Errorf("running model: %w", err)
	}

	if err = o.Begin(ctx, sessionModel, res.Structure, config); err != nil {
		return err
	}
	if err = o.Record(ctx, "", nil, res); err != nil {
		return err
	}

	if config.Output.File != "" {
		if err = res.SaveFile(config.Output.File); err != nil {
			return fmt.Errorf("saving result: %w", err)
		}
		logger.Info("result saved", slog.String("path", config.Output.File))
	}

	if config.Output.Plot != "" {
		lines := []series{
			{name: "Transmittance", frequency: res.Frequency, values: res.Transmittance},
			{name: "Reflectance", frequency: res.Frequency, values: res.Reflectance},
		}
		if err = saveChart(config.Output.Plot, res.Structure, lines); err != nil {
			return err
		}
		logger.Info("chart saved", slog.String("path", config.Output.Plot))
	}

	return nil
}

func runCrunch(ctx context.Context, config *Config, o *Orchestrator, logger *slog.Logger) error {
	sim := &config.Simulation
	band := config.Output.Band.Band()

	candidates, err := coating.Crunch(ctx, &config.Coating.Recipe, config.Coating.MaxCount, band,
		coating.WithSamples(sim.Frequency.Samples),
		coating.WithIncidenceAngle(sim.Angle()),
		coating.WithPolarization(sim.Polarization),
		coating.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("crunching coating recipe: %w", err)
	}

	best := coating.Best(candidates)
	if best == nil {
		return fmt.Errorf("crunching coating recipe: no candidates")
	}

	if err = o.Begin(ctx, sessionCrunch, best.Stack.String(), config); err != nil {
		return err
	}

	perSheets := coating.BestPerSheetCount(candidates)
	lines := make([]series, 0, len(perSheets))
	for _, c := range perSheets {
		if err = ctx.Err(); err != nil {
			return err
		}

		sheets := float64(c.Sheets())
		if err = o.Record(ctx, c.Label(), &sheets, c.Result); err != nil {
			return err
		}
		lines = append(lines, series{name: c.Label(), frequency: c.Result.Frequency, values: c.Result.Transmittance})
	}

	logger.Info("best coating",
		slog.String("counts", best.Label()),
		slog.Int("sheets", best.Sheets()),
		slog.String("structure", best.Stack.String()),
		statsGroup(best.Stats))

	if config.Output.File != "" {
		if err = best.Result.SaveFile(config.Output.File); err != nil {
			return fmt.Errorf("saving best result: %w", err)
		}
		logger.Info("best result saved", slog.String("path", config.Output.File))
	}

	if config.Output.Plot != "" {
		title := fmt.Sprintf("Best coating per sheet count, %s", band)
		if err = saveChart(config.Output.Plot, title, lines); err != nil {
			return err
		}
		logger.Info("chart saved", slog.String("path", config.Output.Plot))
	}

	return nil
}

func runScan(ctx context.Context, config *Config, o *Orchestrator, logger *slog.Logger) error {
	sim := &config.Simulation
	scan := config.Scan
	thicknesses := scan.Thicknesses()

	results, err := coating.ScanThickness(ctx, sim.Stack, scan.Layer, thicknesses, sim.Band(),
		coating.WithSamples(sim.Frequency.Samples),
		coating.WithIncidenceAngle(sim.Angle()),
		coating.WithPolarization(sim.Polarization),
		coating.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("scanning thickness: %w", err)
	}

	description := fmt.Sprintf("%s thickness in %s", sim.Stack[scan.Layer].Description, sim.Stack)
	if err = o.Begin(ctx, sessionScan, description, config); err != nil {
		return err
	}

	lines := make([]series, 0, len(results))
	for i, res := range results {
		label := humanize.SIWithDigits(thicknesses[i], 3, "m")
		if err = o.Record(ctx, label, &thicknesses[i], res); err != nil {
			return err
		}

		if config.Output.File != "" {
			path := numberedPath(config.Output.File, i, len(results))
			if err = res.SaveFile(path); err != nil {
				return fmt.Errorf("saving result %d: %w", i, err)
			}
		}
		lines = append(lines, series{name: label, frequency: res.Frequency, values: res.Transmittance})
	}
	if config.Output.File != "" {
		logger.Info("results saved", slog.String("path", config.Output.File), slog.Int("files", len(results)))
	}

	if config.Output.Plot != "" {
		if err = saveChart(config.Output.Plot, description, lines); err != nil {
			return err
		}
		logger.Info("chart saved", slog.String("path", config.Output.Plot))
	}

	if o.SessionID() != 0 {
		logger.Info("render the scan with the heatmap tool", slog.Int64("sessionID", o.SessionID()))
	}
	return nil
}

// numberedPath inserts a zero padded index before the extension of path,
// e.g. "scan.txt" becomes "scan_007.txt"
func numberedPath(path string, i, n int) string {
	ext := filepath.Ext(path)
	width := len(fmt.Sprint(n - 1))
	return fmt.Sprintf("%s_%0*d%s", strings.TrimSuffix(path, ext), width, i, ext)
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, error) {
	dbPath := config.DataDirectory
	if dbPath == "" {
		dbPath = storageDir
	}
	if !filepath.IsAbs(dbPath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		dbPath = filepath.Join(wd, dbPath)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("checking storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("tmm_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))

	var options []storage.SqliteOption
	if config.MaxBatchSize > 0 {
		options = append(options, storage.WithMaxBatchSize(config.MaxBatchSize))
	}
	return storage.NewSqliteStore(dbPath, options...), nil
}
