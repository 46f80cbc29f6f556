package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"

	"github.com/roman-kulish/mmwave-stack/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) (err error) {
	if _, err = os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("failed to close storage", slog.String("error", closeErr.Error()))
		}
	}()

	spec, description, err := readSpectrum(ctx, store, config, logger)
	if err != nil {
		return err
	}

	renderer, err := NewSpectrumRenderer(RenderConfig{
		ColorTheme:    config.Theme,
		NoAnnotations: config.NoAnnotations,
		Description:   description,
	})
	if err != nil {
		return fmt.Errorf("creating spectrum renderer: %w", err)
	}

	logger.Info("rendering spectrum",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("samples", spec.Width),
			slog.Int("runs", spec.Height),
		))

	img, err := renderer.Render(spec)
	if err != nil {
		return fmt.Errorf("rendering spectrum: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()

	return encodeImage(out, img, config.Format)
}

func readSpectrum(ctx context.Context, store *storage.SqliteStore, config *Config, logger *slog.Logger) (*SpectrumData, string, error) {
	var opts []storage.ReaderOption
	var filters []any
	switch {
	case config.MinFrequency != nil && config.MaxFrequency != nil:
		opts = append(opts, storage.WithFreqRange(*config.MinFrequency, *config.MaxFrequency))

		filters = append(filters,
			slog.String("minFreq", formatFrequency(*config.MinFrequency)),
			slog.String("maxFreq", formatFrequency(*config.MaxFrequency)))

	case config.MinFrequency != nil:
		opts = append(opts, storage.WithMinFreq(*config.MinFrequency))
		filters = append(filters, slog.String("minFreq", formatFrequency(*config.MinFrequency)))

	case config.MaxFrequency != nil:
		opts = append(opts, storage.WithMaxFreq(*config.MaxFrequency))
		filters = append(filters, slog.String("maxFreq", formatFrequency(*config.MaxFrequency)))
	}

	logger.Info("reader configuration", append(filters, slog.Int64("sessionID", config.SessionID))...)

	iter, err := store.ReadSpectrum(ctx, config.SessionID, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("reading session %d: %w", config.SessionID, err)
	}
	defer func() { _ = iter.Close() }()

	session := iter.Session()
	logger.Debug("session loaded",
		slog.String("kind", session.Kind),
		slog.String("description", session.Description),
		slog.Int("runs", len(iter.Runs())))

	spec := NewSpectrumData(config.Quantity, NewBounds(config.MinValue, config.MaxValue))
	for iter.Next(ctx) {
		spec.Update(iter.Current())
	}
	if err = iter.Error(); err != nil && !errors.Is(err, storage.ErrNoData) {
		return nil, "", fmt.Errorf("reading samples: %w", err)
	}
	if spec.Empty() {
		return nil, "", fmt.Errorf("reading samples: %w", storage.ErrNoData)
	}

	bounds := spec.BoundsTracker.Current()

	logger.Info("finished reading data points",
		slog.Group("stats",
			slog.String("minFreq", formatFrequency(spec.FrequencyMin)),
			slog.String("maxFreq", formatFrequency(spec.FrequencyMax)),
			slog.String("quantity", string(spec.Quantity)),
			slog.Float64("minValue", bounds.Min),
			slog.Float64("maxValue", bounds.Max),
			slog.Float64("meanValue", bounds.Mean),
		))

	return spec, session.Description, nil
}

func encodeImage(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case ImagePNG:
		return png.Encode(w, img)
	case ImageJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{
			Quality: 98,
		})
	default:
		return fmt.Errorf("unsupported image format: %s", format)
	}
}
