package coating

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/roman-kulish/mmwave-stack/internal/layer"
	"github.com/roman-kulish/mmwave-stack/internal/model"
	"github.com/roman-kulish/mmwave-stack/internal/tmm"
)

const defaultSamples = 200

type settings struct {
	samples      int
	angle        float64
	polarization tmm.Polarization
	logger       *slog.Logger
	progress     func(Candidate)
	workers      int
}

// Option configures Crunch and ScanThickness
type Option func(*settings)

// WithSamples sets the number of frequency samples per run
func WithSamples(n int) Option {
	return func(s *settings) {
		s.samples = n
	}
}

// WithIncidenceAngle sets the incidence angle of every run, radians
func WithIncidenceAngle(theta float64) Option {
	return func(s *settings) {
		s.angle = theta
	}
}

// WithPolarization sets the polarization of every run
func WithPolarization(pol tmm.Polarization) Option {
	return func(s *settings) {
		s.polarization = pol
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithProgress registers a callback invoked after every finished run. Calls are
// serialized but arrive in completion order.
func WithProgress(fn func(Candidate)) Option {
	return func(s *settings) {
		s.progress = fn
	}
}

// WithWorkers sets the number of combinations Crunch evaluates concurrently,
// defaults to GOMAXPROCS
func WithWorkers(n int) Option {
	return func(s *settings) {
		s.workers = n
	}
}

func newSettings(options []Option) *settings {
	s := settings{
		samples:      defaultSamples,
		polarization: tmm.PolarizationS,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers:      runtime.GOMAXPROCS(0),
	}
	for _, option := range options {
		option(&s)
	}
	s.workers = max(1, s.workers)
	return &s
}

func (s *settings) modelOptions(low, high float64) []model.Option {
	return []model.Option{
		model.WithFrequencyRange(low, high, s.samples),
		model.WithIncidenceAngle(s.angle),
		model.WithPolarization(s.polarization),
		model.WithLogger(s.logger),
	}
}

// Candidate is one evaluated combination of sheet counts
type Candidate struct {
	Counts []int
	Stack  layer.Stack
	Stats  model.BandStats
	Result *model.Result
}

// Sheets returns the total number of material sheets
func (c Candidate) Sheets() int {
	var n int
	for _, count := range c.Counts {
		n += count
	}
	return n
}

// Label returns the counts joined together, e.g. "304", or dash separated once any
// count has more than one digit
func (c Candidate) Label() string {
	sep := ""
	parts := make([]string, len(c.Counts))
	for i, count := range c.Counts {
		parts[i] = strconv.Itoa(count)
		if count > 9 {
			sep = "-"
		}
	}
	return strings.Join(parts, sep)
}

// Crunch evaluates every combination of 0..maxCount sheets of each material of the
// recipe over band and returns the candidates in enumeration order: the count of the
// first material changes slowest, the count of the last one fastest. Combinations are
// evaluated concurrently, on error or cancellation no candidates are returned.
func Crunch(ctx context.Context, recipe *Recipe, maxCount int, band model.Band, options ...Option) ([]Candidate, error) {
	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	if maxCount < 0 {
		return nil, fmt.Errorf("crunching recipe: negative maximum count: %d", maxCount)
	}
	if err := band.Validate(); err != nil {
		return nil, err
	}

	s := newSettings(options)

	total := 1
	for range recipe.Materials {
		total *= maxCount + 1
	}

	s.logger.Info("crunching recipe",
		slog.Int("materials", len(recipe.Materials)),
		slog.Int("maxCount", maxCount),
		slog.Int("combinations", total),
		slog.Int("workers", s.workers),
		slog.String("band", band.String()))

	var mu sync.Mutex
	candidates := make([]Candidate, total)
	counts := make([]int, len(recipe.Materials))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range total {
		if gctx.Err() != nil {
			break
		}

		combination := append([]int(nil), counts...)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			c, err := evaluate(recipe, combination, band, s)
			if err != nil {
				return err
			}
			candidates[i] = c

			s.logger.Debug("candidate",
				slog.String("counts", c.Label()),
				slog.String("meanTransmittance", fmt.Sprintf("%0.2f%%", c.Stats.MeanTransmittance*100)))
			if s.progress != nil {
				mu.Lock()
				s.progress(c)
				mu.Unlock()
			}
			return nil
		})

		next(counts, maxCount)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// the loop stops early on cancellation without any failed run
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func evaluate(recipe *Recipe, counts []int, band model.Band, s *settings) (Candidate, error) {
	stack, err := recipe.Build(counts)
	if err != nil {
		return Candidate{}, err
	}

	m, err := model.New(stack, s.modelOptions(band.Low, band.High)...)
	if err != nil {
		return Candidate{}, fmt.Errorf("creating model for counts %v: %w", counts, err)
	}

	res, err := m.Run()
	if err != nil {
		return Candidate{}, fmt.Errorf("running model for counts %v: %w", counts, err)
	}

	stats, err := res.Band(band)
	if err != nil {
		return Candidate{}, fmt.Errorf("computing band statistics for counts %v: %w", counts, err)
	}

	return Candidate{
		Counts: append([]int(nil), counts...),
		Stack:  stack,
		Stats:  stats,
		Result: res,
	}, nil
}

// next advances counts as a mixed radix number with the last digit fastest
func next(counts []int, maxCount int) {
	for i := len(counts) - 1; i >= 0; i-- {
		if counts[i] < maxCount {
			counts[i]++
			return
		}
		counts[i] = 0
	}
}

// Best returns the candidate with the highest mean transmittance. Ties go to the one
// with fewer sheets, then to the earlier one. Returns nil for no candidates.
func Best(candidates []Candidate) *Candidate {
	var best *Candidate
	for i := range candidates {
		c := &candidates[i]
		switch {
		case best == nil:
			best = c
		case c.Stats.MeanTransmittance > best.Stats.MeanTransmittance:
			best = c
		case c.Stats.MeanTransmittance == best.Stats.MeanTransmittance && c.Sheets() < best.Sheets():
			best = c
		}
	}
	return best
}

// BestPerSheetCount returns, for every total number of sheets, the candidate with the
// highest mean transmittance, ordered by sheet count.
func BestPerSheetCount(candidates []Candidate) []Candidate {
	bySheets := make(map[int]*Candidate)
	maxSheets := 0
	for i := range candidates {
		c := &candidates[i]
		n := c.Sheets()
		maxSheets = max(maxSheets, n)
		if b, ok := bySheets[n]; !ok || c.Stats.MeanTransmittance > b.Stats.MeanTransmittance {
			bySheets[n] = c
		}
	}

	var out []Candidate
	for n := 0; n <= maxSheets; n++ {
		if c, ok := bySheets[n]; ok {
			out = append(out, *c)
		}
	}
	return out
}

// ScanThickness runs the stack once per thickness, replacing the thickness of the
// material at position. The frequency sweep covers band.
func ScanThickness(ctx context.Context, stack layer.Stack, position int, thicknesses []float64, band model.Band, options ...Option) ([]*model.Result, error) {
	if position <= 0 || position >= len(stack)-1 {
		return nil, fmt.Errorf("%w: scan position %d is not a material layer", tmm.ErrInvalidStack, position)
	}
	if len(thicknesses) == 0 {
		return nil, fmt.Errorf("scanning thickness: no thicknesses")
	}
	if err := band.Validate(); err != nil {
		return nil, err
	}

	s := newSettings(options)
	s.logger.Info("scanning thickness",
		slog.String("layer", stack[position].Description),
		slog.Int("steps", len(thicknesses)),
		slog.String("band", band.String()),
		slog.String("from", humanize.SIWithDigits(thicknesses[0], 2, "m")),
		slog.String("to", humanize.SIWithDigits(thicknesses[len(thicknesses)-1], 2, "m")))

	results := make([]*model.Result, 0, len(thicknesses))
	for _, d := range thicknesses {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		scanned := make(layer.Stack, len(stack))
		copy(scanned, stack)
		scanned[position].Thickness = layer.Distance(d)

		m, err := model.New(scanned, s.modelOptions(band.Low, band.High)...)
		if err != nil {
			return results, fmt.Errorf("creating model for thickness %g m: %w", d, err)
		}

		res, err := m.Run()
		if err != nil {
			return results, fmt.Errorf("running model for thickness %g m: %w", d, err)
		}
		results = append(results, res)

		if s.progress != nil {
			stats, _ := res.Band(band)
			s.progress(Candidate{Stack: scanned, Stats: stats, Result: res})
		}
	}

	return results, nil
}
