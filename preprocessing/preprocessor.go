// Package preprocessing turns the raw record table into a numeric feature
// matrix and binary label vector, and provides the feature scaler used by
// the classifier pipeline.
package preprocessing

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/creditdefault/frame"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
	"github.com/YuminosukeSato/creditdefault/pkg/log"
)

// Features is the preprocessing output. Row i of X and Y[i] describe the
// same record; rows keep the table order.
type Features struct {
	X      *mat.Dense
	Y      *mat.VecDense
	Names  []string
	Schema Schema
}

// Schema records what preprocessing learned from the table, for storage
// next to the model.
type Schema struct {
	Dropped []string
	Medians map[string]float64
	// Levels maps each encoded categorical column to its sorted levels; the
	// first level is the dropped reference.
	Levels map[string][]string
}

// Preprocessor runs the fixed sequence of cleaning and encoding steps.
type Preprocessor struct {
	opts   Options
	logger log.Logger
}

// NewPreprocessor validates opts and returns a Preprocessor.
func NewPreprocessor(opts Options, logger log.Logger) (*Preprocessor, error) {
	if opts.TargetColumn == "" {
		return nil, errors.NewValidationError("TargetColumn", "must not be empty", opts.TargetColumn)
	}
	if opts.ObservationTime.IsZero() {
		return nil, errors.NewValidationError("ObservationTime", "must be set explicitly", opts.ObservationTime)
	}
	if opts.UnknownToken == "" {
		opts.UnknownToken = DefaultUnknownToken
	}
	for _, b := range opts.Buckets {
		if b.Source == "" || b.Target == "" || len(b.Bounds) == 0 || len(b.Bounds) != len(b.Labels) {
			return nil, errors.NewValidationError("Buckets", "need source, target and one label per bound", b.Source)
		}
		for i := 1; i < len(b.Bounds); i++ {
			if b.Bounds[i] <= b.Bounds[i-1] {
				return nil, errors.NewValidationError("Buckets", "bounds must be strictly ascending", b.Bounds)
			}
		}
	}
	return &Preprocessor{opts: opts, logger: logger}, nil
}

// Transform runs every step on a copy of table. Either the full output is
// returned or an error; the input is never modified.
func (p *Preprocessor) Transform(table *frame.Frame) (out *Features, err error) {
	logger := p.logger.With(log.ComponentKey, "preprocessing", log.PhaseKey, log.PhasePreprocessing)
	start := time.Now()
	defer func() {
		if err != nil {
			logger.Error("preprocessing failed", err)
		}
	}()

	if table == nil || table.NumRows() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "preprocessing")
	}
	required := []string{p.opts.TargetColumn}
	for _, b := range p.opts.Buckets {
		required = append(required, b.Source)
	}
	if err := table.MustHave("preprocessing", required...); err != nil {
		return nil, err
	}

	work := table.Clone()
	schema := Schema{Medians: map[string]float64{}, Levels: map[string][]string{}}

	schema.Dropped = p.prune(work)
	if err := p.deriveBuckets(work); err != nil {
		return nil, err
	}
	y, err := p.extractTarget(work)
	if err != nil {
		return nil, err
	}
	if err := p.convertDates(work); err != nil {
		return nil, err
	}
	if err := p.impute(work, schema.Medians); err != nil {
		return nil, err
	}
	X, names, err := encode(work, schema.Levels)
	if err != nil {
		return nil, err
	}

	out = &Features{X: X, Y: y, Names: names, Schema: schema}
	logger.Info("preprocessing finished",
		log.SamplesKey, y.Len(),
		log.FeaturesKey, len(names),
		log.PositivesKey, int(mat.Sum(y)),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}
