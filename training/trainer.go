// Package training fits the classifier pipeline and orchestrates a full
// run from extraction to the persisted model artifact.
package training

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/creditdefault/pkg/errors"
	"github.com/YuminosukeSato/creditdefault/pkg/log"
	"github.com/YuminosukeSato/creditdefault/sklearn/imbalance"
	"github.com/YuminosukeSato/creditdefault/sklearn/linear_model"
	"github.com/YuminosukeSato/creditdefault/sklearn/model_selection"
	"github.com/YuminosukeSato/creditdefault/sklearn/pipeline"
)

// Options controls splitting, rebalancing and the optimizer.
type Options struct {
	TestFraction   float64
	Seed           uint64
	Rebalance      bool
	SMOTENeighbors int
	MaxIter        int
	C              float64
	Tol            float64
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		TestFraction:   0.3,
		Seed:           42,
		Rebalance:      true,
		SMOTENeighbors: 5,
		MaxIter:        1000,
		C:              1.0,
		Tol:            1e-6,
	}
}

// Result is the fitted pipeline plus the untouched test partition.
type Result struct {
	Model *pipeline.Pipeline
	XTest *mat.Dense
	YTest *mat.VecDense
	// TrainRows and TrainPositives describe the rows the model was fitted
	// on, after rebalancing.
	TrainRows      int
	TrainPositives int
}

// Trainer splits, optionally rebalances and fits.
type Trainer struct {
	opts   Options
	logger log.Logger
}

// NewTrainer validates opts and returns a Trainer.
func NewTrainer(opts Options, logger log.Logger) (*Trainer, error) {
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		return nil, errors.NewValidationError("TestFraction", "must be in (0, 1)", opts.TestFraction)
	}
	if opts.Rebalance && opts.SMOTENeighbors < 1 {
		return nil, errors.NewValidationError("SMOTENeighbors", "must be at least 1", opts.SMOTENeighbors)
	}
	if opts.MaxIter < 1 {
		return nil, errors.NewValidationError("MaxIter", "must be at least 1", opts.MaxIter)
	}
	if opts.C <= 0 {
		return nil, errors.NewValidationError("C", "must be positive", opts.C)
	}
	if opts.Tol <= 0 {
		return nil, errors.NewValidationError("Tol", "must be positive", opts.Tol)
	}
	return &Trainer{opts: opts, logger: logger}, nil
}

// Train runs split → SMOTE (training partition only) → pipeline fit.
// The test partition is returned exactly as the split produced it.
func (t *Trainer) Train(X mat.Matrix, y mat.Vector) (res *Result, err error) {
	logger := t.logger.With(log.ComponentKey, "training", log.PhaseKey, log.PhaseTraining)
	start := time.Now()
	defer func() {
		if err != nil {
			logger.Error("training failed", err)
		}
	}()
	defer errors.Recover(&err, "Trainer.Train")

	split, err := model_selection.TrainTestSplit(X, y, t.opts.TestFraction, t.opts.Seed)
	if err != nil {
		return nil, err
	}
	logger.Debug("split finished",
		log.RandomSeedKey, t.opts.Seed,
		"split.train_rows", len(split.TrainIndices),
		"split.test_rows", len(split.TestIndices),
	)

	XTrain, yTrain := split.XTrain, split.YTrain
	if t.opts.Rebalance {
		XTrain, yTrain, err = imbalance.NewSMOTE(t.opts.SMOTENeighbors, t.opts.Seed).FitResample(XTrain, yTrain)
		if err != nil {
			return nil, err
		}
		logger.Debug("rebalanced training partition",
			log.ModelNameKey, "SMOTE",
			log.SamplesKey, yTrain.Len(),
		)
	}

	clf := linear_model.NewLogisticRegression(
		linear_model.WithLRC(t.opts.C),
		linear_model.WithLRMaxIter(t.opts.MaxIter),
		linear_model.WithLRTol(t.opts.Tol),
	)
	p := pipeline.New(clf)
	if err := p.Fit(XTrain, yTrain); err != nil {
		return nil, err
	}

	res = &Result{
		Model:          p,
		XTest:          split.XTest,
		YTest:          split.YTest,
		TrainRows:      yTrain.Len(),
		TrainPositives: int(mat.Sum(yTrain)),
	}
	logger.Info("training finished",
		log.ModelNameKey, "StandardScaler+LogisticRegression",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, res.TrainRows,
		log.PositivesKey, res.TrainPositives,
		log.RebalanceKey, t.opts.Rebalance,
		log.RegularizationKey, t.opts.C,
		log.IterationKey, clf.NIter,
		log.LossKey, clf.Loss,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}
