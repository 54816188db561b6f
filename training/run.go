package training

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/creditdefault/config"
	"github.com/YuminosukeSato/creditdefault/core/model"
	"github.com/YuminosukeSato/creditdefault/evaluation"
	"github.com/YuminosukeSato/creditdefault/frame"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
	"github.com/YuminosukeSato/creditdefault/pkg/log"
	"github.com/YuminosukeSato/creditdefault/preprocessing"
	"github.com/YuminosukeSato/creditdefault/source"
)

// TableLoader produces the raw record table.
type TableLoader interface {
	Load(ctx context.Context) (*frame.Frame, error)
}

// Deps are the collaborators of Run. Zero fields get production defaults.
type Deps struct {
	Logger log.Logger
	// Loader defaults to a source.Loader built from cfg.DB.
	Loader TableLoader
	// Now is read once per run and becomes the observation time.
	Now func() time.Time
}

// Summary describes a finished run.
type Summary struct {
	RunID     uuid.UUID
	ModelPath string
	// PlotPath is empty when no ROC plot was written.
	PlotPath     string
	Report       *evaluation.Report
	FeatureNames []string
	TrainRows    int
	TestRows     int
}

// Run executes Loader → Preprocessor → Trainer → Evaluator → Persister
// once. The first error stops the run; it has already been logged by the
// stage that detected it.
func Run(ctx context.Context, cfg config.Config, deps Deps) (sum *Summary, err error) {
	defer errors.Recover(&err, "training.Run")

	if deps.Logger == nil {
		return nil, errors.NewValueError("training.Run", "logger is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Loader == nil {
		deps.Loader = source.NewLoader(cfg.DB, deps.Logger)
	}

	runID := uuid.New()
	observed := deps.Now()
	logger := deps.Logger.With(log.RunIDKey, runID.String())
	logger.Info("run started",
		log.TableKey, cfg.DB.Table,
		log.RandomSeedKey, cfg.Training.RandomSeed,
		"run.observation_time", observed.Format(time.RFC3339),
	)
	// ConvergenceWarning and UndefinedMetricWarning go to the run logger.
	if zl, ok := deps.Logger.(*log.ZerologLogger); ok {
		errors.SetZerologWarnFunc(zl.WarningHook())
		defer errors.SetZerologWarnFunc(nil)
	}

	table, err := deps.Loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	pre, err := preprocessing.NewPreprocessor(preprocessing.DefaultOptions(observed), logger)
	if err != nil {
		return nil, err
	}
	features, err := pre.Transform(table)
	if err != nil {
		return nil, err
	}

	trainer, err := NewTrainer(Options{
		TestFraction:   cfg.Training.TestFraction,
		Seed:           cfg.Training.RandomSeed,
		Rebalance:      cfg.Training.Rebalance,
		SMOTENeighbors: cfg.Training.SMOTENeighbors,
		MaxIter:        cfg.Training.MaxIter,
		C:              cfg.Training.C,
		Tol:            cfg.Training.Tolerance,
	}, logger)
	if err != nil {
		return nil, err
	}
	res, err := trainer.Train(features.X, features.Y)
	if err != nil {
		return nil, err
	}

	evalLogger := logger.With(log.ComponentKey, "evaluation", log.PhaseKey, log.PhaseEvaluation)
	report, err := evaluation.Evaluate(res.Model, res.XTest, res.YTest, cfg.Training.Threshold)
	if err != nil {
		evalLogger.Error("evaluation failed", err)
		return nil, err
	}
	evalLogger.Info("evaluation finished",
		log.SamplesKey, report.Samples,
		log.AUCKey, report.AUC,
		log.AccuracyKey, report.Accuracy,
		log.LossKey, report.LogLoss,
		log.ThresholdKey, report.Threshold,
		"metrics.average_precision", report.AveragePrecision,
		"metrics.brier", report.Brier,
		"report", report.String(),
	)

	sum = &Summary{
		RunID:        runID,
		Report:       report,
		FeatureNames: features.Names,
		TrainRows:    res.TrainRows,
		TestRows:     report.Samples,
	}

	persistLogger := logger.With(log.ComponentKey, "persistence", log.PhaseKey, log.PhasePersistence)
	if cfg.Model.ROCPlot && len(report.FPR) > 0 {
		plotPath := filepath.Join(cfg.Model.Dir, plotName(cfg.Model.Name))
		if err := evaluation.PlotROC(report, plotPath); err != nil {
			persistLogger.Error("writing ROC plot failed", err, log.PathKey, plotPath)
			return nil, err
		}
		sum.PlotPath = plotPath
	}

	bundle := &Bundle{
		RunID:        runID,
		CreatedAt:    observed,
		FeatureNames: features.Names,
		Schema:       features.Schema,
		Threshold:    cfg.Training.Threshold,
		AUC:          report.AUC,
		Model:        res.Model,
	}
	path, err := model.SaveModel(bundle, cfg.Model.Dir, cfg.Model.Name)
	if err != nil {
		persistLogger.Error("saving model failed", err)
		return nil, err
	}
	sum.ModelPath = path
	persistLogger.Info("model saved", log.OperationKey, log.OperationSave, log.PathKey, path)

	return sum, nil
}

// plotName derives the ROC image name from the model file name.
func plotName(modelName string) string {
	return strings.TrimSuffix(modelName, filepath.Ext(modelName)) + "_roc.png"
}
