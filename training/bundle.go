package training

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/creditdefault/core/model"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
	"github.com/YuminosukeSato/creditdefault/preprocessing"
	"github.com/YuminosukeSato/creditdefault/sklearn/pipeline"
)

// Bundle is the persisted model artifact: the fitted pipeline plus what a
// consumer needs to build compatible feature rows and to interpret scores.
type Bundle struct {
	RunID        uuid.UUID
	CreatedAt    time.Time
	FeatureNames []string
	Schema       preprocessing.Schema
	Threshold    float64
	AUC          float64
	Model        *pipeline.Pipeline
}

// LoadBundle reads a Bundle written by Run.
func LoadBundle(path string) (*Bundle, error) {
	var b Bundle
	if err := model.LoadModel(&b, path); err != nil {
		return nil, err
	}
	if b.Model == nil || !b.Model.IsFitted() {
		return nil, errors.NewModelError("LoadBundle", "artifact holds no fitted pipeline", nil)
	}
	return &b, nil
}

// Predict labels rows of X with the stored threshold.
func (b *Bundle) Predict(X mat.Matrix) (*mat.VecDense, error) {
	_, c := X.Dims()
	if c != len(b.FeatureNames) {
		return nil, errors.NewDimensionError("Bundle.Predict", len(b.FeatureNames), c, 1)
	}
	return b.Model.PredictWithThreshold(X, b.Threshold)
}
