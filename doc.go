// Package creditdefault is a batch pipeline that trains a credit-default
// classifier from a relational contracts table.
//
// A run is strictly sequential:
//
//	source.Loader             SELECT * FROM <table> → frame.Frame
//	preprocessing.Preprocessor prune, bucket, target, dates, impute, one-hot → X, y
//	training.Trainer          stratified split → SMOTE (train only) → scaler + logistic regression
//	evaluation.Evaluate       ROC AUC, log loss, precision/recall/F1, confusion matrix
//	core/model.SaveModel      gob artifact (training.Bundle) under MODEL_DIR
//
// # Configuration
//
// Settings are read from the environment, optionally seeded from a .env
// file in the working directory:
//
//	DB_DRIVER=sqlserver        # or postgres
//	DB_HOST=db.internal
//	DB_PORT=1433
//	DB_NAME=credito
//	DB_USER=etl
//	DB_PASS=...
//	DB_TABLE=dbo.EXTRACAO_DADOS_SISTEMA
//	MODEL_DIR=models
//	MODEL_NAME=modelo_inadimplencia.gob
//	TEST_FRACTION=0.3
//	RANDOM_SEED=42
//	REBALANCE=true
//	THRESHOLD=0.5
//	LOG_LEVEL=info
//	LOG_FORMAT=json
//
// # Quick Start
//
//	go run ./cmd/creditdefault
//
// The classification report is printed to stdout; structured logs go to
// stderr. A failed run exits with status 1 and leaves no model file.
//
// # Using a saved model
//
//	bundle, err := training.LoadBundle("models/modelo_inadimplencia.gob")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	labels, err := bundle.Predict(X) // X columns follow bundle.FeatureNames
//
// # Error Handling
//
// Errors carry cockroachdb stack traces and typed causes (see pkg/errors):
//
//	var tErr *errors.TargetValueError
//	if errors.As(err, &tErr) {
//	    // a target cell outside SIM/NAO
//	}
package creditdefault
