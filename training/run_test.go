package training

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/creditdefault/config"
	"github.com/YuminosukeSato/creditdefault/frame"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
	"github.com/YuminosukeSato/creditdefault/pkg/log"
	"github.com/YuminosukeSato/creditdefault/source"
)

var runTime = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

type staticLoader struct {
	table *frame.Frame
	err   error
}

func (s staticLoader) Load(context.Context) (*frame.Frame, error) {
	return s.table, s.err
}

func contractRows(n int) (ids, cities, targets []string, amounts []float64, signed []time.Time) {
	cityNames := []string{"Recife", "Olinda", "Caruaru"}
	for i := 0; i < n; i++ {
		ids = append(ids, fmt.Sprintf("C%03d", i))
		cities = append(cities, cityNames[i%3])
		amount := 2000 + float64(i%9)*2500
		target := "NAO"
		if i%4 == 0 {
			amount += 30000
			target = "SIM"
		}
		amounts = append(amounts, amount)
		targets = append(targets, target)
		signed = append(signed, runTime.AddDate(0, -(i%24), 0))
	}
	return
}

func contractsFrame(t *testing.T, n int) *frame.Frame {
	t.Helper()
	ids, cities, targets, amounts, signed := contractRows(n)
	f, err := frame.New(
		frame.NewCategorical("NUMERO_CONTRATO", ids, nil),
		frame.NewCategorical("CIDADE", cities, nil),
		frame.NewDate("DATA_ASSINATURA", signed, nil),
		frame.NewNumeric("VALOR_FINANCIADO", amounts, nil),
		frame.NewCategorical("INADIMPLENTE_COBRANCA", targets, nil),
	)
	require.NoError(t, err)
	return f
}

func testRunConfig(dir string) config.Config {
	return config.Config{
		DB: source.Config{
			Driver: source.DriverSQLServer,
			Host:   "localhost",
			Port:   1433,
			Table:  "dbo.EXTRACAO_DADOS_SISTEMA",
		},
		Model: config.ModelConfig{Dir: dir, Name: "modelo_inadimplencia.gob", ROCPlot: true},
		Training: config.TrainingConfig{
			TestFraction:   0.3,
			RandomSeed:     42,
			Rebalance:      true,
			SMOTENeighbors: 5,
			Threshold:      0.5,
			MaxIter:        1000,
			C:              1.0,
			Tolerance:      1e-6,
		},
	}
}

func runDeps(loader TableLoader) (Deps, *log.TestLogger) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	return Deps{
		Logger: logger,
		Loader: loader,
		Now:    func() time.Time { return runTime },
	}, logger
}

func TestRunEndToEnd(t *testing.T) {
	errors.SetWarningHandler(func(error) {})
	dir := filepath.Join(t.TempDir(), "models")
	deps, logger := runDeps(staticLoader{table: contractsFrame(t, 80)})

	sum, err := Run(context.Background(), testRunConfig(dir), deps)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "modelo_inadimplencia.gob"), sum.ModelPath)
	assert.Equal(t, filepath.Join(dir, "modelo_inadimplencia_roc.png"), sum.PlotPath)
	assert.Equal(t, 24, sum.TestRows)
	assert.Greater(t, sum.Report.AUC, 0.5)
	assert.NotContains(t, sum.FeatureNames, "INADIMPLENTE_COBRANCA")
	assert.NotContains(t, sum.FeatureNames, "NUMERO_CONTRATO")

	_, err = os.Stat(sum.PlotPath)
	require.NoError(t, err)

	bundle, err := LoadBundle(sum.ModelPath)
	require.NoError(t, err)
	assert.Equal(t, sum.RunID, bundle.RunID)
	assert.Equal(t, sum.FeatureNames, bundle.FeatureNames)
	assert.True(t, bundle.CreatedAt.Equal(runTime))
	assert.Equal(t, 0.5, bundle.Threshold)
	assert.InDelta(t, sum.Report.AUC, bundle.AUC, 1e-12)

	X := mat.NewDense(1, len(bundle.FeatureNames), nil)
	labels, err := bundle.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 1, labels.Len())

	_, err = bundle.Predict(mat.NewDense(1, len(bundle.FeatureNames)+1, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	assert.True(t, logger.ContainsMessage("model saved"))
	assert.True(t, logger.ContainsField(log.RunIDKey, sum.RunID.String()))
}

func TestRunIsDeterministic(t *testing.T) {
	errors.SetWarningHandler(func(error) {})
	table := contractsFrame(t, 80)

	depsA, _ := runDeps(staticLoader{table: table})
	a, err := Run(context.Background(), testRunConfig(t.TempDir()), depsA)
	require.NoError(t, err)
	depsB, _ := runDeps(staticLoader{table: table})
	b, err := Run(context.Background(), testRunConfig(t.TempDir()), depsB)
	require.NoError(t, err)

	assert.Equal(t, a.Report.AUC, b.Report.AUC)
	assert.Equal(t, a.Report.Confusion, b.Report.Confusion)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRunStopsAtFirstError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")

	t.Run("loader", func(t *testing.T) {
		deps, _ := runDeps(staticLoader{err: errors.NewSourceError("ping", "sqlserver", fmt.Errorf("refused"))})
		_, err := Run(context.Background(), testRunConfig(dir), deps)
		var srcErr *errors.SourceError
		require.True(t, errors.As(err, &srcErr))
		assert.NoDirExists(t, dir)
	})

	t.Run("bad target", func(t *testing.T) {
		ids, cities, targets, amounts, signed := contractRows(20)
		targets[3] = "TALVEZ"
		f, err := frame.New(
			frame.NewCategorical("NUMERO_CONTRATO", ids, nil),
			frame.NewCategorical("CIDADE", cities, nil),
			frame.NewDate("DATA_ASSINATURA", signed, nil),
			frame.NewNumeric("VALOR_FINANCIADO", amounts, nil),
			frame.NewCategorical("INADIMPLENTE_COBRANCA", targets, nil),
		)
		require.NoError(t, err)

		deps, _ := runDeps(staticLoader{table: f})
		_, err = Run(context.Background(), testRunConfig(dir), deps)
		var tErr *errors.TargetValueError
		require.True(t, errors.As(err, &tErr))
		assert.NoDirExists(t, dir)
	})
}

func TestRunWithSQLSource(t *testing.T) {
	errors.SetWarningHandler(func(error) {})
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	ids, cities, targets, amounts, signed := contractRows(40)
	rows := mock.NewRowsWithColumnDefinition(
		mock.NewColumn("NUMERO_CONTRATO").OfType("VARCHAR", ""),
		mock.NewColumn("CIDADE").OfType("VARCHAR", ""),
		mock.NewColumn("DATA_ASSINATURA").OfType("DATETIME", time.Time{}),
		mock.NewColumn("VALOR_FINANCIADO").OfType("DECIMAL", ""),
		mock.NewColumn("INADIMPLENTE_COBRANCA").OfType("VARCHAR", ""),
	)
	for i := range ids {
		rows.AddRow(ids[i], cities[i], signed[i], []byte(fmt.Sprintf("%.2f", amounts[i])), targets[i])
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM dbo.EXTRACAO_DADOS_SISTEMA")).WillReturnRows(rows)
	mock.ExpectClose()

	cfg := testRunConfig(t.TempDir())
	cfg.Model.ROCPlot = false
	logger, _ := log.NewTestLogger(log.LevelInfo)
	loader := source.NewLoader(cfg.DB, logger, source.WithOpener(func(source.Config) (*sql.DB, error) { return db, nil }))

	sum, err := Run(context.Background(), cfg, Deps{Logger: logger, Loader: loader, Now: func() time.Time { return runTime }})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, sum.PlotPath)
	assert.FileExists(t, sum.ModelPath)
}

func TestRunRequiresLogger(t *testing.T) {
	_, err := Run(context.Background(), testRunConfig(t.TempDir()), Deps{})
	assert.Error(t, err)
}

func TestPlotName(t *testing.T) {
	assert.Equal(t, "modelo_roc.png", plotName("modelo.gob"))
	assert.Equal(t, "modelo_roc.png", plotName("modelo"))
}
