package source

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/creditdefault/frame"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
	"github.com/YuminosukeSato/creditdefault/pkg/log"
)

func testConfig() Config {
	return Config{
		Driver:   DriverSQLServer,
		Host:     "localhost",
		Port:     1433,
		Database: "credito",
		User:     "sa",
		Password: "secret",
		Table:    "dbo.EXTRACAO_DADOS_SISTEMA",
	}
}

func mockOpener(db *sql.DB) Opener {
	return func(Config) (*sql.DB, error) { return db, nil }
}

func TestLoadInfersKindsFromTypeNames(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	signed := time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)
	rows := mock.NewRowsWithColumnDefinition(
		mock.NewColumn("NUMERO_CONTRATO").OfType("VARCHAR", ""),
		mock.NewColumn("VALOR_FINANCIADO").OfType("DECIMAL", ""),
		mock.NewColumn("DATA_ASSINATURA").OfType("DATETIME", time.Time{}),
		mock.NewColumn("INADIMPLENTE_COBRANCA").OfType("NVARCHAR", ""),
	).
		AddRow("C-1", []byte("12500.50"), signed, "SIM").
		AddRow("C-2", nil, nil, "NAO")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM dbo.EXTRACAO_DADOS_SISTEMA")).WillReturnRows(rows)
	mock.ExpectClose()

	logger, _ := log.NewTestLogger(log.LevelDebug)
	f, err := NewLoader(testConfig(), logger, WithOpener(mockOpener(db))).Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 2, f.NumRows())
	assert.Equal(t, []string{"NUMERO_CONTRATO", "VALOR_FINANCIADO", "DATA_ASSINATURA", "INADIMPLENTE_COBRANCA"}, f.Names())

	valor, _ := f.Column("VALOR_FINANCIADO")
	assert.Equal(t, frame.Numeric, valor.Kind)
	assert.InDelta(t, 12500.50, valor.Floats[0], 1e-9)
	assert.True(t, valor.IsMissing(1))

	data, _ := f.Column("DATA_ASSINATURA")
	assert.Equal(t, frame.Date, data.Kind)
	assert.True(t, data.Times[0].Equal(signed))
	assert.True(t, data.IsMissing(1))

	target, _ := f.Column("INADIMPLENTE_COBRANCA")
	assert.Equal(t, frame.Categorical, target.Kind)
	assert.Equal(t, []string{"SIM", "NAO"}, target.Strings)

	assert.True(t, logger.ContainsMessage("extraction finished"))
}

func TestLoadInfersKindsFromValues(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"RENDA", "CIDADE", "DATA"}).
		AddRow(nil, "Recife", nil).
		AddRow(int64(4200), nil, time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC))

	mock.ExpectQuery("SELECT \\* FROM dbo.EXTRACAO_DADOS_SISTEMA").WillReturnRows(rows)
	mock.ExpectClose()

	f, err := NewLoader(testConfig(), testLogger(), WithOpener(mockOpener(db))).Load(context.Background())
	require.NoError(t, err)

	renda, _ := f.Column("RENDA")
	assert.Equal(t, frame.Numeric, renda.Kind)
	assert.Equal(t, 4200.0, renda.Floats[1])

	cidade, _ := f.Column("CIDADE")
	assert.Equal(t, frame.Categorical, cidade.Kind)
	assert.True(t, cidade.IsMissing(1))

	data, _ := f.Column("DATA")
	assert.Equal(t, frame.Date, data.Kind)
}

func TestLoadQueryErrorIsSourceError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrConnDone)
	mock.ExpectClose()

	logger, _ := log.NewTestLogger(log.LevelDebug)
	_, err = NewLoader(testConfig(), logger, WithOpener(mockOpener(db))).Load(context.Background())
	require.Error(t, err)

	var srcErr *errors.SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "query", srcErr.Op)
	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.True(t, logger.ContainsMessage("extraction failed"))
}

func TestLoadRejectsUnsafeTable(t *testing.T) {
	cfg := testConfig()
	cfg.Table = "dbo.X; DROP TABLE dbo.X"

	opened := false
	_, err := NewLoader(cfg, testLogger(), WithOpener(func(Config) (*sql.DB, error) {
		opened = true
		return nil, nil
	})).Load(context.Background())

	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.False(t, opened)
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "sqlserver",
			cfg:  Config{Driver: DriverSQLServer, Host: "db", Port: 1433, Database: "credito", User: "sa", Password: "p@ss"},
			want: "sqlserver://sa:p%40ss@db:1433?database=credito",
		},
		{
			name: "postgres default sslmode",
			cfg:  Config{Driver: DriverPostgres, Host: "db", Port: 5432, Database: "credito", User: "app", Password: "pw"},
			want: "postgres://app:pw@db:5432/credito?sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.DSN()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Config{Driver: "oracle"}.DSN()
	assert.Error(t, err)
}

func TestValidTableName(t *testing.T) {
	assert.True(t, ValidTableName("dbo.EXTRACAO_DADOS_SISTEMA"))
	assert.True(t, ValidTableName("contratos"))
	assert.False(t, ValidTableName(""))
	assert.False(t, ValidTableName("a.b.c.d"))
	assert.False(t, ValidTableName("x--"))
}

func testLogger() log.Logger {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	return logger
}
