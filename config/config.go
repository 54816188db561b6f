// Package config loads the run configuration from the environment and an
// optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/YuminosukeSato/creditdefault/pkg/errors"
	"github.com/YuminosukeSato/creditdefault/pkg/log"
	"github.com/YuminosukeSato/creditdefault/source"
)

// Config holds everything one pipeline run needs.
type Config struct {
	DB        source.Config
	LogLevel  string
	LogFormat string
	Model     ModelConfig
	Training  TrainingConfig
}

// ModelConfig holds artifact output settings.
type ModelConfig struct {
	Dir     string
	Name    string
	ROCPlot bool
}

// TrainingConfig holds split, rebalancing and optimizer settings.
type TrainingConfig struct {
	TestFraction   float64
	RandomSeed     uint64
	Rebalance      bool
	SMOTENeighbors int
	Threshold      float64
	MaxIter        int
	C              float64
	Tolerance      float64
}

// Load reads the optional .env file(s) and then the process environment.
// Variables already present in the environment win over .env values.
// Malformed numbers are reported, never replaced by defaults.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "loading %s", f)
		}
	}

	r := &reader{}
	driver := strings.ToLower(getEnv("DB_DRIVER", source.DriverSQLServer))
	defaultPort := 1433
	if driver == source.DriverPostgres {
		defaultPort = 5432
	}

	cfg := Config{
		DB: source.Config{
			Driver:   driver,
			Host:     getEnv("DB_HOST", ""),
			Port:     r.int("DB_PORT", defaultPort),
			Database: getEnv("DB_NAME", ""),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASS", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Table:    getEnv("DB_TABLE", "dbo.EXTRACAO_DADOS_SISTEMA"),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", log.FormatJSON),
		Model: ModelConfig{
			Dir:     getEnv("MODEL_DIR", "models"),
			Name:    getEnv("MODEL_NAME", "modelo_inadimplencia.gob"),
			ROCPlot: r.bool("ROC_PLOT", true),
		},
		Training: TrainingConfig{
			TestFraction:   r.float("TEST_FRACTION", 0.3),
			RandomSeed:     r.uint("RANDOM_SEED", 42),
			Rebalance:      r.bool("REBALANCE", true),
			SMOTENeighbors: r.int("SMOTE_NEIGHBORS", 5),
			Threshold:      r.float("THRESHOLD", 0.5),
			MaxIter:        r.int("MAX_ITER", 1000),
			C:              r.float("REGULARIZATION_C", 1.0),
			Tolerance:      r.float("TOLERANCE", 1e-6),
		},
	}
	if r.err != nil {
		return Config{}, r.err
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c Config) Validate() error {
	required := []struct{ key, val string }{
		{"DB_HOST", c.DB.Host},
		{"DB_NAME", c.DB.Database},
		{"DB_USER", c.DB.User},
		{"DB_TABLE", c.DB.Table},
		{"MODEL_DIR", c.Model.Dir},
		{"MODEL_NAME", c.Model.Name},
	}
	for _, r := range required {
		if r.val == "" {
			return errors.NewValidationError(r.key, "environment variable is required", r.val)
		}
	}

	switch {
	case c.DB.Driver != source.DriverSQLServer && c.DB.Driver != source.DriverPostgres:
		return errors.NewValidationError("DB_DRIVER", "must be sqlserver or postgres", c.DB.Driver)
	case c.DB.Port <= 0 || c.DB.Port > 65535:
		return errors.NewValidationError("DB_PORT", "must be a TCP port", c.DB.Port)
	case !source.ValidTableName(c.DB.Table):
		return errors.NewValidationError("DB_TABLE", "must be a [schema.]table identifier", c.DB.Table)
	case c.Training.TestFraction <= 0 || c.Training.TestFraction >= 1:
		return errors.NewValidationError("TEST_FRACTION", "must be in (0, 1)", c.Training.TestFraction)
	case c.Training.Threshold < 0 || c.Training.Threshold > 1:
		return errors.NewValidationError("THRESHOLD", "must be in [0, 1]", c.Training.Threshold)
	case c.Training.SMOTENeighbors < 1:
		return errors.NewValidationError("SMOTE_NEIGHBORS", "must be at least 1", c.Training.SMOTENeighbors)
	case c.Training.MaxIter < 1:
		return errors.NewValidationError("MAX_ITER", "must be at least 1", c.Training.MaxIter)
	case c.Training.C <= 0:
		return errors.NewValidationError("REGULARIZATION_C", "must be positive", c.Training.C)
	case c.Training.Tolerance <= 0:
		return errors.NewValidationError("TOLERANCE", "must be positive", c.Training.Tolerance)
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != log.FormatJSON && c.LogFormat != log.FormatConsole {
		return errors.NewValidationError("LOG_FORMAT", "must be json or console", c.LogFormat)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

// reader parses typed variables and keeps the first parse failure.
type reader struct {
	err error
}

func (r *reader) fail(key, val, want string) {
	if r.err == nil {
		r.err = errors.NewValidationError(key, "must be "+want, val)
	}
}

func (r *reader) int(key string, defaultVal int) int {
	val := getEnv(key, "")
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		r.fail(key, val, "an integer")
		return defaultVal
	}
	return i
}

func (r *reader) uint(key string, defaultVal uint64) uint64 {
	val := getEnv(key, "")
	if val == "" {
		return defaultVal
	}
	u, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		r.fail(key, val, "a non-negative integer")
		return defaultVal
	}
	return u
}

func (r *reader) float(key string, defaultVal float64) float64 {
	val := getEnv(key, "")
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		r.fail(key, val, "a number")
		return defaultVal
	}
	return f
}

func (r *reader) bool(key string, defaultVal bool) bool {
	val := getEnv(key, "")
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		r.fail(key, val, "true or false")
		return defaultVal
	}
	return b
}
