package scan

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/batchatco/go-netcdf-catalog/internal"
	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
)

// Config holds the tunables of a scan. It is read-only while a scan runs.
type Config struct {
	// LazyGrids defers coordinate reads until the catalog asks for them.
	LazyGrids bool
	// ReadCellCorners reads coordinate bounds.
	ReadCellCorners bool
	// ReadCellCenters reads coordinate values.
	ReadCellCenters bool
	// IgnoreValidRange skips valid_range, valid_min and valid_max.
	IgnoreValidRange bool
	// ChunkCacheMax caps the computed chunk cache size in bytes; 0 is no cap.
	ChunkCacheMax uint64
	// SortVarNames orders data variables by name instead of store order.
	SortVarNames bool
	// ConvertCubeSphere enables gnomonic cubed-sphere detection.
	ConvertCubeSphere bool

	// GaussianTolerance is the relative spacing tolerance below which
	// latitudes are regular.
	GaussianTolerance float64
	// GaussianMaxRows is the row count from which the Gaussian test is
	// skipped.
	GaussianMaxRows int

	Query api.Query

	Logger   *logrus.Logger
	LogLevel internal.LogLevel
	Metrics  *Metrics
	Clock    clockwork.Clock
}

const (
	DefaultGaussianTolerance = 1.0 / 1000
	DefaultGaussianMaxRows   = 10000
)

func DefaultConfig() Config {
	return Config{
		ReadCellCorners:   true,
		ReadCellCenters:   true,
		ConvertCubeSphere: true,
		GaussianTolerance: DefaultGaussianTolerance,
		GaussianMaxRows:   DefaultGaussianMaxRows,
		LogLevel:          internal.LogLevelDefault,
	}
}

var ErrInvalidConfig = errors.New("invalid scan config")

func (c Config) Validate() error {
	if c.GaussianTolerance <= 0 || c.GaussianTolerance >= 1 {
		return fmt.Errorf("%w: gaussian tolerance %v not in (0,1)", ErrInvalidConfig, c.GaussianTolerance)
	}
	if c.GaussianMaxRows <= 0 {
		return fmt.Errorf("%w: gaussian max rows %d must be positive", ErrInvalidConfig, c.GaussianMaxRows)
	}
	if c.LogLevel < internal.LevelMin || c.LogLevel > internal.LevelMax {
		return fmt.Errorf("%w: log level %d", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// activeQuery returns q, or nil when q holds a nil pointer.
func activeQuery(q api.Query) api.Query {
	if q == nil {
		return nil
	}
	if rv := reflect.ValueOf(q); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	return q
}
