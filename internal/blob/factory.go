package blob

import (
	"context"
	"fmt"

	"github.com/evcraddock/client-visits/internal/db"
)

// Config selects and parameterizes a driver.
type Config struct {
	Driver  Driver
	DBPath  string // sqlite
	DataDir string // file
	S3      S3Config
}

// Open builds the Store selected by cfg. The returned close function
// releases any resources the driver holds and is never nil.
func Open(ctx context.Context, cfg Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), noop, nil
	case DriverFile:
		f, err := NewFile(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return f, noop, nil
	case DriverSQLite, "":
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLite(database), database.Close, nil
	case DriverS3:
		s, err := NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
