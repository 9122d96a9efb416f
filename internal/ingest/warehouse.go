package ingest

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/i474232898/weather-forecast-ingest/internal/weather"
)

// Warehouse is the destination table contract. Implementations live in the
// store package.
type Warehouse interface {
	// ExistingTimestamps returns canonical timestamps already stored.
	ExistingTimestamps(ctx context.Context) (map[string]struct{}, error)
	// Load appends a header-having CSV payload and blocks until the load
	// has finished, returning the number of rows written.
	Load(ctx context.Context, r io.Reader) (int64, error)
	Describe() string
	Close() error
}

// UploadError wraps a failed load. It is fatal to the run.
type UploadError struct {
	Destination string
	Err         error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload to %s failed: %v", e.Destination, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// LoadExistingTimestamps builds the dedup index. Read failures are logged and
// yield an empty set so a transient outage never blocks ingestion.
func LoadExistingTimestamps(ctx context.Context, w Warehouse) weather.TimestampSet {
	existing, err := w.ExistingTimestamps(ctx)
	if err != nil {
		log.Printf("ingest: WARNING failed to fetch existing datetimes from %s, continuing with none: %v", w.Describe(), err)
		return weather.NewTimestampSet()
	}
	return weather.TimestampSet(existing)
}
