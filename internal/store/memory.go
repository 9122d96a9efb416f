package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

var (
	// ErrSchemaMismatch is returned when a payload header does not match Schema.
	ErrSchemaMismatch = errors.New("payload header does not match table schema")
)

// MemoryWarehouse is a concurrency-safe in-memory stand-in for the forecast
// table. Records are kept in arrival order and, as in the real warehouse,
// only ever appended.
type MemoryWarehouse struct {
	mu sync.RWMutex

	rows [][]string
}

// NewMemoryWarehouse creates an empty MemoryWarehouse.
func NewMemoryWarehouse() *MemoryWarehouse {
	return &MemoryWarehouse{}
}

// ExistingTimestamps returns the Datetime column of every stored row.
func (m *MemoryWarehouse) ExistingTimestamps(ctx context.Context) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := make(map[string]struct{}, len(m.rows))
	for _, r := range m.rows {
		set[r[0]] = struct{}{}
	}
	return set, nil
}

// Load appends the rows of a header-having CSV payload. Stored rows are never
// dropped or rewritten.
func (m *MemoryWarehouse) Load(ctx context.Context, r io.Reader) (int64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Schema)

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(ColumnNames(), ",") {
		return 0, ErrSchemaMismatch
	}

	records, err := cr.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, records...)
	return int64(len(records)), nil
}

// Rows returns a copy of the stored records.
func (m *MemoryWarehouse) Rows() [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([][]string, len(m.rows))
	copy(out, m.rows)
	return out
}

// Describe names the destination for log lines.
func (m *MemoryWarehouse) Describe() string {
	return "memory"
}

// Close is a no-op.
func (m *MemoryWarehouse) Close() error {
	return nil
}
