// Package allocation persists operator-set budget allocations per
// department and region.
package allocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/budgetlens-dev/budgetlens/internal/model"
)

// Level distinguishes department from region allocations.
type Level string

const (
	LevelDepartment Level = "department"
	LevelRegion     Level = "region"
)

const schema = `
CREATE TABLE IF NOT EXISTS allocations (
	level  TEXT NOT NULL,
	key    TEXT NOT NULL,
	amount TEXT NOT NULL,
	PRIMARY KEY (level, key)
);`

// Warning flags a write that succeeded but left the budget over-allocated.
// Budgets are advisory here: historical data is already over-allocated in
// places and refusing the write would make those rows uneditable.
type Warning struct {
	OverAllocated   bool
	Department      string
	ParentAllocated decimal.Decimal
	RegionsTotal    decimal.Decimal
}

// Store reads and writes allocation values in SQLite. Amounts are stored as
// decimal strings; float columns would drift.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the allocation database at dbPath.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening allocation database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying allocation schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetAllocation upserts the allocated budget for a node. The write always
// proceeds for valid amounts; exceeding the parent department's allocation
// comes back as a warning beside the successful write, not as an error.
func (s *Store) SetAllocation(ctx context.Context, level Level, key string, amount decimal.Decimal) (Warning, error) {
	if err := validate(level, key, amount); err != nil {
		return Warning{}, err
	}

	warning := Warning{}
	if level == LevelRegion {
		w, err := s.checkParentCap(ctx, key, amount)
		if err != nil {
			return Warning{}, err
		}
		warning = w
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO allocations (level, key, amount) VALUES (?, ?, ?)
		 ON CONFLICT (level, key) DO UPDATE SET amount = excluded.amount`,
		string(level), key, amount.String())
	if err != nil {
		return Warning{}, fmt.Errorf("writing allocation %s/%s: %w", level, key, err)
	}
	return warning, nil
}

// GetAllocation returns the allocated amount for a node. An unknown key is a
// valid "not yet budgeted" state and reads as zero.
func (s *Store) GetAllocation(ctx context.Context, level Level, key string) (decimal.Decimal, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT amount FROM allocations WHERE level = ? AND key = ?`,
		string(level), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading allocation %s/%s: %w", level, key, err)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt allocation %s/%s: %w", level, key, err)
	}
	return d, nil
}

// Allocations returns every allocation at a level, keyed by node key.
func (s *Store) Allocations(ctx context.Context, level Level) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, amount FROM allocations WHERE level = ?`, string(level))
	if err != nil {
		return nil, fmt.Errorf("listing %s allocations: %w", level, err)
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scanning allocation: %w", err)
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt allocation %s/%s: %w", level, key, err)
		}
		out[key] = d
	}
	return out, rows.Err()
}

// checkParentCap compares the department's allocation against the sum of its
// already-persisted region allocations with the new value substituted in.
func (s *Store) checkParentCap(ctx context.Context, key string, amount decimal.Decimal) (Warning, error) {
	dept, _, ok := splitRegionKey(key)
	if !ok {
		return Warning{}, model.InvalidAllocationError{Key: key, Reason: "region key must be department|region"}
	}

	parent, err := s.GetAllocation(ctx, LevelDepartment, dept)
	if err != nil {
		return Warning{}, err
	}

	siblings, err := s.Allocations(ctx, LevelRegion)
	if err != nil {
		return Warning{}, err
	}

	total := amount
	for k, v := range siblings {
		if k == key {
			continue
		}
		if d, _, ok := splitRegionKey(k); ok && d == dept {
			total = total.Add(v)
		}
	}

	if total.GreaterThan(parent) {
		return Warning{
			OverAllocated:   true,
			Department:      dept,
			ParentAllocated: parent,
			RegionsTotal:    total,
		}, nil
	}
	return Warning{}, nil
}

func validate(level Level, key string, amount decimal.Decimal) error {
	if level != LevelDepartment && level != LevelRegion {
		return model.InvalidAllocationError{Key: key, Reason: fmt.Sprintf("unknown level %q", level)}
	}
	if strings.TrimSpace(key) == "" {
		return model.InvalidAllocationError{Key: key, Reason: "empty key"}
	}
	if amount.IsNegative() {
		return model.InvalidAllocationError{Key: key, Reason: "amount must be non-negative"}
	}
	return nil
}

func splitRegionKey(key string) (dept, region string, ok bool) {
	dept, region, ok = strings.Cut(key, "|")
	if !ok || dept == "" || region == "" {
		return "", "", false
	}
	return dept, region, true
}
