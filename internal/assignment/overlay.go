package assignment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/budgetlens-dev/budgetlens/internal/model"
)

// The overlay file records operator assignment decisions so they survive
// process restarts. Raw transactions are re-ingested every run; the overlay
// is replayed on top of the fresh snapshot.

// Header is the CSV header for assignments.csv.
const Header = "id,region,district,assigned_at"

const (
	numFields     = 4
	colID         = 0
	colRegion     = 1
	colDistrict   = 2
	colAssignedAt = 3
)

// Decision is one persisted manual assignment.
type Decision struct {
	ID         string
	Region     string
	District   string
	AssignedAt time.Time
}

// ReadDecisions reads all decisions from an assignments.csv reader.
func ReadDecisions(r io.Reader) ([]Decision, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading assignments CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var decisions []Decision
	for i, rec := range records[1:] {
		at, err := time.Parse(time.RFC3339, rec[colAssignedAt])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing assigned_at %q: %w", i+2, rec[colAssignedAt], err)
		}
		decisions = append(decisions, Decision{
			ID:         rec[colID],
			Region:     rec[colRegion],
			District:   rec[colDistrict],
			AssignedAt: at,
		})
	}
	return decisions, nil
}

// WriteDecisions writes decisions to an assignments.csv writer, header
// included.
func WriteDecisions(w io.Writer, decisions []Decision) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, d := range decisions {
		row := make([]string, numFields)
		row[colID] = d.ID
		row[colRegion] = d.Region
		row[colDistrict] = d.District
		row[colAssignedAt] = d.AssignedAt.Format(time.RFC3339)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// LoadOverlay reads assignments.csv from disk. A missing file is an empty
// overlay.
func LoadOverlay(path string) ([]Decision, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening overlay %s: %w", path, err)
	}
	defer f.Close()
	return ReadDecisions(f)
}

// SaveOverlay writes the overlay file.
func SaveOverlay(path string, decisions []Decision) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating overlay %s: %w", path, err)
	}
	defer f.Close()
	return WriteDecisions(f, decisions)
}

// Apply replays decisions onto a freshly seeded service. Decisions that no
// longer apply (measure reconciled or gone since the overlay was written)
// are skipped and reported back.
func (s *Service) Apply(decisions []Decision) (applied int, stale []Decision) {
	for _, d := range decisions {
		if _, err := s.assign(d.ID, d.Region, d.District, d.AssignedAt); err != nil {
			stale = append(stale, d)
			continue
		}
		applied++
	}
	return applied, stale
}

// Decisions returns the current manual assignments, sorted by id for stable
// overlay files.
func (s *Service) Decisions() []Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Decision
	for _, tx := range s.book {
		if tx.Category == model.CategoryParkedMeasure && tx.ManualAssignment {
			out = append(out, Decision{
				ID:         tx.ID,
				Region:     tx.Region,
				District:   tx.District,
				AssignedAt: tx.AssignedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
