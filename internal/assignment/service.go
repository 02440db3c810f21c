// Package assignment owns the parked-measure lifecycle: awaiting assignment,
// manually assigned, reconciled.
package assignment

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetlens-dev/budgetlens/internal/model"
)

// Invalidator is notified when a transition changes which nodes a
// transaction counts toward, so cached aggregates can be dropped.
type Invalidator interface {
	Invalidate(keys ...model.NodeKey)
}

// Service is the only component allowed to mutate region, district, status
// and manual_assignment after classification. Transitions replace the whole
// record under one lock, so two racing calls on the same id serialize and
// the loser fails its precondition check.
type Service struct {
	mu   sync.Mutex
	book map[string]model.Transaction
	inv  Invalidator

	now func() time.Time
}

// NewService seeds the service with a classified snapshot. inv may be nil.
func NewService(transactions []model.Transaction, inv Invalidator) *Service {
	book := make(map[string]model.Transaction, len(transactions))
	for _, tx := range transactions {
		book[tx.ID] = tx
	}
	return &Service{book: book, inv: inv, now: time.Now}
}

// Snapshot returns a copy of every transaction record.
func (s *Service) Snapshot() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Transaction, 0, len(s.book))
	for _, tx := range s.book {
		out = append(out, tx)
	}
	return out
}

// Get returns a transaction by id.
func (s *Service) Get(id string) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.book[id]
	if !ok {
		return model.Transaction{}, model.NotFoundError{ID: id}
	}
	return tx, nil
}

// Assign places an unassigned parked measure into a region and district.
func (s *Service) Assign(id, region, district string) (model.Transaction, error) {
	return s.assign(id, region, district, s.now())
}

func (s *Service) assign(id, region, district string, at time.Time) (model.Transaction, error) {
	region = strings.TrimSpace(region)
	district = strings.TrimSpace(district)
	if region == "" {
		return model.Transaction{}, model.ValidationError{Field: "region", Reason: "must not be empty"}
	}
	if district == "" {
		return model.Transaction{}, model.ValidationError{Field: "district", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.book[id]
	if !ok {
		return model.Transaction{}, model.NotFoundError{ID: id}
	}
	if tx.Category != model.CategoryParkedMeasure || tx.ManualAssignment {
		return model.Transaction{}, model.InvalidTransitionError{ID: id, From: tx.Status, Op: "assign"}
	}

	next := tx
	next.Region = region
	next.District = district
	next.ManualAssignment = true
	next.Status = model.StatusAwaitingSAP
	next.AssignedAt = at
	s.book[id] = next

	s.invalidate(next.Department, region, district)
	return next, nil
}

// Unassign reverses a manual assignment, returning the measure to the
// awaiting-assignment pool. Reconciled measures can never be unassigned.
func (s *Service) Unassign(id string) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.book[id]
	if !ok {
		return model.Transaction{}, model.NotFoundError{ID: id}
	}
	if tx.Category != model.CategoryParkedMeasure || !tx.ManualAssignment {
		return model.Transaction{}, model.InvalidTransitionError{ID: id, From: tx.Status, Op: "unassign"}
	}

	region, district := tx.Region, tx.District

	next := tx
	next.Region = ""
	next.District = ""
	next.ManualAssignment = false
	next.Status = model.StatusAwaitingAssignment
	next.AssignedAt = time.Time{}
	s.book[id] = next

	s.invalidate(next.Department, region, district)
	return next, nil
}

// Reconcile matches a parked measure to its incoming accounting record by
// order number, converting it to a booked measure. Idempotent: a second call
// for an already reconciled measure returns the terminal record unchanged.
func (s *Service) Reconcile(id string, actualAmount decimal.Decimal, bookingDate time.Time) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.lookupMeasure(id)
	if !ok {
		return model.Transaction{}, model.NotFoundError{ID: id}
	}
	if tx.Reconciled() {
		return tx, nil
	}

	next := tx
	next.Category = model.CategoryBookedMeasure
	next.Status = model.StatusSAPBooked
	next.ActualAmount = actualAmount
	next.Effective = actualAmount
	next.BookingDate = bookingDate
	next.Variance = actualAmount.Sub(tx.EstimatedAmount)
	next.PreviouslyParked = true
	next.ManualAssignment = false
	s.book[next.ID] = next

	s.invalidate(next.Department, next.Region, next.District)
	return next, nil
}

// lookupMeasure finds a parked (or previously parked) measure by id or order
// number. Other categories are invisible here: reconciliation only ever
// targets measures.
func (s *Service) lookupMeasure(id string) (model.Transaction, bool) {
	if tx, ok := s.book[id]; ok && (tx.Category == model.CategoryParkedMeasure || tx.Reconciled()) {
		return tx, true
	}
	for _, tx := range s.book {
		if tx.OrderNo == id && (tx.Category == model.CategoryParkedMeasure || tx.Reconciled()) {
			return tx, true
		}
	}
	return model.Transaction{}, false
}

func (s *Service) invalidate(department, region, district string) {
	if s.inv == nil {
		return
	}
	dept := department
	if dept == "" {
		dept = model.UnmappedDepartment
	}
	keys := []model.NodeKey{model.DepartmentKey(dept)}
	if region != "" {
		keys = append(keys, model.RegionKey(dept, region))
		if district != "" {
			keys = append(keys, model.DistrictKey(dept, region, district))
		}
	}
	s.inv.Invalidate(keys...)
}
