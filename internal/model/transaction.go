package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the fixed taxonomy every transaction falls into.
type Category string

const (
	CategoryDirectCost    Category = "DIRECT_COST"
	CategoryBookedMeasure Category = "BOOKED_MEASURE"
	CategoryParkedMeasure Category = "PARKED_MEASURE"
	CategoryOutlier       Category = "OUTLIER"
)

// Valid reports whether c is one of the four recognized categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDirectCost, CategoryBookedMeasure, CategoryParkedMeasure, CategoryOutlier:
		return true
	}
	return false
}

// Status is the human-readable lifecycle label of a transaction.
type Status string

const (
	StatusDirectBooked       Status = "Direct Booked"
	StatusSAPBooked          Status = "SAP-MSP Booked"
	StatusAwaitingAssignment Status = "Awaiting Assignment"
	StatusAwaitingSAP        Status = "Manually assigned, awaiting SAP"
	StatusUnknownLocation    Status = "Unknown Location"
)

// StatusFor derives the status label from category and assignment state.
// The label is never stored independently of these two inputs.
func StatusFor(c Category, manuallyAssigned bool) Status {
	switch c {
	case CategoryDirectCost:
		return StatusDirectBooked
	case CategoryBookedMeasure:
		return StatusSAPBooked
	case CategoryParkedMeasure:
		if manuallyAssigned {
			return StatusAwaitingSAP
		}
		return StatusAwaitingAssignment
	default:
		return StatusUnknownLocation
	}
}

// Transaction is a classified cost record. Location and lifecycle fields are
// mutated only by the assignment service; everything else is fixed at
// classification time.
type Transaction struct {
	ID       string
	OrderNo  string // planning-tool order number, reconciliation match key
	Category Category
	Status   Status

	Amount          decimal.Decimal // directly booked amount
	ActualAmount    decimal.Decimal // amount confirmed by accounting
	EstimatedAmount decimal.Decimal // planning-tool estimate
	Effective       decimal.Decimal // resolved once at classification

	Department string
	Region     string
	District   string

	BookingDate time.Time
	MeasureDate time.Time

	ManualAssignment bool
	PreviouslyParked bool
	Variance         decimal.Decimal // actual minus estimated, reconciled measures only
	AssignedAt       time.Time
}

// Located reports whether the transaction has been placed in a
// region/district, either from source data or by manual assignment.
func (t Transaction) Located() bool {
	return t.Region != "" && t.District != ""
}

// Reconciled reports whether a formerly parked measure has been matched to
// its accounting record. Reconciliation is terminal.
func (t Transaction) Reconciled() bool {
	return t.PreviouslyParked && t.Category == CategoryBookedMeasure
}
