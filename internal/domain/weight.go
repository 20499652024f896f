// Package domain holds the weight log entities and the ports its adapters
// implement.
package domain

import (
	"context"
	"errors"
)

var (
	// ErrEntryExists indicates that the user already has an entry for the date.
	ErrEntryExists = errors.New("entry already exists for date")
	// ErrEntryNotFound indicates that the user has no entry for the date.
	ErrEntryNotFound = errors.New("entry not found")
)

// WeightEntry is a single dated weight observation.
type WeightEntry struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// WeightRepository is the port for weight persistence. Entries are keyed by
// user and calendar date and listed in insertion order.
type WeightRepository interface {
	ListEntries(ctx context.Context, userID int64) ([]WeightEntry, error)
	AddEntry(ctx context.Context, userID int64, date string, weight float64) error
	DeleteEntry(ctx context.Context, userID int64, date string) error
	ModifyEntry(ctx context.Context, userID int64, date string, weight float64) error
}
