package app

import (
	"context"
	"errors"
	"fmt"

	"trackr/internal/domain"
)

// ErrInvalidWeight indicates a non-positive weight value.
var ErrInvalidWeight = errors.New("weight must be > 0")

// WeightService encapsulates the per-user weight log use cases served by
// the Remote Weight API.
type WeightService struct {
	repo domain.WeightRepository
}

// NewWeightService creates a WeightService backed by the given repository.
func NewWeightService(repo domain.WeightRepository) *WeightService {
	return &WeightService{repo: repo}
}

// List returns every entry of the user in insertion order.
func (s *WeightService) List(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	entries, err := s.repo.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.WeightEntry{}
	}
	return entries, nil
}

// Add validates and stores a new entry. The date is normalized to its
// calendar day; a second entry for the same day is rejected with
// domain.ErrEntryExists.
func (s *WeightService) Add(ctx context.Context, userID int64, rawDate string, weight float64) (domain.WeightEntry, error) {
	entry, err := validate(rawDate, weight)
	if err != nil {
		return entry, err
	}
	if err := s.repo.AddEntry(ctx, userID, entry.Date, entry.Weight); err != nil {
		return entry, fmt.Errorf("add entry: %w", err)
	}
	return entry, nil
}

// Delete removes the entry for the day of rawDate.
func (s *WeightService) Delete(ctx context.Context, userID int64, rawDate string) error {
	date, err := domain.NormalizeDate(rawDate)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEntry(ctx, userID, date); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Modify replaces the weight of the entry for the day of rawDate.
func (s *WeightService) Modify(ctx context.Context, userID int64, rawDate string, weight float64) (domain.WeightEntry, error) {
	entry, err := validate(rawDate, weight)
	if err != nil {
		return entry, err
	}
	if err := s.repo.ModifyEntry(ctx, userID, entry.Date, entry.Weight); err != nil {
		return entry, fmt.Errorf("modify entry: %w", err)
	}
	return entry, nil
}

func validate(rawDate string, weight float64) (domain.WeightEntry, error) {
	if weight <= 0 {
		return domain.WeightEntry{}, ErrInvalidWeight
	}
	date, err := domain.NormalizeDate(rawDate)
	if err != nil {
		return domain.WeightEntry{}, err
	}
	return domain.WeightEntry{Date: date, Weight: weight}, nil
}
